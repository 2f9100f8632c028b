package api

import (
	"net/mail"
	"strings"
	"time"

	"github.com/atomizehq/atomize/internal/models"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Timezone string `json:"timezone"`
	Locale   string `json:"locale"`
}

func (handler *Handler) Register(c *fiber.Ctx) error {
	var request registerRequest
	if err := c.BodyParser(&request); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	email := strings.ToLower(strings.TrimSpace(request.Email))
	if email == "" || request.Password == "" {
		return respondValidation(c, FieldError{Field: "email/password", Message: "Email and password are required"})
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return respondValidation(c, FieldError{Field: "email", Message: "Invalid email address"})
	}

	emailTaken, err := handler.repos.Users.ExistsByNormalizedEmail(email)
	if err != nil {
		return respondInternalError(c)
	}
	if emailTaken {
		return respondError(c, fiber.StatusConflict, "User with this email already exists")
	}

	username := strings.TrimSpace(request.Username)
	if username != "" {
		usernameTaken, err := handler.repos.Users.ExistsByUsername(username)
		if err != nil {
			return respondInternalError(c)
		}
		if usernameTaken {
			return respondError(c, fiber.StatusConflict, "Username already taken")
		}
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(request.Password), bcrypt.DefaultCost)
	if err != nil {
		return respondInternalError(c)
	}

	user := models.User{
		Email:        email,
		PasswordHash: string(passwordHash),
		FullName:     strings.TrimSpace(request.FullName),
		Timezone:     defaultString(request.Timezone, "UTC"),
		Locale:       defaultString(request.Locale, "en"),
		IsActive:     true,
	}
	if username != "" {
		user.Username = &username
	}
	if err := handler.repos.Users.Create(&user); err != nil {
		return respondInternalError(c)
	}

	token, err := handler.buildToken(&user)
	if err != nil {
		return respondInternalError(c)
	}

	return respondSuccess(c, fiber.StatusCreated, "User registered successfully", fiber.Map{
		"user":  user,
		"token": token,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (handler *Handler) Login(c *fiber.Ctx) error {
	var request loginRequest
	if err := c.BodyParser(&request); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if request.Email == "" || request.Password == "" {
		return respondValidation(c, FieldError{Field: "email/password", Message: "Email and password are required"})
	}

	user, found, err := handler.repos.Users.FindByNormalizedEmail(request.Email)
	if err != nil {
		return respondInternalError(c)
	}
	if !found {
		return respondUnauthorized(c, "Invalid credentials")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(request.Password)) != nil {
		return respondUnauthorized(c, "Invalid credentials")
	}

	now := time.Now().UTC()
	if err := handler.repos.Users.TouchLastLogin(user.ID, now); err != nil {
		return respondInternalError(c)
	}
	user.LastLoginAt = &now

	token, err := handler.buildToken(&user)
	if err != nil {
		return respondInternalError(c)
	}

	return respondSuccess(c, fiber.StatusOK, "Login successful", fiber.Map{
		"user":  user,
		"token": token,
	})
}

func (handler *Handler) Me(c *fiber.Ctx) error {
	sessionUser := mustCurrentUser(c)
	user, found, err := handler.repos.Users.FindByID(sessionUser.ID)
	if err != nil {
		return respondInternalError(c)
	}
	if !found {
		return respondNotFound(c, "User")
	}
	return respondSuccess(c, fiber.StatusOK, "User retrieved successfully", user)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (handler *Handler) ChangePassword(c *fiber.Ctx) error {
	user := mustCurrentUser(c)

	var request changePasswordRequest
	if err := c.BodyParser(&request); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if request.CurrentPassword == "" || request.NewPassword == "" {
		return respondValidation(c, FieldError{Field: "passwords", Message: "Current and new passwords are required"})
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(request.CurrentPassword)) != nil {
		return respondUnauthorized(c, "Current password is incorrect")
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(request.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return respondInternalError(c)
	}
	if err := handler.repos.Users.UpdatePassword(user.ID, string(newHash)); err != nil {
		return respondInternalError(c)
	}

	return respondSuccess(c, fiber.StatusOK, "Password updated successfully", nil)
}

func defaultString(value string, fallback string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback
	}
	return trimmed
}
