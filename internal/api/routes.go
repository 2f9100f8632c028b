package api

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(app *fiber.App, handler *Handler) {
	app.Get("/health", handler.Health)
	app.Get("/health/db", handler.HealthDB)

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", handler.Register)
	auth.Post("/login", handler.Login)
	auth.Get("/me", handler.AuthRequired, handler.Me)
	auth.Put("/password", handler.AuthRequired, handler.ChangePassword)

	users := api.Group("/users", handler.AuthRequired)
	users.Get("/", handler.SearchUsers)
	users.Get("/:id", handler.GetUser)
	users.Put("/:id", handler.UpdateUser)
	users.Delete("/:id", handler.DeleteUser)
	users.Get("/:id/stats", handler.GetUserStats)

	identities := api.Group("/identities", handler.AuthRequired)
	identities.Get("/", handler.ListIdentities)
	identities.Post("/", handler.CreateIdentity)
	identities.Get("/:id", handler.GetIdentity)
	identities.Put("/:id", handler.UpdateIdentity)
	identities.Delete("/:id", handler.DeleteIdentity)

	habits := api.Group("/habits", handler.AuthRequired)
	habits.Get("/", handler.ListHabits)
	habits.Post("/", handler.CreateHabit)
	habits.Get("/user/:userId", handler.ListHabitsByUser)
	habits.Get("/identity/:identityId", handler.ListHabitsByIdentity)
	habits.Get("/:id", handler.GetHabit)
	habits.Put("/:id", handler.UpdateHabit)
	habits.Delete("/:id", handler.DeleteHabit)

	completions := api.Group("/completions", handler.AuthRequired)
	completions.Get("/", handler.ListCompletions)
	completions.Post("/", handler.CreateCompletion)
	completions.Post("/toggle", handler.ToggleCompletion)
	completions.Get("/today", handler.TodayCompletions)
	completions.Get("/stats", handler.GetCompletionStats)
	completions.Get("/habit/:habitId", handler.ListCompletionsByHabit)
	completions.Get("/habit/:habitId/stats", handler.GetHabitCompletionStats)
	completions.Get("/:id", handler.GetCompletion)
	completions.Put("/:id", handler.UpdateCompletion)
	completions.Delete("/:id", handler.DeleteCompletion)

	squads := api.Group("/squads", handler.AuthRequired)
	squads.Get("/search", handler.SearchSquads)
	squads.Post("/join-by-code", handler.JoinSquadByCode)
	squads.Get("/", handler.ListSquads)
	squads.Post("/", handler.CreateSquad)
	squads.Get("/:id", handler.GetSquad)
	squads.Put("/:id", handler.UpdateSquad)
	squads.Delete("/:id", handler.DeleteSquad)
	squads.Get("/:id/members", handler.ListSquadMembers)
	squads.Post("/:id/join", handler.JoinSquad)
	squads.Post("/:id/leave", handler.LeaveSquad)
	squads.Post("/:id/invite", handler.InviteToSquad)
	squads.Delete("/:id/members/:userId", handler.RemoveSquadMember)
	squads.Put("/:id/members/:userId/role", handler.UpdateSquadMemberRole)
	squads.Get("/:id/stats", handler.GetSquadStats)
}
