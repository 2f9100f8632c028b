package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/atomizehq/atomize/internal/api"
	"github.com/atomizehq/atomize/internal/cli"
	"github.com/atomizehq/atomize/internal/db"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	dbPath := getEnv("DB_PATH", filepath.Join("data", "atomize.db"))

	if len(os.Args) > 1 && os.Args[1] == "reset-password" {
		runResetPassword(dbPath, os.Args[2:])
		return
	}

	location := mustLoadLocation(getEnv("TZ", "UTC"))
	time.Local = location

	secretKey := getEnv("SECRET_KEY", "change_me_in_production")
	port := getEnv("PORT", "3000")
	tokenTTL := tokenTTLFromEnv()

	database, err := db.OpenSQLite(dbPath)
	if err != nil {
		log.Fatalf("database init failed: %v", err)
	}

	handler := api.NewHandler(database, secretKey, tokenTTL)

	app := fiber.New(fiber.Config{
		AppName:               "Atomize",
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())
	app.Use(cors.New())

	api.RegisterRoutes(app, handler)

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	go func() {
		<-sigCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Printf("server shutdown failed: %v", err)
		}
	}()

	log.Printf("Atomize listening on http://0.0.0.0:%s (db: %s, tz: %s)", port, dbPath, location.String())
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}

func runResetPassword(dbPath string, args []string) {
	email := ""
	interactive := false
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--prompt":
			interactive = true
		case "--email":
			if i+1 < len(args) {
				i++
				email = args[i]
			}
		default:
			email = args[i]
		}
	}
	if email == "" {
		log.Fatal("usage: atomize reset-password [--prompt] --email <email>")
	}
	if err := cli.RunResetPasswordCommand(dbPath, email, interactive); err != nil {
		log.Fatalf("reset-password failed: %v", err)
	}
}

func tokenTTLFromEnv() time.Duration {
	raw := getEnv("TOKEN_TTL_HOURS", "")
	if raw == "" {
		return 0
	}
	hours, err := strconv.Atoi(raw)
	if err != nil || hours <= 0 {
		log.Printf("invalid TOKEN_TTL_HOURS %q, using default", raw)
		return 0
	}
	return time.Duration(hours) * time.Hour
}

func mustLoadLocation(name string) *time.Location {
	location, err := time.LoadLocation(name)
	if err != nil {
		log.Printf("invalid TZ %q, falling back to UTC", name)
		return time.UTC
	}
	return location
}

func getEnv(key string, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}
