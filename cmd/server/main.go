package main

import (
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/robfig/cron/v3"

	"coderev/internal/config"
	"coderev/internal/database"
	"coderev/internal/handlers"
	"coderev/internal/middleware"
	porg "coderev/internal/platform/organization"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal(err)
	}

	app := fiber.New()

	app.Use(compress.New())
	app.Use(helmet.New())
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(healthcheck.New())

	app.Use("/api", limiter.New(limiter.Config{
		Max:        100,
		Expiration: 15 * time.Minute,
	}))

	app.Use(func(c *fiber.Ctx) error {
		c.Locals("config", cfg)
		c.Locals("db", db)
		return c.Next()
	})

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/signup", handlers.Signup)
	auth.Post("/login", handlers.Login)
	auth.Post("/accept-invite", handlers.AcceptInvite)
	auth.Get("/verify", middleware.AuthMiddleware, handlers.VerifyToken)
	auth.Post("/refresh", middleware.AuthMiddleware, handlers.RefreshToken)
	auth.Post("/logout", middleware.AuthMiddleware, handlers.Logout)

	users := api.Group("/users", middleware.AuthMiddleware)
	users.Get("/me", handlers.GetCurrentUser)
	users.Put("/me", handlers.UpdateCurrentUser)
	users.Post("/me/avatar", handlers.UploadAvatar)
	users.Get("/", middleware.RequireRole(database.RoleDeveloper), handlers.ListUsers)
	users.Post("/invite", middleware.RequireRole(database.RoleAdmin), handlers.InviteUser)

	org := api.Group("/organization", middleware.AuthMiddleware)
	org.Get("/", handlers.GetOrganization)
	org.Get("/usage", handlers.GetOrganizationUsage)
	org.Put("/settings", middleware.RequireRole(database.RoleAdmin), handlers.UpdateOrganizationSettings)

	management := api.Group("/management", middleware.AuthMiddleware, middleware.RequireRole(database.RoleAdmin))
	management.Post("/reset-usage", handlers.ResetUsage)

	app.Use(func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNotFound)
	})

	scheduler := cron.New()
	orgService := porg.NewService(db)
	scheduler.AddFunc("@daily", func() {
		affected, err := orgService.ResetMonthlyUsage(time.Now())
		if err != nil {
			log.Printf("monthly usage reset failed: %v", err)
			return
		}
		if affected > 0 {
			log.Printf("monthly usage reset applied to %d organizations", affected)
		}
	})
	scheduler.Start()
	defer scheduler.Stop()

	log.Fatal(app.Listen(fmt.Sprintf(":%d", cfg.ServerPort)))
}
