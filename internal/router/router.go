package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/trolukyanrl/jorhatx/internal/config"
	"github.com/trolukyanrl/jorhatx/internal/handler"
	"github.com/trolukyanrl/jorhatx/internal/middleware"
	"github.com/trolukyanrl/jorhatx/internal/models"
	"github.com/trolukyanrl/jorhatx/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler      *handler.AuthHandler
	UserHandler      *handler.UserHandler
	AdminUserHandler *handler.AdminUserHandler
	ListingHandler   *handler.ListingHandler
	CategoryHandler  *handler.CategoryHandler
	WishlistHandler  *handler.WishlistHandler
	ChatHandler      *handler.ChatHandler
	UploadHandler    *handler.UploadHandler
	JWTMiddleware    fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	// Public auth endpoints, rate limited per IP.
	if deps.AuthHandler != nil {
		auth := api.Group("/auth", middleware.RateLimit("auth", 20, time.Minute))
		deps.AuthHandler.Register(auth)
	}

	// Own profile.
	if deps.UserHandler != nil {
		users := api.Group("/users", jwtMiddleware)
		deps.UserHandler.Register(users)
	}

	// Listings feed.
	if deps.ListingHandler != nil {
		listings := api.Group("/listings", jwtMiddleware)
		deps.ListingHandler.Register(listings)
	}

	// Category taxonomy: reads for everyone signed in, writes for admins.
	if deps.CategoryHandler != nil {
		categories := api.Group("/categories", jwtMiddleware)
		deps.CategoryHandler.Register(categories)

		adminCategories := api.Group("/admin/categories", jwtMiddleware, middleware.RequireRole(models.RoleAdmin))
		deps.CategoryHandler.RegisterAdmin(adminCategories)
	}

	// Wishlist.
	if deps.WishlistHandler != nil {
		wishlist := api.Group("/wishlist", jwtMiddleware)
		deps.WishlistHandler.Register(wishlist)
	}

	// Chat, rate limited per user to keep polling clients honest.
	if deps.ChatHandler != nil {
		chat := api.Group("/chat", jwtMiddleware, middleware.RateLimit("chat", 240, time.Minute))
		deps.ChatHandler.Register(chat)
	}

	// Image uploads.
	if deps.UploadHandler != nil {
		uploads := api.Group("/uploads", jwtMiddleware, middleware.RateLimit("uploads", 30, time.Minute))
		deps.UploadHandler.Register(uploads)
	}

	// Admin user directory and moderation.
	if deps.AdminUserHandler != nil {
		adminUsers := api.Group("/admin/users", jwtMiddleware, middleware.RequireRole(models.RoleAdmin))
		deps.AdminUserHandler.Register(adminUsers)
	}
}
