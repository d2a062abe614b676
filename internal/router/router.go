package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/sprint-connect-api/internal/config"
	"github.com/noah-isme/sprint-connect-api/internal/handler"
	"github.com/noah-isme/sprint-connect-api/internal/middleware"
	"github.com/noah-isme/sprint-connect-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	ProfileHandler      *handler.ProfileHandler
	CourseHandler       *handler.CourseHandler
	CircleHandler       *handler.CircleHandler
	WellnessHandler     *handler.WellnessHandler
	CommunityHandler    *handler.CommunityHandler
	EventHandler        *handler.EventHandler
	GamificationHandler *handler.GamificationHandler
	ProductivityHandler *handler.ProductivityHandler
	PeerSupportHandler  *handler.PeerSupportHandler
	NotificationHandler *handler.NotificationHandler
	DashboardHandler    *handler.DashboardHandler
	AdminHandler        *handler.AdminHandler
	JWTMiddleware       fiber.Handler
	MetricsEnabled      bool
	HealthChecks        []handler.HealthDependency
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	if deps.MetricsEnabled {
		app.Get("/metrics", observability.MetricsHandler())
	}

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.HealthChecks...))

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	// Seeding is guarded by its own token, not by a user session.
	if deps.AdminHandler != nil {
		deps.AdminHandler.RegisterSeed(api.Group("/admin"))
	}

	secured := api.Group("", jwtMiddleware, middleware.RateLimit("api", cfg.RateLimitMax, cfg.RateLimitWindow))

	if deps.ProfileHandler != nil {
		deps.ProfileHandler.Register(secured)
	}
	if deps.DashboardHandler != nil {
		deps.DashboardHandler.Register(secured)
	}
	if deps.CourseHandler != nil {
		deps.CourseHandler.Register(secured.Group("/courses"))
	}
	if deps.CircleHandler != nil {
		deps.CircleHandler.Register(secured.Group("/circles"))
		deps.CircleHandler.RegisterResources(secured.Group("/resources"))
	}
	if deps.WellnessHandler != nil {
		deps.WellnessHandler.Register(secured.Group("/wellness"))
	}
	if deps.CommunityHandler != nil {
		deps.CommunityHandler.Register(secured.Group("/posts"))
	}
	if deps.EventHandler != nil {
		deps.EventHandler.Register(secured.Group("/events"))
	}
	if deps.GamificationHandler != nil {
		deps.GamificationHandler.Register(secured.Group("/gamification"))
	}
	if deps.ProductivityHandler != nil {
		deps.ProductivityHandler.RegisterPomodoro(secured.Group("/pomodoro"))
		deps.ProductivityHandler.RegisterStudySessions(secured.Group("/study-sessions"))
	}
	if deps.PeerSupportHandler != nil {
		deps.PeerSupportHandler.Register(secured.Group("/peer-support"))
	}
	if deps.NotificationHandler != nil {
		deps.NotificationHandler.Register(secured.Group("/notifications"))
	}

	// Staff-only endpoints
	if deps.AdminHandler != nil {
		admin := secured.Group("/admin", middleware.RequireStaff())
		deps.AdminHandler.Register(admin)
	}
}
