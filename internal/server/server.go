// Package server contains the HTTP handlers for the clubhouse API.
package server

import (
	"context"
	"errors"
	"strings"
	"time"

	_ "clubhouse/docs" // swagger docs
	"clubhouse/internal/bootstrap"
	"clubhouse/internal/config"
	"clubhouse/internal/database"
	"clubhouse/internal/middleware"
	"clubhouse/internal/models"
	"clubhouse/internal/policy"
	"clubhouse/internal/repository"
	"clubhouse/internal/service"
	"clubhouse/internal/session"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/multierr"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	promMiddleware *fiberprometheus.FiberPrometheus
	sessions       *session.Manager
	authService    *service.AuthService
	userService    *service.UserService
	clubService    *service.ClubService
	requestService *service.ClubRequestService
	eventService   *service.EventService
}

// NewServer connects the runtime described by cfg and builds a Server on top of it.
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	db, redisClient, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{
		Seed:     cfg.SeedOnStart,
		SeedFile: cfg.SeedFile,
	})
	if err != nil {
		return nil, err
	}
	return NewServerWithDeps(cfg, db, redisClient), nil
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Tests use it with SQLite and miniredis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *Server {
	userRepo := repository.NewUserRepository(db)
	clubRepo := repository.NewClubRepository(db)
	eventRepo := repository.NewEventRepository(db)
	requestRepo := repository.NewClubRequestRepository(db)

	sessions := session.NewManager(cfg.JWTSecret, cfg.SessionTTL(), redisClient)
	requests := service.NewClubRequestService(requestRepo)

	return &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("clubhouse-api"),
		sessions:       sessions,
		authService:    service.NewAuthService(userRepo, sessions),
		userService:    service.NewUserService(userRepo),
		clubService:    service.NewClubService(clubRepo, requests),
		requestService: requests,
		eventService:   service.NewEventService(eventRepo, clubRepo),
	}
}

// NewApp returns a Fiber app with the standard error handler, middleware and routes.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Clubhouse API",
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: errorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// errorHandler renders errors that escape handlers, including Fiber's own
// 404 and 405 errors, in the API error shape.
func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code := models.CodeInternal
		switch fe.Code {
		case fiber.StatusNotFound:
			code = models.CodeNotFound
		case fiber.StatusBadRequest, fiber.StatusMethodNotAllowed, fiber.StatusRequestEntityTooLarge:
			code = models.CodeValidation
		}
		return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message, Code: code})
	}
	return models.RespondWithAppError(c, err)
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected requests still carry CORS headers.
	origins := s.config.Origins()
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173", "http://localhost:3000"}
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(origins, ","),
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return s.config.RateLimitDisabled || c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
				Error: "Too many requests, please try again later.",
				Code:  "RATE_LIMITED",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api")
	api.Get("/swagger/*", swagger.HandlerDefault)

	auth := api.Group("/auth")
	auth.Post("/register", s.routeLimit(5, 10*time.Minute, "register"), s.Register)
	auth.Post("/login", s.routeLimit(10, 5*time.Minute, "login"), s.Login)
	auth.Post("/logout", s.AuthRequired(), s.Logout)
	auth.Get("/me", s.AuthRequired(), s.Me)
	auth.Put("/password", s.AuthRequired(), s.ChangePassword)

	// Browsing is public.
	api.Get("/clubs", s.ListClubs)
	api.Get("/clubs/:id", s.GetClub)
	api.Get("/events/:id", s.GetEvent)

	clubs := api.Group("/clubs", s.AuthRequired())
	clubs.Post("/", s.CreateClub)
	clubs.Post("/:id/join", s.JoinClub)
	clubs.Post("/:id/leave", s.LeaveClub)
	clubs.Post("/:id/events", s.RequireAction(policy.ActionCreateEvent), s.CreateEvent)
	clubs.Put("/:id", s.RequireAction(policy.ActionUpdateClub), s.UpdateClub)
	clubs.Delete("/:id", s.RequireAction(policy.ActionDeleteClub), s.DeleteClub)

	requests := api.Group("/club-requests", s.AuthRequired())
	requests.Get("/me", s.ListMyClubRequests)

	// Services repeat the policy check; the route check keeps 403 ahead of input errors.
	admin := api.Group("/admin", s.AuthRequired())
	admin.Get("/club-requests", s.RequireAction(policy.ActionListClubRequests), s.ListPendingClubRequests)
	admin.Post("/club-requests/:id/:action", s.RequireAction(policy.ActionResolveClubRequest), s.ResolveClubRequest)
	admin.Get("/users", s.RequireAction(policy.ActionViewUsers), s.ListUsers)
	admin.Post("/users/:id/role", s.RequireAction(policy.ActionManageUsers), s.SetUserRole)
}

// routeLimit applies a Redis-backed per-route limit unless RATE_LIMIT_DISABLED is set.
func (s *Server) routeLimit(limit int, window time.Duration, name string) fiber.Handler {
	if s.config.RateLimitDisabled {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return middleware.RateLimit(s.redis, limit, window, name)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck reports database and Redis health. Redis is optional, so
// only the database decides readiness.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if err := database.Ping(ctx, s.db); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "unavailable"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overall := "healthy"
	if dbStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overall = "unhealthy"
	} else if redisStatus != "healthy" {
		overall = "degraded"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Shutdown releases the database and Redis connections.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs error
	if s.redis != nil {
		errs = multierr.Append(errs, s.redis.Close())
	}
	if s.db != nil {
		if sqlDB, err := s.db.DB(); err == nil {
			errs = multierr.Append(errs, sqlDB.Close())
		} else {
			errs = multierr.Append(errs, err)
		}
	}
	middleware.Logger.InfoContext(ctx, "server resources released")
	return errs
}
