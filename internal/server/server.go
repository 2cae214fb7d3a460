// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"soundbite/internal/cache"
	"soundbite/internal/config"
	"soundbite/internal/database"
	"soundbite/internal/events"
	"soundbite/internal/fanout"
	"soundbite/internal/middleware"
	"soundbite/internal/models"
	"soundbite/internal/notifications"
	"soundbite/internal/repository"
	"soundbite/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc

	userRepo         repository.UserRepository
	snippetRepo      repository.SnippetRepository
	commentRepo      repository.CommentRepository
	engagementRepo   repository.EngagementRepository
	counterRepo      repository.CounterRepository
	notificationRepo repository.NotificationRepository

	notifier *events.Notifier
	hub      *notifications.Hub
	reactor  *fanout.Reactor

	snippetService      *service.SnippetService
	engagementService   *service.EngagementService
	commentService      *service.CommentService
	notificationService *service.NotificationService
	userService         *service.UserService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	return NewServerWithDeps(cfg, db, cache.GetClient())
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	server := &Server{
		config:           cfg,
		db:               db,
		redis:            redisClient,
		promMiddleware:   middleware.InitMetrics("soundbite-api"),
		userRepo:         repository.NewUserRepository(db),
		snippetRepo:      repository.NewSnippetRepository(db),
		commentRepo:      repository.NewCommentRepository(db),
		engagementRepo:   repository.NewEngagementRepository(db),
		counterRepo:      repository.NewCounterRepository(db),
		notificationRepo: repository.NewNotificationRepository(db),
	}

	server.notifier = events.NewNotifier(redisClient)
	server.snippetService = service.NewSnippetService(server.snippetRepo, server.commentRepo, server.notifier)
	server.engagementService = service.NewEngagementService(server.snippetRepo, server.engagementRepo, server.counterRepo, server.notifier)
	server.commentService = service.NewCommentService(server.commentRepo, server.snippetRepo, server.counterRepo, server.notifier)
	server.notificationService = service.NewNotificationService(server.notificationRepo)
	server.userService = service.NewUserService(server.userRepo, server.notifier)

	if redisClient != nil {
		server.hub = notifications.NewHub()
		server.reactor = fanout.NewReactor(server.snippetRepo, server.notificationRepo, server.notifier)
	}

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Tracing runs before the context middleware so the trace ID local is
	// picked up into the request context for the logger.
	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}

	// Context middleware to propagate request ID and user handle
	app.Use(middleware.ContextMiddleware())

	// Prometheus metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured logging (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS must run before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests; they should be handled by CORS.
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Soundbite Backend Metrics Dashboard",
	}))

	// Public snippet routes (browse)
	publicSnippets := api.Group("/snippets")
	publicSnippets.Get("/", s.GetFeed)
	publicSnippets.Post("/:id/play/anonymous", middleware.RateLimit(
		s.redis, 60, time.Minute, "anonymous_play"), s.PlaySnippetAnonymous)
	publicSnippets.Get("/:id", s.GetSnippet)

	// Public user profile and snippet listing
	api.Get("/users/:handle/snippets", s.GetUserSnippets)
	api.Get("/users/:handle", s.GetUserProfile)

	// Protected routes
	protected := api.Group("", s.AuthRequired())

	users := protected.Group("/users")
	users.Get("/me", s.GetMyProfile)
	users.Put("/me", s.UpdateMyProfile)

	snippets := protected.Group("/snippets")
	snippets.Post("/", middleware.RateLimit(
		s.redis, 5, 5*time.Minute, "create_snippet"), s.CreateSnippet)
	// Define specific /:id/:resource routes BEFORE generic /:id route
	snippets.Post("/:id/like", s.LikeSnippet)
	snippets.Delete("/:id/like", s.UnlikeSnippet)
	snippets.Post("/:id/play", s.PlaySnippet)
	snippets.Post("/:id/comments", middleware.RateLimit(
		s.redis, 10, time.Minute, "create_comment"), s.CreateComment)
	snippets.Delete("/:id", s.DeleteSnippet)

	notificationRoutes := protected.Group("/notifications")
	notificationRoutes.Get("/", s.GetNotifications)
	notificationRoutes.Post("/read", s.MarkNotificationsRead)

	// Websocket endpoint for realtime notification delivery
	ws := api.Group("/ws", s.AuthRequired())
	ws.Get("/notifications", s.WebsocketHandler())
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		// Redis carries change-capture and realtime push, so it is required
		// for full readiness.
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" || redisStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// AuthRequired returns the authentication middleware. The verified identity
// carries the user's handle in the subject claim; the profile image travels
// in the "img" claim so handlers can denormalize it without a lookup.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		tokenString := ""
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}
		if tokenString == "" {
			tokenString = c.Query("token")
		}
		if tokenString == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewForbiddenError("Authorization required"))
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
			}
			return []byte(s.config.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewForbiddenError("Invalid or expired token"))
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewForbiddenError("Invalid token claims"))
		}

		if issuer, issuerOk := claims["iss"].(string); !issuerOk || issuer != "soundbite-api" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewForbiddenError("Invalid token issuer"))
		}
		if audience, audienceOk := claims["aud"].(string); !audienceOk || audience != "soundbite-client" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewForbiddenError("Invalid token audience"))
		}

		handle, ok := claims["sub"].(string)
		if !ok || handle == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewForbiddenError("Invalid subject claim"))
		}

		imageURL, _ := claims["img"].(string)

		c.Locals("handle", handle)
		c.Locals("imageURL", imageURL)
		// Sync to UserContext for logging and downstream services
		ctx := context.WithValue(c.UserContext(), middleware.HandleKey, handle)
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// Start starts the server
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	app := fiber.New(fiber.Config{
		AppName: "Soundbite API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewStoreError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	// Wire the reactor and hub to the Redis subscribers if available
	if s.reactor != nil {
		go func() {
			if err := s.reactor.StartWiring(s.shutdownCtx, s.notifier); err != nil {
				log.Printf("failed to start %s wiring: %v", s.reactor.Name(), err)
			}
		}()
	}
	if s.hub != nil {
		go func() {
			if err := s.hub.StartWiring(s.shutdownCtx, s.notifier); err != nil {
				log.Printf("failed to start %s wiring: %v", s.hub.Name(), err)
			}
		}()
	}

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	// Cancel the server-scoped context to stop all wiring goroutines
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	if s.hub != nil {
		if err := s.hub.Shutdown(ctx); err != nil {
			log.Printf("error shutting down %s: %v", s.hub.Name(), err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("error closing sql DB: %v", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
