// Package server contains the HTTP handlers and routing for the web app.
package server

import (
	"context"
	"fmt"
	"log"
	"time"

	"zenith/internal/cache"
	"zenith/internal/config"
	"zenith/internal/database"
	"zenith/internal/lore"
	"zenith/internal/mailer"
	"zenith/internal/middleware"
	"zenith/internal/models"
	"zenith/internal/repository"
	"zenith/internal/service"
	"zenith/internal/session"
	"zenith/internal/storage"
	"zenith/internal/view"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
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
	sessions       *session.Manager
	media          *storage.MediaStore
	lore           *lore.Dataset

	userRepo     repository.UserRepository
	postRepo     repository.PostRepository
	categoryRepo repository.CategoryRepository
	commentRepo  repository.CommentRepository

	authService         *service.AuthService
	registrationService *service.RegistrationService
	postService         *service.PostService
	interactionService  *service.InteractionService
	profileService      *service.ProfileService
	themeService        *service.ThemeService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	if err := database.EnsureDefaultCategories(db); err != nil {
		return nil, fmt.Errorf("default categories: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	redisClient := cache.GetClient()

	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis and
// optionally performs explicit seeding.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	media, err := storage.NewMediaStore(cfg.MediaDir)
	if err != nil {
		return nil, fmt.Errorf("media store: %w", err)
	}

	loreData, err := lore.Load()
	if err != nil {
		return nil, fmt.Errorf("lore dataset: %w", err)
	}

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	prom := middleware.InitMetrics("zenith-web")

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: prom,
		sessions:       session.NewManager(redisClient),
		media:          media,
		lore:           loreData,
		userRepo:       userRepo,
		postRepo:       postRepo,
		categoryRepo:   categoryRepo,
		commentRepo:    commentRepo,
	}

	mail := mailer.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom)
	server.authService = service.NewAuthService(userRepo)
	server.registrationService = service.NewRegistrationService(userRepo, mail, cfg.Debug)
	server.postService = service.NewPostService(postRepo, categoryRepo, media)
	server.interactionService = service.NewInteractionService(postRepo, commentRepo)
	server.profileService = service.NewProfileService(userRepo, media)
	server.themeService = service.NewThemeService(userRepo)

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context Middleware to propagate Request ID and User ID
	app.Use(middleware.ContextMiddleware())

	// Request spans (no-op tracer unless tracing is enabled)
	app.Use(middleware.TracingMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:8458,http://127.0.0.1:8458"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Session resolution must run before handlers and theme resolution
	app.Use(s.sessions.Middleware())
	app.Use(s.ThemeMiddleware())

	// Global rate limiting (120 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"status":  "error",
				"message": "Muitas requisições. Tente novamente em instantes.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	// Uploaded media
	app.Static("/media", s.media.Root())

	// Public pages
	app.Get("/", s.HomePage)
	app.Get("/noticias/", s.DevlogList)

	// Game pages
	app.Get("/chama_espiral/", s.ChamaEspiralPage)
	app.Get("/chama-espiral/lore/", s.LorePortal)
	app.Get("/chama-espiral/lore/:id/", s.LorePortal)
	app.Get("/games/lilith/", s.LilithPage)

	// Registration (two steps)
	app.Get("/cadastro/", s.RegisterStep1Page)
	app.Post("/cadastro/", middleware.RateLimit(
		s.redis, 5, 10*time.Minute, "signup"), s.RegisterStep1Submit)
	app.Get("/cadastro/etapa2/", s.RegisterStep2Page)
	app.Post("/cadastro/etapa2/", middleware.RateLimit(
		s.redis, 5, 10*time.Minute, "signup"), s.RegisterStep2Submit)

	// Auth
	app.Get("/login/", s.LoginPage)
	app.Post("/login/", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.LoginSubmit)
	app.Get("/logout/", s.Logout)
	app.Post("/logout/", s.Logout)

	// Theme
	app.Post("/toggle-theme/", s.ToggleTheme)

	// Profiles
	app.Get("/profile/", s.LoginRequired(), s.OwnProfilePage)
	app.Get("/profile/edit/", s.LoginRequired(), s.ProfileEditPage)
	app.Post("/profile/update/", s.LoginRequired(), s.ProfileEditSubmit)
	app.Get("/profile/:username/", s.ProfilePage)

	// Post authoring. Per-route guards, since the listing shares the
	// /noticias/ prefix and must stay public. Static segments are
	// registered before the slug wildcard so routing stays unambiguous.
	app.Get("/noticias/gerenciar/", s.LoginRequired(), s.StaffRequired(), s.DevlogDashboard)
	app.Get("/noticias/criar/", s.LoginRequired(), s.StaffRequired(), s.DevlogCreatePage)
	app.Post("/noticias/criar/", s.LoginRequired(), s.StaffRequired(), s.DevlogCreateSubmit)
	app.Get("/noticias/editar/:slug/", s.LoginRequired(), s.StaffRequired(), s.DevlogEditPage)
	app.Post("/noticias/editar/:slug/", s.LoginRequired(), s.StaffRequired(), s.DevlogEditSubmit)
	app.Post("/noticias/excluir/:slug/", s.LoginRequired(), s.StaffRequired(), s.DevlogDelete)
	app.Post("/noticias/:slug/comentar/", s.LoginRequired(), middleware.RateLimit(
		s.redis, 10, time.Minute, "create_comment"), s.AddComment)
	app.Get("/noticias/:slug/", s.DevlogDetail)

	// JSON API
	api := app.Group("/api")
	api.Get("/post/:id/comments/", s.ListCommentsAPI)
	api.Get("/post/:id/share/", s.SharePostAPI)

	apiAuth := api.Group("", s.LoginRequired())
	apiAuth.Post("/post/:id/like/", s.ToggleLikeAPI)
	apiAuth.Post("/post/:id/publish/", s.StaffRequired(), s.PublishPostAPI)
	apiAuth.Post("/post/:id/archive/", s.StaffRequired(), s.ArchivePostAPI)
	apiAuth.Post("/comment/:id/approve/", s.StaffRequired(), s.ApproveCommentAPI)
	apiAuth.Post("/comment/:id/delete/", s.DeleteCommentAPI)
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
		// Sessions live in Redis, so readiness requires it
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" || redisStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status":  overallStatus,
		"version": "1.0.0",
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Start starts the server
func (s *Server) Start() error {
	views, err := view.NewEngine()
	if err != nil {
		return err
	}

	app := fiber.New(fiber.Config{
		AppName: "ZenithPixels",
		Views:   views,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
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
