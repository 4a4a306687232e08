package router

import (
	"context"
	"fmt"
	"time"

	"github.com/anonto42/inkwell/backend/internal/handlers"
	"github.com/anonto42/inkwell/backend/internal/middleware"
	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/anonto42/inkwell/backend/internal/repositories"
	"github.com/anonto42/inkwell/backend/internal/services"
	"github.com/anonto42/inkwell/backend/pkg/config"
	"github.com/anonto42/inkwell/backend/pkg/logger"
	"github.com/anonto42/inkwell/backend/validators"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// Dependencies are the process-wide resources routes are built from.
type Dependencies struct {
	Config *config.Config
	DB     *config.DB
	// Firebase is nil when no credentials are configured.
	Firebase middleware.IDTokenVerifier
}

// Server is the configured Echo instance plus the background workers that
// must be drained on shutdown.
type Server struct {
	Echo       *echo.Echo
	Dispatcher *services.Dispatcher
	Publisher  *services.PostPublisher
}

// New migrates the user table, ensures Mongo indexes and wires every route.
func New(ctx context.Context, deps Dependencies) (*Server, error) {
	cfg := deps.Config

	if err := deps.DB.Postgres.WithContext(ctx).AutoMigrate(&models.User{}); err != nil {
		return nil, fmt.Errorf("auto migrate users: %w", err)
	}
	logger.Info("PostgreSQL auto-migrations completed")

	mdb := deps.DB.Mongo.Database(cfg.MongoDB)
	if err := repositories.EnsureIndexes(ctx, mdb); err != nil {
		return nil, err
	}
	logger.Info("MongoDB indexes ensured", zap.String("database", cfg.MongoDB))

	e := echo.New()
	e.HideBanner = true
	e.Validator = validators.NewValidator()
	e.HTTPErrorHandler = handlers.ErrorHandler
	SetupMiddleware(e)

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(deps.DB.Postgres)
	directory := repositories.NewUserDirectory(userRepo, deps.DB.Redis, cfg.ProfileCacheTTL)
	postRepo := repositories.NewMongoPostRepository(mdb)
	commentRepo := repositories.NewMongoCommentRepository(mdb)
	likeRepo := repositories.NewMongoLikeRepository(mdb)
	followRepo := repositories.NewMongoFollowRepository(mdb)
	bookmarkRepo := repositories.NewMongoBookmarkRepository(mdb)
	notificationRepo := repositories.NewMongoNotificationRepository(mdb)

	// --- Services ---
	dispatcher := services.NewDispatcher(notificationRepo, directory, services.DispatcherConfig{
		Workers:   cfg.NotifyWorkers,
		QueueSize: cfg.NotifyQueueSize,
		MaxTries:  cfg.NotifyMaxRetries,
		Timeout:   cfg.NotifyTimeout,
	})
	targets := services.NewTargetRegistry(postRepo, commentRepo)

	postService := services.NewPostService(postRepo, directory)
	publisher := services.NewPostPublisher(postRepo, cfg.PublishInterval)
	likeService := services.NewLikeService(likeRepo, targets, dispatcher)
	commentService := services.NewCommentService(postRepo, commentRepo, directory, dispatcher, cfg.MaxNestingDepth)
	followService := services.NewFollowService(followRepo, directory, dispatcher)
	bookmarkService := services.NewBookmarkService(bookmarkRepo, postRepo)
	notificationService := services.NewNotificationService(notificationRepo, directory)

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck(dispatcher))

	parsers := []middleware.TokenParser{middleware.JWTParser(cfg.JWTSecret)}
	if deps.Firebase != nil {
		parsers = append(parsers, middleware.FirebaseParser(deps.Firebase, userRepo))
		logger.Info("Firebase ID tokens accepted on /api/v1")
	}

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/v1/auth", middleware.RateLimit(deps.DB.Redis, "rl:auth", 5, 15*time.Minute))
	handlers.NewAuthHandler(userRepo, deps.Firebase, cfg.JWTSecret).RegisterAuthRoutes(authGroup)

	// --- API routes: anonymous reads allowed, writes need a user ---
	api := e.Group("/api/v1",
		middleware.RateLimit(deps.DB.Redis, "rl:api", cfg.RateLimit, cfg.RateWindow),
		middleware.Authenticate(parsers...),
	)
	requireUser := middleware.RequireUser

	handlers.NewUserHandler(userRepo, directory).RegisterProfileRoutes(api, requireUser)
	handlers.NewPostHandler(postService).RegisterPostRoutes(api, requireUser)
	handlers.NewLikeHandler(likeService).RegisterLikeRoutes(api, requireUser)
	handlers.NewCommentHandler(commentService).RegisterCommentRoutes(api, requireUser)
	handlers.NewFollowHandler(followService).RegisterFollowRoutes(api, requireUser)
	handlers.NewBookmarkHandler(bookmarkService).RegisterBookmarkRoutes(api, requireUser)
	handlers.NewNotificationHandler(notificationService).RegisterNotificationRoutes(api, requireUser)

	logger.Info("all routes configured", zap.Int("routes", len(e.Routes())))
	return &Server{Echo: e, Dispatcher: dispatcher, Publisher: publisher}, nil
}

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.RequestIDWithConfig(eMiddleware.RequestIDConfig{
		Generator: func() string { return uuid.NewString() },
	}))
	e.Use(eMiddleware.RequestLoggerWithConfig(eMiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v eMiddleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("remote_ip", v.RemoteIP),
				zap.String("request_id", v.RequestID),
			}
			if v.Error != nil {
				logger.Warn("request", append(fields, zap.Error(v.Error))...)
				return nil
			}
			logger.Info("request", fields...)
			return nil
		},
	}))
	e.Use(eMiddleware.CORS())
}
