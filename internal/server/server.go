// Package server contains the HTTP handlers and routing for the blog.
package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"blogicum/internal/cache"
	"blogicum/internal/config"
	"blogicum/internal/database"
	"blogicum/internal/featureflags"
	"blogicum/internal/middleware"
	"blogicum/internal/models"
	"blogicum/internal/repository"
	"blogicum/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	commentRateLimit  = 10
	commentRateWindow = time.Minute
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	auth           *middleware.Authenticator
	rateLimiter    *middleware.RateLimiter
	featureFlags   *featureflags.Manager
	userRepo       repository.UserRepository
	postRepo       repository.PostRepository
	commentRepo    repository.CommentRepository
	categoryRepo   repository.CategoryRepository
	locationRepo   repository.LocationRepository
	postService    *service.PostService
	commentService *service.CommentService
	userService    *service.UserService
}

// NewServer connects to the database and Redis described by cfg and
// builds a server on top of them.
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	return NewServerWithDeps(cfg, db, cache.InitRedis(cfg.RedisURL))
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil; caching, comment throttling and token revocation
// are then disabled.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if db == nil {
		return nil, errors.New("database is required")
	}
	if redisClient != nil {
		cache.SetClient(redisClient)
	}

	s := &Server{
		config:       cfg,
		db:           db,
		redis:        redisClient,
		auth:         middleware.NewAuthenticator(cfg.JWTSecret, redisClient, cfg.LoginURL),
		rateLimiter:  middleware.NewRateLimiter(redisClient, cfg.Env),
		featureFlags: featureflags.NewManager(cfg.FeatureFlags),
		userRepo:     repository.NewUserRepository(db),
		postRepo:     repository.NewPostRepository(db),
		commentRepo:  repository.NewCommentRepository(db),
		categoryRepo: repository.NewCategoryRepository(db),
		locationRepo: repository.NewLocationRepository(db),
	}

	s.postService = service.NewPostService(s.postRepo, s.commentRepo, s.categoryRepo, s.locationRepo, s.userRepo, s.featureFlags)
	s.commentService = service.NewCommentService(s.commentRepo, s.postRepo)
	s.userService = service.NewUserService(s.userRepo)

	return s, nil
}

// Authenticator exposes token handling to tooling such as the seeder.
func (s *Server) Authenticator() *middleware.Authenticator {
	return s.auth
}

// App builds the Fiber application with middleware and routes installed.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Blogicum",
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: errorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code := models.CodeInternal
		if fe.Code == fiber.StatusNotFound {
			code = models.CodeNotFound
		}
		return models.RespondWithError(c, fe.Code, &models.AppError{Code: code, Message: fe.Message})
	}
	middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", "error", err)
	return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())

	// The requester must be known before the context and logging middleware run.
	app.Use(s.auth.Optional())
	app.Use(middleware.ContextMiddleware())

	middleware.MountMetrics(app)

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	app.Use(cors.New(cors.Config{
		AllowOrigins:     s.config.AllowedOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: s.config.AllowedOrigins != "*",
		MaxAge:           86400,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions || s.config.Env == "test"
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

// SetupRoutes configures all routes for the application. Routing is not
// strict, so every path also answers with a trailing slash.
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	login := s.auth.LoginRequired()
	postOwner := s.OwnerRequired("post", s.loadPost)
	commentOwner := s.OwnerRequired("comment", s.loadComment)

	app.Get("/", s.Index)
	app.Get("/category/:slug", s.CategoryPosts)

	app.Get("/profile/:username/edit", login, s.EditProfileForm)
	app.Post("/profile/:username/edit", login, s.EditProfile)
	app.Get("/profile/:username", s.Profile)

	posts := app.Group("/posts")
	// /create must be registered before /:id.
	posts.Get("/create", login, s.CreatePostForm)
	posts.Post("/create", login, s.CreatePost)
	posts.Get("/:id", s.PostDetail)
	posts.Get("/:id/edit", login, postOwner, s.EditPostForm)
	posts.Post("/:id/edit", login, postOwner, s.EditPost)
	posts.Get("/:id/delete", login, postOwner, s.DeletePostForm)
	posts.Post("/:id/delete", login, postOwner, s.DeletePost)

	posts.Post("/:id/comment", login,
		s.rateLimiter.Middleware("add_comment", commentRateLimit, commentRateWindow, middleware.FailOpen),
		s.AddComment)
	posts.Get("/:id/edit_comment/:comment_id", login, commentOwner, s.EditCommentForm)
	posts.Post("/:id/edit_comment/:comment_id", login, commentOwner, s.EditComment)
	posts.Get("/:id/delete_comment/:comment_id", login, commentOwner, s.DeleteCommentForm)
	posts.Post("/:id/delete_comment/:comment_id", login, commentOwner, s.DeleteComment)
}

// LivenessCheck handles liveness requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now().UTC(),
	})
}

// ReadinessCheck reports whether the database and, when configured, Redis answer.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if err := database.Ping(ctx, s.db); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "disabled"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status, code := "healthy", fiber.StatusOK
	if dbStatus == "unhealthy" || redisStatus == "unhealthy" {
		status, code = "unhealthy", fiber.StatusServiceUnavailable
	}

	return c.Status(code).JSON(fiber.Map{
		"status": status,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
	})
}

// Shutdown releases the store connections.
func (s *Server) Shutdown(_ context.Context) error {
	var errs []error
	if s.redis != nil {
		errs = append(errs, s.redis.Close())
	}
	if sqlDB, err := s.db.DB(); err == nil {
		errs = append(errs, sqlDB.Close())
	} else {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
