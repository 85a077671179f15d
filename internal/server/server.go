// Package server contains the HTTP handlers and routing for the admin API.
package server

import (
	"context"
	"fmt"
	"strings"
	"time"

	"wtero/internal/config"
	"wtero/internal/database"
	"wtero/internal/middleware"
	"wtero/internal/models"
	"wtero/internal/repository"
	"wtero/internal/seed"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	promMiddleware *fiberprometheus.FiberPrometheus
	userRepo       repository.UserRepository
	reviewRepo     repository.ReviewRepository
	productRepo    repository.ProductRepository
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	if err := seed.EnsureDefaultAdmin(db, cfg); err != nil {
		return nil, err
	}

	return NewServerWithDeps(cfg, db)
}

// NewServerWithDeps creates a Server using an already-initialized database
// handle. Use this in tests or when a bootstrap layer establishes the DB
// and optionally performs explicit seeding.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB) (*Server, error) {
	return &Server{
		config:         cfg,
		db:             db,
		promMiddleware: middleware.InitMetrics("wtero-admin"),
		userRepo:       repository.NewUserRepository(db),
		reviewRepo:     repository.NewReviewRepository(db),
		productRepo:    repository.NewProductRepository(db),
	}, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Propagate request ID and username into the request context for logging
	app.Use(middleware.ContextMiddleware())

	// Prometheus metrics
	if s.promMiddleware != nil {
		middleware.RegisterMetrics(app, s.promMiddleware)
	}

	// Security headers
	app.Use(helmet.New())

	// Structured request logging (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	app.Use(cors.New(cors.Config{
		AllowOrigins: s.config.AllowedOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))
}

// SetupRoutes registers all API routes.
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/", s.Root)
	app.Get("/health", s.HealthCheck)
	app.Get("/stats", s.Stats)

	auth := app.Group("/auth")
	auth.Post("/login", s.Login)
	auth.Get("/me", s.AuthRequired(), s.Me)

	// User management is admin-only; review/product mutations deliberately
	// require only a valid identity.
	users := app.Group("/users", s.AuthRequired(), s.AdminRequired())
	users.Post("/add", s.AddUser)
	users.Get("/", s.ListUsers)
	users.Delete("/:username", s.DeleteUser)

	reviews := app.Group("/reviews", s.AuthRequired())
	reviews.Post("/", s.CreateReview)
	reviews.Post("/json", s.CreateReviewJSON)
	reviews.Get("/", s.ListReviews)
	reviews.Get("/:id", s.GetReview)
	reviews.Put("/:id", s.UpdateReview)
	reviews.Put("/:id/json", s.UpdateReviewJSON)
	reviews.Delete("/:id", s.DeleteReview)

	products := app.Group("/products", s.AuthRequired())
	products.Post("/", s.CreateProduct)
	products.Post("/json", s.CreateProductJSON)
	products.Get("/", s.ListProducts)
	products.Get("/:id", s.GetProduct)
	products.Put("/:id", s.UpdateProduct)
	products.Put("/:id/json", s.UpdateProductJSON)
	products.Delete("/:id", s.DeleteProduct)
}

// Root handles GET / with a short service banner.
func (s *Server) Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"msg": "Wtero Admin API",
	})
}

// HealthCheck handles GET /health and reports database reachability.
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	dbStatus := "ok"
	status := fiber.StatusOK

	sqlDB, err := s.db.DB()
	if err != nil || sqlDB.PingContext(c.Context()) != nil {
		dbStatus = "unreachable"
		status = fiber.StatusServiceUnavailable
	}

	return c.Status(status).JSON(fiber.Map{
		"status": dbStatus,
		"time":   time.Now(),
	})
}

// Stats handles GET /stats with per-collection document counts.
func (s *Server) Stats(c *fiber.Ctx) error {
	ctx := c.Context()

	userCount, err := s.userRepo.Count(ctx)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	reviewCount, err := s.reviewRepo.Count(ctx)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	productCount, err := s.productRepo.Count(ctx)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(fiber.Map{
		"users":    userCount,
		"reviews":  reviewCount,
		"products": productCount,
	})
}

// AuthRequired returns middleware that validates the bearer token and
// stores the caller's username and role in locals. Signature failure,
// malformed tokens and expiry all map to the same 401.
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
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
			}
			return []byte(s.config.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired token"))
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token claims"))
		}

		username, ok := claims["sub"].(string)
		if !ok || username == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token structure - missing subject"))
		}

		role, ok := claims["role"].(string)
		if !ok || role == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token structure - missing role"))
		}

		c.Locals("username", username)
		c.Locals("role", role)

		// Sync to UserContext for logging in downstream layers
		ctx := context.WithValue(c.UserContext(), middleware.UsernameKey, username)
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// AdminRequired returns middleware that rejects non-admin callers with 403.
// Must be placed after AuthRequired so that role is available in locals.
// The role comes from the validated token; no storage lookup happens here.
func (s *Server) AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals("role").(string)
		if role != models.RoleAdmin {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Only admin allowed"))
		}
		return c.Next()
	}
}

// Shutdown releases server resources.
func (s *Server) Shutdown(ctx context.Context) error {
	return database.Close(s.db)
}
