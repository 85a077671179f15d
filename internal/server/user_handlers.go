package server

import (
	"wtero/internal/middleware"
	"wtero/internal/models"
	"wtero/internal/validation"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

// AddUser handles POST /users/add (admin only).
func (s *Server) AddUser(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if req.Role == "" {
		req.Role = models.RoleUser
	}

	if err := validation.ValidateUsername(req.Username); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}
	if !models.ValidRole(req.Role) {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Role must be 'user' or 'admin'"))
	}

	// Friendly pre-check; the unique index on username is the real guard.
	existing, err := s.userRepo.GetByUsername(c.Context(), req.Username)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if existing != nil {
		return models.RespondWithError(c, fiber.StatusConflict,
			models.NewConflictError("User already exists"))
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	user := &models.User{
		Username: req.Username,
		Password: string(hashed),
		Role:     req.Role,
	}
	if createErr := s.userRepo.Create(c.Context(), user); createErr != nil {
		return models.RespondWithError(c, statusForError(createErr), createErr)
	}

	middleware.DocumentWrites.WithLabelValues("users", "create").Inc()

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"msg": "User created successfully",
	})
}

// ListUsers handles GET /users (admin only). The password hash never
// serializes; ordering is newest-first.
func (s *Server) ListUsers(c *fiber.Ctx) error {
	page := parsePagination(c)

	users, err := s.userRepo.List(c.Context(), page.Limit, page.Skip)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(users)
}

// DeleteUser handles DELETE /users/:username (admin only). The seeded
// default admin account is protected.
func (s *Server) DeleteUser(c *fiber.Ctx) error {
	username := c.Params("username")

	if username == s.config.AdminUsername {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewProtectedError("Cannot delete default admin"))
	}

	if err := s.userRepo.DeleteByUsername(c.Context(), username); err != nil {
		return models.RespondWithError(c, statusForError(err), err)
	}

	middleware.DocumentWrites.WithLabelValues("users", "delete").Inc()

	return c.JSON(fiber.Map{
		"msg": "User deleted",
	})
}
