package server

import (
	"strconv"
	"time"

	"wtero/internal/middleware"
	"wtero/internal/models"
	"wtero/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// ReviewIn is the JSON create payload for reviews.
type ReviewIn struct {
	Name    string `json:"name" validate:"required"`
	Company string `json:"company" validate:"required"`
	Role    string `json:"role" validate:"required"`
	Rating  int    `json:"rating" validate:"required"`
	Text    string `json:"text" validate:"required"`
	Avatar  string `json:"avatar"`
}

// CreateReview handles POST /reviews (multipart form, the admin UI path).
func (s *Server) CreateReview(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Expected multipart form data"))
	}

	name, _ := formValue(form, "name")
	company, _ := formValue(form, "company")
	role, _ := formValue(form, "role")
	ratingRaw, _ := formValue(form, "rating")
	text, _ := formValue(form, "text")

	if name == "" || company == "" || role == "" || ratingRaw == "" || text == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Fields name, company, role, rating and text are required"))
	}

	rating, err := strconv.Atoi(ratingRaw)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Rating must be an integer"))
	}

	review := &models.Review{
		Name:      name,
		Company:   company,
		Role:      role,
		Rating:    validation.ClampRating(rating),
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}

	if avatar := formFile(form, "avatar"); avatar != nil {
		encoded, encErr := fileToBase64(avatar)
		if encErr != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Unable to read uploaded file"))
		}
		review.Avatar = encoded
	}

	if createErr := s.reviewRepo.Create(c.Context(), review); createErr != nil {
		return models.RespondWithError(c, statusForError(createErr), createErr)
	}

	middleware.DocumentWrites.WithLabelValues("reviews", "create").Inc()

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id": review.ID,
	})
}

// CreateReviewJSON handles POST /reviews/json.
func (s *Server) CreateReviewJSON(c *fiber.Ctx) error {
	var req ReviewIn
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if err := validation.Payloads.Struct(req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}

	review := &models.Review{
		Name:      req.Name,
		Company:   req.Company,
		Role:      req.Role,
		Rating:    validation.ClampRating(req.Rating),
		Text:      req.Text,
		Avatar:    req.Avatar,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.reviewRepo.Create(c.Context(), review); err != nil {
		return models.RespondWithError(c, statusForError(err), err)
	}

	middleware.DocumentWrites.WithLabelValues("reviews", "create").Inc()

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id": review.ID,
	})
}

// ListReviews handles GET /reviews, newest-first.
func (s *Server) ListReviews(c *fiber.Ctx) error {
	page := parsePagination(c)

	reviews, err := s.reviewRepo.List(c.Context(), page.Limit, page.Skip)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(reviews)
}

// GetReview handles GET /reviews/:id.
func (s *Server) GetReview(c *fiber.Ctx) error {
	id, err := s.parseDocumentID(c)
	if err != nil {
		return nil
	}

	review, err := s.reviewRepo.GetByID(c.Context(), id)
	if err != nil {
		return models.RespondWithError(c, statusForError(err), err)
	}

	return c.JSON(review)
}

// UpdateReview handles PUT /reviews/:id (multipart form, partial).
// Only supplied fields change; omitted ones keep their values.
func (s *Server) UpdateReview(c *fiber.Ctx) error {
	id, err := s.parseDocumentID(c)
	if err != nil {
		return nil
	}

	form, err := c.MultipartForm()
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Expected multipart form data"))
	}

	var update models.ReviewUpdate
	if v, ok := formValue(form, "name"); ok {
		update.Name = &v
	}
	if v, ok := formValue(form, "company"); ok {
		update.Company = &v
	}
	if v, ok := formValue(form, "role"); ok {
		update.Role = &v
	}
	if v, ok := formValue(form, "rating"); ok {
		rating, convErr := strconv.Atoi(v)
		if convErr != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Rating must be an integer"))
		}
		rating = validation.ClampRating(rating)
		update.Rating = &rating
	}
	if v, ok := formValue(form, "text"); ok {
		update.Text = &v
	}
	if avatar := formFile(form, "avatar"); avatar != nil {
		encoded, encErr := fileToBase64(avatar)
		if encErr != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Unable to read uploaded file"))
		}
		update.Avatar = &encoded
	}

	return s.applyReviewUpdate(c, id, update)
}

// UpdateReviewJSON handles PUT /reviews/:id/json (partial).
func (s *Server) UpdateReviewJSON(c *fiber.Ctx) error {
	id, err := s.parseDocumentID(c)
	if err != nil {
		return nil
	}

	var update models.ReviewUpdate
	if parseErr := c.BodyParser(&update); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if update.Rating != nil {
		clamped := validation.ClampRating(*update.Rating)
		update.Rating = &clamped
	}

	return s.applyReviewUpdate(c, id, update)
}

func (s *Server) applyReviewUpdate(c *fiber.Ctx, id uuid.UUID, update models.ReviewUpdate) error {
	changes := update.Changes()
	if len(changes) == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Nothing to update"))
	}

	if err := s.reviewRepo.Update(c.Context(), id, changes); err != nil {
		return models.RespondWithError(c, statusForError(err), err)
	}

	middleware.DocumentWrites.WithLabelValues("reviews", "update").Inc()

	return c.JSON(fiber.Map{
		"msg": "Updated",
	})
}

// DeleteReview handles DELETE /reviews/:id.
func (s *Server) DeleteReview(c *fiber.Ctx) error {
	id, err := s.parseDocumentID(c)
	if err != nil {
		return nil
	}

	if delErr := s.reviewRepo.Delete(c.Context(), id); delErr != nil {
		return models.RespondWithError(c, statusForError(delErr), delErr)
	}

	middleware.DocumentWrites.WithLabelValues("reviews", "delete").Inc()

	return c.JSON(fiber.Map{
		"msg": "Deleted",
	})
}
