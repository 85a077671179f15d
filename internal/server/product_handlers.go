package server

import (
	"strconv"
	"time"

	"wtero/internal/middleware"
	"wtero/internal/models"
	"wtero/internal/repository"
	"wtero/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ProductIn is the JSON create payload for products.
type ProductIn struct {
	Title        string   `json:"title" validate:"required"`
	Category     string   `json:"category" validate:"required"`
	Description  string   `json:"description" validate:"required"`
	Image        string   `json:"image"`
	Technologies []string `json:"technologies"`
	GithubLink   string   `json:"githubLink" validate:"omitempty,url"`
	LiveLink     string   `json:"liveLink" validate:"omitempty,url"`
	ComingSoon   bool     `json:"comingSoon"`
}

// CreateProduct handles POST /products (multipart form, the admin UI path).
// The technologies field accepts a JSON array or a comma-separated string.
func (s *Server) CreateProduct(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Expected multipart form data"))
	}

	title, _ := formValue(form, "title")
	category, _ := formValue(form, "category")
	description, _ := formValue(form, "description")

	if title == "" || category == "" || description == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Fields title, category and description are required"))
	}

	product := &models.Product{
		Title:       title,
		Category:    category,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}

	if v, ok := formValue(form, "technologies"); ok {
		product.Technologies = datatypes.NewJSONSlice(validation.ParseTechnologies(v))
	} else {
		product.Technologies = datatypes.NewJSONSlice([]string{})
	}
	if v, ok := formValue(form, "githubLink"); ok {
		product.GithubLink = v
	}
	if v, ok := formValue(form, "liveLink"); ok {
		product.LiveLink = v
	}
	if v, ok := formValue(form, "comingSoon"); ok {
		comingSoon, parseErr := strconv.ParseBool(v)
		if parseErr != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("comingSoon must be a boolean"))
		}
		product.ComingSoon = comingSoon
	}
	if image := formFile(form, "image"); image != nil {
		encoded, encErr := fileToBase64(image)
		if encErr != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Unable to read uploaded file"))
		}
		product.Image = encoded
	}

	return s.insertProduct(c, product)
}

// CreateProductJSON handles POST /products/json.
func (s *Server) CreateProductJSON(c *fiber.Ctx) error {
	var req ProductIn
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if err := validation.Payloads.Struct(req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}

	technologies := req.Technologies
	if technologies == nil {
		technologies = []string{}
	}

	product := &models.Product{
		Title:        req.Title,
		Category:     req.Category,
		Description:  req.Description,
		Image:        req.Image,
		Technologies: datatypes.NewJSONSlice(technologies),
		GithubLink:   req.GithubLink,
		LiveLink:     req.LiveLink,
		ComingSoon:   req.ComingSoon,
		CreatedAt:    time.Now().UTC(),
	}

	return s.insertProduct(c, product)
}

// insertProduct runs the duplicate-title pre-check and the insert. The
// pre-check only yields a friendlier message; the unique index on title
// is the authoritative guard and maps to the same conflict error.
func (s *Server) insertProduct(c *fiber.Ctx, product *models.Product) error {
	exists, err := s.productRepo.TitleExists(c.Context(), product.Title)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if exists {
		return models.RespondWithError(c, fiber.StatusConflict,
			models.NewConflictError("Product with this title already exists"))
	}

	if err := s.productRepo.Create(c.Context(), product); err != nil {
		return models.RespondWithError(c, statusForError(err), err)
	}

	middleware.DocumentWrites.WithLabelValues("products", "create").Inc()

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id": product.ID,
	})
}

// ListProducts handles GET /products, newest-first, with an optional
// comingSoon filter.
func (s *Server) ListProducts(c *fiber.Ctx) error {
	page := parsePagination(c)

	var filter repository.ProductFilter
	if raw := c.Query("comingSoon"); raw != "" {
		comingSoon, err := strconv.ParseBool(raw)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("comingSoon must be a boolean"))
		}
		filter.ComingSoon = &comingSoon
	}

	products, err := s.productRepo.List(c.Context(), page.Limit, page.Skip, filter)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(products)
}

// GetProduct handles GET /products/:id.
func (s *Server) GetProduct(c *fiber.Ctx) error {
	id, err := s.parseDocumentID(c)
	if err != nil {
		return nil
	}

	product, err := s.productRepo.GetByID(c.Context(), id)
	if err != nil {
		return models.RespondWithError(c, statusForError(err), err)
	}

	return c.JSON(product)
}

// UpdateProduct handles PUT /products/:id (multipart form, partial).
func (s *Server) UpdateProduct(c *fiber.Ctx) error {
	id, err := s.parseDocumentID(c)
	if err != nil {
		return nil
	}

	form, err := c.MultipartForm()
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Expected multipart form data"))
	}

	var update models.ProductUpdate
	if v, ok := formValue(form, "title"); ok {
		update.Title = &v
	}
	if v, ok := formValue(form, "category"); ok {
		update.Category = &v
	}
	if v, ok := formValue(form, "description"); ok {
		update.Description = &v
	}
	if v, ok := formValue(form, "technologies"); ok {
		technologies := validation.ParseTechnologies(v)
		update.Technologies = &technologies
	}
	if v, ok := formValue(form, "githubLink"); ok {
		update.GithubLink = &v
	}
	if v, ok := formValue(form, "liveLink"); ok {
		update.LiveLink = &v
	}
	if v, ok := formValue(form, "comingSoon"); ok {
		comingSoon, parseErr := strconv.ParseBool(v)
		if parseErr != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("comingSoon must be a boolean"))
		}
		update.ComingSoon = &comingSoon
	}
	if image := formFile(form, "image"); image != nil {
		encoded, encErr := fileToBase64(image)
		if encErr != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Unable to read uploaded file"))
		}
		update.Image = &encoded
	}

	return s.applyProductUpdate(c, id, update)
}

// UpdateProductJSON handles PUT /products/:id/json (partial).
func (s *Server) UpdateProductJSON(c *fiber.Ctx) error {
	id, err := s.parseDocumentID(c)
	if err != nil {
		return nil
	}

	var update models.ProductUpdate
	if parseErr := c.BodyParser(&update); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	return s.applyProductUpdate(c, id, update)
}

func (s *Server) applyProductUpdate(c *fiber.Ctx, id uuid.UUID, update models.ProductUpdate) error {
	changes := update.Changes()
	if len(changes) == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Nothing to update"))
	}

	if err := s.productRepo.Update(c.Context(), id, changes); err != nil {
		return models.RespondWithError(c, statusForError(err), err)
	}

	middleware.DocumentWrites.WithLabelValues("products", "update").Inc()

	return c.JSON(fiber.Map{
		"msg": "Updated",
	})
}

// DeleteProduct handles DELETE /products/:id.
func (s *Server) DeleteProduct(c *fiber.Ctx) error {
	id, err := s.parseDocumentID(c)
	if err != nil {
		return nil
	}

	if delErr := s.productRepo.Delete(c.Context(), id); delErr != nil {
		return models.RespondWithError(c, statusForError(delErr), delErr)
	}

	middleware.DocumentWrites.WithLabelValues("products", "delete").Inc()

	return c.JSON(fiber.Map{
		"msg": "Deleted",
	})
}
