package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"wtero/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func reviewServer() (*fiber.App, *MockReviewRepository) {
	app := fiber.New()
	mockRepo := new(MockReviewRepository)

	s := &Server{
		config:     testConfig(),
		reviewRepo: mockRepo,
	}
	app.Post("/reviews", s.CreateReview)
	app.Post("/reviews/json", s.CreateReviewJSON)
	app.Get("/reviews", s.ListReviews)
	app.Get("/reviews/:id", s.GetReview)
	app.Put("/reviews/:id", s.UpdateReview)
	app.Put("/reviews/:id/json", s.UpdateReviewJSON)
	app.Delete("/reviews/:id", s.DeleteReview)
	return app, mockRepo
}

func multipartBody(t *testing.T, fields map[string]string, files map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()
	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	for name, value := range fields {
		require.NoError(t, writer.WriteField(name, value))
	}
	for name, content := range files {
		part, err := writer.CreateFormFile(name, name+".png")
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestCreateReviewJSON(t *testing.T) {
	app, mockRepo := reviewServer()

	tests := []struct {
		name           string
		body           fiber.Map
		mockSetup      func()
		expectedStatus int
	}{
		{
			name: "Success",
			body: fiber.Map{"name": "Jane", "company": "Acme", "role": "CTO", "rating": 4, "text": "Great"},
			mockSetup: func() {
				mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(r *models.Review) bool {
					return r.Name == "Jane" && r.Rating == 4
				})).Return(nil).Once()
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "Rating above range is clamped to 5",
			body: fiber.Map{"name": "Jane", "company": "Acme", "role": "CTO", "rating": 9, "text": "Great"},
			mockSetup: func() {
				mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(r *models.Review) bool {
					return r.Rating == 5
				})).Return(nil).Once()
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "Missing required field",
			body:           fiber.Map{"name": "Jane", "company": "Acme", "role": "CTO", "rating": 4},
			mockSetup:      func() {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			body, _ := json.Marshal(tt.body)
			req := httptest.NewRequest(http.MethodPost, "/reviews/json", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")

			resp, err := app.Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}

	mockRepo.AssertExpectations(t)
}

func TestCreateReview_Multipart(t *testing.T) {
	app, mockRepo := reviewServer()

	avatarBytes := []byte{0x89, 0x50, 0x4e, 0x47}
	wantAvatar := base64.StdEncoding.EncodeToString(avatarBytes)

	mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(r *models.Review) bool {
		return r.Name == "Jane" && r.Rating == 5 && r.Avatar == wantAvatar
	})).Return(nil).Once()

	body, contentType := multipartBody(t, map[string]string{
		"name":    "Jane",
		"company": "Acme",
		"role":    "CTO",
		"rating":  "5",
		"text":    "Great",
	}, map[string][]byte{"avatar": avatarBytes})

	req := httptest.NewRequest(http.MethodPost, "/reviews", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	mockRepo.AssertExpectations(t)
}

func TestCreateReview_MultipartValidation(t *testing.T) {
	app, _ := reviewServer()

	tests := []struct {
		name   string
		fields map[string]string
	}{
		{
			name:   "Missing text",
			fields: map[string]string{"name": "Jane", "company": "Acme", "role": "CTO", "rating": "5"},
		},
		{
			name:   "Non-integer rating",
			fields: map[string]string{"name": "Jane", "company": "Acme", "role": "CTO", "rating": "five", "text": "x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, contentType := multipartBody(t, tt.fields, nil)
			req := httptest.NewRequest(http.MethodPost, "/reviews", body)
			req.Header.Set("Content-Type", contentType)

			resp, err := app.Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestGetReview(t *testing.T) {
	app, mockRepo := reviewServer()

	id := uuid.New()
	mockRepo.On("GetByID", mock.Anything, id).
		Return(&models.Review{ID: id, Name: "Jane", Rating: 4}, nil).Once()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/reviews/"+id.String(), nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body models.Review
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, id, body.ID)
	assert.Equal(t, "Jane", body.Name)
	mockRepo.AssertExpectations(t)
}

func TestGetReview_InvalidID(t *testing.T) {
	app, _ := reviewServer()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/reviews/not-a-uuid", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body models.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Invalid id", body.Error)
}

func TestGetReview_NotFound(t *testing.T) {
	app, mockRepo := reviewServer()

	id := uuid.New()
	mockRepo.On("GetByID", mock.Anything, id).
		Return(nil, models.NewNotFoundError("Review", id)).Once()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/reviews/"+id.String(), nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	mockRepo.AssertExpectations(t)
}

func TestUpdateReviewJSON(t *testing.T) {
	app, mockRepo := reviewServer()
	id := uuid.New()

	t.Run("partial update touches only supplied columns", func(t *testing.T) {
		mockRepo.On("Update", mock.Anything, id, mock.MatchedBy(func(changes map[string]any) bool {
			_, hasName := changes["name"]
			return len(changes) == 2 && changes["text"] == "After" && changes["rating"] == 5 && !hasName
		})).Return(nil).Once()

		body, _ := json.Marshal(fiber.Map{"text": "After", "rating": 8})
		req := httptest.NewRequest(http.MethodPut, "/reviews/"+id.String()+"/json", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("empty body rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/reviews/"+id.String()+"/json", bytes.NewReader([]byte(`{}`)))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var body models.ErrorResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "Nothing to update", body.Error)
	})

	t.Run("unknown document", func(t *testing.T) {
		missing := uuid.New()
		mockRepo.On("Update", mock.Anything, missing, mock.Anything).
			Return(models.NewNotFoundError("Review", missing)).Once()

		body, _ := json.Marshal(fiber.Map{"text": "x"})
		req := httptest.NewRequest(http.MethodPut, "/reviews/"+missing.String()+"/json", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	mockRepo.AssertExpectations(t)
}

func TestUpdateReview_MultipartEmptyValueIsAChange(t *testing.T) {
	app, mockRepo := reviewServer()
	id := uuid.New()

	// Supplying company="" clears the field; it is not the same as omitting it
	mockRepo.On("Update", mock.Anything, id, mock.MatchedBy(func(changes map[string]any) bool {
		return len(changes) == 1 && changes["company"] == ""
	})).Return(nil).Once()

	body, contentType := multipartBody(t, map[string]string{"company": ""}, nil)
	req := httptest.NewRequest(http.MethodPut, "/reviews/"+id.String(), body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	mockRepo.AssertExpectations(t)
}

func TestDeleteReview(t *testing.T) {
	app, mockRepo := reviewServer()
	id := uuid.New()

	mockRepo.On("Delete", mock.Anything, id).Return(nil).Once()

	resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/reviews/"+id.String(), nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	mockRepo.AssertExpectations(t)
}
