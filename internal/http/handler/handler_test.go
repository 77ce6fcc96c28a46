package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"bookvault/internal/model"
	"bookvault/internal/resolver"
	"bookvault/internal/service"
	serviceMocks "bookvault/internal/service/mocks"
)

func TestHealthCheck(t *testing.T) {
	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	app := fiber.New()
	app.Get("/health", HealthCheck(db))

	t.Run("healthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(nil)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(errors.New("db error"))

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "SERVICE_UNAVAILABLE", body.Error.Code)
	})
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func multipartUpload(t *testing.T, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "catalog.pdf")
	require.NoError(t, err)
	part.Write([]byte("%PDF-1.4 x"))
	for k, v := range fields {
		writer.WriteField(k, v)
	}
	writer.Close()
	return body, writer.FormDataContentType()
}

func TestUploadArtifact(t *testing.T) {
	mockSvc := new(serviceMocks.MockArtifactService)
	app := fiber.New()
	app.Post("/artifacts", UploadArtifact(mockSvc))

	t.Run("success", func(t *testing.T) {
		body, contentType := multipartUpload(t, map[string]string{
			"name":        "catalog",
			"description": "test doc",
			"share_url":   "https://host/d/AbC123_-/view",
		})

		expected := &model.Artifact{
			ID:         uuid.New().String(),
			StorageURL: "https://cdn.example/upload/v1/pdfs/catalog.pdf",
		}
		mockSvc.On("Ingest", mock.Anything, mock.Anything, mock.MatchedBy(func(in service.IngestInput) bool {
			return in.DisplayName == "catalog" &&
				in.Description == "test doc" &&
				in.OriginalFilename == "catalog.pdf" &&
				in.ShareURL == "https://host/d/AbC123_-/view"
		})).Return(expected, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/artifacts", body)
		req.Header.Set("Content-Type", contentType)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var result model.Artifact
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, expected.ID, result.ID)
		assert.NotEmpty(t, result.StorageURL)
		mockSvc.AssertExpectations(t)
	})

	t.Run("no file", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/artifacts", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "FILE_REQUIRED", res.Error.Code)
	})

	t.Run("unsupported media type", func(t *testing.T) {
		body, contentType := multipartUpload(t, nil)

		mockSvc.On("Ingest", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, service.ErrUnsupportedMediaType).Once()

		req := httptest.NewRequest(http.MethodPost, "/artifacts", body)
		req.Header.Set("Content-Type", contentType)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "UNSUPPORTED_MEDIA_TYPE", res.Error.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("staging failure", func(t *testing.T) {
		body, contentType := multipartUpload(t, nil)

		mockSvc.On("Ingest", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, &service.StagingError{Err: errors.New("disk full")}).Once()

		req := httptest.NewRequest(http.MethodPost, "/artifacts", body)
		req.Header.Set("Content-Type", contentType)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "STAGING_FAILED", res.Error.Code)
	})

	t.Run("remote upload failure", func(t *testing.T) {
		body, contentType := multipartUpload(t, nil)

		mockSvc.On("Ingest", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, &service.RemoteUploadError{Err: errors.New("provider 500")}).Once()

		req := httptest.NewRequest(http.MethodPost, "/artifacts", body)
		req.Header.Set("Content-Type", contentType)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "REMOTE_UPLOAD_FAILED", res.Error.Code)
	})

	t.Run("partial ingest", func(t *testing.T) {
		body, contentType := multipartUpload(t, nil)

		mockSvc.On("Ingest", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, &service.PartialIngestError{StorageURL: "https://cdn/x", Err: errors.New("db down")}).Once()

		req := httptest.NewRequest(http.MethodPost, "/artifacts", body)
		req.Header.Set("Content-Type", contentType)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "PARTIAL_INGEST", res.Error.Code)
	})
}

func TestListArtifacts(t *testing.T) {
	mockSvc := new(serviceMocks.MockArtifactService)
	app := fiber.New()
	app.Get("/artifacts", ListArtifacts(mockSvc))

	t.Run("success", func(t *testing.T) {
		expectedRes := &service.ArtifactListResult{
			Items: []model.Artifact{{ID: uuid.New().String(), DisplayName: "catalog"}},
			Total: 1,
		}
		mockSvc.On("List", mock.Anything, 10, 0).Return(expectedRes, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/artifacts?limit=10&offset=0", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result service.ArtifactListResult
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Len(t, result.Items, 1)
		assert.Equal(t, 1, result.Total)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid limit", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/artifacts?limit=abc", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "INVALID_LIMIT", body.Error.Code)
	})

	t.Run("registry unavailable", func(t *testing.T) {
		mockSvc.On("List", mock.Anything, 10, 0).Return(nil, service.ErrRegistryUnavailable).Once()

		req := httptest.NewRequest(http.MethodGet, "/artifacts", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestGetArtifact(t *testing.T) {
	mockSvc := new(serviceMocks.MockArtifactService)
	app := fiber.New()
	app.Get("/artifacts/:id", GetArtifact(mockSvc))

	t.Run("success", func(t *testing.T) {
		id := uuid.New().String()
		expected := &model.Artifact{ID: id, DisplayName: "catalog"}
		mockSvc.On("Get", mock.Anything, id).Return(expected, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/artifacts/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result model.Artifact
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, id, result.ID)
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Get", mock.Anything, id).Return(nil, service.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/artifacts/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "NOT_FOUND", res.Error.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/artifacts/invalid-uuid", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "INVALID_ID", res.Error.Code)
	})

	t.Run("registry unavailable", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Get", mock.Anything, id).Return(nil, service.ErrRegistryUnavailable).Once()

		req := httptest.NewRequest(http.MethodGet, "/artifacts/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestResolveArtifact(t *testing.T) {
	mockSvc := new(serviceMocks.MockArtifactService)
	app := fiber.New()
	app.Get("/artifacts/:id/download", ResolveArtifact(mockSvc))

	t.Run("redirects by default", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Resolve", mock.Anything, id).
			Return("https://console.cloudinary.com/c/media_explorer_thumbnails/v1/download", nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/artifacts/"+id+"/download", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, "https://console.cloudinary.com/c/media_explorer_thumbnails/v1/download",
			resp.Header.Get("Location"))
		mockSvc.AssertExpectations(t)
	})

	t.Run("json payload on redirect=false", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Resolve", mock.Anything, id).Return("https://x/y", nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/artifacts/"+id+"/download?redirect=false", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "https://x/y", body["download_url"])
		mockSvc.AssertExpectations(t)
	})

	t.Run("unresolvable locator", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Resolve", mock.Anything, id).Return("", resolver.ErrUnresolvableLocator).Once()

		req := httptest.NewRequest(http.MethodGet, "/artifacts/"+id+"/download", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "UNRESOLVABLE_LOCATOR", res.Error.Code)
	})

	t.Run("malformed locator", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Resolve", mock.Anything, id).Return("", resolver.ErrMalformedLocator).Once()

		req := httptest.NewRequest(http.MethodGet, "/artifacts/"+id+"/download", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "MALFORMED_LOCATOR", res.Error.Code)
	})

	t.Run("not found", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Resolve", mock.Anything, id).Return("", service.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/artifacts/"+id+"/download", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestNotifyArtifact(t *testing.T) {
	mockSvc := new(serviceMocks.MockArtifactService)
	app := fiber.New()
	app.Post("/artifacts/:id/notify", NotifyArtifact(mockSvc))

	post := func(id, body string) *http.Response {
		req := httptest.NewRequest(http.MethodPost, "/artifacts/"+id+"/notify", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)
		return resp
	}

	t.Run("accepted", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Notify", mock.Anything, id, "reader@example.com").Return(nil).Once()

		resp := post(id, `{"recipient":"reader@example.com"}`)
		assert.Equal(t, http.StatusAccepted, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("missing recipient", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Notify", mock.Anything, id, "").Return(service.ErrRecipientRequired).Once()

		resp := post(id, `{}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("notifier disabled", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Notify", mock.Anything, id, "reader@example.com").
			Return(service.ErrNotifierUnavailable).Once()

		resp := post(id, `{"recipient":"reader@example.com"}`)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	})

	t.Run("artifact not found", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Notify", mock.Anything, id, "reader@example.com").
			Return(service.ErrNotFound).Once()

		resp := post(id, `{"recipient":"reader@example.com"}`)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("delivery failure", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Notify", mock.Anything, id, "reader@example.com").
			Return(errors.New("smtp timeout")).Once()

		resp := post(id, `{"recipient":"reader@example.com"}`)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	})
}

func TestRouting(t *testing.T) {
	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler(),
	})

	mockSvc := new(serviceMocks.MockArtifactService)
	RegisterRoutes(app, nil, mockSvc)

	t.Run("not found route", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/non-existent", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "NOT_FOUND", res.Error.Code)
	})

	t.Run("method not allowed", func(t *testing.T) {
		// Health endpoint only allows GET
		req := httptest.NewRequest(http.MethodPost, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "METHOD_NOT_ALLOWED", res.Error.Code)
	})
}
