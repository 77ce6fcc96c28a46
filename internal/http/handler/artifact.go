package handler

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"bookvault/internal/resolver"
	"bookvault/internal/service"
)

// HealthCheck reports readiness: registry connectivity only.
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe is a simple liveness endpoint.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// UploadArtifact ingests a multipart upload (field "file") with optional
// form values "name", "description", and "share_url".
//
// @Summary Upload a document
// @Accept mpfd
// @Produce json
// @Success 201 {object} model.Artifact
// @Router /artifacts [post]
func UploadArtifact(svc service.ArtifactService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		in := service.IngestInput{
			DisplayName:      c.FormValue("name"),
			Description:      c.FormValue("description"),
			MediaType:        fh.Header.Get("Content-Type"),
			OriginalFilename: fh.Filename,
			ShareURL:         c.FormValue("share_url"),
		}

		a, err := svc.Ingest(c.UserContext(), f, in)
		if err != nil {
			return writeIngestError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(a)
	}
}

// writeIngestError maps the pipeline's error taxonomy onto client-visible
// statuses: client faults reject with 4xx, pipeline faults report 5xx.
func writeIngestError(c *fiber.Ctx, err error) error {
	var (
		stagingErr *service.StagingError
		uploadErr  *service.RemoteUploadError
		partialErr *service.PartialIngestError
	)
	switch {
	case errors.Is(err, service.ErrUnsupportedMediaType):
		return writeError(c, fiber.StatusUnsupportedMediaType, "UNSUPPORTED_MEDIA_TYPE", "media type is not allowed")
	case errors.Is(err, service.ErrReaderNil):
		return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
	case errors.As(err, &stagingErr):
		return writeError(c, fiber.StatusInternalServerError, "STAGING_FAILED", "could not stage upload")
	case errors.As(err, &uploadErr):
		return writeError(c, fiber.StatusBadGateway, "REMOTE_UPLOAD_FAILED", "remote storage rejected the upload")
	case errors.As(err, &partialErr):
		// The upload is durable but unrecorded; the log line carries the
		// orphaned locator for reconciliation, the response does not.
		log.Printf("partial ingest: orphaned remote object at %s: %v", partialErr.StorageURL, partialErr.Err)
		return writeError(c, fiber.StatusInternalServerError, "PARTIAL_INGEST", "upload stored but not recorded")
	case errors.Is(err, service.ErrRegistryUnavailable):
		return writeError(c, fiber.StatusServiceUnavailable, "REGISTRY_UNAVAILABLE", "artifact registry unavailable")
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

// ListArtifacts returns a paginated list, newest first.
//
// @Summary List artifacts
// @Produce json
// @Router /artifacts [get]
func ListArtifacts(svc service.ArtifactService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limitStr := c.Query("limit", "10")
		offsetStr := c.Query("offset", "0")
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(offsetStr)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		res, err := svc.List(c.UserContext(), limit, offset)
		if err != nil {
			if errors.Is(err, service.ErrRegistryUnavailable) {
				return writeError(c, fiber.StatusServiceUnavailable, "REGISTRY_UNAVAILABLE", "artifact registry unavailable")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(res)
	}
}

// GetArtifact returns a single artifact record by ID.
//
// @Summary Get an artifact
// @Produce json
// @Router /artifacts/{id} [get]
func GetArtifact(svc service.ArtifactService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		a, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return writeLookupError(c, err)
		}
		return c.JSON(a)
	}
}

// ResolveArtifact resolves the artifact's download URL. By default the
// response is a redirect to the resolved URL; with ?redirect=false the URL
// is returned as a JSON payload instead.
//
// @Summary Resolve an artifact download URL
// @Produce json
// @Router /artifacts/{id}/download [get]
func ResolveArtifact(svc service.ArtifactService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		url, err := svc.Resolve(c.UserContext(), id)
		if err != nil {
			return writeResolveError(c, err)
		}

		if c.Query("redirect", "true") == "false" {
			return c.JSON(fiber.Map{"download_url": url})
		}
		return c.Redirect(url, fiber.StatusFound)
	}
}

// NotifyArtifact resolves the artifact and emails the URL to the recipient
// given in the JSON body.
//
// @Summary Send an artifact download link
// @Accept json
// @Produce json
// @Router /artifacts/{id}/notify [post]
func NotifyArtifact(svc service.ArtifactService) fiber.Handler {
	type notifyRequest struct {
		Recipient string `json:"recipient"`
	}

	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		var req notifyRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		err := svc.Notify(c.UserContext(), id, req.Recipient)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrRecipientRequired):
				return writeError(c, fiber.StatusBadRequest, "RECIPIENT_REQUIRED", "recipient is required")
			case errors.Is(err, service.ErrNotifierUnavailable):
				return writeError(c, fiber.StatusServiceUnavailable, "NOTIFIER_UNAVAILABLE", "notifications are not configured")
			case isResolveError(err):
				return writeResolveError(c, err)
			default:
				return writeError(c, fiber.StatusInternalServerError, "NOTIFY_FAILED", "could not deliver notification")
			}
		}
		return c.SendStatus(fiber.StatusAccepted)
	}
}

func isResolveError(err error) bool {
	return errors.Is(err, service.ErrNotFound) ||
		errors.Is(err, service.ErrRegistryUnavailable) ||
		errors.Is(err, resolver.ErrMalformedLocator) ||
		errors.Is(err, resolver.ErrUnresolvableLocator)
}

func writeLookupError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrNotFound), errors.Is(err, sql.ErrNoRows):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "artifact not found")
	case errors.Is(err, service.ErrRegistryUnavailable):
		return writeError(c, fiber.StatusServiceUnavailable, "REGISTRY_UNAVAILABLE", "artifact registry unavailable")
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

func writeResolveError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, resolver.ErrMalformedLocator):
		return writeError(c, fiber.StatusUnprocessableEntity, "MALFORMED_LOCATOR", "stored locator is malformed")
	case errors.Is(err, resolver.ErrUnresolvableLocator):
		return writeError(c, fiber.StatusUnprocessableEntity, "UNRESOLVABLE_LOCATOR", "no download link can be derived")
	default:
		return writeLookupError(c, err)
	}
}
