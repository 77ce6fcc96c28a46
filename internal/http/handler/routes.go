package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"bookvault/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Keep handlers minimal and free of business logic.
func RegisterRoutes(app *fiber.App, db *sql.DB, svc service.ArtifactService) {
	// Health endpoints: readiness checks registry connectivity, liveness does not.
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	app.Get("/artifacts", ListArtifacts(svc))
	app.Post("/artifacts", UploadArtifact(svc))
	app.Get("/artifacts/:id", GetArtifact(svc))
	app.Get("/artifacts/:id/download", ResolveArtifact(svc))
	app.Post("/artifacts/:id/notify", NotifyArtifact(svc))
}
