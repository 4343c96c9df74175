package handlers

import (
	"database/sql"

	"github.com/gofiber/fiber/v3"
)

// Register вешает маршруты конвертера на роутер.
func Register(r fiber.Router, h *ConvertHandler, db *sql.DB) {
	r.Get("/health/live", LivenessProbe)
	r.Get("/health/ready", ReadinessProbe(db))

	r.Post("/convert", h.Convert)
	r.Post("/parse", h.Parse)

	r.Get("/conversions", h.List)
	r.Get("/conversions/:id", h.Get)
	r.Get("/conversions/:id/lira", h.GetLira)
	r.Get("/conversions/:id/dxf", h.GetPreview)
}
