package middleware

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/logger"
)

// ============================================================
// Logger Middleware
// ============================================================

// Logger логирует запросы вместе с номером конвертации, если он выдан.
func Logger() fiber.Handler {
	return logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path} | ${reqHeader:Content-Type} | conversion=${respHeader:X-Conversion-ID}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	})
}
