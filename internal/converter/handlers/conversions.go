package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v3"

	"lira-converter/internal/converter/repository"
)

// ============================================================
// Conversions History
// ============================================================

const defaultListLimit = 50

// List отдаёт последние конвертации, новые первыми.
func (h *ConvertHandler) List(c fiber.Ctx) error {
	limit := defaultListLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid limit"})
		}
		limit = n
	}

	items, err := h.repo.List(context.Background(), limit)
	if err != nil {
		log.Printf("[CONVERTER] List error: %v", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list conversions"})
	}
	return c.JSON(fiber.Map{"items": items})
}

// Get отдаёт метаданные одной конвертации.
func (h *ConvertHandler) Get(c fiber.Ctx) error {
	conv, err := h.repo.GetByID(context.Background(), c.Params("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "conversion not found"})
		}
		log.Printf("[CONVERTER] Get error: %v", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load conversion"})
	}
	return c.JSON(conv)
}

// GetLira отдаёт сохранённый текст модели.
func (h *ConvertHandler) GetLira(c fiber.Ctx) error {
	return h.getFile(c, h.storage.LiraPath, "text/plain; charset=utf-8")
}

// GetPreview отдаёт DXF-предпросмотр с перенумерованными слоями.
func (h *ConvertHandler) GetPreview(c fiber.Ctx) error {
	return h.getFile(c, h.storage.PreviewPath, "application/dxf")
}

func (h *ConvertHandler) getFile(c fiber.Ctx, pathFn func(string) string, contentType string) error {
	targetID := c.Params("id")
	if targetID == "" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "id required"})
	}

	path := pathFn(targetID)
	if !h.storage.Exists(path) {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "file not found"})
	}

	c.Set("Content-Type", contentType)
	return c.SendFile(path)
}
