package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"lira-converter/internal/common/config"
	"lira-converter/internal/converter/boundary"
	"lira-converter/internal/converter/graph"
	"lira-converter/internal/converter/mapper"
	"lira-converter/internal/converter/models"
	"lira-converter/internal/converter/parser"
	"lira-converter/internal/converter/repository"
	"lira-converter/internal/converter/service"
)

// ============================================================
// Convert Handler
// ============================================================

type ConvertHandler struct {
	repo    *repository.Repository
	storage *service.FileStorage
	cfg     *config.Config
}

func NewConvertHandler(repo *repository.Repository, storage *service.FileStorage, cfg *config.Config) *ConvertHandler {
	return &ConvertHandler{
		repo:    repo,
		storage: storage,
		cfg:     cfg,
	}
}

// Convert конвертирует DXF в текстовый формат ЛИРЫ и сохраняет результат.
func (h *ConvertHandler) Convert(c fiber.Ctx) error {
	log.Printf("[CONVERTER] Received request")
	log.Printf("[CONVERTER] Content-Type: %s", c.Get("Content-Type"))
	log.Printf("[CONVERTER] Content-Length: %d", len(c.Body()))

	name, data, status, err := readUpload(c)
	if err != nil {
		return c.Status(status).JSON(fiber.Map{"error": err.Error()})
	}

	opts, err := h.options(c)
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	log.Printf("[CONVERTER] Starting conversion of %s, %d bytes, mode=%s", name, len(data), opts.Mode)
	res, err := mapper.New(opts).Convert(context.Background(), bytes.NewReader(data))
	if err != nil {
		log.Printf("[CONVERTER] Conversion error: %v", err)
		return c.Status(http.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	}
	output := res.Bytes()

	id := uuid.NewString()
	if err := h.storage.SaveFile(id, h.storage.SourcePath(id), data); err != nil {
		log.Printf("[CONVERTER] Save source error: %v", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to store source"})
	}
	if err := h.storage.SaveFile(id, h.storage.LiraPath(id), output); err != nil {
		log.Printf("[CONVERTER] Save output error: %v", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to store output"})
	}
	// предпросмотр не обязателен для ответа
	if err := mapper.WritePreviewDXF(h.storage.PreviewPath(id), res.Exporter); err != nil {
		log.Printf("[CONVERTER] Preview error: %v", err)
	}

	record := &models.Conversion{
		ID:         id,
		SourceName: name,
		Mode:       res.Mode.String(),
		Filtered:   opts.Filter,
		Parsed:     res.Parsed,
		Exported:   res.Exported,
		Nodes:      res.Nodes(),
		Layers:     res.Layers(),
		DOFPoints:  res.DOF,
	}
	if err := h.repo.Create(context.Background(), record); err != nil {
		log.Printf("[CONVERTER] Save record error: %v", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to store conversion"})
	}

	log.Printf("[CONVERTER] Conversion %s successful: %d nodes, %d layers", id, record.Nodes, record.Layers)
	c.Set("X-Conversion-ID", id)
	c.Set("Content-Type", "text/plain; charset=utf-8")
	return c.Send(output)
}

// Parse возвращает сводку по сущностям и слоям чертежа без выгрузки.
func (h *ConvertHandler) Parse(c fiber.Ctx) error {
	name, data, status, err := readUpload(c)
	if err != nil {
		return c.Status(status).JSON(fiber.Map{"error": err.Error()})
	}

	opts := parser.Options{
		Encoding: c.Query("encoding", h.cfg.Encoding),
		Accuracy: h.cfg.Accuracy,
	}
	entities, err := parser.ParseReader(bytes.NewReader(data), opts)
	if err != nil {
		return c.Status(http.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	}

	counts := make(map[string]int)
	key := func(kind fmt.Stringer, name string) string { return kind.String() + "\x00" + name }
	for _, p := range entities.Points {
		counts[key(p.Layer.Kind, p.Layer.Name)]++
	}
	for _, l := range entities.Lines {
		counts[key(l.Layer.Kind, l.Layer.Name)]++
	}
	for _, f := range entities.Faces {
		counts[key(f.Layer.Kind, f.Layer.Name)]++
	}

	summary := models.ParseSummary{
		SourceName: name,
		Counts:     entities.Counts(),
		Layers:     []models.LayerInfo{},
	}
	for _, l := range entities.Layers() {
		summary.Layers = append(summary.Layers, models.LayerInfo{
			Name:       l.Name,
			Kind:       l.Kind.String(),
			UniqueName: l.UniqueName,
			Valid:      l.Valid,
			Entities:   counts[key(l.Kind, l.Name)],
		})
	}
	return c.JSON(summary)
}

// options собирает параметры конвертации: значения по умолчанию из
// конфигурации, переопределённые query-параметрами.
func (h *ConvertHandler) options(c fiber.Ctx) (mapper.Options, error) {
	mode, err := mapper.ParseMode(c.Query("mode"))
	if err != nil {
		return mapper.Options{}, err
	}
	strategy, err := graph.ParseStrategy(c.Query("index", h.cfg.IndexStrategy))
	if err != nil {
		return mapper.Options{}, err
	}
	filter, err := queryBool(c, "filter", true)
	if err != nil {
		return mapper.Options{}, err
	}
	dof, err := queryBool(c, "dof", mode == mapper.ModePartial)
	if err != nil {
		return mapper.Options{}, err
	}
	accuracy := h.cfg.Accuracy
	if v := c.Query("accuracy"); v != "" {
		accuracy, err = strconv.ParseFloat(v, 64)
		if err != nil || accuracy <= 0 {
			return mapper.Options{}, fmt.Errorf("invalid accuracy %q", v)
		}
	}

	return mapper.Options{
		Parse: parser.Options{
			Encoding: c.Query("encoding", h.cfg.Encoding),
			Accuracy: accuracy,
		},
		Index: graph.Options{
			Step:     accuracy,
			Strategy: strategy,
		},
		Classifier: boundary.Classifier{
			LineTolerance: h.cfg.LineTolerance,
			Workers:       h.cfg.ClassifierWorkers,
		},
		Mode:         mode,
		Filter:       filter,
		PropagateDOF: dof,
		Title:        c.Query("title"),
	}, nil
}

func queryBool(c fiber.Ctx, key string, def bool) (bool, error) {
	v := c.Query(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q", key, v)
	}
	return b, nil
}

// readUpload читает файл из multipart/form-data.
func readUpload(c fiber.Ctx) (string, []byte, int, error) {
	file, err := c.FormFile("file")
	if err != nil {
		log.Printf("[CONVERTER] FormFile error: %v", err)
		return "", nil, http.StatusBadRequest, errors.New("file required in multipart/form-data")
	}

	f, err := file.Open()
	if err != nil {
		return "", nil, http.StatusInternalServerError, errors.New("failed to open file")
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", nil, http.StatusInternalServerError, errors.New("failed to read file")
	}
	return file.Filename, data, http.StatusOK, nil
}
