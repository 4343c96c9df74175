package mapper

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"lira-converter/internal/converter/boundary"
	"lira-converter/internal/converter/geometry"
	"lira-converter/internal/converter/graph"
	"lira-converter/internal/converter/parser"
)

// ============================================================
// Converter
// ============================================================

type Options struct {
	Parse      parser.Options
	Index      graph.Options
	Classifier boundary.Classifier
	Mode       Mode
	// Filter отбрасывает сущности с невалидными слоями перед выгрузкой.
	Filter bool
	// PropagateDOF переносит закрепления с линий и граней DOF на узлы.
	PropagateDOF bool
	Title        string
}

// Result содержит итог конвертации одного чертежа.
type Result struct {
	Mode     Mode
	Parsed   map[string]int // количество сущностей после разбора
	Exported map[string]int // количество сущностей в выгрузке
	DOF      int            // точек, получивших закрепления
	Exporter *Exporter
}

func (r *Result) Nodes() int  { return r.Exporter.Index().Len() }
func (r *Result) Layers() int { return len(r.Exporter.Layers()) }

// Bytes возвращает текст выгрузки.
func (r *Result) Bytes() []byte {
	var buf bytes.Buffer
	_ = r.Exporter.Export(&buf, r.Mode) // запись в bytes.Buffer не возвращает ошибок
	return buf.Bytes()
}

type Converter struct {
	opts Options
}

func New(opts Options) *Converter {
	return &Converter{opts: opts}
}

// Convert DXF → модель ЛИРЫ
func (c *Converter) Convert(ctx context.Context, r io.Reader) (*Result, error) {
	// Парсинг DXF
	entities, err := parser.ParseReader(r, c.opts.Parse)
	if err != nil {
		return nil, fmt.Errorf("parse DXF: %w", err)
	}
	return c.ConvertEntities(ctx, entities)
}

// ConvertEntities выполняет всё после разбора: закрепления, фильтр, нумерацию.
func (c *Converter) ConvertEntities(ctx context.Context, entities *geometry.Entities) (*Result, error) {
	res := &Result{
		Mode:   c.opts.Mode,
		Parsed: entities.Counts(),
	}

	// Переносим закрепления на узлы
	if c.opts.PropagateDOF {
		cons, cand := boundary.SplitConstraints(entities)
		points, err := c.opts.Classifier.Propagate(ctx, cons, cand)
		if err != nil {
			return nil, fmt.Errorf("propagate DOF: %w", err)
		}
		res.DOF = len(points)
		entities = entities.WithPoints(points...)
	}

	if c.opts.Filter {
		entities = entities.FilterValid()
	}

	res.Exported = entities.Counts()
	res.Exporter = NewExporter(entities, ExporterOptions{
		Index: c.opts.Index,
		Title: c.opts.Title,
	})
	return res, nil
}
