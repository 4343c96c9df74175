package mapper

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"strings"

	"lira-converter/internal/converter/geometry"
	"lira-converter/internal/converter/graph"
	"lira-converter/internal/converter/layername"
)

// ============================================================
// LIRA Exporter
// ============================================================

// Mode задаёт вариант выгрузки.
type Mode int

const (
	// ModeFull: полный текстовый файл ЛИРЫ с заголовком (документ 0).
	ModeFull Mode = iota
	// ModePartial: фрагмент для вставки в существующую модель,
	// дополнительно содержит связи узлов (документ 5).
	ModePartial
)

func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "full":
		return ModeFull, nil
	case "partial":
		return ModePartial, nil
	}
	return ModeFull, fmt.Errorf("unknown export mode %q", s)
}

func (m Mode) String() string {
	if m == ModePartial {
		return "partial"
	}
	return "full"
}

// Жёсткости по умолчанию: модуль упругости бетона, коэффициент Пуассона.
const (
	lineStiffness = "S0 3.06E6"
	faceStiffness = "3.06E6 0.2"
)

// Exporter привязан к одной неизменяемой коллекции сущностей.
// Производные представления вычисляются один раз при создании.
type Exporter struct {
	entities  *geometry.Entities
	index     *graph.Index
	layers    []*geometry.Layer
	layerIdx  map[string]int
	allPoints []geometry.Point
	title     string
}

type ExporterOptions struct {
	Index graph.Options
	Title string
}

func NewExporter(e *geometry.Entities, opts ExporterOptions) *Exporter {
	x := &Exporter{
		entities:  e,
		allPoints: e.AllPoints(),
		index:     graph.Build(e, opts.Index),
		layerIdx:  make(map[string]int),
		title:     opts.Title,
	}
	if x.title == "" {
		x.title = "DXF import"
	}
	x.collectLayers()
	return x
}

// collectLayers нумерует конструктивные слои (линии и грани) в порядке
// первого появления среди узлов, затем добавляет слои элементов, чьи
// узлы достались точкам других слоёв.
func (x *Exporter) collectLayers() {
	add := func(l *geometry.Layer) {
		if !l.IsValid() || l.Kind == layername.Point {
			return
		}
		if _, ok := x.layerIdx[l.Key()]; ok {
			return
		}
		x.layers = append(x.layers, l)
		x.layerIdx[l.Key()] = len(x.layers)
	}

	for _, p := range x.index.Nodes() {
		add(p.Layer)
	}
	for _, l := range x.entities.Lines {
		add(l.Layer)
	}
	for _, f := range x.entities.Faces {
		add(f.Layer)
	}
}

func (x *Exporter) Entities() *geometry.Entities { return x.entities }

func (x *Exporter) Index() *graph.Index { return x.index }

func (x *Exporter) AllPoints() []geometry.Point { return x.allPoints }

// Layers возвращает пронумерованные слои в порядке номеров.
func (x *Exporter) Layers() []*geometry.Layer { return x.layers }

// LayerIndex возвращает номер жёсткости слоя или 0, если слой не пронумерован.
func (x *Exporter) LayerIndex(l *geometry.Layer) int {
	return x.layerIdx[l.Key()]
}

func (x *Exporter) nodeOf(p geometry.Point) int {
	i, _ := x.index.IndexOf(p)
	return i
}

// ============================================================
// Records
// ============================================================

// Objects строит документ 1: элементы (стержни и пластины).
func (x *Exporter) Objects() []string {
	var out []string
	for _, l := range x.entities.Lines {
		out = append(out, fmt.Sprintf("5 %d %d %d/", x.LayerIndex(l.Layer), x.nodeOf(l.Start), x.nodeOf(l.End)))
	}
	for _, f := range x.entities.Faces {
		out = append(out, x.faceRecord(f))
	}
	return out
}

// faceRecord выбирает запись по числу различных узлов, а не по Point.Equal:
// равные углы могут получить разные номера на границе ячейки сетки.
func (x *Exporter) faceRecord(f geometry.Face) string {
	layer := x.LayerIndex(f.Layer)

	var nodes [4]int
	distinct := make([]int, 0, 4)
	for i, p := range f.Points {
		nodes[i] = x.nodeOf(p)
		if !slices.Contains(distinct, nodes[i]) {
			distinct = append(distinct, nodes[i])
		}
	}

	if len(distinct) <= 3 {
		var b strings.Builder
		fmt.Fprintf(&b, "42 %d", layer)
		for _, n := range distinct {
			fmt.Fprintf(&b, " %d", n)
		}
		b.WriteString("/")
		return b.String()
	}

	return fmt.Sprintf("44 %d %d %d %d %d/", layer, nodes[0], nodes[1], nodes[3], nodes[2])
}

// Stiffness строит документ 3: жёсткости по слоям.
func (x *Exporter) Stiffness() []string {
	var out []string
	for i, l := range x.layers {
		switch l.Kind {
		case layername.Line:
			out = append(out, fmt.Sprintf("%d %s %s/", i+1, lineStiffness, l.UniqueName))
		case layername.Face:
			out = append(out, fmt.Sprintf("%d %s %s/", i+1, faceStiffness, l.UniqueName))
		}
	}
	return out
}

// Coordinates строит документ 4: координаты узлов в порядке номеров.
func (x *Exporter) Coordinates() []string {
	nodes := x.index.Nodes()
	out := make([]string, 0, len(nodes))
	for _, p := range nodes {
		out = append(out, fmt.Sprintf("%s %s %s/",
			layername.FormatFloat(p.X),
			layername.FormatFloat(p.Y),
			layername.FormatFloat(p.Z),
		))
	}
	return out
}

// Constraints строит документ 5: закреплённые степени свободы отдельных точек.
// Повтор пары узел/набор степеней выводится один раз.
func (x *Exporter) Constraints() []string {
	var out []string
	seen := make(map[string]bool)
	for _, p := range x.entities.Points {
		if !p.Layer.IsValid() || p.Layer.Kind != layername.Point {
			continue
		}
		codes := layername.DOFCodes(p.Layer.UniqueName)
		rec := fmt.Sprintf("%d %s/", x.nodeOf(p), codes)
		if seen[rec] {
			continue
		}
		seen[rec] = true
		out = append(out, rec)
	}
	return out
}

// ============================================================
// Export
// ============================================================

// Export записывает модель в текстовом формате ЛИРЫ.
func (x *Exporter) Export(w io.Writer, mode Mode) error {
	bw := bufio.NewWriter(w)

	if mode == ModeFull {
		fmt.Fprintf(bw, "( 0/ 1; %s/ 2; 5/ 33; M 1 CM 100 T 1 C 1/ )\n", x.title)
	}
	writeDocument(bw, 1, x.Objects())
	writeDocument(bw, 3, x.Stiffness())
	writeDocument(bw, 4, x.Coordinates())
	if mode == ModePartial {
		writeDocument(bw, 5, x.Constraints())
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write lira: %w", err)
	}
	return nil
}

// String возвращает выгрузку целиком.
func (x *Exporter) String(mode Mode) string {
	var b strings.Builder
	_ = x.Export(&b, mode) // strings.Builder не возвращает ошибок
	return b.String()
}

func writeDocument(w *bufio.Writer, n int, records []string) {
	fmt.Fprintf(w, "( %d/\n", n)
	for _, r := range records {
		w.WriteString(r)
		w.WriteByte('\n')
	}
	w.WriteString(" )\n")
}
