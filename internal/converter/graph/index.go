package graph

import (
	"fmt"
	"math"

	"lira-converter/internal/converter/geometry"
)

// ============================================================
// Point Index
// ============================================================

// Strategy задаёт способ склейки близких точек в один узел.
type Strategy int

const (
	// StrategyGrid: точки склеиваются, если попали в одну ячейку сетки
	// с шагом Step (координата округляется до ближайшего кратного Step).
	// Рядом с границей ячейки точки ближе допуска могут попасть в разные узлы.
	StrategyGrid Strategy = iota
	// StrategyNeighbors: ячейки по floor(c/Step); ищет среди 27 соседних ячеек самый ранний узел,
	// равный точке по Point.Equal. Совпадает с последовательным перебором.
	StrategyNeighbors
)

func ParseStrategy(s string) (Strategy, error) {
	switch s {
	case "", "grid":
		return StrategyGrid, nil
	case "neighbors":
		return StrategyNeighbors, nil
	}
	return StrategyGrid, fmt.Errorf("unknown index strategy %q", s)
}

func (s Strategy) String() string {
	if s == StrategyNeighbors {
		return "neighbors"
	}
	return "grid"
}

type Options struct {
	Step     float64
	Strategy Strategy
}

type cell struct {
	x, y, z int64
}

// Index нумерует узлы модели, начиная с 1, в порядке первого появления.
type Index struct {
	opts  Options
	nodes []geometry.Point
	cells map[cell][]int // ячейка → номера узлов
}

func NewIndex(opts Options) *Index {
	if opts.Step <= 0 {
		opts.Step = geometry.DefaultAccuracy
	}
	return &Index{
		opts:  opts,
		cells: make(map[cell][]int),
	}
}

// Build нумерует все точки коллекции: отдельные точки, концы линий, углы граней.
func Build(e *geometry.Entities, opts Options) *Index {
	idx := NewIndex(opts)
	for _, p := range e.AllPoints() {
		idx.Add(p)
	}
	return idx
}

// Add возвращает номер узла точки, создавая узел при первом появлении.
func (idx *Index) Add(p geometry.Point) int {
	if i, ok := idx.IndexOf(p); ok {
		return i
	}
	idx.nodes = append(idx.nodes, p)
	i := len(idx.nodes)
	c := idx.cellOf(p)
	idx.cells[c] = append(idx.cells[c], i)
	return i
}

// IndexOf ищет узел точки без добавления.
func (idx *Index) IndexOf(p geometry.Point) (int, bool) {
	c := idx.cellOf(p)
	if idx.opts.Strategy == StrategyGrid {
		if ids := idx.cells[c]; len(ids) > 0 {
			return ids[0], true
		}
		return 0, false
	}

	best := 0
	for dx := int64(-1); dx <= 1; dx++ {
		for dy := int64(-1); dy <= 1; dy++ {
			for dz := int64(-1); dz <= 1; dz++ {
				for _, i := range idx.cells[cell{c.x + dx, c.y + dy, c.z + dz}] {
					if best != 0 && i >= best {
						break
					}
					if p.Equal(idx.nodes[i-1]) {
						best = i
						break
					}
				}
			}
		}
	}
	return best, best != 0
}

// Len возвращает количество узлов.
func (idx *Index) Len() int {
	return len(idx.nodes)
}

// Node возвращает представителя узла i (1-based).
func (idx *Index) Node(i int) geometry.Point {
	return idx.nodes[i-1]
}

// Nodes возвращает представителей узлов в порядке номеров.
func (idx *Index) Nodes() []geometry.Point {
	return idx.nodes
}

// cellOf: сетка округляет к ближайшему кратному шага, соседний поиск
// берёт ячейку снизу, чтобы точки на расстоянии не больше шага
// всегда оказывались в соседних ячейках, в том числе около нуля.
func (idx *Index) cellOf(p geometry.Point) cell {
	q := math.Round
	if idx.opts.Strategy == StrategyNeighbors {
		q = math.Floor
	}
	return cell{
		x: quantize(q, p.X, idx.opts.Step),
		y: quantize(q, p.Y, idx.opts.Step),
		z: quantize(q, p.Z, idx.opts.Step),
	}
}

func quantize(q func(float64) float64, v, step float64) int64 {
	return int64(q(v / step))
}
