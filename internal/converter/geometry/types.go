package geometry

import (
	"math"

	"lira-converter/internal/converter/layername"
)

// ============================================================
// Geometry primitives
// ============================================================

// DefaultAccuracy: допуск совпадения координат, в единицах чертежа.
const DefaultAccuracy = 0.005

// Layer описывает слой чертежа с разобранными структурными метаданными.
// UniqueName и Valid вычисляются один раз в NewLayer.
type Layer struct {
	Name       string
	Kind       layername.Kind
	UniqueName string
	Valid      bool
}

func NewLayer(name string, kind layername.Kind) *Layer {
	return NewLayerWith(layername.Default, name, kind)
}

// NewLayerWith строит слой с нестандартными правилами разбора имени.
func NewLayerWith(d layername.Decoder, name string, kind layername.Kind) *Layer {
	valid, unique := d.Decode(name, kind)
	return &Layer{
		Name:       name,
		Kind:       kind,
		UniqueName: unique,
		Valid:      valid,
	}
}

// Key возвращает ключ сравнения слоёв: разные исходные имена с одинаковыми
// метаданными считаются одним слоем.
func (l *Layer) Key() string {
	if l == nil {
		return ""
	}
	return l.UniqueName
}

func (l *Layer) IsValid() bool {
	return l != nil && l.Valid
}

type Point struct {
	X        float64
	Y        float64
	Z        float64
	Layer    *Layer
	Accuracy float64
}

func NewPoint(x, y, z float64, layer *Layer) Point {
	return Point{X: x, Y: y, Z: z, Layer: layer, Accuracy: DefaultAccuracy}
}

// Equal сравнивает точки покоординатно с допуском p.Accuracy.
// Отношение не транзитивно: A≈B и B≈C не дают A≈C.
func (p Point) Equal(q Point) bool {
	return math.Abs(p.X-q.X) <= p.Accuracy &&
		math.Abs(p.Y-q.Y) <= p.Accuracy &&
		math.Abs(p.Z-q.Z) <= p.Accuracy
}

// Distance возвращает евклидово расстояние между точками.
func Distance(a, b Point) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

type Line struct {
	Start Point
	End   Point
	Layer *Layer
}

// Face описывает плоский четырёхугольник 3DFACE. Обход контура:
// Points[0] → Points[1] → Points[3] → Points[2].
type Face struct {
	Points [4]Point
	Layer  *Layer
}

// Distinct возвращает углы в исходном порядке без совпадающих точек.
func (f Face) Distinct() []Point {
	out := make([]Point, 0, len(f.Points))
	for _, p := range f.Points {
		dup := false
		for _, q := range out {
			if q.Equal(p) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, p)
		}
	}
	return out
}

// IsTriangle: 3DFACE с повторённым углом описывает треугольник.
func (f Face) IsTriangle() bool {
	return len(f.Distinct()) <= 3
}
