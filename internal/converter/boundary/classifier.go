package boundary

import (
	"context"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"lira-converter/internal/converter/geometry"
	"lira-converter/internal/converter/layername"
)

// ============================================================
// Geometric tests
// ============================================================

// OnLine проверяет, что P лежит на отрезке AB: |AB| = |AP| + |PB|.
// tol = 0 даёт точное сравнение вещественных чисел.
func OnLine(l geometry.Line, p geometry.Point, tol float64) bool {
	ab := geometry.Distance(l.Start, l.End)
	ap := geometry.Distance(l.Start, p)
	pb := geometry.Distance(p, l.End)
	return math.Abs(ab-(ap+pb)) <= tol
}

// TriangleArea считает площадь треугольника по формуле Герона.
func TriangleArea(a, b, c geometry.Point) float64 {
	ab := geometry.Distance(a, b)
	bc := geometry.Distance(b, c)
	ca := geometry.Distance(c, a)
	s := (ab + bc + ca) / 2
	sq := s * (s - ab) * (s - bc) * (s - ca)
	if sq <= 0 {
		// вырожденный треугольник или шум округления
		return 0
	}
	return math.Sqrt(sq)
}

// FaceArea считает площадь плоского четырёхугольника ABDC, где
// A, B, C, D = Points[0], Points[1], Points[2], Points[3].
func FaceArea(f geometry.Face) float64 {
	a, b, c, d := f.Points[0], f.Points[1], f.Points[2], f.Points[3]
	return TriangleArea(a, b, c) + TriangleArea(b, c, d)
}

// InFace: сумма площадей треугольников с вершиной P совпадает с площадью
// грани с точностью P.Accuracy.
func InFace(f geometry.Face, p geometry.Point) bool {
	a, b, c, d := f.Points[0], f.Points[1], f.Points[2], f.Points[3]
	sum := TriangleArea(a, p, c) +
		TriangleArea(a, p, b) +
		TriangleArea(b, p, d) +
		TriangleArea(c, p, d)
	return math.Abs(sum-FaceArea(f)) <= p.Accuracy
}

// ============================================================
// Classifier
// ============================================================

// Constraints содержит примитивы с закреплениями: линии и грани, чьё имя слоя
// разбирается как слой точек с DOF.
type Constraints struct {
	Lines []geometry.Line
	Faces []geometry.Face
}

// Candidates: конструктивные линии и грани, чьи узлы проверяются.
type Candidates struct {
	Lines []geometry.Line
	Faces []geometry.Face
}

// SplitConstraints делит линии и грани коллекции на закрепления и кандидаты.
func SplitConstraints(e *geometry.Entities) (Constraints, Candidates) {
	var cons Constraints
	var cand Candidates
	for _, l := range e.Lines {
		if isConstraint(l.Layer) {
			cons.Lines = append(cons.Lines, l)
		} else {
			cand.Lines = append(cand.Lines, l)
		}
	}
	for _, f := range e.Faces {
		if isConstraint(f.Layer) {
			cons.Faces = append(cons.Faces, f)
		} else {
			cand.Faces = append(cand.Faces, f)
		}
	}
	return cons, cand
}

func isConstraint(l *geometry.Layer) bool {
	if l == nil {
		return false
	}
	valid, _ := layername.Decode(l.Name, layername.Point)
	return valid
}

type Classifier struct {
	// Допуск проверки OnLine, 0 означает точное сравнение.
	LineTolerance float64
	// Workers ограничивает число параллельно обрабатываемых закреплений.
	Workers int
}

// Propagate переносит закрепления на узлы кандидатов: для каждой найденной
// точки создаётся новая точка со слоем закрепления. Результат упорядочен:
// линии-закрепления, затем грани-закрепления, внутри по кандидатам.
func (c Classifier) Propagate(ctx context.Context, cons Constraints, cand Candidates) ([]geometry.Point, error) {
	linePts := pointsOfLines(cand.Lines)
	facePts := pointsOfFaces(cand.Faces)

	total := len(cons.Lines) + len(cons.Faces)
	results := make([][]geometry.Point, total)

	workers := c.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, l := range cons.Lines {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			layer := geometry.NewLayer(l.Layer.Name, layername.Point)
			test := func(p geometry.Point) bool { return OnLine(l, p, c.LineTolerance) }
			results[i] = match(test, layer, linePts, facePts)
			return nil
		})
	}
	for j, f := range cons.Faces {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			layer := geometry.NewLayer(f.Layer.Name, layername.Point)
			test := func(p geometry.Point) bool { return InFace(f, p) }
			results[len(cons.Lines)+j] = match(test, layer, linePts, facePts)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []geometry.Point
	for _, r := range results {
		out = append(out, r...)
	}
	return out, nil
}

func match(test func(geometry.Point) bool, layer *geometry.Layer, pools ...[]geometry.Point) []geometry.Point {
	var out []geometry.Point
	for _, pool := range pools {
		for _, p := range pool {
			if test(p) {
				out = append(out, geometry.Point{
					X:        p.X,
					Y:        p.Y,
					Z:        p.Z,
					Layer:    layer,
					Accuracy: p.Accuracy,
				})
			}
		}
	}
	return out
}

func pointsOfLines(lines []geometry.Line) []geometry.Point {
	out := make([]geometry.Point, 0, 2*len(lines))
	for _, l := range lines {
		out = append(out, l.Start, l.End)
	}
	return out
}

func pointsOfFaces(faces []geometry.Face) []geometry.Point {
	out := make([]geometry.Point, 0, 4*len(faces))
	for _, f := range faces {
		out = append(out, f.Points[:]...)
	}
	return out
}
