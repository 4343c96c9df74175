package graph

import (
	"testing"

	"lira-converter/internal/converter/geometry"
	"lira-converter/internal/converter/layername"
)

func pt(x, y, z float64) geometry.Point {
	return geometry.NewPoint(x, y, z, nil)
}

func line(layer *geometry.Layer, a, b geometry.Point) geometry.Line {
	a.Layer, b.Layer = layer, layer
	return geometry.Line{Start: a, End: b, Layer: layer}
}

func TestBuildSharesEndpointWithinAccuracy(t *testing.T) {
	layer := geometry.NewLayer("B1 H1", layername.Line)
	e := geometry.NewEntities()
	e.Lines = append(e.Lines,
		line(layer, pt(0, 0, 0), pt(0.998, 0.998, 0.998)),
		line(layer, pt(1.002, 1.002, 1.002), pt(2, 0, 0)),
	)

	for _, s := range []Strategy{StrategyGrid, StrategyNeighbors} {
		t.Run(s.String(), func(t *testing.T) {
			idx := Build(e, Options{Step: 0.005, Strategy: s})

			if idx.Len() != 3 {
				t.Fatalf("Len = %d, want 3", idx.Len())
			}
			a, _ := idx.IndexOf(e.Lines[0].End)
			b, _ := idx.IndexOf(e.Lines[1].Start)
			if a != 2 || b != 2 {
				t.Errorf("shared endpoint indices = %d, %d, want 2", a, b)
			}
			if n := idx.Node(2); n.X != 0.998 {
				t.Errorf("representative = %+v, want first encountered", n)
			}
		})
	}
}

func TestBuildOrderStandaloneThenLinesThenFaces(t *testing.T) {
	l := geometry.NewLayer("B1 H1", layername.Line)
	f := geometry.NewLayer("H10", layername.Face)

	e := geometry.NewEntities()
	e.Faces = append(e.Faces, geometry.Face{Layer: f, Points: [4]geometry.Point{
		pt(10, 0, 0), pt(11, 0, 0), pt(10, 1, 0), pt(1, 0, 0),
	}})
	e.Lines = append(e.Lines, line(l, pt(1, 0, 0), pt(2, 0, 0)))
	e.Points = append(e.Points, pt(5, 5, 5))

	idx := Build(e, Options{})

	want := []float64{5, 1, 2, 10, 11, 10}
	if idx.Len() != len(want) {
		t.Fatalf("Len = %d, want %d", idx.Len(), len(want))
	}
	for i, x := range want {
		if got := idx.Node(i + 1).X; got != x {
			t.Errorf("node %d X = %v, want %v", i+1, got, x)
		}
	}
	if i, _ := idx.IndexOf(pt(1, 0, 0)); i != 2 {
		t.Errorf("face corner reused index %d, want 2", i)
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	e := geometry.NewEntities()
	for i := 0; i < 50; i++ {
		x := float64(i%7) * 0.5
		e.Points = append(e.Points, pt(x, float64(i%3), 0))
	}

	first := Build(e, Options{}).Nodes()
	for run := 0; run < 5; run++ {
		again := Build(e, Options{}).Nodes()
		if len(again) != len(first) {
			t.Fatalf("run %d: %d nodes, want %d", run, len(again), len(first))
		}
		for i := range first {
			if first[i].X != again[i].X || first[i].Y != again[i].Y {
				t.Fatalf("run %d: node %d differs", run, i+1)
			}
		}
	}
}

func TestBuildDistinctBeyondAccuracy(t *testing.T) {
	e := geometry.NewEntities()
	e.Points = append(e.Points, pt(0, 0, 0), pt(0, 0.02, 0), pt(0, 0, -0.02))

	for _, s := range []Strategy{StrategyGrid, StrategyNeighbors} {
		if n := Build(e, Options{Strategy: s}).Len(); n != 3 {
			t.Errorf("%s: Len = %d, want 3", s, n)
		}
	}
}

// Известное ограничение сетки: точки в пределах допуска по разные
// стороны границы ячейки получают разные узлы.
func TestGridBoundaryLimitation(t *testing.T) {
	e := geometry.NewEntities()
	e.Points = append(e.Points, pt(1.0, 0, 0), pt(1.004, 0, 0))

	if !e.Points[0].Equal(e.Points[1]) {
		t.Fatal("points should be equal under tolerance")
	}
	if n := Build(e, Options{Strategy: StrategyGrid}).Len(); n != 2 {
		t.Errorf("grid: Len = %d, want 2 (cell boundary split)", n)
	}
	if n := Build(e, Options{Strategy: StrategyNeighbors}).Len(); n != 1 {
		t.Errorf("neighbors: Len = %d, want 1", n)
	}
}

func TestNeighborsMatchesLinearScan(t *testing.T) {
	testCases := []struct {
		name    string
		xs      []float64
		wantIdx []int
	}{
		// 0.004 склеивается с 0, 0.008 уже нет, 0.0125 склеивается с 0.008
		{"chain", []float64{0, 0.004, 0.008, 0.0125}, []int{1, 1, 2, 2}},
		{"across zero", []float64{-0.0025, 0.0025}, []int{1, 1}},
		{"across negative boundary", []float64{-0.0074, -0.0026}, []int{1, 1}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			e := geometry.NewEntities()
			for _, x := range tc.xs {
				e.Points = append(e.Points, pt(x, 0, 0))
			}

			idx := Build(e, Options{Strategy: StrategyNeighbors})

			want := linearScan(e.Points)
			for i, p := range e.Points {
				got, _ := idx.IndexOf(p)
				if got != tc.wantIdx[i] || got != want[i] {
					t.Errorf("IndexOf(%v) = %d, want %d (linear scan %d)", p.X, got, tc.wantIdx[i], want[i])
				}
			}
		})
	}
}

// linearScan нумерует точки перебором: первый равный узел или новый.
func linearScan(points []geometry.Point) []int {
	var nodes []geometry.Point
	out := make([]int, len(points))
	for i, p := range points {
		for j, n := range nodes {
			if p.Equal(n) {
				out[i] = j + 1
				break
			}
		}
		if out[i] == 0 {
			nodes = append(nodes, p)
			out[i] = len(nodes)
		}
	}
	return out
}

func TestIndexOfMissing(t *testing.T) {
	idx := Build(geometry.NewEntities(), Options{})
	if _, ok := idx.IndexOf(pt(1, 2, 3)); ok {
		t.Error("IndexOf found a point in an empty index")
	}
}

func TestParseStrategy(t *testing.T) {
	if s, err := ParseStrategy("neighbors"); err != nil || s != StrategyNeighbors {
		t.Errorf("ParseStrategy(neighbors) = %v, %v", s, err)
	}
	if s, err := ParseStrategy(""); err != nil || s != StrategyGrid {
		t.Errorf("ParseStrategy(\"\") = %v, %v", s, err)
	}
	if _, err := ParseStrategy("bogus"); err == nil {
		t.Error("expected error")
	}
}
