package mapper

import (
	"bytes"
	"strings"
	"testing"

	"lira-converter/internal/converter/geometry"
	"lira-converter/internal/converter/graph"
	"lira-converter/internal/converter/layername"
)

func at(x, y, z float64, l *geometry.Layer) geometry.Point {
	return geometry.NewPoint(x, y, z, l)
}

func sampleEntities() *geometry.Entities {
	beam := geometry.NewLayer("B12 H34", layername.Line)
	beam2 := geometry.NewLayer("ригель B 12 H 34", layername.Line)
	misc := geometry.NewLayer("misc", layername.Line)
	slab := geometry.NewLayer("H20", layername.Face)
	wall := geometry.NewLayer("H30", layername.Face)
	dof := geometry.NewLayer("DOF x y", layername.Point)

	e := geometry.NewEntities()
	e.Points = append(e.Points, at(0, 0, 0, dof))
	e.Lines = append(e.Lines,
		geometry.Line{Start: at(0, 0, 0, beam), End: at(0.998, 0.998, 0.998, beam), Layer: beam},
		geometry.Line{Start: at(1.002, 1.002, 1.002, beam2), End: at(2, 0, 0, beam2), Layer: beam2},
		geometry.Line{Start: at(50, 50, 50, misc), End: at(60, 60, 60, misc), Layer: misc},
	)
	e.Faces = append(e.Faces,
		geometry.Face{Layer: slab, Points: [4]geometry.Point{
			at(0, 0, 0, slab), at(2, 0, 0, slab), at(0, 2, 0, slab), at(2, 2, 0, slab),
		}},
		geometry.Face{Layer: wall, Points: [4]geometry.Point{
			at(2, 0, 0, wall), at(4, 0, 0, wall), at(2, 2, 0, wall), at(2, 2, 0, wall),
		}},
	)
	return e
}

const wantFull = `( 0/ 1; test/ 2; 5/ 33; M 1 CM 100 T 1 C 1/ )
( 1/
5 1 1 2/
5 1 2 3/
44 2 1 3 5 4/
42 3 3 6 5/
 )
( 3/
1 S0 3.06E6 12.0 34.0/
2 3.06E6 0.2 0.2/
3 3.06E6 0.2 0.3/
 )
( 4/
0.0 0.0 0.0/
0.998 0.998 0.998/
2.0 0.0 0.0/
0.0 2.0 0.0/
2.0 2.0 0.0/
4.0 0.0 0.0/
 )
`

func TestExportFull(t *testing.T) {
	x := NewExporter(sampleEntities().FilterValid(), ExporterOptions{Title: "test"})

	var buf bytes.Buffer
	if err := x.Export(&buf, ModeFull); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != wantFull {
		t.Errorf("full export mismatch\n--- got ---\n%s\n--- want ---\n%s", got, wantFull)
	}
}

func TestExportPartialIncludesConstraints(t *testing.T) {
	x := NewExporter(sampleEntities().FilterValid(), ExporterOptions{})
	out := x.String(ModePartial)

	if strings.Contains(out, "( 0/") {
		t.Error("partial export must not contain the header document")
	}
	if !strings.HasSuffix(out, "( 5/\n1 1 2/\n )\n") {
		t.Errorf("constraints block missing:\n%s", out)
	}
}

func TestExportIsDeterministic(t *testing.T) {
	e := sampleEntities().FilterValid()
	first := NewExporter(e, ExporterOptions{}).String(ModePartial)
	for i := 0; i < 10; i++ {
		if again := NewExporter(e, ExporterOptions{}).String(ModePartial); again != first {
			t.Fatalf("run %d differs", i)
		}
	}
}

func TestExporterViewsFollowFilteredCollection(t *testing.T) {
	e := sampleEntities()

	unfiltered := NewExporter(e, ExporterOptions{})
	filtered := NewExporter(e.FilterValid(), ExporterOptions{})

	if unfiltered.Index().Len() != 8 {
		t.Errorf("unfiltered nodes = %d, want 8", unfiltered.Index().Len())
	}
	if filtered.Index().Len() != 6 {
		t.Errorf("filtered nodes = %d, want 6", filtered.Index().Len())
	}
	if len(unfiltered.AllPoints()) != 1+6+8 || len(filtered.AllPoints()) != 1+4+8 {
		t.Errorf("all points = %d / %d", len(unfiltered.AllPoints()), len(filtered.AllPoints()))
	}
	// невалидный слой не получает номер жёсткости
	if n := unfiltered.LayerIndex(e.Lines[2].Layer); n != 0 {
		t.Errorf("invalid layer index = %d", n)
	}
}

func TestLayersAreCollapsedByUniqueName(t *testing.T) {
	x := NewExporter(sampleEntities().FilterValid(), ExporterOptions{})
	layers := x.Layers()
	if len(layers) != 3 {
		t.Fatalf("layers = %d, want 3", len(layers))
	}
	e := x.Entities()
	if x.LayerIndex(e.Lines[0].Layer) != x.LayerIndex(e.Lines[1].Layer) {
		t.Error("equivalent beam layers got different indices")
	}
}

func TestLineLayerOwnedByOtherNodesStillIndexed(t *testing.T) {
	// оба конца линии уже заняты точками другого слоя
	dof := geometry.NewLayer("DOF z", layername.Point)
	beam := geometry.NewLayer("B5 H5", layername.Line)

	e := geometry.NewEntities()
	e.Points = append(e.Points, at(0, 0, 0, dof), at(1, 0, 0, dof))
	e.Lines = append(e.Lines, geometry.Line{Start: at(0, 0, 0, beam), End: at(1, 0, 0, beam), Layer: beam})

	x := NewExporter(e, ExporterOptions{})
	objects := x.Objects()
	if len(objects) != 1 || objects[0] != "5 1 1 2/" {
		t.Errorf("objects = %v", objects)
	}
	if st := x.Stiffness(); len(st) != 1 || st[0] != "1 S0 3.06E6 5.0 5.0/" {
		t.Errorf("stiffness = %v", st)
	}
}

func TestConstraintsDeduplicated(t *testing.T) {
	dof := geometry.NewLayer("DOF fx fz", layername.Point)
	e := geometry.NewEntities()
	e.Points = append(e.Points, at(3, 3, 3, dof), at(3.001, 3, 3, dof), at(4, 4, 4, dof))

	x := NewExporter(e, ExporterOptions{Index: graph.Options{Strategy: graph.StrategyNeighbors}})
	got := x.Constraints()
	want := []string{"1 4 6/", "2 4 6/"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("constraints = %v, want %v", got, want)
	}
}

func TestFaceRecordCountsDistinctNodes(t *testing.T) {
	slab := geometry.NewLayer("H20", layername.Face)

	testCases := []struct {
		name    string
		corners [4]geometry.Point
		want    string
	}{
		// углы 1 и 3 равны с допуском, но лежат в разных ячейках сетки
		{"equal corners split by grid", [4]geometry.Point{
			at(0, 0, 0, slab), at(1.0024, 0, 0, slab), at(0, 1, 0, slab), at(1.0026, 0, 0, slab),
		}, "44 1 1 2 4 3/"},
		{"repeated corner", [4]geometry.Point{
			at(0, 0, 0, slab), at(1, 0, 0, slab), at(0, 1, 0, slab), at(1.001, 0, 0, slab),
		}, "42 1 1 2 3/"},
		{"quad", [4]geometry.Point{
			at(0, 0, 0, slab), at(1, 0, 0, slab), at(0, 1, 0, slab), at(1, 1, 0, slab),
		}, "44 1 1 2 4 3/"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			e := geometry.NewEntities()
			e.Faces = append(e.Faces, geometry.Face{Layer: slab, Points: tc.corners})

			x := NewExporter(e, ExporterOptions{})
			got := x.Objects()
			if len(got) != 1 || got[0] != tc.want {
				t.Errorf("Objects = %q, want [%q]", got, tc.want)
			}
		})
	}
}

func TestParseMode(t *testing.T) {
	if m, err := ParseMode("partial"); err != nil || m != ModePartial {
		t.Errorf("ParseMode(partial) = %v, %v", m, err)
	}
	if _, err := ParseMode("zip"); err == nil {
		t.Error("expected error")
	}
}
