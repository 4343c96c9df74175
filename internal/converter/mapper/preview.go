package mapper

import (
	"fmt"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"

	"lira-converter/internal/converter/geometry"
	"lira-converter/internal/converter/layername"
)

// ============================================================
// DXF preview
// ============================================================

// WritePreviewDXF сохраняет нумерованную модель обратно в DXF: узлы склеены,
// каждому слою соответствует слой "<тип> <номер>", что позволяет проверить
// результат в любой CAD-программе.
func WritePreviewDXF(path string, x *Exporter) error {
	d := dxf.NewDrawing()
	d.Header().LtScale = 1.0

	// слой "0" есть в любом новом чертеже
	created := map[string]bool{"0": true}
	use := func(l *geometry.Layer) error {
		name := previewLayerName(x, l)
		if created[name] {
			return d.ChangeLayer(name)
		}
		created[name] = true
		_, err := d.AddLayer(name, previewColor(l), dxf.DefaultLineType, true)
		return err
	}

	node := func(p geometry.Point) geometry.Point {
		if i, ok := x.Index().IndexOf(p); ok {
			return x.Index().Node(i)
		}
		return p
	}

	for _, p := range x.Entities().Points {
		if err := use(p.Layer); err != nil {
			return fmt.Errorf("preview layer: %w", err)
		}
		n := node(p)
		if _, err := d.Point(n.X, n.Y, n.Z); err != nil {
			return fmt.Errorf("preview point: %w", err)
		}
	}

	for _, l := range x.Entities().Lines {
		if err := use(l.Layer); err != nil {
			return fmt.Errorf("preview layer: %w", err)
		}
		s, e := node(l.Start), node(l.End)
		if _, err := d.Line(s.X, s.Y, s.Z, e.X, e.Y, e.Z); err != nil {
			return fmt.Errorf("preview line: %w", err)
		}
	}

	for _, f := range x.Entities().Faces {
		if err := use(f.Layer); err != nil {
			return fmt.Errorf("preview layer: %w", err)
		}
		corners := make([][]float64, 0, len(f.Points))
		for _, p := range f.Points {
			n := node(p)
			corners = append(corners, []float64{n.X, n.Y, n.Z})
		}
		if _, err := d.ThreeDFace(corners); err != nil {
			return fmt.Errorf("preview face: %w", err)
		}
	}

	if err := d.SaveAs(path); err != nil {
		return fmt.Errorf("save preview: %w", err)
	}
	return nil
}

func previewLayerName(x *Exporter, l *geometry.Layer) string {
	if l == nil {
		return "0"
	}
	if i := x.LayerIndex(l); i > 0 {
		return fmt.Sprintf("%s %d", l.Kind, i)
	}
	if l.Kind == layername.Point && l.Valid {
		return "DOF " + layername.DOFCodes(l.UniqueName)
	}
	return l.Name
}

func previewColor(l *geometry.Layer) color.ColorNumber {
	if l == nil {
		return color.White
	}
	switch l.Kind {
	case layername.Line:
		return color.Red
	case layername.Face:
		return color.Cyan
	}
	return color.Green
}
