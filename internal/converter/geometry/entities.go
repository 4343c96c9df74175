package geometry

// ============================================================
// Entity collection
// ============================================================

// Имена типов сущностей в секции ENTITIES.
const (
	TagPoint = "POINT"
	TagLine  = "LINE"
	TagFace  = "3DFACE"
)

// Tags перечисляет поддерживаемые типы в порядке обхода точек.
var Tags = []string{TagPoint, TagLine, TagFace}

// Entities хранит результат одного разбора чертежа. После построения
// не меняется: фильтрация возвращает новую коллекцию.
type Entities struct {
	Points []Point
	Lines  []Line
	Faces  []Face
}

func NewEntities() *Entities {
	return &Entities{
		Points: []Point{},
		Lines:  []Line{},
		Faces:  []Face{},
	}
}

// IsSupported сообщает, умеет ли конвертер строить сущность такого типа.
func IsSupported(tag string) bool {
	switch tag {
	case TagPoint, TagLine, TagFace:
		return true
	}
	return false
}

// Counts возвращает количество сущностей по типам.
func (e *Entities) Counts() map[string]int {
	return map[string]int{
		TagPoint: len(e.Points),
		TagLine:  len(e.Lines),
		TagFace:  len(e.Faces),
	}
}

func (e *Entities) Len() int {
	return len(e.Points) + len(e.Lines) + len(e.Faces)
}

// AllPoints перечисляет все точки модели в порядке, задающем нумерацию
// узлов: отдельные точки, концы линий, углы граней.
func (e *Entities) AllPoints() []Point {
	out := make([]Point, 0, len(e.Points)+2*len(e.Lines)+4*len(e.Faces))
	out = append(out, e.Points...)
	for _, l := range e.Lines {
		out = append(out, l.Start, l.End)
	}
	for _, f := range e.Faces {
		out = append(out, f.Points[:]...)
	}
	return out
}

// FilterValid оставляет только сущности с валидными слоями.
func (e *Entities) FilterValid() *Entities {
	out := NewEntities()
	for _, p := range e.Points {
		if p.Layer.IsValid() {
			out.Points = append(out.Points, p)
		}
	}
	for _, l := range e.Lines {
		if l.Layer.IsValid() {
			out.Lines = append(out.Lines, l)
		}
	}
	for _, f := range e.Faces {
		if f.Layer.IsValid() {
			out.Faces = append(out.Faces, f)
		}
	}
	return out
}

// WithPoints возвращает копию коллекции с добавленными отдельными точками.
func (e *Entities) WithPoints(points ...Point) *Entities {
	out := &Entities{
		Points: make([]Point, 0, len(e.Points)+len(points)),
		Lines:  append([]Line{}, e.Lines...),
		Faces:  append([]Face{}, e.Faces...),
	}
	out.Points = append(out.Points, e.Points...)
	out.Points = append(out.Points, points...)
	return out
}

// Layers перечисляет различные слои коллекции в порядке первого появления.
func (e *Entities) Layers() []*Layer {
	seen := make(map[string]bool)
	var out []*Layer
	add := func(l *Layer) {
		if l == nil {
			return
		}
		key := l.Kind.String() + "\x00" + l.Name
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, l)
	}
	for _, p := range e.Points {
		add(p.Layer)
	}
	for _, l := range e.Lines {
		add(l.Layer)
	}
	for _, f := range e.Faces {
		add(f.Layer)
	}
	return out
}
