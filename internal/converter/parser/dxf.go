package parser

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"lira-converter/internal/converter/geometry"
	"lira-converter/internal/converter/layername"
)

// ============================================================
// DXF Entity Parser
// ============================================================

const defaultLayerName = "0"

// Options управляет разбором чертежа.
type Options struct {
	// Encoding: метка кодировки WHATWG, например "windows-1251".
	// Пустая строка означает UTF-8.
	Encoding string
	// Accuracy записывается в каждую прочитанную точку.
	Accuracy float64
	// Decoder разбирает имена слоёв, по умолчанию layername.Default.
	Decoder layername.Decoder
}

func (o Options) withDefaults() Options {
	if o.Accuracy <= 0 {
		o.Accuracy = geometry.DefaultAccuracy
	}
	if o.Decoder == nil {
		o.Decoder = layername.Default
	}
	return o
}

// Parse разбирает последовательность строк "код/значение".
func Parse(lines []string) *geometry.Entities {
	return ParseWith(lines, Options{})
}

func ParseWith(lines []string, opts Options) *geometry.Entities {
	p := newStateMachine(opts)
	for i := 0; i+1 < len(lines); i += 2 {
		p.feed(strings.TrimSpace(lines[i]), strings.TrimSpace(lines[i+1]))
	}
	return p.finish()
}

// ParseReader читает чертёж построчно, перекодируя вход в UTF-8.
func ParseReader(r io.Reader, opts Options) (*geometry.Entities, error) {
	decoded, err := decodeInput(r, opts.Encoding)
	if err != nil {
		return nil, err
	}

	p := newStateMachine(opts)
	scanner := bufio.NewScanner(decoded)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var code string
	haveCode := false
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !haveCode {
			code = line
			haveCode = true
			continue
		}
		p.feed(code, line)
		haveCode = false
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read dxf: %w", err)
	}
	return p.finish(), nil
}

// ============================================================
// State machine
// ============================================================

type stateMachine struct {
	opts      Options
	entities  *geometry.Entities
	inSection bool // внутри ENTITIES
	awaitName bool // после 0/SECTION ждём 2/<имя>

	currentType  string
	currentLayer string
	fields       map[string]float64
}

func newStateMachine(opts Options) *stateMachine {
	return &stateMachine{
		opts:     opts.withDefaults(),
		entities: geometry.NewEntities(),
		fields:   make(map[string]float64),
	}
}

func (p *stateMachine) feed(code, value string) {
	if p.awaitName {
		p.awaitName = false
		if code == "2" {
			p.inSection = value == "ENTITIES"
			return
		}
	}

	if code == "0" {
		p.flush()
		switch value {
		case "SECTION":
			p.awaitName = true
			p.currentType = ""
		case "ENDSEC":
			p.inSection = false
			p.currentType = ""
		default:
			if p.inSection {
				p.currentType = value
			} else {
				p.currentType = ""
			}
		}
		return
	}

	if !p.inSection || p.currentType == "" {
		return
	}

	switch code {
	case "8":
		p.currentLayer = value
	case "10", "20", "30", "11", "21", "31", "12", "22", "32", "13", "23", "33":
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			p.fields[code] = v
		}
	}
}

func (p *stateMachine) flush() {
	defer p.reset()

	if !geometry.IsSupported(p.currentType) || len(p.fields) == 0 {
		return
	}

	switch p.currentType {
	case geometry.TagPoint:
		layer := p.layer(layername.Point)
		p.entities.Points = append(p.entities.Points, p.point("0", layer))
	case geometry.TagLine:
		layer := p.layer(layername.Line)
		p.entities.Lines = append(p.entities.Lines, geometry.Line{
			Start: p.point("0", layer),
			End:   p.point("1", layer),
			Layer: layer,
		})
	case geometry.TagFace:
		layer := p.layer(layername.Face)
		p.entities.Faces = append(p.entities.Faces, geometry.Face{
			Points: [4]geometry.Point{
				p.point("0", layer),
				p.point("1", layer),
				p.point("2", layer),
				p.point("3", layer),
			},
			Layer: layer,
		})
	}
}

func (p *stateMachine) reset() {
	clear(p.fields)
	p.currentLayer = ""
}

func (p *stateMachine) finish() *geometry.Entities {
	p.flush()
	return p.entities
}

func (p *stateMachine) layer(kind layername.Kind) *geometry.Layer {
	name := p.currentLayer
	if name == "" {
		name = defaultLayerName
	}
	return geometry.NewLayerWith(p.opts.Decoder, name, kind)
}

// point собирает точку из кодов 1<n>, 2<n>, 3<n>; отсутствующие координаты равны 0.
func (p *stateMachine) point(n string, layer *geometry.Layer) geometry.Point {
	return geometry.Point{
		X:        p.fields["1"+n],
		Y:        p.fields["2"+n],
		Z:        p.fields["3"+n],
		Layer:    layer,
		Accuracy: p.opts.Accuracy,
	}
}
