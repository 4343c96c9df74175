package layername

import (
	"regexp"
	"strconv"
	"strings"
)

// ============================================================
// Layer kinds
// ============================================================

type Kind int

const (
	Point Kind = iota
	Line
	Face
)

func (k Kind) String() string {
	switch k {
	case Point:
		return "POINT"
	case Line:
		return "LINE"
	case Face:
		return "FACE"
	}
	return "UNKNOWN"
}

// ============================================================
// Decoder
// ============================================================

// Decoder извлекает структурные метаданные из имени слоя.
type Decoder interface {
	Decode(name string, kind Kind) (valid bool, unique string)
}

// DecoderFunc позволяет использовать обычную функцию как Decoder.
type DecoderFunc func(name string, kind Kind) (bool, string)

func (f DecoderFunc) Decode(name string, kind Kind) (bool, string) {
	return f(name, kind)
}

// Default содержит правила разбора имён слоёв, принятые в чертежах для ЛИРЫ.
var Default Decoder = DecoderFunc(Decode)

var (
	linePattern  = regexp.MustCompile(`B\s*(\d+)\s*H\s*(\d+)`)
	facePattern  = regexp.MustCompile(`H\s*(\d+)`)
	dofPattern   = regexp.MustCompile(`DOF(\s*x)?(\s*y)?(\s*z)?(\s*fx)?(\s*fy)?(\s*fz)?\s*$`)
	dofTokens    = regexp.MustCompile(`DOF|fx|fy|fz|x|y|z`)
	blankPattern = regexp.MustCompile(`\s+`)
)

// Decode вычисляет признак валидности и каноническое имя слоя.
// Невалидный слой сохраняет исходное имя.
func Decode(name string, kind Kind) (bool, string) {
	switch kind {
	case Line:
		return decodeLine(name)
	case Face:
		return decodeFace(name)
	case Point:
		return decodePoint(name)
	}
	return false, name
}

// decodeLine: "B<сечение> H<шарнир>" → "12.0 34.0"
func decodeLine(name string) (bool, string) {
	m := linePattern.FindStringSubmatch(name)
	if m == nil {
		return false, name
	}
	parts := make([]string, 0, 2)
	for _, group := range m[1:] {
		v, err := strconv.ParseFloat(group, 64)
		if err != nil {
			return false, name
		}
		parts = append(parts, FormatFloat(v))
	}
	return true, strings.Join(parts, " ")
}

// decodeFace: каждая толщина H<мм> переводится в сотые доли.
func decodeFace(name string) (bool, string) {
	matches := facePattern.FindAllStringSubmatch(name, -1)
	if len(matches) == 0 {
		return false, name
	}
	parts := make([]string, 0, len(matches))
	for _, m := range matches {
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return false, name
		}
		parts = append(parts, FormatFloat(v/100))
	}
	return true, strings.Join(parts, " ")
}

// decodePoint: "DOF x y fz" в конце имени. Все токены DOF/x/y/z/fx/fy/fz
// в имени должны принадлежать найденному хвосту, иначе "xx" или
// посторонний "x" в начале имени дали бы ложное совпадение.
func decodePoint(name string) (bool, string) {
	loc := dofPattern.FindStringIndex(name)
	if loc == nil {
		return false, name
	}
	run := name[loc[0]:loc[1]]

	runTokens := len(blankPattern.ReplaceAllString(run, ""))
	allTokens := len(name) - len(dofTokens.ReplaceAllString(name, ""))
	if runTokens != allTokens {
		return false, name
	}

	return true, strings.TrimSpace(strings.Replace(run, "DOF", "", 1))
}

// ============================================================
// DOF codes
// ============================================================

// порядок важен: двухсимвольные токены раньше однобуквенных
var dofReplacer = strings.NewReplacer(
	"fx", "4",
	"fy", "5",
	"fz", "6",
	"x", "1",
	"y", "2",
	"z", "3",
)

// DOFCodes переводит "x y fz" в числовые коды степеней свободы "1 2 6".
func DOFCodes(unique string) string {
	return dofReplacer.Replace(unique)
}
