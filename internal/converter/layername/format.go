package layername

import (
	"math"
	"strconv"
	"strings"
)

// FormatFloat печатает число так, как его ожидает ЛИРА-САПР:
// целые значения с ".0", экспонента вне диапазона [1e-4, 1e16).
func FormatFloat(v float64) string {
	if v == 0 {
		if math.Signbit(v) {
			return "-0.0"
		}
		return "0.0"
	}
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}

	abs := math.Abs(v)
	if abs >= 1e-4 && abs < 1e16 {
		s := strconv.FormatFloat(v, 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		return s
	}
	return strconv.FormatFloat(v, 'e', -1, 64)
}
