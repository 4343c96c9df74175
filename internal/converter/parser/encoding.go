package parser

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// decodeInput оборачивает поток декодером кодировки. Чертежи из AutoCAD
// до 2007 года обычно сохранены в ANSI_1251.
func decodeInput(r io.Reader, label string) (io.Reader, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return r, nil
	}

	enc, err := htmlindex.Get(normalizeLabel(label))
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q: %w", label, err)
	}
	return transform.NewReader(r, enc.NewDecoder()), nil
}

// normalizeLabel понимает обозначения из $DWGCODEPAGE: "ANSI_1251" → "windows-1251".
func normalizeLabel(label string) string {
	lower := strings.ToLower(label)
	if rest, ok := strings.CutPrefix(lower, "ansi_"); ok {
		return "windows-" + rest
	}
	return lower
}
