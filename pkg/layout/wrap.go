package layout

import (
	"strings"

	"github.com/vanderheijden86/mindview/pkg/metrics"
)

// Wrap breaks label into lines no wider than maxWidth, greedily.
//
// Words are split on whitespace runs and rejoined with single spaces. A word
// that does not fit on a line that already has words starts a new line; a
// word wider than maxWidth on its own is kept whole. Wrap always returns at
// least one line, so an empty label yields [""].
func Wrap(label string, maxWidth, fontSize float64, m Measurer) []string {
	defer metrics.Timer(metrics.Wrap)()

	words := strings.Fields(label)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	line := []string{words[0]}
	for _, word := range words[1:] {
		candidate := strings.Join(line, " ") + " " + word
		if measureOrDefault(m, candidate, fontSize) > maxWidth {
			lines = append(lines, strings.Join(line, " "))
			line = []string{word}
			continue
		}
		line = append(line, word)
	}
	return append(lines, strings.Join(line, " "))
}

// LineWidths measures each line with the same fallback rules as Wrap.
func LineWidths(lines []string, fontSize float64, m Measurer) []float64 {
	out := make([]float64, len(lines))
	for i, l := range lines {
		out[i] = measureOrDefault(m, l, fontSize)
	}
	return out
}
