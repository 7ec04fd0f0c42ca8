package layout

import (
	"strings"
	"testing"
	"unicode/utf8"

	"pgregory.net/rapid"
)

// runeMeasurer charges one unit per rune regardless of font size.
var runeMeasurer = MeasureFunc(func(text string, _ float64) (float64, error) {
	return float64(utf8.RuneCountInString(text)), nil
})

var brokenMeasurer = MeasureFunc(func(string, float64) (float64, error) {
	return 0, ErrMeasureUnavailable
})

func TestWrap_Greedy(t *testing.T) {
	got := Wrap("the quick brown fox jumps", 10, 10, runeMeasurer)
	want := []string{"the quick", "brown fox", "jumps"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestWrap_CollapsesWhitespace(t *testing.T) {
	got := Wrap("  a \t\n b   c  ", 100, 10, runeMeasurer)
	if len(got) != 1 || got[0] != "a b c" {
		t.Errorf("expected single collapsed line, got %q", got)
	}
}

func TestWrap_LongWordStaysWhole(t *testing.T) {
	got := Wrap("supercalifragilistic is long", 5, 10, runeMeasurer)
	if got[0] != "supercalifragilistic" {
		t.Errorf("expected long word alone on first line, got %q", got)
	}
	for _, l := range got {
		if strings.Contains(l, "-") {
			t.Errorf("did not expect hyphenation, got %q", l)
		}
	}
}

func TestWrap_EmptyLabel(t *testing.T) {
	for _, label := range []string{"", "   "} {
		got := Wrap(label, 150, 10, runeMeasurer)
		if len(got) != 1 || got[0] != "" {
			t.Errorf("expected [\"\"] for %q, got %q", label, got)
		}
	}
}

func TestWrap_UnavailableMeasurerUsesEstimate(t *testing.T) {
	label := "one two three four five six seven eight nine ten"
	withBroken := Wrap(label, 60, 10, brokenMeasurer)
	withNil := Wrap(label, 60, 10, nil)
	if strings.Join(withBroken, "|") != strings.Join(withNil, "|") {
		t.Errorf("expected broken measurer to behave like the estimate: %q vs %q", withBroken, withNil)
	}
	if len(withNil) < 2 {
		t.Errorf("expected the estimate to wrap, got %q", withNil)
	}
	if w := measureOrDefault(brokenMeasurer, "abcd", 10); w != EstimateWidth("abcd", 10) {
		t.Errorf("expected estimate width, got %v", w)
	}
}

func TestEstimateWidth_WideRunes(t *testing.T) {
	if EstimateWidth("日本", 10) <= EstimateWidth("ab", 10) {
		t.Error("expected double-width runes to estimate wider")
	}
}

func TestWrapProperties(t *testing.T) {
	word := rapid.StringMatching(`[a-zA-Z0-9]{1,12}`)
	sep := rapid.SampledFrom([]string{" ", "  ", "\t", "\n", " \t "})

	rapid.Check(t, func(t *rapid.T) {
		words := rapid.SliceOfN(word, 0, 20).Draw(t, "words")
		var b strings.Builder
		for i, w := range words {
			if i > 0 {
				b.WriteString(sep.Draw(t, "sep"))
			}
			b.WriteString(w)
		}
		label := b.String()

		longest := 0
		for _, w := range words {
			if len(w) > longest {
				longest = len(w)
			}
		}
		maxWidth := float64(longest + rapid.IntRange(0, 30).Draw(t, "slack"))

		lines := Wrap(label, maxWidth, 10, runeMeasurer)
		if len(lines) < 1 {
			t.Fatal("expected at least one line")
		}
		if got, want := strings.Join(lines, " "), strings.Join(strings.Fields(label), " "); got != want {
			t.Fatalf("lost words: expected %q, got %q", want, got)
		}
		for _, l := range lines {
			if float64(len(l)) > maxWidth {
				t.Fatalf("line %q wider than %v", l, maxWidth)
			}
		}
		again := Wrap(label, maxWidth, 10, runeMeasurer)
		if strings.Join(again, "\n") != strings.Join(lines, "\n") {
			t.Fatal("wrap is not repeatable")
		}
	})
}
