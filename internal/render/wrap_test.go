package render

import (
	"strings"
	"testing"
	"unicode/utf8"
)

// Character-width measurement keeps the layout math easy to reason about.
func charWidth(s string) float64 { return float64(len(s)) }

func TestWrapWithEllipsis_FitsOnOneLine(t *testing.T) {
	lines := wrapWithEllipsis("short text", 20, 2, charWidth)
	if len(lines) != 1 || lines[0] != "short text" {
		t.Fatalf("lines = %v", lines)
	}
}

func TestWrapWithEllipsis_WrapsOnWordBoundary(t *testing.T) {
	lines := wrapWithEllipsis("alpha beta gamma delta", 11, 3, charWidth)
	if len(lines) != 2 {
		t.Fatalf("lines = %v", lines)
	}
	if lines[0] != "alpha beta" || lines[1] != "gamma delta" {
		t.Fatalf("lines = %v", lines)
	}
}

func TestWrapWithEllipsis_EllipsizesOverflow(t *testing.T) {
	lines := wrapWithEllipsis("one two three four five six seven", 13, 2, charWidth)
	if len(lines) != 2 {
		t.Fatalf("lines = %v", lines)
	}
	if !strings.HasSuffix(lines[1], "...") {
		t.Fatalf("last line must ellipsize: %v", lines)
	}
	for _, l := range lines {
		if charWidth(l) > 13 {
			t.Fatalf("line %q exceeds max width", l)
		}
	}
}

func TestWrapWithEllipsis_TruncatesSingleLongWord(t *testing.T) {
	lines := wrapWithEllipsis("incomprehensibilities", 10, 2, charWidth)
	if len(lines) == 0 {
		t.Fatalf("expected output for a single oversized word")
	}
	if !strings.HasSuffix(lines[0], "...") {
		t.Fatalf("oversized word must be hard-truncated: %v", lines)
	}
	if charWidth(lines[0]) > 10 {
		t.Fatalf("line %q exceeds max width", lines[0])
	}
}

func TestWrapWithEllipsis_TruncatesMultiByteWordOnRuneBoundary(t *testing.T) {
	// Six two-byte runes measure 12 under byte-width; the truncation must
	// drop whole runes, never split one.
	lines := wrapWithEllipsis("ääääää", 7, 2, charWidth)
	if len(lines) == 0 {
		t.Fatalf("expected output for an oversized multi-byte word")
	}
	if !utf8.ValidString(lines[0]) {
		t.Fatalf("truncated line is not valid UTF-8: %q", lines[0])
	}
	if !strings.HasSuffix(lines[0], "...") {
		t.Fatalf("oversized word must be hard-truncated: %v", lines)
	}
	if charWidth(lines[0]) > 7 {
		t.Fatalf("line %q exceeds max width", lines[0])
	}
}

func TestWrapWithEllipsis_EmptyInput(t *testing.T) {
	if lines := wrapWithEllipsis("", 10, 2, charWidth); lines != nil {
		t.Fatalf("lines = %v, want nil", lines)
	}
	if lines := wrapWithEllipsis("   ", 10, 2, charWidth); lines != nil {
		t.Fatalf("lines = %v, want nil", lines)
	}
	if lines := wrapWithEllipsis("text", 10, 0, charWidth); lines != nil {
		t.Fatalf("zero max lines must yield nothing, got %v", lines)
	}
}

func TestGroupInt(t *testing.T) {
	cases := map[int]string{
		0:       "0",
		7:       "7",
		999:     "999",
		1000:    "1,000",
		1234567: "1,234,567",
		-1234:   "-1,234",
	}
	for in, want := range cases {
		if got := groupInt(in); got != want {
			t.Fatalf("groupInt(%d) = %q, want %q", in, got, want)
		}
	}
}
