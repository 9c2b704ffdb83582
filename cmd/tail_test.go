package cmd

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncateTextKeepsShortStrings(t *testing.T) {
	if got := truncateText("buy milk", 48); got != "buy milk" {
		t.Errorf("got %q, want unchanged", got)
	}
}

func TestTruncateTextDoesNotSplitRunes(t *testing.T) {
	// Multi-byte text long enough to force truncation at various widths.
	s := strings.Repeat("héllo wörld ", 10)
	for max := 4; max <= 20; max++ {
		got := truncateText(s, max)
		if !utf8.ValidString(got) {
			t.Fatalf("max=%d produced invalid UTF-8: %q", max, got)
		}
		if utf8.RuneCountInString(got) > max {
			t.Errorf("max=%d: rune count %d exceeds limit", max, utf8.RuneCountInString(got))
		}
	}
}
