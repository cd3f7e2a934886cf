package domain

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestNewHTTPError_TruncatesBody(t *testing.T) {
	long := strings.Repeat("e", 1000)
	err := NewHTTPError(502, long)

	if err.Status != 502 {
		t.Errorf("Status = %d, want 502", err.Status)
	}
	if len(err.Body) > 203 { // 200 chars plus ellipsis
		t.Errorf("Body length = %d, want at most 203", len(err.Body))
	}
	if !strings.HasSuffix(err.Body, "...") {
		t.Errorf("Body = %q, want ellipsis suffix", err.Body)
	}
}

func TestNewHTTPError_TruncationKeepsValidUTF8(t *testing.T) {
	// The 200th byte lands inside the two-byte rune.
	body := strings.Repeat("a", 199) + "é" + strings.Repeat("b", 100)
	err := NewHTTPError(500, body)

	if !utf8.ValidString(err.Body) {
		t.Errorf("Body = %q contains invalid UTF-8 after truncation", err.Body)
	}
	if strings.Contains(err.Body, "é") {
		t.Error("the split rune should have been dropped, not kept partially")
	}
}

func TestNewHTTPError_ShortBodyUntouched(t *testing.T) {
	err := NewHTTPError(404, "not found")
	if err.Body != "not found" {
		t.Errorf("Body = %q, want unchanged", err.Body)
	}
}

func TestAnalysisError_Unwrap(t *testing.T) {
	wrapped := WrapError("resolve_model", ErrUnknownProvider)

	if !errors.Is(wrapped, ErrUnknownProvider) {
		t.Error("WrapError should preserve the sentinel for errors.Is")
	}
	if got := wrapped.Error(); !strings.HasPrefix(got, "resolve_model: ") {
		t.Errorf("Error() = %q, want op prefix", got)
	}
}
