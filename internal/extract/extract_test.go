// Package extract provides unit tests for the response extractor.
package extract

import (
	"reflect"
	"strings"
	"testing"

	"github.com/ai-error-analysis/internal/domain"
	"go.uber.org/zap"
)

func newTestExtractor() *Extractor {
	return NewExtractor(zap.NewNop())
}

func TestExtractor_Extract(t *testing.T) {
	e := newTestExtractor()

	tests := []struct {
		name           string
		raw            string
		wantRootCause  string
		wantFixes      []string
		wantConfidence int
		wantSeverity   domain.Severity
		wantFallback   bool
	}{
		{
			name:           "well formed reply",
			raw:            "ROOT CAUSE: Token expired.\nSUGGESTED FIXES:\n- Regenerate token\n- Check expiry\nCONFIDENCE: 85%\nSEVERITY: high",
			wantRootCause:  "Token expired.",
			wantFixes:      []string{"Regenerate token", "Check expiry"},
			wantConfidence: 85,
			wantSeverity:   domain.SeverityHigh,
		},
		{
			name:           "numbered and asterisk bullets",
			raw:            "ROOT CAUSE: Disk full\nSUGGESTED FIXES:\n1. Prune docker images\n2. Rotate logs\n* Extend the volume\nCONFIDENCE: 70\nSEVERITY: medium",
			wantRootCause:  "Disk full.",
			wantFixes:      []string{"Prune docker images", "Rotate logs", "Extend the volume"},
			wantConfidence: 70,
			wantSeverity:   domain.SeverityMedium,
		},
		{
			name:           "multiline root cause collapsed",
			raw:            "ROOT CAUSE: The build\nfailed because   the\ntest database was unreachable\nSUGGESTED FIXES:\n- Start the database\nCONFIDENCE: 60%\nSEVERITY: low",
			wantRootCause:  "The build failed because the test database was unreachable.",
			wantFixes:      []string{"Start the database"},
			wantConfidence: 60,
			wantSeverity:   domain.SeverityLow,
		},
		{
			name:           "labels out of order",
			raw:            "SEVERITY: HIGH\nCONFIDENCE: 90%\nROOT CAUSE: Out of memory during linking.\nSUGGESTED FIXES:\n- Raise the memory limit",
			wantRootCause:  "Out of memory during linking.",
			wantFixes:      []string{"Raise the memory limit"},
			wantConfidence: 90,
			wantSeverity:   domain.SeverityHigh,
		},
		{
			name:           "confidence above range clamped",
			raw:            "ROOT CAUSE: Flaky test.\nSUGGESTED FIXES:\n- Quarantine the test\nCONFIDENCE: 150%\nSEVERITY: low",
			wantRootCause:  "Flaky test.",
			wantFixes:      []string{"Quarantine the test"},
			wantConfidence: 100,
			wantSeverity:   domain.SeverityLow,
		},
		{
			name:           "missing confidence and severity default",
			raw:            "ROOT CAUSE: Bad import path.\nSUGGESTED FIXES:\n- Fix the module path",
			wantRootCause:  "Bad import path.",
			wantFixes:      []string{"Fix the module path"},
			wantConfidence: 50,
			wantSeverity:   domain.SeverityMedium,
		},
		{
			name:           "fixes section without bullets keeps root cause",
			raw:            "ROOT CAUSE: Compiler crash.\nSUGGESTED FIXES:\nnone known\nCONFIDENCE: 40%\nSEVERITY: high",
			wantRootCause:  "Compiler crash.",
			wantFixes:      []string{},
			wantConfidence: 40,
			wantSeverity:   domain.SeverityHigh,
		},
		{
			name:           "no labels falls back to first substantial line",
			raw:            "The linker ran out of address space while building the test binary.",
			wantRootCause:  "The linker ran out of address space while building the test binary.",
			wantFixes:      defaultFallbackFixes,
			wantConfidence: 50,
			wantSeverity:   domain.SeverityMedium,
			wantFallback:   true,
		},
		{
			name:           "only short lines falls back to fixed literal",
			raw:            "err\nbad\n",
			wantRootCause:  unparseableRootCause,
			wantFixes:      defaultFallbackFixes,
			wantConfidence: 50,
			wantSeverity:   domain.SeverityMedium,
			wantFallback:   true,
		},
		{
			name:           "empty reply falls back to fixed literal",
			raw:            "",
			wantRootCause:  unparseableRootCause,
			wantFixes:      defaultFallbackFixes,
			wantConfidence: 50,
			wantSeverity:   domain.SeverityMedium,
			wantFallback:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Extract(tt.raw, 123)

			if got.RootCause != tt.wantRootCause {
				t.Errorf("RootCause = %q, want %q", got.RootCause, tt.wantRootCause)
			}
			if !reflect.DeepEqual(got.SuggestedFixes, tt.wantFixes) {
				t.Errorf("SuggestedFixes = %v, want %v", got.SuggestedFixes, tt.wantFixes)
			}
			if got.Confidence != tt.wantConfidence {
				t.Errorf("Confidence = %d, want %d", got.Confidence, tt.wantConfidence)
			}
			if got.Severity != tt.wantSeverity {
				t.Errorf("Severity = %q, want %q", got.Severity, tt.wantSeverity)
			}
			if got.FallbackUsed != tt.wantFallback {
				t.Errorf("FallbackUsed = %v, want %v", got.FallbackUsed, tt.wantFallback)
			}
			if got.TokensUsed != 123 {
				t.Errorf("TokensUsed = %d, want 123", got.TokensUsed)
			}
			if got.SuggestedFixes == nil {
				t.Error("SuggestedFixes must never be nil")
			}
		})
	}
}

func TestExtractor_ExtractCaseInsensitiveLabels(t *testing.T) {
	e := newTestExtractor()

	raw := "root cause: cache poisoned\nsuggested fixes:\n- clear the cache\nconfidence: 75\nseverity: Medium"
	got := e.Extract(raw, 0)

	if got.RootCause != "cache poisoned." {
		t.Errorf("RootCause = %q", got.RootCause)
	}
	if len(got.SuggestedFixes) != 1 || got.SuggestedFixes[0] != "clear the cache" {
		t.Errorf("SuggestedFixes = %v", got.SuggestedFixes)
	}
	if got.Confidence != 75 {
		t.Errorf("Confidence = %d", got.Confidence)
	}
	if got.Severity != domain.SeverityMedium {
		t.Errorf("Severity = %q", got.Severity)
	}
	if got.FallbackUsed {
		t.Error("fallback should not trigger for labeled text")
	}
}

func TestExtractor_CustomFallbackFixes(t *testing.T) {
	custom := []string{"Escalate to the build cops"}
	e := NewExtractorWithFixes(custom, zap.NewNop())

	got := e.Extract("???", 0)
	if !got.FallbackUsed {
		t.Fatal("expected fallback")
	}
	if !reflect.DeepEqual(got.SuggestedFixes, custom) {
		t.Errorf("SuggestedFixes = %v, want %v", got.SuggestedFixes, custom)
	}
}

func TestExtractor_RootCauseStopsBeforeFixes(t *testing.T) {
	e := newTestExtractor()

	raw := "ROOT CAUSE: npm registry returned 404 for an internal package\nSUGGESTED FIXES:\n- Publish the package\nCONFIDENCE: 80%\nSEVERITY: medium"
	got := e.Extract(raw, 0)

	if strings.Contains(got.RootCause, "Publish the package") {
		t.Errorf("root cause bleeds into fixes section: %q", got.RootCause)
	}
}
