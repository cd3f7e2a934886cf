// Package extract parses the free-form provider reply into the structured
// analysis schema. Extraction is best-effort and never fails outright: when
// the expected template is missing it degrades to a line-scan fallback.
package extract

import (
	"regexp"
	"strings"

	"github.com/ai-error-analysis/internal/domain"
	"go.uber.org/zap"
)

// Analysis holds the fields extracted from one reply.
type Analysis struct {
	// RootCause is never empty; the fallback path guarantees it.
	RootCause string

	// SuggestedFixes is never nil; may be empty only when the labeled
	// section parsed but root cause did too.
	SuggestedFixes []string

	// Confidence is clamped to 0-100. Defaults to 50 when absent.
	Confidence int

	// Severity defaults to medium when absent.
	Severity domain.Severity

	// TokensUsed is carried through from the provider reply.
	TokensUsed int

	// FallbackUsed reports that the labeled template was not found and the
	// degraded line-scan path produced the result. A quality signal, not
	// an error.
	FallbackUsed bool
}

// Each field is located by an independent case-insensitive scan so a
// malformed section cannot cascade into losing unrelated fields.
var (
	rootCauseRe  = regexp.MustCompile(`(?is)ROOT CAUSE[:\s]*(.+?)(?:\n\s*SUGGESTED|$)`)
	fixesRe      = regexp.MustCompile(`(?is)SUGGESTED FIXES?[:\s]*(.+?)(?:CONFIDENCE|SEVERITY|$)`)
	bulletRe     = regexp.MustCompile(`(?m)^\s*(?:\d+\.|-|\*)\s*(.+)`)
	confidenceRe = regexp.MustCompile(`(?i)CONFIDENCE[:\s]*(\d+)\s*%?`)
	severityRe   = regexp.MustCompile(`(?i)SEVERITY[:\s]*(low|medium|high)`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// unparseableRootCause is used when even the fallback line scan finds
// nothing usable in the reply.
const unparseableRootCause = "Unable to parse the analysis response. Review the build logs manually."

// defaultFallbackFixes is the generic remediation list attached to
// fallback results. Deliberately provider- and technology-agnostic.
var defaultFallbackFixes = []string{
	"Review the full build log around the failing step",
	"Re-run the build to rule out a transient failure",
	"Check recent changes to the pipeline and its configuration",
	"Verify credentials and environment variables used by the failing step",
}

// Extractor turns raw reply text into an Analysis.
type Extractor struct {
	fallbackFixes []string
	logger        *zap.Logger
}

// NewExtractor creates an extractor with the default fallback fixes list.
func NewExtractor(logger *zap.Logger) *Extractor {
	return NewExtractorWithFixes(defaultFallbackFixes, logger)
}

// NewExtractorWithFixes creates an extractor with a custom fallback fixes
// list, for callers whose failure domain has better generic advice.
func NewExtractorWithFixes(fallbackFixes []string, logger *zap.Logger) *Extractor {
	fixes := make([]string, len(fallbackFixes))
	copy(fixes, fallbackFixes)
	return &Extractor{
		fallbackFixes: fixes,
		logger:        logger.Named("extractor"),
	}
}

// Extract parses the raw reply text. It always returns a usable Analysis.
func (e *Extractor) Extract(rawText string, tokensUsed int) Analysis {
	analysis := Analysis{
		SuggestedFixes: []string{},
		Confidence:     50,
		Severity:       domain.SeverityMedium,
		TokensUsed:     tokensUsed,
	}

	if m := rootCauseRe.FindStringSubmatch(rawText); m != nil {
		analysis.RootCause = normalizeSentence(m[1])
	}

	if m := fixesRe.FindStringSubmatch(rawText); m != nil {
		for _, item := range bulletRe.FindAllStringSubmatch(m[1], -1) {
			if fix := strings.TrimSpace(item[1]); fix != "" {
				analysis.SuggestedFixes = append(analysis.SuggestedFixes, fix)
			}
		}
	}

	if m := confidenceRe.FindStringSubmatch(rawText); m != nil {
		analysis.Confidence = clamp(atoi(m[1]), 0, 100)
	}

	if m := severityRe.FindStringSubmatch(rawText); m != nil {
		analysis.Severity = domain.Severity(strings.ToLower(m[1]))
	}

	if analysis.RootCause == "" && len(analysis.SuggestedFixes) == 0 {
		e.fallback(rawText, &analysis)
	}

	return analysis
}

// fallback fills the analysis from unlabeled text: the first line of
// substance becomes the root cause and the fixes become the generic list.
func (e *Extractor) fallback(rawText string, analysis *Analysis) {
	analysis.FallbackUsed = true

	for _, line := range strings.Split(rawText, "\n") {
		if trimmed := strings.TrimSpace(line); len(trimmed) > 10 {
			analysis.RootCause = trimmed
			break
		}
	}
	if analysis.RootCause == "" {
		analysis.RootCause = unparseableRootCause
	}

	analysis.SuggestedFixes = append([]string{}, e.fallbackFixes...)

	e.logger.Warn("labeled sections not found in reply, using fallback extraction",
		zap.Int("reply_length", len(rawText)),
	)
}

// normalizeSentence collapses internal whitespace and guarantees a sentence
// terminator.
func normalizeSentence(s string) string {
	s = strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
	if s == "" {
		return s
	}
	switch s[len(s)-1] {
	case '.', '!', '?':
	default:
		s += "."
	}
	return s
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// atoi parses a digits-only string already vetted by the regex. Overflowing
// values saturate, which the caller clamps anyway.
func atoi(s string) int {
	n := 0
	for _, c := range s {
		n = n*10 + int(c-'0')
		if n > 1000 {
			return 1000
		}
	}
	return n
}
