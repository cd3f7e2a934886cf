// Package prompt renders build-failure context into the analysis
// instruction sent to a provider.
package prompt

import (
	"bytes"
	"text/template"

	"github.com/ai-error-analysis/internal/domain"
)

// DefaultLogBudget is the character budget applied to the embedded log
// excerpt when none is configured.
const DefaultLogBudget = 5000

// analysisTemplate is the single prompt template. The labeled output
// contract at the bottom is load-bearing: the extractor locates these exact
// labels in the reply.
const analysisTemplate = `You are an expert DevOps engineer analyzing a CI/CD build failure. Provide specific, actionable solutions based on the error logs.

BUILD INFORMATION:
- Pipeline: {{.Pipeline}}
- Branch: {{.Branch}}
- Command: {{.Command}}
- Exit Status: {{.ExitStatus}}
- Phase: {{.Phase}}

ERROR LOG:
` + "```" + `
{{.LogExcerpt}}
` + "```" + `

CRITICAL ANALYSIS RULES FOR GIT ERRORS:
1. If you see "fatal: unable to access" with a repository URL, this is an AUTHENTICATION failure, NOT a network issue
2. If you see "HTTP/2 stream 0 was not closed cleanly: PROTOCOL_ERROR" during a git fetch, authentication failed
3. If the log shows a token being used for authentication followed by an error, the token is invalid or expired
4. NEVER suggest "check network connectivity" for repository access errors - it's always authentication

ANALYSIS INSTRUCTIONS:
Analyze the error logs carefully and provide your response in EXACTLY this format:

ROOT CAUSE: [Write a complete 1-2 sentence explanation. For repository access errors, explicitly state it's an authentication issue with the token]

SUGGESTED FIXES:
- [First specific fix with exact commands where applicable]
- [Second specific fix]
- [Third specific fix]

CONFIDENCE: [0-100]%
SEVERITY: [low/medium/high]

Important:
- Be SPECIFIC about the actual error - don't give generic advice
- For git errors, ALWAYS focus on authentication/token issues
- Include exact commands and URLs where applicable`

// Builder renders BuildContext values through the analysis template.
type Builder struct {
	tmpl      *template.Template
	logBudget int
}

// templateData carries the substituted fields. Every metadata field is
// normalized before rendering so the template stays free of conditionals.
type templateData struct {
	Pipeline   string
	Branch     string
	Command    string
	ExitStatus string
	Phase      string
	LogExcerpt string
}

// NewBuilder creates a prompt builder with the given log character budget.
// A non-positive budget falls back to DefaultLogBudget.
func NewBuilder(logBudget int) (*Builder, error) {
	tmpl, err := template.New("analysis_prompt").Parse(analysisTemplate)
	if err != nil {
		return nil, err
	}
	if logBudget <= 0 {
		logBudget = DefaultLogBudget
	}
	return &Builder{tmpl: tmpl, logBudget: logBudget}, nil
}

// Build renders the prompt for one build context. Rendering is
// deterministic: the same context always yields the same prompt.
func (b *Builder) Build(ctx domain.BuildContext) string {
	data := templateData{
		Pipeline:   orUnknown(ctx.Pipeline),
		Branch:     orUnknown(ctx.Branch),
		Command:    orUnknown(ctx.Command),
		ExitStatus: orUnknown(ctx.ExitStatus),
		Phase:      ctx.Phase,
		LogExcerpt: b.truncateLog(ctx.LogExcerpt),
	}
	if data.Phase == "" {
		data.Phase = "command"
	}

	var buf bytes.Buffer
	if err := b.tmpl.Execute(&buf, data); err != nil {
		// The template has no failure modes for plain string fields; keep
		// a rendering path anyway so a call never produces an empty prompt.
		return "Analyze this CI build failure log:\n\n" + data.LogExcerpt
	}
	return buf.String()
}

// LogBudget returns the configured character budget.
func (b *Builder) LogBudget() int {
	return b.logBudget
}

// truncateLog enforces the character budget. It runs even when the caller
// already truncated, so the rendered prompt is always bounded. The budget
// counts characters, not bytes, so a multibyte rune is never split.
func (b *Builder) truncateLog(log string) string {
	if len(log) <= b.logBudget {
		return log
	}
	runes := []rune(log)
	if len(runes) <= b.logBudget {
		return log
	}
	return string(runes[:b.logBudget])
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
