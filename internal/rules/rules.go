// Package rules provides rule-based pre-classification of build logs.
// Rules catch common, well-known failure signatures with high confidence
// before any provider tokens are spent.
package rules

import (
	"regexp"
	"strings"

	"github.com/ai-error-analysis/internal/domain"
)

// Rule represents a single pre-classification rule.
type Rule struct {
	// ID is the unique identifier for this rule.
	ID string

	// Name is a human-readable name for the rule.
	Name string

	// Patterns are regex patterns to match against log content.
	Patterns []*regexp.Regexp

	// Keywords are simple string matches (case-insensitive).
	Keywords []string

	// Confidence is the confidence level when this rule matches (0.0-1.0).
	Confidence float64

	// Result is the pre-computed analysis result.
	Result *domain.AnalysisResult
}

// Match checks if the log content matches this rule.
func (r *Rule) Match(log string) bool {
	logLower := strings.ToLower(log)

	// Keywords first, they are cheaper than the regexes.
	for _, kw := range r.Keywords {
		if strings.Contains(logLower, strings.ToLower(kw)) {
			return true
		}
	}

	for _, pattern := range r.Patterns {
		if pattern.MatchString(log) {
			return true
		}
	}

	return false
}

// DefaultRules returns the built-in set of rules for common CI build
// failure signatures.
func DefaultRules() []*Rule {
	return []*Rule{
		gitAuthenticationFailure(),
		outOfMemory(),
		diskSpaceFull(),
		npmInstallFailure(),
		dockerDaemonNotRunning(),
		portAlreadyInUse(),
	}
}

func ruleResult(rootCause string, severity domain.Severity, confidence int, fixes ...string) *domain.AnalysisResult {
	return &domain.AnalysisResult{
		Provider:       "rules",
		RootCause:      rootCause,
		SuggestedFixes: fixes,
		Confidence:     confidence,
		Severity:       severity,
	}
}

func gitAuthenticationFailure() *Rule {
	r := &Rule{
		ID:   "git_auth_failure",
		Name: "Git Authentication Failure",
		Keywords: []string{
			"fatal: unable to access",
			"fatal: authentication failed",
		},
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)fatal: unable to access '.+': the requested URL returned error: 40[13]`),
			regexp.MustCompile(`(?i)HTTP/2 stream \d+ was not closed cleanly.*PROTOCOL_ERROR`),
			regexp.MustCompile(`(?i)remote: invalid username or (password|token)`),
		},
		Confidence: 0.9,
		Result: ruleResult(
			"The checkout failed because the repository access token is invalid or expired. Repository access errors of this shape are authentication failures, not network issues.",
			domain.SeverityHigh, 90,
			"Regenerate the repository access token with the scopes the pipeline needs",
			"Verify the token configured in the CI environment matches the regenerated one",
			"Test the token directly: curl -H 'Authorization: token YOUR_TOKEN' https://api.github.com/user",
		),
	}
	r.Result.Model = r.ID
	return r
}

func outOfMemory() *Rule {
	r := &Rule{
		ID:       "out_of_memory",
		Name:     "Out of Memory",
		Keywords: []string{"out of memory", "oomkilled", "heap out of memory"},
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)out\s+of\s+memory`),
			regexp.MustCompile(`(?i)OOMKilled`),
			regexp.MustCompile(`(?i)Cannot allocate memory`),
			regexp.MustCompile(`(?i)java\.lang\.OutOfMemoryError`),
		},
		Confidence: 0.95,
		Result: ruleResult(
			"The build process exhausted available memory and was terminated by the agent or the kernel.",
			domain.SeverityHigh, 95,
			"Raise the memory limit of the build agent or container",
			"Split the failing step into smaller units or reduce build parallelism",
			"Profile the step for unbounded memory growth",
		),
	}
	r.Result.Model = r.ID
	return r
}

func diskSpaceFull() *Rule {
	r := &Rule{
		ID:       "disk_space_full",
		Name:     "Disk Space Full",
		Keywords: []string{"no space left on device", "enospc"},
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)no space left on device`),
			regexp.MustCompile(`(?i)ENOSPC`),
			regexp.MustCompile(`(?i)disk\s+quota\s+exceeded`),
		},
		Confidence: 0.95,
		Result: ruleResult(
			"The build agent ran out of disk space, so the failing step could not write its outputs.",
			domain.SeverityHigh, 95,
			"Prune stale build caches and container images on the agent: docker system prune -a",
			"Clean the agent's workspace directory between builds",
			"Extend the agent's disk or move artifact storage to a separate volume",
		),
	}
	r.Result.Model = r.ID
	return r
}

func npmInstallFailure() *Rule {
	r := &Rule{
		ID:       "npm_install_failure",
		Name:     "NPM Install Failure",
		Keywords: []string{"npm err!"},
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)npm ERR!.*code\s+E[A-Z]+`),
			regexp.MustCompile(`(?i)npm ERR!.*404.*not found`),
			regexp.MustCompile(`(?i)npm ERR!.*peer dep`),
		},
		Confidence: 0.85,
		Result: ruleResult(
			"Dependency installation failed during npm install, typically because of a missing package, a version conflict, or a corrupted cache.",
			domain.SeverityMedium, 85,
			"Clear the npm cache on the agent: npm cache clean --force",
			"Delete node_modules and package-lock.json, then reinstall",
			"Confirm the failing package and version exist in the registry the build uses",
			"Use npm ci in CI for reproducible installs",
		),
	}
	r.Result.Model = r.ID
	return r
}

func dockerDaemonNotRunning() *Rule {
	r := &Rule{
		ID:       "docker_daemon_unavailable",
		Name:     "Docker Daemon Not Running",
		Keywords: []string{"cannot connect to the docker daemon"},
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)cannot connect to the docker daemon`),
			regexp.MustCompile(`(?i)is the docker daemon running`),
			regexp.MustCompile(`(?i)docker\.sock.*no such file`),
		},
		Confidence: 0.95,
		Result: ruleResult(
			"The build needs Docker but the daemon is not running or not reachable from the agent.",
			domain.SeverityHigh, 95,
			"Start the Docker service on the agent: sudo systemctl start docker",
			"Ensure the CI runner has access to the Docker socket",
			"Verify the agent image includes a working Docker installation",
		),
	}
	r.Result.Model = r.ID
	return r
}

func portAlreadyInUse() *Rule {
	r := &Rule{
		ID:       "port_already_in_use",
		Name:     "Port Already In Use",
		Keywords: []string{"address already in use", "eaddrinuse"},
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)address already in use`),
			regexp.MustCompile(`(?i)EADDRINUSE`),
			regexp.MustCompile(`(?i)port\s+\d+.*is already allocated`),
		},
		Confidence: 0.9,
		Result: ruleResult(
			"A service started by the build could not bind its port because a process from a previous run is still holding it.",
			domain.SeverityMedium, 90,
			"Find and stop the process holding the port: lsof -i :<port>",
			"Make the build's services shut down gracefully so ports are released",
			"Use ephemeral ports (port 0) for services started in tests",
		),
	}
	r.Result.Model = r.ID
	return r
}
