// Package redact masks secret material before it reaches logs or hook
// replies. It reuses the secret catalog from the pattern library plus a
// few log-only shapes (bearer tokens, basic-auth URLs).
package redact

import (
	"regexp"
	"strings"

	"github.com/agentguard/agentguard/internal/patterns"
)

const placeholder = "[REDACTED]"

// logOnlyPatterns cover shapes that are not worth a risk decision but
// must never land in the audit log verbatim.
var logOnlyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9_.-]{20,}`),
	regexp.MustCompile(`https?://[^:/\s]+:[^@\s]+@`),
	regexp.MustCompile(`xox[baprs]-[0-9]{10,13}-[0-9]{10,13}[a-zA-Z0-9-]*`),
	regexp.MustCompile(`sk_live_[0-9a-zA-Z]{24}`),
}

// Redact replaces every secret-pattern match in the input with a
// placeholder.
func Redact(input string) string {
	out := input
	for _, p := range patterns.SecretPatterns {
		out = p.Re.ReplaceAllString(out, placeholder)
	}
	for _, re := range logOnlyPatterns {
		out = re.ReplaceAllString(out, placeholder)
	}
	return out
}

// RedactEnvVars masks the values of sensitive KEY=value pairs, keyed on
// the pattern library's sensitive env name list.
func RedactEnvVars(envVars []string) []string {
	out := make([]string, 0, len(envVars))
	for _, env := range envVars {
		parts := strings.SplitN(env, "=", 2)
		if len(parts) != 2 {
			out = append(out, env)
			continue
		}
		if patterns.IsSensitiveEnvKey(parts[0]) {
			out = append(out, parts[0]+"="+placeholder)
		} else {
			out = append(out, env)
		}
	}
	return out
}

// RedactArgs redacts each argument independently.
func RedactArgs(args []string) []string {
	out := make([]string, len(args))
	for i, arg := range args {
		out[i] = Redact(arg)
	}
	return out
}
