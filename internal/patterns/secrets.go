// Package patterns is the frozen catalog of risky patterns consumed by the
// action detectors and the static scanner. It is the single source of
// truth: detectors and the scanner share these definitions rather than
// compiling their own.
package patterns

import (
	"regexp"

	"github.com/agentguard/agentguard/internal/action"
)

// SecretPattern is one credential-shaped pattern with a fixed priority.
// Priority maps to risk: >=90 critical, >=70 high, >=50 medium, else low.
type SecretPattern struct {
	ID          string
	Priority    int
	Re          *regexp.Regexp
	Description string
}

// Risk maps the pattern's priority to a risk level.
func (p SecretPattern) Risk() action.RiskLevel {
	switch {
	case p.Priority >= 90:
		return action.RiskCritical
	case p.Priority >= 70:
		return action.RiskHigh
	case p.Priority >= 50:
		return action.RiskMedium
	default:
		return action.RiskLow
	}
}

// SecretPatterns is ordered by priority, highest first.
var SecretPatterns = []SecretPattern{
	{
		ID:          "EVM_PRIVATE_KEY",
		Priority:    100,
		Re:          regexp.MustCompile(`\b0x[a-fA-F0-9]{64}\b`),
		Description: "Ethereum-style private key",
	},
	{
		ID:       "MNEMONIC_PHRASE",
		Priority: 100,
		// 12/15/18/21/24 lowercase words, quote- or line-delimited the way
		// wallet seeds appear in code and payloads.
		Re:          regexp.MustCompile(`(?:^|["'=:\s])([a-z]{3,8} ){11}(?:[a-z]{3,8} ){0,12}[a-z]{3,8}(?:["'\s]|$)`),
		Description: "BIP-39 mnemonic seed phrase",
	},
	{
		ID:          "PEM_PRIVATE_KEY",
		Priority:    90,
		Re:          regexp.MustCompile(`-----BEGIN (RSA |EC |DSA |OPENSSH |PGP )?PRIVATE KEY-----`),
		Description: "PEM private key header",
	},
	{
		ID:          "AWS_SECRET_KEY",
		Priority:    80,
		Re:          regexp.MustCompile(`(?i)aws.{0,25}['"][A-Za-z0-9/+=]{40}['"]`),
		Description: "AWS secret access key near AWS context",
	},
	{
		ID:          "AWS_ACCESS_KEY",
		Priority:    70,
		Re:          regexp.MustCompile(`\bAKIA[0-9A-Z]{16}\b`),
		Description: "AWS access key ID",
	},
	{
		ID:          "GITHUB_TOKEN",
		Priority:    70,
		Re:          regexp.MustCompile(`\bgh[pousr]_[A-Za-z0-9_]{36,}\b`),
		Description: "GitHub token",
	},
	{
		ID:          "JWT_TOKEN",
		Priority:    60,
		Re:          regexp.MustCompile(`\bey[\w-]+\.ey[\w-]+\.[\w-]*`),
		Description: "JSON Web Token",
	},
	{
		ID:          "GENERIC_API_SECRET",
		Priority:    50,
		Re:          regexp.MustCompile(`(?i)(api[_-]?key|api[_-]?secret|access[_-]?token|auth[_-]?token)\s*[:=]\s*['"]?[A-Za-z0-9_\-]{16,}`),
		Description: "API key or secret assignment",
	},
	{
		ID:          "DATABASE_DSN",
		Priority:    50,
		Re:          regexp.MustCompile(`\b(postgres(ql)?|mysql|mongodb(\+srv)?)://[^\s'"]+`),
		Description: "Database connection string",
	},
	{
		ID:          "PASSWORD_ASSIGNMENT",
		Priority:    40,
		Re:          regexp.MustCompile(`(?i)password\s*[:=]\s*['"]?[^\s'"]{6,}`),
		Description: "Password assignment",
	},
}

// SecretMatch is one hit from ScanSecrets.
type SecretMatch struct {
	Pattern SecretPattern
	Match   string
}

// ScanSecrets applies every secret pattern to text and returns all matches
// in priority order. The caller decides which priorities matter.
func ScanSecrets(text string) []SecretMatch {
	if text == "" {
		return nil
	}
	var matches []SecretMatch
	for _, p := range SecretPatterns {
		if m := p.Re.FindString(text); m != "" {
			matches = append(matches, SecretMatch{Pattern: p, Match: m})
		}
	}
	return matches
}

// HighestSecret returns the highest-priority match in text, if any.
func HighestSecret(text string) (SecretMatch, bool) {
	matches := ScanSecrets(text)
	if len(matches) == 0 {
		return SecretMatch{}, false
	}
	best := matches[0]
	for _, m := range matches[1:] {
		if m.Pattern.Priority > best.Pattern.Priority {
			best = m
		}
	}
	return best, true
}
