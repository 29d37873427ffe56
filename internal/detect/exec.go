package detect

import (
	"sort"
	"strings"

	"github.com/agentguard/agentguard/internal/action"
	"github.com/agentguard/agentguard/internal/capability"
	"github.com/agentguard/agentguard/internal/patterns"
)

// Exec analyses a shell execution request.
//
// Ordering matters: dangerous commands block unconditionally before
// anything else, and the safe-command allowlist applies even when the exec
// capability is denied, so routine read-only commands never nag.
func Exec(data *action.ExecData, caps capability.Capabilities) Analysis {
	a := newAnalysis()

	full := data.Command
	if len(data.Args) > 0 {
		full = full + " " + strings.Join(data.Args, " ")
	}
	full = strings.TrimSpace(full)

	if match, ok := patterns.IsDangerousCommand(full); ok {
		a.RiskLevel = action.RiskCritical
		a.addTag("DANGEROUS_COMMAND")
		a.addEvidence("dangerous_command", "command", match, "Command matches a destructive pattern")
		a.ShouldBlock = true
		a.BlockReason = "Destructive command blocked"
		return a
	}

	// Hidden or lookalike characters make the displayed command differ
	// from the executed one; check before the allowlist so a smuggled
	// "git status" cannot slip through.
	for _, hc := range scanHiddenChars(full) {
		if hc.Blocking {
			a.addTag("HIDDEN_UNICODE")
			a.lift(action.RiskHigh)
			a.addEvidence("hidden_unicode", "command", hc.Codepoint, "Command contains a "+hc.Category+" character")
			a.ShouldBlock = true
			a.BlockReason = "Command contains hidden characters"
		} else {
			a.addTag("HOMOGLYPH_CHARS")
			a.lift(action.RiskMedium)
			a.addEvidence("homoglyph", "command", hc.Codepoint, "Command contains a Latin-lookalike character")
		}
	}
	if a.ShouldBlock {
		return a
	}

	shape := parseShell(full)
	hasMeta := patterns.HasShellMeta(full) || (shape.parsed && shape.injectionRisk())
	sensitiveMatch, hasSensitive := patterns.MatchSensitiveCommand(full)

	if !hasMeta && !hasSensitive && patterns.HasSafePrefix(full) {
		a.addEvidence("safe_command", "command", firstWord(full), "Command is on the safe-command allowlist")
		return a
	}

	if hasSensitive {
		a.addTag("SENSITIVE_DATA_ACCESS")
		a.lift(action.RiskHigh)
		a.addEvidence("sensitive_command", "command", sensitiveMatch, "Command reads credentials or account data")
	}
	if match, ok := patterns.MatchCommandPrefix(full, patterns.SystemCommands); ok {
		a.addTag("SYSTEM_COMMAND")
		a.lift(action.RiskMedium)
		a.addEvidence("system_command", "command", match, "Command alters system state")
	}
	if match, ok := patterns.MatchCommandPrefix(full, patterns.NetworkCommands); ok {
		a.addTag("NETWORK_COMMAND")
		a.lift(action.RiskMedium)
		a.addEvidence("network_command", "command", match, "Command can move data over the network")
	}
	if hasMeta {
		a.addTag("SHELL_INJECTION_RISK")
		a.lift(action.RiskMedium)
		a.addEvidence("shell_injection", "command", metaEvidence(full, shape), "Command contains shell control constructs")
	}

	for _, key := range sortedKeys(data.Env) {
		if patterns.IsSensitiveEnvKey(key) {
			a.addTag("SENSITIVE_ENV_VAR")
			a.addEvidence("sensitive_env", "env", key, "Environment variable name suggests a credential")
		}
	}

	if caps.Exec == capability.ExecDeny && !a.ShouldBlock {
		a.ShouldBlock = true
		a.BlockReason = "Command execution not allowed"
	}

	return a
}

func firstWord(command string) string {
	if idx := strings.IndexByte(command, ' '); idx > 0 {
		return command[:idx]
	}
	return command
}

func metaEvidence(full string, shape shellShape) string {
	switch {
	case shape.hasCmdSubst:
		return "command substitution"
	case shape.hasPipe:
		return "pipeline"
	case shape.hasChain:
		return "command chaining"
	case shape.hasSubshell:
		return "subshell"
	default:
		for _, c := range patterns.ShellMetaChars {
			if strings.ContainsRune(full, c) {
				return string(c)
			}
		}
		return "shell metacharacter"
	}
}

func sortedKeys(m map[string]string) []string {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
