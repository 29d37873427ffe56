// Package arbiter maps a scanner decision and the user's protection
// level to the hook verdict alphabet: allow, deny, or ask.
package arbiter

import (
	"fmt"

	"github.com/agentguard/agentguard/internal/action"
)

// Level is the user-chosen protection posture.
type Level string

const (
	LevelStrict     Level = "strict"
	LevelBalanced   Level = "balanced"
	LevelPermissive Level = "permissive"
)

// DefaultLevel applies when no config is present.
const DefaultLevel = LevelBalanced

// ParseLevel validates a level string.
func ParseLevel(s string) (Level, error) {
	switch Level(s) {
	case LevelStrict, LevelBalanced, LevelPermissive:
		return Level(s), nil
	case "":
		return DefaultLevel, nil
	}
	return "", fmt.Errorf("unknown protection level %q (want strict, balanced or permissive)", s)
}

// Verdict is the final hook answer.
type Verdict string

const (
	VerdictAllow Verdict = "allow"
	VerdictDeny  Verdict = "deny"
	VerdictAsk   Verdict = "ask"
)

// Arbitrate resolves a PolicyDecision under a protection level.
//
// Strict turns every confirm into deny. Balanced passes confirm through
// as ask. Permissive only hard-denies at critical risk, asks for lesser
// denies and high-risk confirms, and waves the rest through. Sensitive
// path writes stay denied under permissive whenever the write is
// attributed to an initiating skill.
func Arbitrate(d action.PolicyDecision, level Level) Verdict {
	switch level {
	case LevelStrict:
		switch d.Decision {
		case action.DecisionDeny, action.DecisionConfirm:
			return VerdictDeny
		}
		return VerdictAllow

	case LevelPermissive:
		switch d.Decision {
		case action.DecisionDeny:
			if d.RiskLevel == action.RiskCritical {
				if d.HasTag("SENSITIVE_PATH") && !attributed(d) {
					return VerdictAsk
				}
				return VerdictDeny
			}
			return VerdictAsk
		case action.DecisionConfirm:
			if d.RiskLevel.Rank() >= action.RiskHigh.Rank() {
				return VerdictAsk
			}
			return VerdictAllow
		}
		return VerdictAllow

	default: // balanced
		switch d.Decision {
		case action.DecisionDeny:
			return VerdictDeny
		case action.DecisionConfirm:
			return VerdictAsk
		}
		return VerdictAllow
	}
}

// attributed reports whether the decision carries initiating-skill
// evidence.
func attributed(d action.PolicyDecision) bool {
	for _, ev := range d.Evidence {
		if ev.Type == "initiating_skill" {
			return true
		}
	}
	return false
}
