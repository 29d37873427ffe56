// Package detect holds the per-action-type analysers. Detectors are pure
// functions of the action data and the effective capabilities: no I/O, no
// suspension, no shared state.
package detect

import "github.com/agentguard/agentguard/internal/action"

// Analysis is what every detector returns. ForcedDecision, when set, is a
// detector-level verdict the engine honours directly (e.g. an allowlist
// deny); otherwise the engine derives the decision from ShouldBlock and
// the risk level.
type Analysis struct {
	RiskLevel      action.RiskLevel
	RiskTags       []string
	Evidence       []action.Evidence
	ShouldBlock    bool
	BlockReason    string
	ForcedDecision action.Decision
}

func newAnalysis() Analysis {
	return Analysis{RiskLevel: action.RiskLow}
}

func (a *Analysis) addTag(tag string) {
	for _, t := range a.RiskTags {
		if t == tag {
			return
		}
	}
	a.RiskTags = append(a.RiskTags, tag)
}

func (a *Analysis) lift(level action.RiskLevel) {
	a.RiskLevel = action.MaxRisk(a.RiskLevel, level)
}

func (a *Analysis) addEvidence(evType, field, match, description string) {
	a.Evidence = append(a.Evidence, action.Evidence{
		Type:        evType,
		Field:       field,
		Match:       match,
		Description: description,
	})
}
