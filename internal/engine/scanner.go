// Package engine is the action scanner: it resolves the acting skill's
// effective capabilities, dispatches to the per-type detector, consults
// threat intel for Web3 actions, and combines everything into a
// PolicyDecision. Decide never returns an error: every path, including
// internal panics, terminates in a decision.
package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/agentguard/agentguard/internal/action"
	"github.com/agentguard/agentguard/internal/capability"
	"github.com/agentguard/agentguard/internal/detect"
	"github.com/agentguard/agentguard/internal/intel"
	"github.com/agentguard/agentguard/internal/patterns"
	"github.com/agentguard/agentguard/internal/registry"
)

// Scanner evaluates action envelopes.
type Scanner struct {
	registry *registry.Registry
	intel    intel.Client
}

// New creates a scanner. A nil intel client degrades to intel.Disabled.
func New(reg *registry.Registry, client intel.Client) *Scanner {
	if client == nil {
		client = intel.Disabled{}
	}
	return &Scanner{registry: reg, intel: client}
}

// Decide evaluates one envelope to a PolicyDecision.
func (s *Scanner) Decide(ctx context.Context, env action.Envelope) (decision action.PolicyDecision) {
	defer func() {
		if r := recover(); r != nil {
			decision = action.PolicyDecision{
				Decision:  action.DecisionDeny,
				RiskLevel: action.RiskHigh,
				RiskTags:  []string{"ENGINE_ERROR"},
				Evidence: []action.Evidence{{
					Type:        "engine_error",
					Description: fmt.Sprintf("internal evaluation failure: %v", r),
				}},
			}
			decision.Explanation = explain(decision, env)
		}
	}()

	if !validEnvelope(env) {
		d := action.PolicyDecision{
			Decision:  action.DecisionDeny,
			RiskLevel: action.RiskHigh,
			RiskTags:  []string{"INVALID_INPUT"},
			Evidence: []action.Evidence{{
				Type:        "invalid_input",
				Description: "envelope is malformed or missing action data",
			}},
		}
		d.Explanation = explain(d, env)
		return d
	}

	lookup := s.registry.Lookup(env.Actor.Skill)
	caps := lookup.EffectiveCapabilities

	// Sensitive-path writes block before capabilities or detectors are
	// even considered, so a misconfigured allowlist can never expose them.
	if env.Action.Type == action.TypeWriteFile {
		if entry, ok := patterns.MatchSensitivePath(env.Action.File.Path); ok {
			d := action.PolicyDecision{
				Decision:  action.DecisionDeny,
				RiskLevel: action.RiskCritical,
				RiskTags:  []string{"SENSITIVE_PATH"},
				Evidence: []action.Evidence{{
					Type:        "sensitive_path",
					Field:       "path",
					Match:       entry,
					Description: "Write targets a credential or environment file",
				}},
			}
			s.attachInitiator(&d, env)
			d.Explanation = explain(d, env)
			return d
		}
	}

	var analysis detect.Analysis
	switch env.Action.Type {
	case action.TypeExecCommand:
		analysis = detect.Exec(env.Action.Exec, caps)
	case action.TypeNetworkRequest:
		analysis = detect.Network(env.Action.Network, caps)
	case action.TypeReadFile, action.TypeWriteFile:
		analysis = detect.File(env.Action.File, env.Action.Type, caps)
	case action.TypeSecretAccess:
		analysis = detect.Secret(env.Action.Secret, caps)
	case action.TypeWeb3Tx:
		return s.decideWeb3Tx(ctx, env, caps)
	case action.TypeWeb3Sign:
		return s.decideWeb3Sign(ctx, env, caps)
	}

	d := combine(analysis, env.Action.Type)
	s.applyOverlay(&d, env)
	s.attachInitiator(&d, env)
	d.Explanation = explain(d, env)
	return d
}

// validEnvelope checks the envelope's structural invariants: a known type
// with its matching data variant present.
func validEnvelope(env action.Envelope) bool {
	if !env.Action.Type.Known() {
		return false
	}
	switch env.Action.Type {
	case action.TypeExecCommand:
		return env.Action.Exec != nil && env.Action.Exec.Command != ""
	case action.TypeNetworkRequest:
		return env.Action.Network != nil && env.Action.Network.URL != ""
	case action.TypeReadFile, action.TypeWriteFile:
		return env.Action.File != nil && env.Action.File.Path != ""
	case action.TypeSecretAccess:
		return env.Action.Secret != nil && env.Action.Secret.SecretName != ""
	case action.TypeWeb3Tx:
		return env.Action.Web3Tx != nil
	case action.TypeWeb3Sign:
		return env.Action.Web3Sign != nil
	}
	return false
}

// combine maps a detector analysis to a decision. Detector-forced
// decisions win; otherwise blocking at critical denies, blocking below
// critical asks for confirmation (the arbitrator resolves it per level),
// and high-risk network/Web3 actions confirm even without a block.
func combine(a detect.Analysis, actionType action.Type) action.PolicyDecision {
	d := action.PolicyDecision{
		Decision:  action.DecisionAllow,
		RiskLevel: a.RiskLevel,
		RiskTags:  append([]string{}, a.RiskTags...),
		Evidence:  a.Evidence,
	}

	switch {
	case a.ForcedDecision != "":
		d.Decision = a.ForcedDecision
	case a.ShouldBlock && a.RiskLevel == action.RiskCritical:
		d.Decision = action.DecisionDeny
	case a.ShouldBlock:
		d.Decision = action.DecisionConfirm
	}

	if d.Decision == action.DecisionAllow &&
		a.RiskLevel.Rank() >= action.RiskHigh.Rank() &&
		networkFacing(actionType) {
		d.Decision = action.DecisionConfirm
	}
	return d
}

func networkFacing(t action.Type) bool {
	switch t {
	case action.TypeNetworkRequest, action.TypeWeb3Tx, action.TypeWeb3Sign:
		return true
	}
	return false
}

// applyOverlay enforces the initiating-skill trust overlay: an unknown
// initiating skill is limited to a synthetic read-only capability set, and
// a known one must hold the capability for the action type it triggered.
func (s *Scanner) applyOverlay(d *action.PolicyDecision, env action.Envelope) {
	initiating := env.Context.InitiatingSkill
	if initiating == "" || env.Action.Type == action.TypeSecretAccess {
		return
	}
	if d.Decision == action.DecisionDeny {
		return
	}

	lookup, found := s.registry.LookupByID(initiating)
	if !found || !lookup.HasActiveRecord {
		view := capability.ReadOnlyView()
		if !view.Allows(string(env.Action.Type)) {
			d.Decision = action.DecisionConfirm
			d.RiskLevel = action.MaxRisk(d.RiskLevel, action.RiskHigh)
			d.RiskTags = prependTag(d.RiskTags, "UNTRUSTED_SKILL")
			d.Evidence = append(d.Evidence, action.Evidence{
				Type:        "untrusted_skill",
				Field:       "initiating_skill",
				Match:       initiating,
				Description: "Initiating skill has no active trust record",
			})
		}
		return
	}

	view := lookup.EffectiveCapabilities.View()
	if !view.Allows(string(env.Action.Type)) {
		d.Decision = action.DecisionDeny
		d.RiskLevel = action.MaxRisk(d.RiskLevel, action.RiskHigh)
		d.RiskTags = prependTag(d.RiskTags, "CAPABILITY_EXCEEDED")
		d.Evidence = append(d.Evidence, action.Evidence{
			Type:        "capability_exceeded",
			Field:       "initiating_skill",
			Match:       initiating,
			Description: "Initiating skill's capabilities do not cover this action type",
		})
	}
}

// attachInitiator records initiating-skill attribution as evidence so the
// arbitrator and audit log can use it.
func (s *Scanner) attachInitiator(d *action.PolicyDecision, env action.Envelope) {
	if env.Context.InitiatingSkill == "" {
		return
	}
	for _, ev := range d.Evidence {
		if ev.Type == "initiating_skill" {
			return
		}
	}
	d.Evidence = append(d.Evidence, action.Evidence{
		Type:        "initiating_skill",
		Match:       env.Context.InitiatingSkill,
		Description: "Action attributed to initiating skill",
	})
}

func prependTag(tags []string, tag string) []string {
	for _, t := range tags {
		if t == tag {
			return tags
		}
	}
	return append([]string{tag}, tags...)
}

// explain builds the user-visible line for deny/confirm decisions: the
// decision driver, the risk tags in brackets, and the initiating skill
// when known.
func explain(d action.PolicyDecision, env action.Envelope) string {
	if d.Decision == action.DecisionAllow {
		return ""
	}

	driver := "policy violation"
	for _, ev := range d.Evidence {
		if ev.Type != "initiating_skill" {
			driver = ev.Description
			break
		}
	}

	var sb strings.Builder
	sb.WriteString(driver)
	if len(d.RiskTags) > 0 {
		sb.WriteString(" [" + strings.Join(d.RiskTags, ", ") + "]")
	}
	if env.Context.InitiatingSkill != "" {
		sb.WriteString(" (initiating skill: " + env.Context.InitiatingSkill + ")")
	}
	return sb.String()
}
