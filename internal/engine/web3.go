package engine

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/agentguard/agentguard/internal/action"
	"github.com/agentguard/agentguard/internal/capability"
	"github.com/agentguard/agentguard/internal/detect"
	"github.com/agentguard/agentguard/internal/intel"
)

// web3Intel is the fan-out result for one transaction evaluation. All
// provider calls run concurrently and are awaited before combination.
type web3Intel struct {
	phishing intel.PhishingResult
	address  intel.AddressReport
	sim      intel.SimulationResult
	simRan   bool
}

// decideWeb3Tx implements the transaction risk path: chain allowlist,
// phishing origin, address reputation, simulation, then the skill's tx
// policy and user presence.
func (s *Scanner) decideWeb3Tx(ctx context.Context, env action.Envelope, caps capability.Capabilities) action.PolicyDecision {
	data := env.Action.Web3Tx

	analysis := detect.Web3Tx(data, caps)
	if analysis.ForcedDecision == action.DecisionDeny {
		d := combine(analysis, action.TypeWeb3Tx)
		s.attachInitiator(&d, env)
		d.Explanation = explain(d, env)
		return d
	}

	res := s.fanOutIntel(ctx, data)
	d := combine(analysis, action.TypeWeb3Tx)

	s.applyOriginAndAddress(&d, res, data.Origin)
	if d.Decision != action.DecisionDeny {
		s.applySimulation(&d, res)
	}

	applyTxPolicy(&d, caps)
	s.applyOverlay(&d, env)
	applyUserPresence(&d, env)
	s.attachInitiator(&d, env)
	d.Explanation = explain(d, env)
	return d
}

// decideWeb3Sign implements the signature risk path: the detector's
// content checks plus the phishing-origin lookup.
func (s *Scanner) decideWeb3Sign(ctx context.Context, env action.Envelope, caps capability.Capabilities) action.PolicyDecision {
	data := env.Action.Web3Sign

	analysis := detect.Web3Sign(data, caps)
	d := combine(analysis, action.TypeWeb3Sign)

	if d.Decision != action.DecisionDeny && data.Origin != "" {
		phishing := s.intel.PhishingSite(ctx, data.Origin)
		if phishing.Unavailable {
			markUnavailable(&d)
		} else if phishing.IsPhishing {
			denyWith(&d, "PHISHING_ORIGIN", "origin", data.Origin, "Origin is a known phishing site")
		}
	}

	applyTxPolicy(&d, caps)
	s.applyOverlay(&d, env)
	applyUserPresence(&d, env)
	s.attachInitiator(&d, env)
	d.Explanation = explain(d, env)
	return d
}

// fanOutIntel runs the phishing, address and simulation lookups
// concurrently and awaits all of them.
func (s *Scanner) fanOutIntel(ctx context.Context, data *action.Web3TxData) web3Intel {
	var res web3Intel

	g, gctx := errgroup.WithContext(ctx)
	if data.Origin != "" {
		g.Go(func() error {
			res.phishing = s.intel.PhishingSite(gctx, data.Origin)
			return nil
		})
	} else {
		res.phishing = intel.PhishingResult{Unavailable: !s.intel.Configured()}
	}
	if data.To != "" {
		g.Go(func() error {
			reports := s.intel.AddressSecurity(gctx, data.ChainID, []string{data.To})
			res.address = reports[data.To]
			return nil
		})
	}
	if s.intel.Configured() {
		g.Go(func() error {
			res.sim = s.intel.SimulateTransaction(gctx, intel.TxRequest{
				ChainID: data.ChainID,
				From:    data.From,
				To:      data.To,
				Value:   data.Value,
				Data:    data.Data,
			})
			res.simRan = true
			return nil
		})
	}
	_ = g.Wait()
	return res
}

func (s *Scanner) applyOriginAndAddress(d *action.PolicyDecision, res web3Intel, origin string) {
	if res.phishing.Unavailable || res.address.Unavailable {
		markUnavailable(d)
	}

	if !res.phishing.Unavailable && res.phishing.IsPhishing {
		denyWith(d, "PHISHING_ORIGIN", "origin", origin, "Origin is a known phishing site")
		return
	}

	if res.address.Unavailable {
		return
	}
	if res.address.Malicious() {
		denyWith(d, "MALICIOUS_ADDRESS", "to", "", "Target address is flagged as malicious")
		return
	}
	if res.address.IsHoneypotRelated {
		d.RiskTags = append(d.RiskTags, "HONEYPOT_RELATED")
		d.RiskLevel = action.MaxRisk(d.RiskLevel, action.RiskHigh)
		d.Evidence = append(d.Evidence, action.Evidence{
			Type: "honeypot_related", Field: "to",
			Description: "Target address is associated with honeypot tokens",
		})
		if d.Decision == action.DecisionAllow {
			d.Decision = action.DecisionConfirm
		}
	}
}

func (s *Scanner) applySimulation(d *action.PolicyDecision, res web3Intel) {
	if !res.simRan {
		return
	}
	if res.sim.Unavailable {
		markUnavailable(d)
		return
	}

	for _, ac := range res.sim.ApprovalChanges {
		if !ac.IsUnlimited {
			continue
		}
		d.RiskTags = appendUnique(d.RiskTags, "UNLIMITED_APPROVAL")
		d.RiskLevel = action.MaxRisk(d.RiskLevel, action.RiskHigh)
		d.Evidence = append(d.Evidence, action.Evidence{
			Type: "unlimited_approval", Field: "data", Match: ac.Spender,
			Description: "Simulation predicts an unlimited token approval",
		})
		if d.Decision == action.DecisionAllow {
			d.Decision = action.DecisionConfirm
		}
	}

	for _, tag := range res.sim.RiskTags {
		d.RiskTags = appendUnique(d.RiskTags, tag)
	}
	if res.sim.RiskLevel.Rank() >= action.RiskHigh.Rank() {
		d.RiskLevel = action.MaxRisk(d.RiskLevel, res.sim.RiskLevel)
		if d.Decision == action.DecisionAllow {
			d.Decision = action.DecisionConfirm
		}
	}
}

// applyTxPolicy enforces the skill's Web3 tx policy: deny overrides
// everything, confirm_high_risk downgrades allow to confirm whenever risk
// is above low.
func applyTxPolicy(d *action.PolicyDecision, caps capability.Capabilities) {
	if caps.Web3 == nil {
		return
	}
	switch caps.Web3.TxPolicy {
	case capability.TxDeny:
		if d.Decision != action.DecisionDeny {
			d.Decision = action.DecisionDeny
			d.RiskTags = appendUnique(d.RiskTags, "TX_POLICY_DENY")
			d.Evidence = append(d.Evidence, action.Evidence{
				Type: "tx_policy", Description: "Skill's transaction policy denies all transactions",
			})
		}
	case capability.TxConfirmHighRisk:
		if d.Decision == action.DecisionAllow && d.RiskLevel != action.RiskLow {
			d.Decision = action.DecisionConfirm
		}
	}
}

// applyUserPresence upgrades confirm to deny when nobody is present to
// confirm.
func applyUserPresence(d *action.PolicyDecision, env action.Envelope) {
	if env.Context.UserPresent || d.Decision != action.DecisionConfirm {
		return
	}
	d.Decision = action.DecisionDeny
	d.RiskTags = appendUnique(d.RiskTags, "USER_NOT_PRESENT")
	d.Evidence = append(d.Evidence, action.Evidence{
		Type:        "user_not_present",
		Description: "Confirmation required but no user is present",
	})
}

func markUnavailable(d *action.PolicyDecision) {
	d.RiskTags = appendUnique(d.RiskTags, "SIMULATION_UNAVAILABLE")
}

func denyWith(d *action.PolicyDecision, tag, field, match, description string) {
	d.Decision = action.DecisionDeny
	d.RiskLevel = action.RiskCritical
	d.RiskTags = appendUnique(d.RiskTags, tag)
	d.Evidence = append(d.Evidence, action.Evidence{
		Type: strings.ToLower(tag), Field: field, Match: match, Description: description,
	})
}

func appendUnique(tags []string, tag string) []string {
	for _, t := range tags {
		if t == tag {
			return tags
		}
	}
	return append(tags, tag)
}
