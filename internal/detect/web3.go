package detect

import (
	"regexp"
	"strings"

	"github.com/agentguard/agentguard/internal/action"
	"github.com/agentguard/agentguard/internal/capability"
	"github.com/agentguard/agentguard/internal/patterns"
)

// unlimitedValueRe matches max-uint-style hex values and integer literals
// of 30+ digits, the shapes unlimited approvals take in typed data.
var unlimitedValueRe = regexp.MustCompile(`(?i)0xf{8,}|\b\d{30,}\b`)

// permitRe matches Permit-family signature types case-insensitively.
var permitRe = regexp.MustCompile(`(?i)permit`)

// Web3Tx runs the rule-based part of transaction analysis: the chain
// allowlist. Reputation and simulation checks live in the engine, which
// owns the threat-intel client.
func Web3Tx(data *action.Web3TxData, caps capability.Capabilities) Analysis {
	a := newAnalysis()

	if !chainAllowed(caps, data.ChainID) {
		a.RiskLevel = action.RiskHigh
		a.addTag("CHAIN_NOT_ALLOWED")
		a.addEvidence("chain_not_allowed", "chain_id", data.ChainID, "Chain is not on the skill's allowlist")
		a.ShouldBlock = true
		a.BlockReason = "Chain not allowed"
		a.ForcedDecision = action.DecisionDeny
	}
	return a
}

// Web3Sign analyses a signature request: chain allowlist, Permit
// signatures, unlimited-value typed data, and secrets smuggled into the
// message to sign.
func Web3Sign(data *action.Web3SignData, caps capability.Capabilities) Analysis {
	a := newAnalysis()

	if !chainAllowed(caps, data.ChainID) {
		a.RiskLevel = action.RiskHigh
		a.addTag("CHAIN_NOT_ALLOWED")
		a.addEvidence("chain_not_allowed", "chain_id", data.ChainID, "Chain is not on the skill's allowlist")
		a.ShouldBlock = true
		a.BlockReason = "Chain not allowed"
		a.ForcedDecision = action.DecisionDeny
		return a
	}

	if data.TypedData != "" {
		if permitRe.MatchString(data.TypedData) {
			a.addTag("PERMIT_SIGNATURE")
			a.lift(action.RiskMedium)
			a.addEvidence("permit_signature", "typed_data", "Permit", "Permit signatures move token allowances off-chain")
			a.ForcedDecision = action.DecisionConfirm
		}
		if m := unlimitedValueRe.FindString(data.TypedData); m != "" {
			a.addTag("UNLIMITED_VALUE")
			a.lift(action.RiskHigh)
			a.addEvidence("unlimited_value", "typed_data", truncateMatch(m), "Typed data contains an unlimited value")
			a.ForcedDecision = action.DecisionConfirm
		}
	}

	if data.Message != "" {
		if match, ok := patterns.HighestSecret(data.Message); ok && match.Pattern.Priority >= 90 {
			a.RiskLevel = action.RiskCritical
			a.addTag("SECRET_IN_SIGNATURE")
			a.addEvidence("secret_in_signature", "message", match.Pattern.ID, match.Pattern.Description+" in message to sign")
			a.ShouldBlock = true
			a.BlockReason = "Message to sign contains a secret"
			a.ForcedDecision = action.DecisionDeny
		}
	}

	return a
}

func chainAllowed(caps capability.Capabilities, chainID string) bool {
	if caps.Web3 == nil || len(caps.Web3.ChainsAllowlist) == 0 {
		return false
	}
	for _, c := range caps.Web3.ChainsAllowlist {
		if strings.EqualFold(c, chainID) {
			return true
		}
	}
	return false
}

func truncateMatch(m string) string {
	if len(m) > 20 {
		return m[:20] + "..."
	}
	return m
}
