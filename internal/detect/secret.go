package detect

import (
	"github.com/agentguard/agentguard/internal/action"
	"github.com/agentguard/agentguard/internal/capability"
)

// Secret checks named secret access against the secrets allowlist.
func Secret(data *action.SecretData, caps capability.Capabilities) Analysis {
	a := newAnalysis()

	if capability.MatchSecret(caps.SecretsAllowlist, data.SecretName) {
		return a
	}

	a.RiskLevel = action.RiskHigh
	a.addTag("SECRET_NOT_ALLOWED")
	a.addEvidence("secret_not_allowed", "secret_name", data.SecretName, "Secret is not on the skill's allowlist")
	a.ShouldBlock = true
	a.BlockReason = "Secret access not allowed"
	a.ForcedDecision = action.DecisionDeny
	return a
}
