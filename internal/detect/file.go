package detect

import (
	"github.com/agentguard/agentguard/internal/action"
	"github.com/agentguard/agentguard/internal/capability"
)

// File checks a read or write path against the filesystem allowlist.
// Sensitive-path writes never reach this detector: the engine
// short-circuits them before dispatch.
func File(data *action.FileData, op action.Type, caps capability.Capabilities) Analysis {
	a := newAnalysis()

	if capability.MatchPath(caps.FilesystemAllowlist, data.Path) {
		return a
	}

	a.RiskLevel = action.RiskMedium
	a.addTag("PATH_NOT_ALLOWED")
	a.addEvidence("path_not_allowed", "path", data.Path, "Path is not on the skill's filesystem allowlist")
	a.ShouldBlock = true
	a.BlockReason = "Path not allowed"
	a.ForcedDecision = action.DecisionDeny
	return a
}
