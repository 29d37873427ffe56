package detect

import (
	"testing"

	"github.com/agentguard/agentguard/internal/action"
	"github.com/agentguard/agentguard/internal/capability"
)

func TestFile_Allowlist(t *testing.T) {
	caps := capability.Capabilities{FilesystemAllowlist: []string{"data/**"}}

	allowed := File(&action.FileData{Path: "data/cache/result.json"}, action.TypeWriteFile, caps)
	if allowed.ShouldBlock || len(allowed.RiskTags) != 0 {
		t.Errorf("allowlisted path flagged: %+v", allowed)
	}

	denied := File(&action.FileData{Path: "/etc/hosts"}, action.TypeWriteFile, caps)
	if !denied.ShouldBlock {
		t.Fatal("off-list path not blocked")
	}
	if denied.ForcedDecision != action.DecisionDeny {
		t.Errorf("forced decision = %s, want deny", denied.ForcedDecision)
	}
	if !hasTag(denied, "PATH_NOT_ALLOWED") {
		t.Errorf("tags = %v", denied.RiskTags)
	}
}

func TestSecret_Allowlist(t *testing.T) {
	caps := capability.Capabilities{SecretsAllowlist: []string{"STRIPE_*"}}

	allowed := Secret(&action.SecretData{SecretName: "STRIPE_SECRET_KEY"}, caps)
	if allowed.ShouldBlock {
		t.Errorf("allowlisted secret blocked: %s", allowed.BlockReason)
	}

	denied := Secret(&action.SecretData{SecretName: "GITHUB_TOKEN"}, caps)
	if !denied.ShouldBlock {
		t.Fatal("off-list secret not blocked")
	}
	if denied.ForcedDecision != action.DecisionDeny {
		t.Errorf("forced decision = %s, want deny", denied.ForcedDecision)
	}
	if denied.RiskLevel != action.RiskHigh {
		t.Errorf("risk = %s, want high", denied.RiskLevel)
	}
}
