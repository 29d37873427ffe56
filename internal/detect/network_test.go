package detect

import (
	"strings"
	"testing"

	"github.com/agentguard/agentguard/internal/action"
	"github.com/agentguard/agentguard/internal/capability"
)

func TestNetwork_WebhookBlocked(t *testing.T) {
	data := &action.NetworkData{
		Method: "POST",
		URL:    "https://discord.com/api/webhooks/1234/token",
	}
	a := Network(data, capability.None())
	if !a.ShouldBlock {
		t.Fatal("webhook request not blocked")
	}
	if !hasTag(a, "WEBHOOK_EXFIL") {
		t.Errorf("tags = %v", a.RiskTags)
	}
	if a.RiskLevel != action.RiskHigh {
		t.Errorf("risk = %s, want high", a.RiskLevel)
	}
	if a.ForcedDecision != action.DecisionDeny {
		t.Errorf("decision = %s, want deny", a.ForcedDecision)
	}
}

func TestNetwork_AllowlistedWebhookPasses(t *testing.T) {
	caps := capability.Capabilities{NetworkAllowlist: []string{"discord.com"}}
	data := &action.NetworkData{Method: "POST", URL: "https://discord.com/api/webhooks/1/x"}
	a := Network(data, caps)
	if a.ShouldBlock {
		t.Errorf("allowlisted webhook blocked: %s", a.BlockReason)
	}
}

func TestNetwork_CriticalSecretInBody(t *testing.T) {
	data := &action.NetworkData{
		Method:      "POST",
		URL:         "https://api.example.com/upload",
		BodyPreview: "payload=0x" + strings.Repeat("a", 64),
	}
	a := Network(data, capability.None())
	if !a.ShouldBlock {
		t.Fatal("secret exfiltration not blocked")
	}
	if !hasTag(a, "CRITICAL_SECRET_EXFIL") {
		t.Errorf("tags = %v", a.RiskTags)
	}
	if a.RiskLevel != action.RiskCritical {
		t.Errorf("risk = %s, want critical", a.RiskLevel)
	}
}

func TestNetwork_LowPrioritySecretAdvisory(t *testing.T) {
	data := &action.NetworkData{
		Method:      "POST",
		URL:         "https://api.example.com/config",
		BodyPreview: "api_key=abcdef0123456789",
	}
	a := Network(data, capability.None())
	if a.ShouldBlock {
		t.Errorf("medium-priority secret should not block: %s", a.BlockReason)
	}
	if !hasTag(a, "POTENTIAL_SECRET_EXFIL") {
		t.Errorf("tags = %v", a.RiskTags)
	}
	if a.RiskLevel != action.RiskMedium {
		t.Errorf("risk = %s, want medium", a.RiskLevel)
	}
}

func TestNetwork_SubThresholdSecretNotTagged(t *testing.T) {
	// Priority-40 matches stay below the exfiltration band: evidence only.
	data := &action.NetworkData{
		Method:      "POST",
		URL:         "https://api.example.com/login",
		BodyPreview: "password=hunter42",
	}
	a := Network(data, capability.None())
	if a.ShouldBlock {
		t.Errorf("low-priority secret should not block: %s", a.BlockReason)
	}
	if hasTag(a, "POTENTIAL_SECRET_EXFIL") || hasTag(a, "CRITICAL_SECRET_EXFIL") {
		t.Errorf("tags = %v", a.RiskTags)
	}
	if a.RiskLevel != action.RiskLow {
		t.Errorf("risk = %s, want low", a.RiskLevel)
	}
	if len(a.Evidence) == 0 {
		t.Error("match should still surface as evidence")
	}
}

func TestNetwork_InvalidURL(t *testing.T) {
	for _, raw := range []string{"not a url", "ftp://example.com/file", ""} {
		a := Network(&action.NetworkData{Method: "GET", URL: raw}, capability.None())
		if !a.ShouldBlock {
			t.Errorf("%q accepted", raw)
		}
		if !hasTag(a, "INVALID_URL") {
			t.Errorf("%q tags = %v", raw, a.RiskTags)
		}
	}
}

func TestNetwork_HighRiskTLD(t *testing.T) {
	get := Network(&action.NetworkData{Method: "GET", URL: "https://free-money.xyz/"}, capability.None())
	if !hasTag(get, "HIGH_RISK_TLD") {
		t.Errorf("tags = %v", get.RiskTags)
	}
	if get.RiskLevel != action.RiskMedium {
		t.Errorf("GET risk = %s, want medium", get.RiskLevel)
	}

	post := Network(&action.NetworkData{Method: "POST", URL: "https://free-money.xyz/collect"}, capability.None())
	if post.RiskLevel != action.RiskHigh {
		t.Errorf("POST risk = %s, want high", post.RiskLevel)
	}
}

func TestNetwork_Allowlist(t *testing.T) {
	caps := capability.Capabilities{NetworkAllowlist: []string{"api.example.com"}}

	onList := Network(&action.NetworkData{Method: "GET", URL: "https://api.example.com/v1"}, caps)
	if len(onList.RiskTags) != 0 || onList.RiskLevel != action.RiskLow {
		t.Errorf("allowlisted host flagged: tags=%v risk=%s", onList.RiskTags, onList.RiskLevel)
	}

	offList := Network(&action.NetworkData{Method: "POST", URL: "https://api.other.com/v1"}, caps)
	if !hasTag(offList, "UNTRUSTED_DOMAIN") {
		t.Errorf("tags = %v", offList.RiskTags)
	}
	if offList.RiskLevel != action.RiskHigh {
		t.Errorf("off-list POST risk = %s, want high", offList.RiskLevel)
	}

	// Without an allowlist there is nothing to be off of.
	open := Network(&action.NetworkData{Method: "POST", URL: "https://api.other.com/v1"}, capability.None())
	if hasTag(open, "UNTRUSTED_DOMAIN") {
		t.Errorf("tags = %v", open.RiskTags)
	}
}
