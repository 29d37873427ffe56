package detect

import (
	"strings"
	"testing"

	"github.com/agentguard/agentguard/internal/action"
	"github.com/agentguard/agentguard/internal/capability"
)

func web3Caps(chains ...string) capability.Capabilities {
	return capability.Capabilities{Web3: &capability.Web3{ChainsAllowlist: chains}}
}

func TestWeb3Tx_ChainAllowlist(t *testing.T) {
	data := &action.Web3TxData{ChainID: "1", To: "0xabc"}

	denied := Web3Tx(data, capability.None())
	if denied.ForcedDecision != action.DecisionDeny {
		t.Errorf("no web3 capability: decision = %s, want deny", denied.ForcedDecision)
	}
	if !hasTag(denied, "CHAIN_NOT_ALLOWED") {
		t.Errorf("tags = %v", denied.RiskTags)
	}

	wrongChain := Web3Tx(&action.Web3TxData{ChainID: "56", To: "0xabc"}, web3Caps("1"))
	if wrongChain.ForcedDecision != action.DecisionDeny {
		t.Error("off-list chain should be denied")
	}

	allowed := Web3Tx(data, web3Caps("1", "8453"))
	if allowed.ShouldBlock || len(allowed.RiskTags) != 0 {
		t.Errorf("allowed chain flagged: %+v", allowed)
	}
}

func TestWeb3Sign_Permit(t *testing.T) {
	data := &action.Web3SignData{
		ChainID:   "1",
		TypedData: `{"primaryType":"Permit","message":{"spender":"0xdef"}}`,
	}
	a := Web3Sign(data, web3Caps("1"))
	if a.ForcedDecision != action.DecisionConfirm {
		t.Errorf("decision = %s, want confirm", a.ForcedDecision)
	}
	if !hasTag(a, "PERMIT_SIGNATURE") {
		t.Errorf("tags = %v", a.RiskTags)
	}
	if a.RiskLevel != action.RiskMedium {
		t.Errorf("risk = %s, want medium", a.RiskLevel)
	}
}

func TestWeb3Sign_UnlimitedValue(t *testing.T) {
	tests := []struct {
		name  string
		typed string
	}{
		{"max uint hex", `{"value":"0x` + strings.Repeat("f", 64) + `"}`},
		{"huge integer", `{"value":"115792089237316195423570985008687907853269984665640564039457"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Web3Sign(&action.Web3SignData{ChainID: "1", TypedData: tt.typed}, web3Caps("1"))
			if !hasTag(a, "UNLIMITED_VALUE") {
				t.Errorf("tags = %v", a.RiskTags)
			}
			if a.RiskLevel != action.RiskHigh {
				t.Errorf("risk = %s, want high", a.RiskLevel)
			}
			if a.ForcedDecision != action.DecisionConfirm {
				t.Errorf("decision = %s, want confirm", a.ForcedDecision)
			}
		})
	}
}

func TestWeb3Sign_SecretInMessage(t *testing.T) {
	data := &action.Web3SignData{
		ChainID: "1",
		Message: "please sign 0x" + strings.Repeat("a", 64),
	}
	a := Web3Sign(data, web3Caps("1"))
	if a.ForcedDecision != action.DecisionDeny {
		t.Errorf("decision = %s, want deny", a.ForcedDecision)
	}
	if !hasTag(a, "SECRET_IN_SIGNATURE") {
		t.Errorf("tags = %v", a.RiskTags)
	}
	if a.RiskLevel != action.RiskCritical {
		t.Errorf("risk = %s, want critical", a.RiskLevel)
	}
}

func TestWeb3Sign_ChainDeniedShortCircuits(t *testing.T) {
	data := &action.Web3SignData{
		ChainID:   "999",
		TypedData: `{"primaryType":"Permit"}`,
	}
	a := Web3Sign(data, web3Caps("1"))
	if a.ForcedDecision != action.DecisionDeny {
		t.Errorf("decision = %s, want deny", a.ForcedDecision)
	}
	if hasTag(a, "PERMIT_SIGNATURE") {
		t.Error("chain denial should short-circuit further analysis")
	}
}

func TestWeb3Sign_PlainMessage(t *testing.T) {
	a := Web3Sign(&action.Web3SignData{ChainID: "1", Message: "gm"}, web3Caps("1"))
	if a.ShouldBlock || len(a.RiskTags) != 0 {
		t.Errorf("plain message flagged: %+v", a)
	}
	if a.ForcedDecision != "" {
		t.Errorf("forced decision = %s, want none", a.ForcedDecision)
	}
}
