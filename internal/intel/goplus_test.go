package intel

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/agentguard/agentguard/internal/action"
)

func TestGoPlus_Unconfigured(t *testing.T) {
	c := NewGoPlus("", "secret")
	if c.Configured() {
		t.Fatal("half a credential pair should not be configured")
	}

	ctx := context.Background()
	if r := c.PhishingSite(ctx, "https://example.com"); !r.Unavailable {
		t.Error("phishing check should be unavailable")
	}
	reports := c.AddressSecurity(ctx, "1", []string{"0xabc", "0xdef"})
	for addr, r := range reports {
		if !r.Unavailable {
			t.Errorf("%s report should be unavailable", addr)
		}
	}
	if r := c.SimulateTransaction(ctx, TxRequest{ChainID: "1"}); !r.Unavailable {
		t.Error("simulation should be unavailable")
	}
}

func TestGoPlus_PhishingSite(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/phishing_site" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("url"); got != "https://evil.example" {
			t.Errorf("url param = %s", got)
		}
		if r.Header.Get("X-API-KEY") != "key" {
			t.Error("missing API key header")
		}
		w.Write([]byte(`{"result":{"phishing_site":1}}`))
	}))
	defer srv.Close()

	c := NewGoPlus("key", "secret", WithBaseURL(srv.URL))
	r := c.PhishingSite(context.Background(), "https://evil.example")
	if r.Unavailable {
		t.Fatal("result unavailable")
	}
	if !r.IsPhishing {
		t.Error("expected phishing flag")
	}
}

func TestGoPlus_ProviderErrorDegrades(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewGoPlus("key", "secret", WithBaseURL(srv.URL))
	if r := c.PhishingSite(context.Background(), "https://example.com"); !r.Unavailable {
		t.Error("provider error should degrade to unavailable")
	}
	reports := c.AddressSecurity(context.Background(), "1", []string{"0xabc"})
	if !reports["0xabc"].Unavailable {
		t.Error("address report should be unavailable")
	}
	if r := c.SimulateTransaction(context.Background(), TxRequest{ChainID: "1"}); !r.Unavailable {
		t.Error("simulation should be unavailable")
	}
}

func TestGoPlus_AddressSecurity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("chain_id"); got != "1" {
			t.Errorf("chain_id = %s", got)
		}
		w.Write([]byte(`{"result":{"0xbad":{
			"blacklist_doubt":"1","phishing_activities":"0",
			"stealing_attack":"1","honeypot_related_address":"0"}}}`))
	}))
	defer srv.Close()

	c := NewGoPlus("key", "secret", WithBaseURL(srv.URL))
	reports := c.AddressSecurity(context.Background(), "1", []string{"0xBAD", "0xunknown"})

	bad := reports["0xBAD"]
	if bad.Unavailable {
		t.Fatal("report unavailable")
	}
	if !bad.IsBlacklisted || !bad.IsStealingAttack {
		t.Errorf("report = %+v", bad)
	}
	if bad.IsPhishingActivities || bad.IsHoneypotRelated {
		t.Errorf("report = %+v", bad)
	}
	if !bad.Malicious() {
		t.Error("blacklisted address should be malicious")
	}

	// Addresses the provider does not know come back neutral, not unavailable.
	unknown := reports["0xunknown"]
	if unknown.Unavailable || unknown.Malicious() {
		t.Errorf("unknown report = %+v", unknown)
	}
}

func TestGoPlus_SimulateTransaction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		w.Write([]byte(`{"result":{
			"success":true,"risk_level":"high","risk_tags":["TRANSFER_ALL"],
			"approval_changes":[{"token":"0xtok","spender":"0xspend","amount":"max","is_unlimited":true}]}}`))
	}))
	defer srv.Close()

	c := NewGoPlus("key", "secret", WithBaseURL(srv.URL))
	r := c.SimulateTransaction(context.Background(), TxRequest{ChainID: "1", To: "0xtok"})
	if r.Unavailable {
		t.Fatal("result unavailable")
	}
	if !r.Success || r.RiskLevel != action.RiskHigh {
		t.Errorf("result = %+v", r)
	}
	if len(r.RiskTags) != 1 || r.RiskTags[0] != "TRANSFER_ALL" {
		t.Errorf("risk tags = %v", r.RiskTags)
	}
	if len(r.ApprovalChanges) != 1 || !r.ApprovalChanges[0].IsUnlimited {
		t.Errorf("approval changes = %+v", r.ApprovalChanges)
	}
}

func TestParseRiskLevel(t *testing.T) {
	tests := []struct {
		in   string
		want action.RiskLevel
	}{
		{"critical", action.RiskCritical},
		{"HIGH", action.RiskHigh},
		{"medium", action.RiskMedium},
		{"low", action.RiskLow},
		{"", action.RiskLow},
		{"weird", action.RiskLow},
	}
	for _, tt := range tests {
		if got := parseRiskLevel(tt.in); got != tt.want {
			t.Errorf("parseRiskLevel(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}
