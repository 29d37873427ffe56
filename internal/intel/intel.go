// Package intel is the thin client over the external Web3 threat
// intelligence provider (phishing sites, address reputation, transaction
// simulation). The client never raises to callers: configuration gaps,
// transport errors and timeouts all degrade into Unavailable results, and
// the engine falls back to rule-based decisioning.
package intel

import (
	"context"

	"github.com/agentguard/agentguard/internal/action"
)

// PhishingResult is the origin check outcome.
type PhishingResult struct {
	IsPhishing  bool
	Unavailable bool
}

// AddressReport is the reputation record for one address.
type AddressReport struct {
	IsBlacklisted        bool
	IsPhishingActivities bool
	IsStealingAttack     bool
	IsHoneypotRelated    bool
	Unavailable          bool
}

// Malicious reports whether any hard-deny reputation flag is set.
// Honeypot relation is a soft signal handled separately.
func (r AddressReport) Malicious() bool {
	return r.IsBlacklisted || r.IsPhishingActivities || r.IsStealingAttack
}

// TxRequest is the simulation input.
type TxRequest struct {
	ChainID string
	From    string
	To      string
	Value   string
	Data    string
}

// BalanceChange is one asset movement predicted by simulation.
type BalanceChange struct {
	Token  string
	Amount string
}

// ApprovalChange is one allowance change predicted by simulation.
type ApprovalChange struct {
	Token       string
	Spender     string
	Amount      string
	IsUnlimited bool
}

// SimulationResult is the simulation outcome.
type SimulationResult struct {
	Success         bool
	BalanceChanges  []BalanceChange
	ApprovalChanges []ApprovalChange
	RiskTags        []string
	RiskLevel       action.RiskLevel
	ErrorMessage    string
	Unavailable     bool
}

// Client is the provider interface. Implementations must be safe for
// concurrent use and must honour context deadlines.
type Client interface {
	// Configured reports whether credentials are present. Unconfigured
	// clients still answer every call, with Unavailable results.
	Configured() bool

	PhishingSite(ctx context.Context, url string) PhishingResult
	AddressSecurity(ctx context.Context, chainID string, addrs []string) map[string]AddressReport
	SimulateTransaction(ctx context.Context, req TxRequest) SimulationResult
}

// Disabled is the no-provider client: every call is Unavailable.
type Disabled struct{}

func (Disabled) Configured() bool { return false }

func (Disabled) PhishingSite(context.Context, string) PhishingResult {
	return PhishingResult{Unavailable: true}
}

func (Disabled) AddressSecurity(_ context.Context, _ string, addrs []string) map[string]AddressReport {
	out := make(map[string]AddressReport, len(addrs))
	for _, a := range addrs {
		out[a] = AddressReport{Unavailable: true}
	}
	return out
}

func (Disabled) SimulateTransaction(context.Context, TxRequest) SimulationResult {
	return SimulationResult{Unavailable: true, RiskLevel: action.RiskLow}
}
