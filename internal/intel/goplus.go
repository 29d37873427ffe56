package intel

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/agentguard/agentguard/internal/action"
)

// DefaultBaseURL is the GoPlus Labs API root.
const DefaultBaseURL = "https://api.gopluslabs.io/api/v1"

// endpointTimeout bounds each provider call. On timeout the call degrades
// to an Unavailable result instead of failing the evaluation.
const endpointTimeout = 5 * time.Second

// GoPlusClient talks to the GoPlus threat-intelligence API. All methods
// swallow errors into Unavailable results; the zero credential pair means
// every call is Unavailable.
type GoPlusClient struct {
	apiKey    string
	apiSecret string
	baseURL   string
	http      *http.Client
}

// GoPlusOption configures the client.
type GoPlusOption func(*GoPlusClient)

// WithBaseURL overrides the API root (tests point this at a local server).
func WithBaseURL(u string) GoPlusOption {
	return func(c *GoPlusClient) { c.baseURL = strings.TrimSuffix(u, "/") }
}

// WithHTTPClient overrides the transport.
func WithHTTPClient(h *http.Client) GoPlusOption {
	return func(c *GoPlusClient) { c.http = h }
}

// NewGoPlus creates a client. Both key and secret must be present for the
// client to be configured.
func NewGoPlus(apiKey, apiSecret string, opts ...GoPlusOption) *GoPlusClient {
	c := &GoPlusClient{
		apiKey:    apiKey,
		apiSecret: apiSecret,
		baseURL:   DefaultBaseURL,
		http:      &http.Client{Timeout: endpointTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether both credentials are present.
func (c *GoPlusClient) Configured() bool {
	return c.apiKey != "" && c.apiSecret != ""
}

type phishingResponse struct {
	Result struct {
		PhishingSite int `json:"phishing_site"`
	} `json:"result"`
}

// PhishingSite checks a dapp origin against the phishing-site database.
func (c *GoPlusClient) PhishingSite(ctx context.Context, site string) PhishingResult {
	if !c.Configured() {
		return PhishingResult{Unavailable: true}
	}
	var resp phishingResponse
	endpoint := c.baseURL + "/phishing_site?url=" + url.QueryEscape(site)
	if err := c.get(ctx, endpoint, &resp); err != nil {
		return PhishingResult{Unavailable: true}
	}
	return PhishingResult{IsPhishing: resp.Result.PhishingSite == 1}
}

type addressResponse struct {
	Result map[string]struct {
		Blacklist          string `json:"blacklist_doubt"`
		PhishingActivities string `json:"phishing_activities"`
		StealingAttack     string `json:"stealing_attack"`
		HoneypotRelated    string `json:"honeypot_related_address"`
	} `json:"result"`
}

// AddressSecurity fetches reputation for each address on the chain.
// Addresses missing from the provider response come back neutral.
func (c *GoPlusClient) AddressSecurity(ctx context.Context, chainID string, addrs []string) map[string]AddressReport {
	out := make(map[string]AddressReport, len(addrs))
	if !c.Configured() {
		for _, a := range addrs {
			out[a] = AddressReport{Unavailable: true}
		}
		return out
	}

	for _, addr := range addrs {
		endpoint := fmt.Sprintf("%s/address_security/%s?chain_id=%s",
			c.baseURL, url.PathEscape(addr), url.QueryEscape(chainID))
		var resp addressResponse
		if err := c.get(ctx, endpoint, &resp); err != nil {
			out[addr] = AddressReport{Unavailable: true}
			continue
		}
		entry, ok := resp.Result[strings.ToLower(addr)]
		if !ok {
			entry, ok = resp.Result[addr]
		}
		if !ok {
			out[addr] = AddressReport{}
			continue
		}
		out[addr] = AddressReport{
			IsBlacklisted:        entry.Blacklist == "1",
			IsPhishingActivities: entry.PhishingActivities == "1",
			IsStealingAttack:     entry.StealingAttack == "1",
			IsHoneypotRelated:    entry.HoneypotRelated == "1",
		}
	}
	return out
}

type simulationResponse struct {
	Result struct {
		Success        bool     `json:"success"`
		ErrorMessage   string   `json:"error_message"`
		RiskLevel      string   `json:"risk_level"`
		RiskTags       []string `json:"risk_tags"`
		BalanceChanges []struct {
			Token  string `json:"token"`
			Amount string `json:"amount"`
		} `json:"balance_changes"`
		ApprovalChanges []struct {
			Token       string `json:"token"`
			Spender     string `json:"spender"`
			Amount      string `json:"amount"`
			IsUnlimited bool   `json:"is_unlimited"`
		} `json:"approval_changes"`
	} `json:"result"`
}

// SimulateTransaction asks the provider to dry-run the transaction and
// report balance and approval changes.
func (c *GoPlusClient) SimulateTransaction(ctx context.Context, req TxRequest) SimulationResult {
	if !c.Configured() {
		return SimulationResult{Unavailable: true, RiskLevel: action.RiskLow}
	}

	body, err := json.Marshal(map[string]string{
		"chain_id": req.ChainID,
		"from":     req.From,
		"to":       req.To,
		"value":    req.Value,
		"data":     req.Data,
	})
	if err != nil {
		return SimulationResult{Unavailable: true, RiskLevel: action.RiskLow}
	}

	var resp simulationResponse
	if err := c.post(ctx, c.baseURL+"/transaction_simulation", body, &resp); err != nil {
		return SimulationResult{Unavailable: true, RiskLevel: action.RiskLow}
	}

	out := SimulationResult{
		Success:      resp.Result.Success,
		ErrorMessage: resp.Result.ErrorMessage,
		RiskTags:     resp.Result.RiskTags,
		RiskLevel:    parseRiskLevel(resp.Result.RiskLevel),
	}
	for _, bc := range resp.Result.BalanceChanges {
		out.BalanceChanges = append(out.BalanceChanges, BalanceChange{Token: bc.Token, Amount: bc.Amount})
	}
	for _, ac := range resp.Result.ApprovalChanges {
		out.ApprovalChanges = append(out.ApprovalChanges, ApprovalChange{
			Token: ac.Token, Spender: ac.Spender, Amount: ac.Amount, IsUnlimited: ac.IsUnlimited,
		})
	}
	return out
}

func parseRiskLevel(s string) action.RiskLevel {
	switch strings.ToLower(s) {
	case "critical":
		return action.RiskCritical
	case "high":
		return action.RiskHigh
	case "medium":
		return action.RiskMedium
	default:
		return action.RiskLow
	}
}

func (c *GoPlusClient) get(ctx context.Context, endpoint string, out interface{}) error {
	return c.do(ctx, http.MethodGet, endpoint, nil, out)
}

func (c *GoPlusClient) post(ctx context.Context, endpoint string, body []byte, out interface{}) error {
	return c.do(ctx, http.MethodPost, endpoint, body, out)
}

func (c *GoPlusClient) do(ctx context.Context, method, endpoint string, body []byte, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, endpointTimeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = strings.NewReader(string(body))
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("X-API-SECRET", c.apiSecret)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("intel provider returned %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}
