package detect

import (
	"net/url"
	"strings"

	"github.com/agentguard/agentguard/internal/action"
	"github.com/agentguard/agentguard/internal/capability"
	"github.com/agentguard/agentguard/internal/patterns"
)

// Network analyses an outbound HTTP request against the webhook blocklist,
// the secret catalog (body exfiltration), high-risk TLDs, and the skill's
// network allowlist.
func Network(data *action.NetworkData, caps capability.Capabilities) Analysis {
	a := newAnalysis()

	u, err := url.Parse(data.URL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		a.RiskLevel = action.RiskHigh
		a.addTag("INVALID_URL")
		a.addEvidence("invalid_url", "url", data.URL, "URL could not be parsed")
		a.ShouldBlock = true
		a.BlockReason = "Malformed URL"
		return a
	}

	host := strings.ToLower(u.Hostname())
	method := strings.ToUpper(data.Method)
	allowlisted := capability.MatchHost(caps.NetworkAllowlist, host)

	if patterns.IsWebhookDomain(host) && !allowlisted {
		a.RiskLevel = action.RiskHigh
		a.addTag("WEBHOOK_EXFIL")
		a.addEvidence("webhook_domain", "url", host, "Host is a known exfiltration sink")
		a.ShouldBlock = true
		a.BlockReason = "Request targets a webhook/exfiltration domain"
		a.ForcedDecision = action.DecisionDeny
	}

	if data.BodyPreview != "" {
		if match, ok := patterns.HighestSecret(data.BodyPreview); ok {
			risk := match.Pattern.Risk()
			a.lift(risk)
			switch {
			case match.Pattern.Priority >= 90:
				a.addTag("CRITICAL_SECRET_EXFIL")
				a.ShouldBlock = true
				a.BlockReason = "Request body contains a " + match.Pattern.Description
			case match.Pattern.Priority >= 50:
				a.addTag("POTENTIAL_SECRET_EXFIL")
			}
			a.addEvidence("secret_in_body", "body_preview", match.Pattern.ID, match.Pattern.Description+" in request body")
		}
	}

	mutating := method == "POST" || method == "PUT"

	if patterns.HasHighRiskTLD(host) && !allowlisted {
		a.addTag("HIGH_RISK_TLD")
		a.lift(action.RiskMedium)
		if mutating {
			a.lift(action.RiskHigh)
		}
		a.addEvidence("high_risk_tld", "url", host, "Host uses a high-abuse TLD")
	}

	if !allowlisted && len(caps.NetworkAllowlist) > 0 {
		a.addTag("UNTRUSTED_DOMAIN")
		if mutating {
			a.lift(action.RiskHigh)
		}
		a.addEvidence("untrusted_domain", "url", host, "Host is not on the skill's network allowlist")
	}

	return a
}
