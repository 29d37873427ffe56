package patterns

import "strings"

// WebhookDomains are services routinely abused as exfiltration sinks.
// Requests to them block unless the host is explicitly allowlisted.
var WebhookDomains = []string{
	"discord.com",
	"discordapp.com",
	"api.telegram.org",
	"hooks.slack.com",
	"webhook.site",
	"requestbin.com",
	"pipedream.com",
	"ngrok.io",
	"ngrok-free.app",
	"beeceptor.com",
	"mockbin.org",
}

// HighRiskTLDs are top-level domains with disproportionate abuse rates.
var HighRiskTLDs = []string{
	".xyz", ".top", ".tk", ".ml", ".ga", ".cf", ".gq",
	".work", ".click", ".link",
}

// IsWebhookDomain reports whether host is a known webhook/exfil domain or a
// subdomain of one.
func IsWebhookDomain(host string) bool {
	host = strings.ToLower(host)
	for _, d := range WebhookDomains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

// HasHighRiskTLD reports whether the host ends in a high-risk TLD.
func HasHighRiskTLD(host string) bool {
	host = strings.ToLower(host)
	for _, tld := range HighRiskTLDs {
		if strings.HasSuffix(host, tld) {
			return true
		}
	}
	return false
}
