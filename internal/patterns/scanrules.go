package patterns

import (
	"regexp"

	"github.com/agentguard/agentguard/internal/action"
)

// ScanRule is one static-scan rule: a regex applied line-by-line to files
// whose extension is in Extensions (nil = all scanned extensions).
type ScanRule struct {
	ID          string
	Severity    action.RiskLevel
	Extensions  []string
	Re          *regexp.Regexp
	Category    string
	Description string
}

// AppliesTo reports whether the rule covers a file extension (without dot).
func (r ScanRule) AppliesTo(ext string) bool {
	if len(r.Extensions) == 0 {
		return true
	}
	for _, e := range r.Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

var (
	jsExts     = []string{"js", "ts", "jsx", "tsx", "mjs", "cjs"}
	jsPyExts   = []string{"js", "ts", "jsx", "tsx", "mjs", "cjs", "py"}
	docExts    = []string{"md", "json", "yaml", "yml"}
	solExts    = []string{"sol"}
	shellExts  = []string{"sh", "bash"}
	web3Mixed  = []string{"sol", "js", "ts"}
	configExts = []string{"json", "yaml", "yml", "toml"}
)

// BuiltinScanRules is the ordered static-scan catalog. Order is the
// tie-break for risk-tag reporting, so new rules go at the end of their
// category block.
var BuiltinScanRules = []ScanRule{
	// Execution risks
	{
		ID: "SHELL_EXEC", Severity: action.RiskHigh, Extensions: jsExts,
		Re:       regexp.MustCompile(`child_process|\bexecSync\s*\(|\bspawnSync?\s*\(`),
		Category: "execution", Description: "Shell execution from JavaScript",
	},
	{
		ID: "PY_SUBPROCESS", Severity: action.RiskHigh, Extensions: []string{"py"},
		Re:       regexp.MustCompile(`subprocess\.(run|call|check_output|Popen)|os\.system\s*\(`),
		Category: "execution", Description: "Shell execution from Python",
	},
	{
		ID: "EVAL_USAGE", Severity: action.RiskHigh, Extensions: jsPyExts,
		Re:       regexp.MustCompile(`\beval\s*\(`),
		Category: "execution", Description: "Dynamic code evaluation",
	},
	{
		ID: "NEW_FUNCTION", Severity: action.RiskMedium, Extensions: jsExts,
		Re:       regexp.MustCompile(`new\s+Function\s*\(`),
		Category: "execution", Description: "Dynamic function construction",
	},
	{
		ID: "CURL_PIPE_SHELL", Severity: action.RiskCritical, Extensions: shellExts,
		Re:       regexp.MustCompile(`(curl|wget)[^|\n]*\|\s*[^|\n]*(sh|bash)\b`),
		Category: "execution", Description: "Remote script piped into a shell",
	},

	// Secret reads and hardcoded credentials
	{
		ID: "PRIVATE_KEY_PATTERN", Severity: action.RiskCritical,
		Re:       regexp.MustCompile(`\b0x[a-fA-F0-9]{64}\b`),
		Category: "secrets", Description: "Hardcoded Ethereum-style private key",
	},
	{
		ID: "MNEMONIC_PATTERN", Severity: action.RiskCritical,
		Re:       regexp.MustCompile(`["']([a-z]{3,8} ){11,23}[a-z]{3,8}["']`),
		Category: "secrets", Description: "Hardcoded BIP-39 mnemonic phrase",
	},
	{
		ID: "PEM_KEY_BLOCK", Severity: action.RiskCritical,
		Re:       regexp.MustCompile(`-----BEGIN (RSA |EC |DSA |OPENSSH |PGP )?PRIVATE KEY-----`),
		Category: "secrets", Description: "Embedded PEM private key",
	},
	{
		ID: "AWS_KEY_LITERAL", Severity: action.RiskHigh,
		Re:       regexp.MustCompile(`\bAKIA[0-9A-Z]{16}\b`),
		Category: "secrets", Description: "Hardcoded AWS access key",
	},
	{
		ID: "GITHUB_TOKEN_LITERAL", Severity: action.RiskHigh,
		Re:       regexp.MustCompile(`\bgh[pousr]_[A-Za-z0-9_]{36,}\b`),
		Category: "secrets", Description: "Hardcoded GitHub token",
	},
	{
		ID: "ENV_FILE_READ", Severity: action.RiskMedium, Extensions: jsPyExts,
		Re:       regexp.MustCompile(`(readFileSync|open|read_text)\s*\([^)]*\.env`),
		Category: "secrets", Description: "Programmatic .env file read",
	},
	{
		ID: "SSH_KEY_READ", Severity: action.RiskHigh,
		Re:       regexp.MustCompile(`\.ssh/(id_rsa|id_ed25519)`),
		Category: "secrets", Description: "SSH private key path referenced",
	},
	{
		ID: "HARDCODED_PASSWORD", Severity: action.RiskMedium,
		Re:       regexp.MustCompile(`(?i)password\s*[:=]\s*["'][^"']{4,}["']`),
		Category: "secrets", Description: "Hardcoded password",
	},

	// Exfiltration
	{
		ID: "WEBHOOK_EXFIL", Severity: action.RiskHigh,
		Re:       regexp.MustCompile(`(discord(app)?\.com/api/webhooks|hooks\.slack\.com|api\.telegram\.org/bot|webhook\.site|requestbin\.com|pipedream\.com|ngrok(-free)?\.(io|app)|beeceptor\.com|mockbin\.org)`),
		Category: "exfiltration", Description: "Webhook exfiltration endpoint",
	},
	{
		ID: "RAW_IP_URL", Severity: action.RiskMedium,
		Re:       regexp.MustCompile(`https?://\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}`),
		Category: "exfiltration", Description: "URL addressing a raw IP",
	},

	// Obfuscation
	{
		ID: "EVAL_ATOB_CHAIN", Severity: action.RiskHigh, Extensions: jsExts,
		Re:       regexp.MustCompile(`eval\s*\(\s*atob|atob\s*\(\s*["'][A-Za-z0-9+/=]{40,}`),
		Category: "obfuscation", Description: "Base64-decoded code evaluation",
	},
	{
		ID: "HEX_ESCAPE_BLOB", Severity: action.RiskMedium, Extensions: jsPyExts,
		Re:       regexp.MustCompile(`(\\x[0-9a-fA-F]{2}){20,}`),
		Category: "obfuscation", Description: "Long hex-escape sequence",
	},
	{
		ID: "BASE64_BLOB", Severity: action.RiskMedium,
		Re:       regexp.MustCompile(`[A-Za-z0-9+/]{120,}={0,2}`),
		Category: "obfuscation", Description: "Large base64 blob",
	},
	{
		ID: "CHARCODE_CHAIN", Severity: action.RiskMedium, Extensions: jsExts,
		Re:       regexp.MustCompile(`String\.fromCharCode\s*\((\s*\d+\s*,){10,}`),
		Category: "obfuscation", Description: "Character-code string assembly",
	},

	// Prompt injection
	{
		ID: "PROMPT_INJECTION", Severity: action.RiskHigh, Extensions: docExts,
		Re:       regexp.MustCompile(`(?i)ignore\s+(all|any|previous|prior)\s+instructions`),
		Category: "prompt_injection", Description: "Instruction-override phrasing",
	},
	{
		ID: "SYSTEM_TAG_SPOOF", Severity: action.RiskHigh, Extensions: docExts,
		Re:       regexp.MustCompile(`(?i)<\s*/?\s*system\s*>|\[SYSTEM\]`),
		Category: "prompt_injection", Description: "System-tag spoofing",
	},
	{
		ID: "HIDDEN_INSTRUCTION", Severity: action.RiskMedium, Extensions: []string{"md"},
		Re:       regexp.MustCompile(`(?i)do not (tell|mention|reveal|inform).{0,40}(user|human)`),
		Category: "prompt_injection", Description: "Instruction to conceal behaviour from the user",
	},

	// Web3 / Solidity
	{
		ID: "DANGEROUS_SELFDESTRUCT", Severity: action.RiskCritical, Extensions: solExts,
		Re:       regexp.MustCompile(`selfdestruct\s*\(`),
		Category: "web3", Description: "Contract self-destruct",
	},
	{
		ID: "UNLIMITED_APPROVAL", Severity: action.RiskHigh, Extensions: web3Mixed,
		Re:       regexp.MustCompile(`type\(uint256\)\.max|0x[fF]{64}|\b115792089237316195423570985008687907853269984665640564039457\d*\b`),
		Category: "web3", Description: "Unlimited token approval",
	},
	{
		ID: "REENTRANCY_PATTERN", Severity: action.RiskHigh, Extensions: solExts,
		Re:       regexp.MustCompile(`\.call\{value:`),
		Category: "web3", Description: "External value call (reentrancy surface)",
	},
	{
		ID: "ECRECOVER_NO_NONCE", Severity: action.RiskMedium, Extensions: solExts,
		Re:       regexp.MustCompile(`ecrecover\s*\(`),
		Category: "web3", Description: "Signature recovery without replay protection",
	},
	{
		ID: "PROXY_UPGRADE_SLOT", Severity: action.RiskMedium, Extensions: solExts,
		Re:       regexp.MustCompile(`IMPLEMENTATION_SLOT`),
		Category: "web3", Description: "Proxy implementation slot manipulation",
	},
	{
		ID: "FLASH_LOAN_ENTRY", Severity: action.RiskMedium, Extensions: solExts,
		Re:       regexp.MustCompile(`\b(flashLoan|onFlashLoan|executeOperation)\s*\(`),
		Category: "web3", Description: "Flash-loan entrypoint",
	},

	// Social engineering
	{
		ID: "CRYPTO_GIVEAWAY", Severity: action.RiskMedium, Extensions: []string{"md"},
		Re:       regexp.MustCompile(`(?i)(double your (crypto|eth|btc)|free (crypto|eth|btc)|airdrop claim|guaranteed returns)`),
		Category: "social_engineering", Description: "Crypto giveaway bait",
	},
	{
		ID: "URGENCY_MARKER", Severity: action.RiskLow, Extensions: []string{"md"},
		Re:       regexp.MustCompile(`(?i)(act now|limited time|urgent[:!]|immediately (send|transfer|approve))`),
		Category: "social_engineering", Description: "Urgency-pressure phrasing",
	},

	// Config poisoning
	{
		ID: "NPM_INSTALL_HOOK", Severity: action.RiskHigh, Extensions: configExts,
		Re:       regexp.MustCompile(`"(pre|post)?install"\s*:\s*"[^"]*(curl|wget|node -e|bash)`),
		Category: "execution", Description: "Package install hook running code",
	},
}
