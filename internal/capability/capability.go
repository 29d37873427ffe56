// Package capability models what a skill is allowed to do: allowlists for
// network hosts, filesystem paths and secrets, an exec switch, and an
// optional Web3 sub-policy. Named presets are constants, not stored per
// trust record.
package capability

import "strings"

// ExecPolicy controls shell execution.
type ExecPolicy string

const (
	ExecAllow ExecPolicy = "allow"
	ExecDeny  ExecPolicy = "deny"
)

// TxPolicy controls how Web3 transactions are treated after risk analysis.
type TxPolicy string

const (
	TxAllow           TxPolicy = "allow"
	TxConfirmHighRisk TxPolicy = "confirm_high_risk"
	TxDeny            TxPolicy = "deny"
)

// Web3 is the optional blockchain sub-policy.
type Web3 struct {
	ChainsAllowlist []string `json:"chains_allowlist,omitempty"`
	RPCAllowlist    []string `json:"rpc_allowlist,omitempty"`
	TxPolicy        TxPolicy `json:"tx_policy,omitempty"`
}

// Capabilities is the structured capability record attached to a trust
// record. Allowlist entries are glob-like patterns: `*` matches a single
// segment, `**` matches any suffix.
type Capabilities struct {
	NetworkAllowlist    []string   `json:"network_allowlist,omitempty"`
	FilesystemAllowlist []string   `json:"filesystem_allowlist,omitempty"`
	Exec                ExecPolicy `json:"exec,omitempty"`
	SecretsAllowlist    []string   `json:"secrets_allowlist,omitempty"`
	Web3                *Web3      `json:"web3,omitempty"`
}

// View is the derived boolean summary used by the untrusted-skill overlay.
// It is computed on demand from the structured record, never stored.
type View struct {
	CanExec    bool `json:"can_exec"`
	CanNetwork bool `json:"can_network"`
	CanWrite   bool `json:"can_write"`
	CanRead    bool `json:"can_read"`
	CanWeb3    bool `json:"can_web3"`
}

// View derives the boolean capability summary.
func (c Capabilities) View() View {
	return View{
		CanExec:    c.Exec == ExecAllow,
		CanNetwork: len(c.NetworkAllowlist) > 0,
		CanWrite:   len(c.FilesystemAllowlist) > 0,
		CanRead:    len(c.FilesystemAllowlist) > 0,
		CanWeb3:    c.Web3 != nil,
	}
}

// ReadOnlyView is the synthetic capability set applied to unknown
// initiating skills: read everything, do nothing else.
func ReadOnlyView() View {
	return View{CanRead: true}
}

// None is the empty preset: no allowlists, exec denied.
func None() Capabilities {
	return Capabilities{Exec: ExecDeny}
}

// Preset returns a named capability preset. Known names: none, read_only,
// trading_bot, defi.
func Preset(name string) (Capabilities, bool) {
	switch name {
	case "none":
		return None(), true
	case "read_only":
		return Capabilities{
			FilesystemAllowlist: []string{"**"},
			Exec:                ExecDeny,
		}, true
	case "trading_bot":
		return Capabilities{
			NetworkAllowlist: []string{
				"api.binance.com",
				"api.coinbase.com",
				"api.kraken.com",
			},
			FilesystemAllowlist: []string{"./data/**"},
			Exec:                ExecDeny,
			Web3: &Web3{
				ChainsAllowlist: []string{"1", "56", "8453"},
				TxPolicy:        TxConfirmHighRisk,
			},
		}, true
	case "defi":
		return Capabilities{
			NetworkAllowlist: []string{
				"*.infura.io",
				"*.alchemy.com",
				"rpc.ankr.com",
			},
			Exec: ExecDeny,
			Web3: &Web3{
				ChainsAllowlist: []string{"1", "10", "137", "8453", "42161"},
				RPCAllowlist:    []string{"*.infura.io", "*.alchemy.com"},
				TxPolicy:        TxConfirmHighRisk,
			},
		}, true
	}
	return Capabilities{}, false
}

// MatchHost reports whether host matches any allowlist entry. Entries may
// be exact hosts or wildcard patterns like `*.infura.io`.
func MatchHost(allowlist []string, host string) bool {
	host = strings.ToLower(host)
	for _, entry := range allowlist {
		entry = strings.ToLower(entry)
		if entry == host {
			return true
		}
		if strings.HasPrefix(entry, "*.") {
			suffix := entry[1:] // ".infura.io"
			if strings.HasSuffix(host, suffix) && host != suffix[1:] {
				return true
			}
		}
	}
	return false
}

// MatchPath reports whether path matches any allowlist entry. `**` matches
// any suffix, `*` matches a single path segment, and a bare pattern matches
// exactly or as a path prefix followed by `/`.
func MatchPath(allowlist []string, path string) bool {
	path = normalizePath(path)
	for _, pattern := range allowlist {
		if matchPathPattern(path, normalizePath(pattern)) {
			return true
		}
	}
	return false
}

func normalizePath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = strings.TrimPrefix(p, "./")
	return p
}

func matchPathPattern(path, pattern string) bool {
	if pattern == "**" {
		return true
	}
	if strings.HasSuffix(pattern, "/**") {
		prefix := strings.TrimSuffix(pattern, "/**")
		return path == prefix || strings.HasPrefix(path, prefix+"/")
	}
	if strings.Contains(pattern, "*") {
		return matchSegments(strings.Split(path, "/"), strings.Split(pattern, "/"))
	}
	return path == pattern || strings.HasPrefix(path, pattern+"/")
}

// matchSegments matches path segments against pattern segments where `*`
// matches exactly one segment (never crossing a `/`).
func matchSegments(path, pattern []string) bool {
	if len(path) != len(pattern) {
		return false
	}
	for i, p := range pattern {
		if p == "*" {
			continue
		}
		if !matchSegment(path[i], p) {
			return false
		}
	}
	return true
}

// matchSegment matches one path segment against a pattern segment that may
// contain embedded `*` wildcards (e.g. "*.json").
func matchSegment(s, pattern string) bool {
	if !strings.Contains(pattern, "*") {
		return s == pattern
	}
	parts := strings.Split(pattern, "*")
	if !strings.HasPrefix(s, parts[0]) {
		return false
	}
	s = s[len(parts[0]):]
	for _, part := range parts[1 : len(parts)-1] {
		idx := strings.Index(s, part)
		if idx < 0 {
			return false
		}
		s = s[idx+len(part):]
	}
	return strings.HasSuffix(s, parts[len(parts)-1])
}

// MatchSecret reports whether a secret name is allowlisted. Entries may use
// a trailing `*` for prefix matches (e.g. "STRIPE_*").
func MatchSecret(allowlist []string, name string) bool {
	for _, entry := range allowlist {
		if entry == name {
			return true
		}
		if strings.HasSuffix(entry, "*") && strings.HasPrefix(name, strings.TrimSuffix(entry, "*")) {
			return true
		}
	}
	return false
}

// Allows reports whether the boolean view permits the given action type
// name (the engine passes action.Type values as strings to avoid an import
// cycle).
func (v View) Allows(actionType string) bool {
	switch actionType {
	case "exec_command":
		return v.CanExec
	case "network_request":
		return v.CanNetwork
	case "write_file":
		return v.CanWrite
	case "read_file":
		return v.CanRead
	case "web3_tx", "web3_sign":
		return v.CanWeb3
	case "secret_access":
		return false
	}
	return false
}
