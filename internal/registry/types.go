// Package registry stores trust records for skills: who attested them, at
// what trust level, and with which capabilities. Records are keyed by a
// stable hash of (source, version_ref, artifact_hash) and are never
// destroyed, only revoked.
package registry

import (
	"errors"
	"time"

	"github.com/agentguard/agentguard/internal/action"
	"github.com/agentguard/agentguard/internal/capability"
)

// TrustLevel orders how much a skill is trusted.
type TrustLevel string

const (
	TrustUntrusted  TrustLevel = "untrusted"
	TrustRestricted TrustLevel = "restricted"
	TrustTrusted    TrustLevel = "trusted"
)

// Rank returns a numeric order: untrusted < restricted < trusted.
func (t TrustLevel) Rank() int {
	switch t {
	case TrustTrusted:
		return 3
	case TrustRestricted:
		return 2
	case TrustUntrusted:
		return 1
	default:
		return 0
	}
}

// Status is a record's lifecycle state. Revocation is monotonic: a revoked
// key cannot become active again without a forced re-attest.
type Status string

const (
	StatusActive  Status = "active"
	StatusRevoked Status = "revoked"
)

// Review carries who vetted the skill and what the scan said at the time.
type Review struct {
	ReviewedBy    string `json:"reviewed_by,omitempty"`
	Notes         string `json:"notes,omitempty"`
	ScanRiskLevel string `json:"scan_risk_level,omitempty"`
}

// Record is one trust registry entry.
type Record struct {
	RecordKey    string                  `json:"record_key"`
	Skill        action.Skill            `json:"skill"`
	TrustLevel   TrustLevel              `json:"trust_level"`
	Capabilities capability.Capabilities `json:"capabilities"`
	Review       Review                  `json:"review,omitempty"`
	Status       Status                  `json:"status"`
	RevokeReason string                  `json:"revoke_reason,omitempty"`
	CreatedAt    time.Time               `json:"created_at"`
	UpdatedAt    time.Time               `json:"updated_at"`
	ExpiresAt    *time.Time              `json:"expires_at,omitempty"`
}

// Expired reports whether the record has an expiry in the past.
func (r Record) Expired(now time.Time) bool {
	return r.ExpiresAt != nil && now.After(*r.ExpiresAt)
}

// LookupResult is what the action scanner consumes: the stored record (if
// any) plus the effective trust and capabilities after revocation and
// expiry are accounted for.
type LookupResult struct {
	Record                *Record
	EffectiveTrustLevel   TrustLevel
	EffectiveCapabilities capability.Capabilities
	HasActiveRecord       bool
}

// Match selects records for revocation. At least one field must be set.
type Match struct {
	Source     string
	VersionRef string
	RecordKey  string
}

// ListFilter narrows List output.
type ListFilter struct {
	TrustLevel     TrustLevel
	Status         Status
	SourcePattern  string
	IncludeExpired bool
}

var (
	// ErrNeedsConfirmation is returned by Attest when raising the trust
	// level of a known record, or re-activating a revoked one, without
	// force.
	ErrNeedsConfirmation = errors.New("attestation needs explicit confirmation")

	// ErrInvalidMatch is returned by Revoke when every match field is empty.
	ErrInvalidMatch = errors.New("revoke match must set source, version_ref, or record_key")

	// ErrReadOnly is returned on writes when the on-disk document has an
	// unknown schema version.
	ErrReadOnly = errors.New("registry is read-only (unknown schema version)")
)
