// Package action defines the envelope submitted to the action scanner and
// the decision types it produces. These are the shared vocabulary between
// detectors, the engine, the arbitrator, and hook adapters.
package action

import "time"

// RiskLevel grades how dangerous an action or finding is.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// Rank returns a numeric severity for comparison. Higher = more severe.
func (r RiskLevel) Rank() int {
	switch r {
	case RiskCritical:
		return 4
	case RiskHigh:
		return 3
	case RiskMedium:
		return 2
	case RiskLow:
		return 1
	default:
		return 0
	}
}

// MaxRisk returns the more severe of two risk levels.
func MaxRisk(a, b RiskLevel) RiskLevel {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}

// Decision is the action scanner's output alphabet. Confirm signals
// "ask the user if interactive" and is resolved by the arbitrator.
type Decision string

const (
	DecisionAllow   Decision = "allow"
	DecisionDeny    Decision = "deny"
	DecisionConfirm Decision = "confirm"
)

// Type identifies the kind of runtime action being evaluated.
type Type string

const (
	TypeNetworkRequest Type = "network_request"
	TypeExecCommand    Type = "exec_command"
	TypeReadFile       Type = "read_file"
	TypeWriteFile      Type = "write_file"
	TypeSecretAccess   Type = "secret_access"
	TypeWeb3Tx         Type = "web3_tx"
	TypeWeb3Sign       Type = "web3_sign"
)

// Known reports whether t is a recognised action type.
func (t Type) Known() bool {
	switch t {
	case TypeNetworkRequest, TypeExecCommand, TypeReadFile, TypeWriteFile,
		TypeSecretAccess, TypeWeb3Tx, TypeWeb3Sign:
		return true
	}
	return false
}

// Skill identifies a skill/plugin version. Two skills with different
// artifact hashes are distinct even under the same source+version.
type Skill struct {
	ID           string `json:"id"`
	Source       string `json:"source"`
	VersionRef   string `json:"version_ref"`
	ArtifactHash string `json:"artifact_hash"`
}

// Actor is the skill proposing the action.
type Actor struct {
	Skill     Skill  `json:"skill"`
	RecordKey string `json:"record_key,omitempty"`
}

// Environment distinguishes production from development and test contexts.
type Environment string

const (
	EnvProd Environment = "prod"
	EnvDev  Environment = "dev"
	EnvTest Environment = "test"
)

// Context carries session metadata alongside the action.
type Context struct {
	SessionID       string      `json:"session_id"`
	UserPresent     bool        `json:"user_present"`
	Env             Environment `json:"env"`
	Time            time.Time   `json:"time"`
	InitiatingSkill string      `json:"initiating_skill,omitempty"`
}

// ExecData describes a shell execution request.
type ExecData struct {
	Command string            `json:"command"`
	Args    []string          `json:"args,omitempty"`
	Cwd     string            `json:"cwd,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
}

// NetworkData describes an outbound HTTP request.
type NetworkData struct {
	Method      string            `json:"method"`
	URL         string            `json:"url"`
	Headers     map[string]string `json:"headers,omitempty"`
	BodyPreview string            `json:"body_preview,omitempty"`
}

// FileData describes a file read or write.
type FileData struct {
	Path string `json:"path"`
}

// SecretData describes access to a named secret.
type SecretData struct {
	SecretName string `json:"secret_name"`
	AccessType string `json:"access_type,omitempty"`
}

// Web3TxData describes a blockchain transaction about to be submitted.
type Web3TxData struct {
	ChainID string `json:"chain_id"`
	From    string `json:"from,omitempty"`
	To      string `json:"to"`
	Value   string `json:"value,omitempty"`
	Data    string `json:"data,omitempty"`
	Origin  string `json:"origin,omitempty"`
}

// Web3SignData describes a signature request (message or typed data).
type Web3SignData struct {
	ChainID   string `json:"chain_id"`
	Message   string `json:"message,omitempty"`
	TypedData string `json:"typed_data,omitempty"`
	Origin    string `json:"origin,omitempty"`
}

// Action is a type-tagged variant: exactly one data pointer matching Type
// is expected to be set.
type Action struct {
	Type     Type          `json:"type"`
	Exec     *ExecData     `json:"exec,omitempty"`
	Network  *NetworkData  `json:"network,omitempty"`
	File     *FileData     `json:"file,omitempty"`
	Secret   *SecretData   `json:"secret,omitempty"`
	Web3Tx   *Web3TxData   `json:"web3_tx,omitempty"`
	Web3Sign *Web3SignData `json:"web3_sign,omitempty"`
}

// Envelope is the single-use request evaluated by the action scanner.
type Envelope struct {
	Actor   Actor   `json:"actor"`
	Action  Action  `json:"action"`
	Context Context `json:"context"`
}

// Evidence records one concrete observation that contributed to a decision.
type Evidence struct {
	Type        string `json:"type"`
	Field       string `json:"field,omitempty"`
	Match       string `json:"match,omitempty"`
	Description string `json:"description"`
}

// PolicyDecision is the action scanner's verdict for one envelope.
type PolicyDecision struct {
	Decision    Decision   `json:"decision"`
	RiskLevel   RiskLevel  `json:"risk_level"`
	RiskTags    []string   `json:"risk_tags"`
	Evidence    []Evidence `json:"evidence,omitempty"`
	Explanation string     `json:"explanation,omitempty"`
}

// HasTag reports whether the decision carries the given risk tag.
func (d PolicyDecision) HasTag(tag string) bool {
	for _, t := range d.RiskTags {
		if t == tag {
			return true
		}
	}
	return false
}
