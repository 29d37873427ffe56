// Package hookio translates hook transport payloads into action
// envelopes and verdicts back into the transport's reply format.
//
// Two payload shapes are recognised, auto-detected from the JSON:
//
//	Claude Code: {"hook_event_name": "PreToolUse", "tool_name": "Bash", "tool_input": {...}}
//	Generic:     {"actor": {...}, "action": {...}, "context": {...}}
//
// Reply semantics: allow exits 0 with no output; deny exits 2 with the
// reason on stderr; ask exits 0 with a one-line structured reply on
// stdout.
package hookio

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/agentguard/agentguard/internal/action"
	"github.com/agentguard/agentguard/internal/arbiter"
)

// BypassEnv disables evaluation entirely when set to "1".
const BypassEnv = "AGENTGUARD_BYPASS"

// Request is a parsed hook payload ready for evaluation.
type Request struct {
	Envelope action.Envelope
	// ToolName is the transport-level tool identifier, used for audit.
	ToolName string
	// Summary is a short human-readable rendering of the tool input.
	Summary string
}

// Adapter parses one transport's payload shape.
type Adapter interface {
	// Name identifies the transport in logs.
	Name() string
	// Parse attempts to interpret raw. handled=false means the payload
	// is not this adapter's shape, or is an event the adapter passes
	// through without evaluation.
	Parse(raw []byte) (req Request, handled bool, err error)
}

// Adapters is the detection order for incoming payloads.
func Adapters() []Adapter {
	return []Adapter{ClaudeCodeAdapter{}, EnvelopeAdapter{}}
}

// ParseAny runs the payload through each adapter in order.
func ParseAny(raw []byte) (Request, bool, error) {
	for _, a := range Adapters() {
		req, handled, err := a.Parse(raw)
		if err != nil {
			return Request{}, false, fmt.Errorf("%s: %w", a.Name(), err)
		}
		if handled {
			return req, true, nil
		}
	}
	return Request{}, false, nil
}

type claudePayload struct {
	HookEventName string `json:"hook_event_name"`
	SessionID     string `json:"session_id"`
	ToolName      string `json:"tool_name"`
	ToolInput     struct {
		Command  string `json:"command"`
		URL      string `json:"url"`
		FilePath string `json:"file_path"`
		Content  string `json:"content"`
	} `json:"tool_input"`
	InitiatingSkill string `json:"initiating_skill"`
}

// inferInitiatingSkill attributes the event to the skill that triggered
// it. The transport itself carries no skill identity; wrappers that do
// know the active skill annotate the payload with initiating_skill.
func inferInitiatingSkill(p claudePayload) string {
	return p.InitiatingSkill
}

// ClaudeCodeAdapter maps Claude Code PreToolUse events onto envelopes.
// Tools without a security-relevant mapping pass through unevaluated.
type ClaudeCodeAdapter struct{}

func (ClaudeCodeAdapter) Name() string { return "claude-code" }

func (ClaudeCodeAdapter) Parse(raw []byte) (Request, bool, error) {
	var p claudePayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return Request{}, false, nil
	}
	if p.HookEventName != "PreToolUse" {
		return Request{}, false, nil
	}

	ctx := action.Context{
		SessionID:       p.SessionID,
		UserPresent:     true,
		Env:             action.EnvDev,
		Time:            time.Now().UTC(),
		InitiatingSkill: inferInitiatingSkill(p),
	}

	var act action.Action
	var summary string
	switch p.ToolName {
	case "Bash":
		if p.ToolInput.Command == "" {
			return Request{}, false, nil
		}
		act = action.Action{Type: action.TypeExecCommand, Exec: &action.ExecData{Command: p.ToolInput.Command}}
		summary = p.ToolInput.Command
	case "WebFetch":
		if p.ToolInput.URL == "" {
			return Request{}, false, nil
		}
		act = action.Action{Type: action.TypeNetworkRequest, Network: &action.NetworkData{Method: "GET", URL: p.ToolInput.URL}}
		summary = p.ToolInput.URL
	case "Write", "Edit":
		if p.ToolInput.FilePath == "" {
			return Request{}, false, nil
		}
		act = action.Action{Type: action.TypeWriteFile, File: &action.FileData{Path: p.ToolInput.FilePath}}
		summary = p.ToolInput.FilePath
	case "Read":
		if p.ToolInput.FilePath == "" {
			return Request{}, false, nil
		}
		act = action.Action{Type: action.TypeReadFile, File: &action.FileData{Path: p.ToolInput.FilePath}}
		summary = p.ToolInput.FilePath
	default:
		return Request{}, false, nil
	}

	return Request{
		Envelope: action.Envelope{Action: act, Context: ctx},
		ToolName: p.ToolName,
		Summary:  summary,
	}, true, nil
}

// EnvelopeAdapter accepts the native envelope format directly, for
// plugin buses and programmatic callers.
type EnvelopeAdapter struct{}

func (EnvelopeAdapter) Name() string { return "envelope" }

func (EnvelopeAdapter) Parse(raw []byte) (Request, bool, error) {
	var env action.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Request{}, false, nil
	}
	if env.Action.Type == "" {
		return Request{}, false, nil
	}
	if env.Context.Time.IsZero() {
		env.Context.Time = time.Now().UTC()
	}
	return Request{
		Envelope: env,
		ToolName: string(env.Action.Type),
		Summary:  summarize(env.Action),
	}, true, nil
}

func summarize(a action.Action) string {
	switch a.Type {
	case action.TypeExecCommand:
		return a.Exec.Command
	case action.TypeNetworkRequest:
		return a.Network.Method + " " + a.Network.URL
	case action.TypeReadFile, action.TypeWriteFile:
		return a.File.Path
	case action.TypeSecretAccess:
		return a.Secret.SecretName
	case action.TypeWeb3Tx:
		return "tx to " + a.Web3Tx.To + " on chain " + a.Web3Tx.ChainID
	case action.TypeWeb3Sign:
		return "sign on chain " + a.Web3Sign.ChainID
	}
	return string(a.Type)
}

// askReply is the single-line structured reply for ask verdicts.
type askReply struct {
	Event                    string `json:"event"`
	PermissionDecision       string `json:"permissionDecision"`
	PermissionDecisionReason string `json:"permissionDecisionReason"`
}

// Reply is the transport-level answer for one verdict.
type Reply struct {
	// ExitCode the hook process should terminate with.
	ExitCode int
	// Stdout is written verbatim when non-empty.
	Stdout string
	// Stderr is written verbatim when non-empty.
	Stderr string
}

// BuildReply maps a verdict and its reason to the hook reply.
func BuildReply(v arbiter.Verdict, reason string) Reply {
	switch v {
	case arbiter.VerdictDeny:
		if reason == "" {
			reason = "blocked by policy"
		}
		return Reply{ExitCode: 2, Stderr: "Blocked by AgentGuard: " + reason + "\n"}
	case arbiter.VerdictAsk:
		data, _ := json.Marshal(askReply{
			Event:                    "pre",
			PermissionDecision:       "ask",
			PermissionDecisionReason: reason,
		})
		return Reply{ExitCode: 0, Stdout: string(data) + "\n"}
	}
	return Reply{ExitCode: 0}
}

// Emit writes the reply to the given streams.
func (r Reply) Emit(stdout, stderr io.Writer) {
	if r.Stdout != "" {
		fmt.Fprint(stdout, r.Stdout)
	}
	if r.Stderr != "" {
		fmt.Fprint(stderr, r.Stderr)
	}
}
