package hookio

import (
	"strings"
	"testing"

	"github.com/agentguard/agentguard/internal/action"
	"github.com/agentguard/agentguard/internal/arbiter"
)

func TestParseAny_ClaudeCode(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		wantType action.Type
		summary  string
	}{
		{
			"bash",
			`{"hook_event_name":"PreToolUse","session_id":"s1","tool_name":"Bash","tool_input":{"command":"git status"}}`,
			action.TypeExecCommand, "git status",
		},
		{
			"webfetch",
			`{"hook_event_name":"PreToolUse","tool_name":"WebFetch","tool_input":{"url":"https://example.com"}}`,
			action.TypeNetworkRequest, "https://example.com",
		},
		{
			"write",
			`{"hook_event_name":"PreToolUse","tool_name":"Write","tool_input":{"file_path":"/project/.env","content":"X=1"}}`,
			action.TypeWriteFile, "/project/.env",
		},
		{
			"edit",
			`{"hook_event_name":"PreToolUse","tool_name":"Edit","tool_input":{"file_path":"src/main.go"}}`,
			action.TypeWriteFile, "src/main.go",
		},
		{
			"read",
			`{"hook_event_name":"PreToolUse","tool_name":"Read","tool_input":{"file_path":"README.md"}}`,
			action.TypeReadFile, "README.md",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, handled, err := ParseAny([]byte(tt.payload))
			if err != nil {
				t.Fatalf("ParseAny: %v", err)
			}
			if !handled {
				t.Fatal("payload not handled")
			}
			if req.Envelope.Action.Type != tt.wantType {
				t.Errorf("type = %s, want %s", req.Envelope.Action.Type, tt.wantType)
			}
			if req.Summary != tt.summary {
				t.Errorf("summary = %q, want %q", req.Summary, tt.summary)
			}
			if !req.Envelope.Context.UserPresent {
				t.Error("hook requests imply a present user")
			}
		})
	}
}

func TestParseAny_ClaudeCodeInitiatingSkill(t *testing.T) {
	annotated := `{"hook_event_name":"PreToolUse","tool_name":"Bash","tool_input":{"command":"ls"},"initiating_skill":"helper"}`
	req, handled, err := ParseAny([]byte(annotated))
	if err != nil || !handled {
		t.Fatalf("handled=%v err=%v", handled, err)
	}
	if req.Envelope.Context.InitiatingSkill != "helper" {
		t.Errorf("initiating skill = %q, want helper", req.Envelope.Context.InitiatingSkill)
	}

	plain := `{"hook_event_name":"PreToolUse","tool_name":"Bash","tool_input":{"command":"ls"}}`
	req, _, _ = ParseAny([]byte(plain))
	if req.Envelope.Context.InitiatingSkill != "" {
		t.Errorf("unattributed payload got skill %q", req.Envelope.Context.InitiatingSkill)
	}
}

func TestParseAny_PassThrough(t *testing.T) {
	payloads := []string{
		// Unknown tools and non-PreToolUse events are not evaluated.
		`{"hook_event_name":"PreToolUse","tool_name":"Glob","tool_input":{"pattern":"**/*.go"}}`,
		`{"hook_event_name":"PostToolUse","tool_name":"Bash","tool_input":{"command":"ls"}}`,
		`{"hook_event_name":"PreToolUse","tool_name":"Bash","tool_input":{}}`,
		`{"unrelated":"document"}`,
	}
	for _, p := range payloads {
		if _, handled, err := ParseAny([]byte(p)); err != nil || handled {
			t.Errorf("%s: handled=%v err=%v", p, handled, err)
		}
	}
}

func TestParseAny_Envelope(t *testing.T) {
	payload := `{"actor":{"skill":{"id":"bot"}},"action":{"type":"web3_tx","web3_tx":{"chain_id":"1","to":"0xabc"}},"context":{"user_present":true}}`
	req, handled, err := ParseAny([]byte(payload))
	if err != nil {
		t.Fatalf("ParseAny: %v", err)
	}
	if !handled {
		t.Fatal("envelope not handled")
	}
	if req.Envelope.Action.Type != action.TypeWeb3Tx {
		t.Errorf("type = %s", req.Envelope.Action.Type)
	}
	if req.Envelope.Actor.Skill.ID != "bot" {
		t.Errorf("actor = %+v", req.Envelope.Actor)
	}
	if req.Summary != "tx to 0xabc on chain 1" {
		t.Errorf("summary = %q", req.Summary)
	}
	if req.Envelope.Context.Time.IsZero() {
		t.Error("zero time should be filled in")
	}
}

func TestBuildReply(t *testing.T) {
	allow := BuildReply(arbiter.VerdictAllow, "")
	if allow.ExitCode != 0 || allow.Stdout != "" || allow.Stderr != "" {
		t.Errorf("allow reply = %+v", allow)
	}

	deny := BuildReply(arbiter.VerdictDeny, "Destructive command blocked [DANGEROUS_COMMAND]")
	if deny.ExitCode != 2 {
		t.Errorf("deny exit = %d, want 2", deny.ExitCode)
	}
	if !strings.Contains(deny.Stderr, "Destructive command blocked") {
		t.Errorf("deny stderr = %q", deny.Stderr)
	}
	if deny.Stdout != "" {
		t.Errorf("deny stdout = %q", deny.Stdout)
	}

	ask := BuildReply(arbiter.VerdictAsk, "needs confirmation")
	if ask.ExitCode != 0 {
		t.Errorf("ask exit = %d, want 0", ask.ExitCode)
	}
	if !strings.Contains(ask.Stdout, `"permissionDecision":"ask"`) {
		t.Errorf("ask stdout = %q", ask.Stdout)
	}
	if !strings.HasSuffix(ask.Stdout, "\n") || strings.Count(ask.Stdout, "\n") != 1 {
		t.Errorf("ask reply must be one line: %q", ask.Stdout)
	}
}

func TestReplyEmit(t *testing.T) {
	var stdout, stderr strings.Builder
	Reply{ExitCode: 2, Stderr: "blocked\n"}.Emit(&stdout, &stderr)
	if stdout.String() != "" || stderr.String() != "blocked\n" {
		t.Errorf("stdout=%q stderr=%q", stdout.String(), stderr.String())
	}
}
