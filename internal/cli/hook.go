package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/agentguard/agentguard/internal/arbiter"
	"github.com/agentguard/agentguard/internal/audit"
	"github.com/agentguard/agentguard/internal/hookio"
)

var hookCmd = &cobra.Command{
	Use:   "hook",
	Short: "Hook handler - evaluate a tool call payload from stdin",
	Long: `Reads a hook JSON payload from stdin, evaluates the proposed action
against the trust registry and protection level, and responds in the
transport's format.

Auto-detects the payload shape:
  Claude Code - PreToolUse events, exit code 2 blocks the tool call
  Envelope    - the native action envelope format

Reply semantics: allow exits 0 silently; deny exits 2 with the reason
on stderr; ask exits 0 with a one-line JSON reply on stdout.`,
	RunE: hookCommand,
}

func init() {
	rootCmd.AddCommand(hookCmd)
}

func hookCommand(cmd *cobra.Command, args []string) error {
	if os.Getenv(hookio.BypassEnv) == "1" {
		_, _ = io.ReadAll(os.Stdin)
		return nil
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}

	req, handled, err := hookio.ParseAny(data)
	if err != nil {
		// Unparseable input passes through: a broken hook must not
		// brick the agent.
		fmt.Fprintf(os.Stderr, "[AgentGuard] warning: could not parse hook input: %v\n", err)
		return nil
	}
	if !handled {
		return nil
	}

	rt, err := newRuntime()
	if err != nil {
		fmt.Fprintf(os.Stderr, "[AgentGuard] warning: %v\n", err)
		return nil
	}
	defer rt.close()

	decision := rt.scanner.Decide(cmd.Context(), req.Envelope)
	verdict := arbiter.Arbitrate(decision, rt.level)

	rt.log(audit.Entry{
		Timestamp:        time.Now().UTC().Format(time.RFC3339),
		ToolName:         req.ToolName,
		ToolInputSummary: req.Summary,
		Decision:         string(verdict),
		RiskLevel:        string(decision.RiskLevel),
		RiskTags:         decision.RiskTags,
		InitiatingSkill:  req.Envelope.Context.InitiatingSkill,
	})

	reply := hookio.BuildReply(verdict, decision.Explanation)
	reply.Emit(os.Stdout, os.Stderr)
	if reply.ExitCode != 0 {
		os.Exit(reply.ExitCode)
	}
	return nil
}
