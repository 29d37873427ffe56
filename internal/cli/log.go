package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/agentguard/agentguard/internal/audit"
)

var (
	logFilterDecision string
	logLast           int
	logSummary        bool
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "View and filter the audit log",
	Long: `View the AgentGuard audit log with filtering and summary options.

Examples:
  agentguard log                   # Show all entries
  agentguard log --last 20         # Show last 20 entries
  agentguard log --decision deny   # Show only denied actions
  agentguard log --summary         # Show summary stats`,
	RunE: logCommand,
}

func init() {
	logCmd.Flags().StringVar(&logFilterDecision, "decision", "", "Filter by verdict (allow, ask, deny)")
	logCmd.Flags().IntVar(&logLast, "last", 0, "Show last N entries")
	logCmd.Flags().BoolVar(&logSummary, "summary", false, "Show summary statistics")
	rootCmd.AddCommand(logCmd)
}

func logCommand(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	entries, err := audit.Tail(rt.cfg.AuditPath(), 0)
	if err != nil {
		return fmt.Errorf("read audit log: %w", err)
	}
	if len(entries) == 0 {
		fmt.Println("No audit log entries found.")
		return nil
	}

	filtered := entries
	if logFilterDecision != "" {
		filtered = nil
		for _, e := range entries {
			if strings.EqualFold(e.Decision, logFilterDecision) {
				filtered = append(filtered, e)
			}
		}
	}
	if logLast > 0 && logLast < len(filtered) {
		filtered = filtered[len(filtered)-logLast:]
	}

	if logSummary {
		printLogSummary(entries)
		return nil
	}
	printEntries(filtered)
	return nil
}

func printEntries(entries []audit.Entry) {
	for _, e := range entries {
		icon := verdictIcon(e.Decision)
		fmt.Printf("%s %s [%s] %s: %s\n", icon, formatTimestamp(e.Timestamp), e.RiskLevel, e.ToolName, e.ToolInputSummary)
		if len(e.RiskTags) > 0 {
			fmt.Printf("     Tags: %s\n", strings.Join(e.RiskTags, ", "))
		}
		if e.InitiatingSkill != "" {
			fmt.Printf("     Initiating skill: %s\n", e.InitiatingSkill)
		}
	}
}

func printLogSummary(entries []audit.Entry) {
	counts := map[string]int{}
	for _, e := range entries {
		counts[e.Decision]++
	}

	fmt.Println("═══════════════════════════════════════════")
	fmt.Println("  AgentGuard Audit Summary")
	fmt.Println("═══════════════════════════════════════════")
	fmt.Printf("  Total events: %d\n", len(entries))
	fmt.Printf("  allow:        %d\n", counts["allow"])
	fmt.Printf("  ask:          %d\n", counts["ask"])
	fmt.Printf("  deny:         %d\n", counts["deny"])
	fmt.Println("═══════════════════════════════════════════")

	if len(entries) > 0 {
		fmt.Printf("  First event:  %s\n", formatTimestamp(entries[0].Timestamp))
		fmt.Printf("  Last event:   %s\n", formatTimestamp(entries[len(entries)-1].Timestamp))
	}

	var denied []audit.Entry
	for _, e := range entries {
		if e.Decision == "deny" {
			denied = append(denied, e)
		}
	}
	if len(denied) > 0 {
		fmt.Println()
		fmt.Println("  Denied actions:")
		limit := len(denied)
		if limit > 10 {
			limit = 10
		}
		for _, e := range denied[len(denied)-limit:] {
			fmt.Printf("    %s %s: %s\n", formatTimestamp(e.Timestamp), e.ToolName, e.ToolInputSummary)
		}
	}
	fmt.Println()
}

func verdictIcon(decision string) string {
	switch decision {
	case "deny":
		return "🛑"
	case "ask":
		return "🔍"
	case "allow":
		return "✅"
	default:
		return "❓"
	}
}

func formatTimestamp(ts string) string {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ts
	}
	return t.Local().Format("2006-01-02 15:04:05")
}
