package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentguard/agentguard/internal/action"
	"github.com/agentguard/agentguard/internal/patterns"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show AgentGuard status and run the policy self-test",
	Long: `Check the state home, protection level, registry and audit log, then
run a quick diagnostic that evaluates known-dangerous actions through
the engine. Nothing is executed - this only checks that the policy
would block them.

  agentguard status`,
	RunE: statusCommand,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

type selfTestCase struct {
	label   string
	env     action.Envelope
	want    action.Decision
	exactly bool
}

func statusCommand(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	fmt.Println("═══════════════════════════════════════════════════════")
	fmt.Println("  AgentGuard Status")
	fmt.Println("═══════════════════════════════════════════════════════")
	fmt.Println()

	binPath, err := os.Executable()
	if err != nil {
		binPath = "unknown"
	}
	fmt.Printf("  Binary:     %s (%s)\n", binPath, Version)
	fmt.Printf("  State home: %s\n", rt.cfg.Home)
	fmt.Printf("  Level:      %s\n", rt.level)
	fmt.Println()

	fmt.Println("─── State ─────────────────────────────────────────────")
	checkFile("Registry", rt.cfg.RegistryPath())
	checkFile("Audit log", rt.cfg.AuditPath())
	checkRulePacks(rt.cfg.RulesDir())
	if key, secret := goplusStatus(); key && secret {
		fmt.Println("  ✅ Threat intel: configured")
	} else {
		fmt.Println("  ⬚  Threat intel: not configured (rule-based only)")
	}
	fmt.Println()

	fmt.Println("─── Policy Self-Test ──────────────────────────────────")
	cases := []selfTestCase{
		{
			label: "Fork bomb",
			env:   execEnvelope(":(){:|:&};:"),
			want:  action.DecisionDeny, exactly: true,
		},
		{
			label: "Destructive rm",
			env:   execEnvelope("rm -rf /"),
			want:  action.DecisionDeny, exactly: true,
		},
		{
			label: "Safe read-only",
			env:   execEnvelope("git status"),
			want:  action.DecisionAllow, exactly: true,
		},
		{
			label: "Webhook exfil",
			env: envelope(action.Action{Type: action.TypeNetworkRequest, Network: &action.NetworkData{
				Method: "POST", URL: "https://discord.com/api/webhooks/1/x",
			}}),
			want: action.DecisionDeny, exactly: true,
		},
		{
			label: "Sensitive write",
			env: envelope(action.Action{Type: action.TypeWriteFile, File: &action.FileData{
				Path: "/project/.env",
			}}),
			want: action.DecisionDeny, exactly: true,
		},
	}

	pass := 0
	for _, tc := range cases {
		d := rt.scanner.Decide(cmd.Context(), tc.env)
		ok := d.Decision == tc.want
		icon := "✅"
		if !ok {
			icon = "❌"
		} else {
			pass++
		}
		fmt.Printf("  %s  %-18s → %s (%s)\n", icon, tc.label, d.Decision, d.RiskLevel)
	}
	fmt.Println()

	fmt.Println("═══════════════════════════════════════════════════════")
	if pass == len(cases) {
		fmt.Printf("  ✅ All %d checks passed, AgentGuard is working correctly\n", len(cases))
	} else {
		fmt.Printf("  ⚠  %d/%d checks passed\n", pass, len(cases))
	}
	fmt.Println("═══════════════════════════════════════════════════════")
	fmt.Println()
	return nil
}

func execEnvelope(command string) action.Envelope {
	return envelope(action.Action{Type: action.TypeExecCommand, Exec: &action.ExecData{Command: command}})
}

func envelope(act action.Action) action.Envelope {
	return action.Envelope{Action: act}
}

func checkFile(name, path string) {
	info, err := os.Stat(path)
	if err != nil {
		fmt.Printf("  ⬚  %s: %s (not yet created)\n", name, path)
		return
	}
	sizeKB := info.Size() / 1024
	if sizeKB == 0 {
		fmt.Printf("  ✅ %s: %s (<1 KB)\n", name, path)
	} else {
		fmt.Printf("  ✅ %s: %s (%d KB)\n", name, path, sizeKB)
	}
}

func checkRulePacks(dir string) {
	rules, infos, err := patterns.LoadRulePacks(dir)
	if err != nil || len(infos) == 0 {
		fmt.Println("  ⬚  Rule packs: none installed (built-in rules only)")
		return
	}
	enabled := 0
	for _, info := range infos {
		if info.Enabled {
			enabled++
		}
	}
	fmt.Printf("  ✅ Rule packs: %d installed, %d enabled, %d extra rules\n", len(infos), enabled, len(rules))
}

func goplusStatus() (key, secret bool) {
	return os.Getenv("GOPLUS_API_KEY") != "", os.Getenv("GOPLUS_API_SECRET") != ""
}
