package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/agentguard/agentguard/internal/action"
	"github.com/agentguard/agentguard/internal/capability"
	"github.com/agentguard/agentguard/internal/patterns"
	"github.com/agentguard/agentguard/internal/registry"
	"github.com/agentguard/agentguard/internal/staticscan"
)

var (
	scanJSON     bool
	scanQuick    bool
	scanRegister bool
	scanSource   string
	scanVersion  string
	scanID       string
)

var scanCmd = &cobra.Command{
	Use:   "scan <directory>",
	Short: "Scan a skill's source tree for risky code patterns",
	Long: `Walks a directory, applies the rule catalog (plus any YAML rule packs
from the state home's rules/ directory) to every scannable file, and
rolls finding severities into an overall risk level.

Examples:
  agentguard scan ./my-skill
  agentguard scan ./my-skill --json
  agentguard scan ./my-skill --register --source github.com/acme/skill --version v1.2.0`,
	Args: cobra.ExactArgs(1),
	RunE: scanCommand,
}

func init() {
	scanCmd.Flags().BoolVar(&scanJSON, "json", false, "Emit the scan result as JSON")
	scanCmd.Flags().BoolVar(&scanQuick, "quick", false, "Skip base64 re-scan and snippet capture")
	scanCmd.Flags().BoolVar(&scanRegister, "register", false, "Attest the skill into the trust registry on a clean scan")
	scanCmd.Flags().StringVar(&scanSource, "source", "", "Skill source identifier, required with --register")
	scanCmd.Flags().StringVar(&scanVersion, "version", "", "Skill version ref, required with --register")
	scanCmd.Flags().StringVar(&scanID, "id", "", "Skill id, defaults to the directory name")
	rootCmd.AddCommand(scanCmd)
}

func scanCommand(cmd *cobra.Command, args []string) error {
	dir := args[0]

	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	var opts []staticscan.Option
	extra, _, err := patterns.LoadRulePacks(rt.cfg.RulesDir())
	if err != nil {
		fmt.Fprintf(os.Stderr, "[AgentGuard] warning: rule packs load failed: %v\n", err)
	}
	if len(extra) > 0 {
		opts = append(opts, staticscan.WithExtraRules(extra))
	}

	scanner := staticscan.New(opts...)
	var result staticscan.Result
	if scanQuick {
		result, err = scanner.QuickScan(cmd.Context(), dir)
	} else {
		result, err = scanner.Scan(cmd.Context(), dir)
	}
	if err != nil {
		return fmt.Errorf("scan %s: %w", dir, err)
	}

	if scanJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return err
		}
	} else {
		printScanResult(dir, result)
	}

	if scanRegister || (rt.cfg.AutoRegister && scanSource != "") {
		return registerScanned(rt, dir, result)
	}
	return nil
}

func printScanResult(dir string, result staticscan.Result) {
	fmt.Printf("Scanned %s: %s\n", dir, result.Summary)
	fmt.Printf("Risk level: %s\n", result.RiskLevel)
	if len(result.RiskTags) > 0 {
		fmt.Println("Risk tags:")
		for _, tag := range result.RiskTags {
			fmt.Printf("  %s\n", tag)
		}
	}
	for _, f := range result.Findings {
		fmt.Printf("  [%s] %s %s:%d", f.Severity, f.RuleID, f.FilePath, f.Line)
		if f.ParentRuleID != "" {
			fmt.Printf(" (decoded from %s)", f.ParentRuleID)
		}
		fmt.Println()
	}
}

// registerScanned attests a cleanly scanned skill at restricted trust
// with the read_only preset. High or critical findings abort.
func registerScanned(rt *runtime, dir string, result staticscan.Result) error {
	if scanSource == "" || scanVersion == "" {
		return fmt.Errorf("--register requires --source and --version")
	}
	if result.RiskLevel.Rank() >= action.RiskHigh.Rank() {
		return fmt.Errorf("refusing to register: scan risk level is %s", result.RiskLevel)
	}

	hash, err := registry.CalculateArtifactHash(dir)
	if err != nil {
		return fmt.Errorf("hash %s: %w", dir, err)
	}

	id := scanID
	if id == "" {
		id = filepath.Base(dir)
	}
	skill := action.Skill{ID: id, Source: scanSource, VersionRef: scanVersion, ArtifactHash: hash}
	caps, _ := capability.Preset("read_only")

	rec, err := rt.registry.Attest(skill, registry.TrustRestricted, caps, registry.Review{
		ScanRiskLevel: string(result.RiskLevel),
		Notes:         "registered from scan",
	}, false)
	if err != nil {
		return fmt.Errorf("attest %s: %w", id, err)
	}
	fmt.Printf("Registered %s as %s (record %s)\n", id, rec.TrustLevel, rec.RecordKey)
	return nil
}
