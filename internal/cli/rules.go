package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentguard/agentguard/internal/config"
	"github.com/agentguard/agentguard/internal/patterns"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Manage static-scanner rule packs",
	Long: `Manage YAML rule packs for the static scanner.

Rule packs add custom scan rules on top of the built-in catalog. Packs
are stored in the state home's rules/ directory and loaded on every
scan. Disabled packs keep their file with an underscore prefix.

Examples:
  agentguard rules list                  # List installed packs
  agentguard rules enable solidity-extra   # Enable a pack
  agentguard rules disable solidity-extra  # Disable a pack
  agentguard rules show solidity-extra     # Show pack contents`,
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed rule packs",
	RunE:  rulesList,
}

var rulesEnableCmd = &cobra.Command{
	Use:   "enable <pack-name>",
	Short: "Enable a disabled rule pack",
	Args:  cobra.ExactArgs(1),
	RunE:  rulesEnable,
}

var rulesDisableCmd = &cobra.Command{
	Use:   "disable <pack-name>",
	Short: "Disable a rule pack (prefix with underscore)",
	Args:  cobra.ExactArgs(1),
	RunE:  rulesDisable,
}

var rulesShowCmd = &cobra.Command{
	Use:   "show <pack-name>",
	Short: "Show contents of a rule pack",
	Args:  cobra.ExactArgs(1),
	RunE:  rulesShow,
}

func init() {
	rulesCmd.AddCommand(rulesListCmd)
	rulesCmd.AddCommand(rulesEnableCmd)
	rulesCmd.AddCommand(rulesDisableCmd)
	rulesCmd.AddCommand(rulesShowCmd)
	rootCmd.AddCommand(rulesCmd)
}

func rulesDir() (string, error) {
	cfg, err := config.Load()
	if err != nil {
		return "", err
	}
	dir := cfg.RulesDir()
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", err
	}
	return dir, nil
}

func rulesList(cmd *cobra.Command, args []string) error {
	dir, err := rulesDir()
	if err != nil {
		return err
	}

	_, infos, err := patterns.LoadRulePacks(dir)
	if err != nil {
		return fmt.Errorf("load rule packs: %w", err)
	}

	if len(infos) == 0 {
		fmt.Println("No rule packs installed.")
		fmt.Printf("\nTo install packs, copy YAML files to: %s\n", dir)
		return nil
	}

	fmt.Println("Installed Rule Packs:")
	fmt.Println(strings.Repeat("─", 60))
	for _, info := range infos {
		status := "✅"
		if !info.Enabled {
			status = "❌"
		}
		fmt.Printf("  %s  %-25s %d rules", status, info.Name, info.RuleCount)
		if info.Version != "" {
			fmt.Printf("  v%s", info.Version)
		}
		fmt.Println()
	}
	fmt.Println(strings.Repeat("─", 60))
	fmt.Printf("\nRules directory: %s\n", dir)
	return nil
}

func rulesEnable(cmd *cobra.Command, args []string) error {
	dir, err := rulesDir()
	if err != nil {
		return err
	}

	name := args[0]
	disabledPath := filepath.Join(dir, "_"+name+".yaml")
	enabledPath := filepath.Join(dir, name+".yaml")

	if _, err := os.Stat(disabledPath); err == nil {
		if err := os.Rename(disabledPath, enabledPath); err != nil {
			return fmt.Errorf("enable pack: %w", err)
		}
		fmt.Printf("✅ Pack '%s' enabled.\n", name)
		return nil
	}

	if _, err := os.Stat(enabledPath); err == nil {
		fmt.Printf("Pack '%s' is already enabled.\n", name)
		return nil
	}

	return fmt.Errorf("pack '%s' not found in %s", name, dir)
}

func rulesDisable(cmd *cobra.Command, args []string) error {
	dir, err := rulesDir()
	if err != nil {
		return err
	}

	name := args[0]
	enabledPath := filepath.Join(dir, name+".yaml")
	disabledPath := filepath.Join(dir, "_"+name+".yaml")

	if _, err := os.Stat(enabledPath); err == nil {
		if err := os.Rename(enabledPath, disabledPath); err != nil {
			return fmt.Errorf("disable pack: %w", err)
		}
		fmt.Printf("❌ Pack '%s' disabled.\n", name)
		return nil
	}

	if _, err := os.Stat(disabledPath); err == nil {
		fmt.Printf("Pack '%s' is already disabled.\n", name)
		return nil
	}

	return fmt.Errorf("pack '%s' not found in %s", name, dir)
}

func rulesShow(cmd *cobra.Command, args []string) error {
	dir, err := rulesDir()
	if err != nil {
		return err
	}

	name := args[0]
	path := filepath.Join(dir, name+".yaml")
	if _, err := os.Stat(path); err != nil {
		path = filepath.Join(dir, "_"+name+".yaml")
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("pack '%s' not found in %s", name, dir)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
