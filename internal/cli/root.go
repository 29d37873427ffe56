// Package cli is the agentguard command surface.
package cli

import (
	"github.com/spf13/cobra"
)

var levelFlag string

var rootCmd = &cobra.Command{
	Use:   "agentguard",
	Short: "AgentGuard - Security policy engine for AI agents",
	Long: `AgentGuard sits between an AI coding agent and its tool calls. It
classifies proposed runtime actions (shell execution, network requests,
file operations, secret access, blockchain transactions) as allow, deny
or ask, scans skill source trees for risky patterns, and keeps a trust
registry of reviewed skills.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&levelFlag, "level", "", "Protection level override: strict, balanced or permissive")
}

func Execute() error {
	return rootCmd.Execute()
}
