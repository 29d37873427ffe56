package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/agentguard/agentguard/internal/action"
	"github.com/agentguard/agentguard/internal/capability"
	"github.com/agentguard/agentguard/internal/registry"
)

var (
	trustSource   string
	trustVersion  string
	trustID       string
	trustDir      string
	trustLevel    string
	trustPreset   string
	trustForce    bool
	trustReviewer string
	trustNotes    string

	revokeSource  string
	revokeVersion string
	revokeKey     string
	revokeReason  string

	listTrustLevel string
	listStatus     string
	listSource     string
	listExpired    bool
	listJSON       bool
)

var trustCmd = &cobra.Command{
	Use:   "trust",
	Short: "Manage the skill trust registry",
}

var attestCmd = &cobra.Command{
	Use:   "attest",
	Short: "Attest a skill at a trust level with a capability preset",
	Long: `Records a trust decision for a skill version. The record key is
derived from source, version ref and the artifact hash of the skill's
directory, so a changed tree produces a new record.

Raising the trust level of an already-active record, or re-attesting a
revoked one, requires --force.

Example:
  agentguard trust attest --id my-skill --source github.com/acme/skill \
    --version v1.2.0 --dir ./my-skill --trust-level restricted --preset read_only`,
	RunE: attestCommand,
}

var revokeCmd = &cobra.Command{
	Use:   "revoke",
	Short: "Revoke trust records by source, version ref, or record key",
	RunE:  revokeCommand,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List trust records",
	RunE:  listCommand,
}

var showCmd = &cobra.Command{
	Use:   "show <skill-id>",
	Short: "Show the newest trust record for a skill id",
	Args:  cobra.ExactArgs(1),
	RunE:  showCommand,
}

func init() {
	attestCmd.Flags().StringVar(&trustID, "id", "", "Skill id")
	attestCmd.Flags().StringVar(&trustSource, "source", "", "Skill source identifier")
	attestCmd.Flags().StringVar(&trustVersion, "version", "", "Skill version ref")
	attestCmd.Flags().StringVar(&trustDir, "dir", "", "Skill directory, hashed into the record key")
	attestCmd.Flags().StringVar(&trustLevel, "trust-level", "restricted", "Trust level: untrusted, restricted or trusted")
	attestCmd.Flags().StringVar(&trustPreset, "preset", "read_only", "Capability preset: none, read_only, trading_bot or defi")
	attestCmd.Flags().BoolVar(&trustForce, "force", false, "Allow raising trust or re-attesting a revoked record")
	attestCmd.Flags().StringVar(&trustReviewer, "reviewed-by", "", "Reviewer name for the record")
	attestCmd.Flags().StringVar(&trustNotes, "notes", "", "Review notes")
	_ = attestCmd.MarkFlagRequired("source")
	_ = attestCmd.MarkFlagRequired("version")
	_ = attestCmd.MarkFlagRequired("dir")

	revokeCmd.Flags().StringVar(&revokeSource, "source", "", "Match records by source")
	revokeCmd.Flags().StringVar(&revokeVersion, "version", "", "Match records by version ref")
	revokeCmd.Flags().StringVar(&revokeKey, "record-key", "", "Match one record by key")
	revokeCmd.Flags().StringVar(&revokeReason, "reason", "", "Revocation reason, stored on the record")

	listCmd.Flags().StringVar(&listTrustLevel, "trust-level", "", "Filter by trust level")
	listCmd.Flags().StringVar(&listStatus, "status", "", "Filter by status: active or revoked")
	listCmd.Flags().StringVar(&listSource, "source", "", "Filter by source substring")
	listCmd.Flags().BoolVar(&listExpired, "include-expired", false, "Include expired records")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Emit records as JSON")

	trustCmd.AddCommand(attestCmd, revokeCmd, listCmd, showCmd)
	rootCmd.AddCommand(trustCmd)
}

func attestCommand(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	level := registry.TrustLevel(trustLevel)
	switch level {
	case registry.TrustUntrusted, registry.TrustRestricted, registry.TrustTrusted:
	default:
		return fmt.Errorf("unknown trust level %q", trustLevel)
	}
	caps, ok := capability.Preset(trustPreset)
	if !ok {
		return fmt.Errorf("unknown capability preset %q", trustPreset)
	}

	hash, err := registry.CalculateArtifactHash(trustDir)
	if err != nil {
		return fmt.Errorf("hash %s: %w", trustDir, err)
	}

	id := trustID
	if id == "" {
		id = trustSource
	}
	skill := action.Skill{ID: id, Source: trustSource, VersionRef: trustVersion, ArtifactHash: hash}
	review := registry.Review{ReviewedBy: trustReviewer, Notes: trustNotes}

	rec, err := rt.registry.Attest(skill, level, caps, review, trustForce)
	if errors.Is(err, registry.ErrNeedsConfirmation) {
		return fmt.Errorf("attest %s: %w (re-run with --force)", id, err)
	}
	if err != nil {
		return fmt.Errorf("attest %s: %w", id, err)
	}
	fmt.Printf("Attested %s as %s (record %s)\n", id, rec.TrustLevel, rec.RecordKey)
	return nil
}

func revokeCommand(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	count, err := rt.registry.Revoke(registry.Match{
		Source:     revokeSource,
		VersionRef: revokeVersion,
		RecordKey:  revokeKey,
	}, revokeReason)
	if err != nil {
		return err
	}
	fmt.Printf("Revoked %d record(s)\n", count)
	return nil
}

func listCommand(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	records, err := rt.registry.List(registry.ListFilter{
		TrustLevel:     registry.TrustLevel(listTrustLevel),
		Status:         registry.Status(listStatus),
		SourcePattern:  listSource,
		IncludeExpired: listExpired,
	})
	if err != nil {
		return err
	}

	if listJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	if len(records) == 0 {
		fmt.Println("No trust records.")
		return nil
	}
	for _, rec := range records {
		printRecord(rec)
	}
	return nil
}

func showCommand(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	lookup, found := rt.registry.LookupByID(args[0])
	if !found || lookup.Record == nil {
		return fmt.Errorf("no trust record for skill %q", args[0])
	}
	printRecord(*lookup.Record)
	fmt.Printf("  effective trust: %s\n", lookup.EffectiveTrustLevel)
	return nil
}

func printRecord(rec registry.Record) {
	status := string(rec.Status)
	if rec.Expired(time.Now()) {
		status += " (expired)"
	}
	fmt.Printf("%s  %s@%s  %s  %s\n", rec.RecordKey, rec.Skill.Source, rec.Skill.VersionRef, rec.TrustLevel, status)
	if rec.RevokeReason != "" {
		fmt.Printf("  revoked: %s\n", rec.RevokeReason)
	}
	if rec.Review.ReviewedBy != "" {
		fmt.Printf("  reviewed by: %s\n", rec.Review.ReviewedBy)
	}
}
