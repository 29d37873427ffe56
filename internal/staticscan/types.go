// Package staticscan grades a source tree against the pattern catalog. A
// scan is stateless and deterministic: identical trees always produce
// identical results in identical order.
package staticscan

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agentguard/agentguard/internal/action"
)

// Finding is one rule hit in one file line.
type Finding struct {
	RuleID       string           `json:"rule_id"`
	Severity     action.RiskLevel `json:"severity"`
	FilePath     string           `json:"file_path"`
	Line         int              `json:"line"`
	MatchedText  string           `json:"matched_text,omitempty"`
	Category     string           `json:"category"`
	ParentRuleID string           `json:"parent_rule_id,omitempty"`
}

// Result is the roll-up of one scan.
type Result struct {
	RiskLevel    action.RiskLevel `json:"risk_level"`
	RiskTags     []string         `json:"risk_tags"`
	Findings     []Finding        `json:"findings"`
	FilesScanned int              `json:"files_scanned"`
	SkippedFiles int              `json:"skipped_files"`
	Summary      string           `json:"summary"`
}

// rollUp computes risk level, tags, ordering and the summary from raw
// findings. Findings sort by (file, line, rule) so parallel scanning never
// changes output.
func rollUp(findings []Finding, filesScanned, skipped int) Result {
	sort.Slice(findings, func(i, j int) bool {
		a, b := findings[i], findings[j]
		if a.FilePath != b.FilePath {
			return a.FilePath < b.FilePath
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.RuleID < b.RuleID
	})

	result := Result{
		RiskLevel:    action.RiskLow,
		RiskTags:     []string{},
		Findings:     findings,
		FilesScanned: filesScanned,
		SkippedFiles: skipped,
	}

	seen := map[string]bool{}
	categories := map[string]int{}
	var catOrder []string
	for _, f := range findings {
		result.RiskLevel = action.MaxRisk(result.RiskLevel, f.Severity)
		if !seen[f.RuleID] {
			seen[f.RuleID] = true
			result.RiskTags = append(result.RiskTags, f.RuleID)
		}
		if categories[f.Category] == 0 {
			catOrder = append(catOrder, f.Category)
		}
		categories[f.Category]++
	}

	parts := make([]string, 0, len(catOrder))
	for _, cat := range catOrder {
		parts = append(parts, fmt.Sprintf("%s:%d", cat, categories[cat]))
	}
	summary := fmt.Sprintf("%d findings in %d files", len(findings), filesScanned)
	if len(parts) > 0 {
		summary += " (" + strings.Join(parts, " ") + ")"
	}
	if skipped > 0 {
		summary += fmt.Sprintf(", %d skipped", skipped)
	}
	result.Summary = summary
	return result
}
