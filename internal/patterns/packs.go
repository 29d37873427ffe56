package patterns

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/agentguard/agentguard/internal/action"
)

// RulePack is a user-supplied set of static-scan rules loaded from YAML.
// Pack rules are appended after the built-in catalog; they can add coverage
// but never replace built-in definitions.
type RulePack struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	Version     string     `yaml:"version"`
	Author      string     `yaml:"author"`
	Rules       []PackRule `yaml:"rules"`
}

// PackRule is the YAML shape of one custom rule.
type PackRule struct {
	ID          string   `yaml:"id"`
	Severity    string   `yaml:"severity"`
	Extensions  []string `yaml:"extensions,omitempty"`
	Regex       string   `yaml:"regex"`
	Category    string   `yaml:"category,omitempty"`
	Description string   `yaml:"description,omitempty"`
}

// PackInfo summarises a pack for listing.
type PackInfo struct {
	Name      string
	Version   string
	Enabled   bool
	Path      string
	RuleCount int
}

// LoadRulePacks reads every .yaml file in dir and returns the compiled
// rules plus a summary per pack. Files prefixed with an underscore are
// listed but skipped. A missing directory is not an error.
func LoadRulePacks(dir string) ([]ScanRule, []PackInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, nil
		}
		return nil, nil, err
	}

	var rules []ScanRule
	var infos []PackInfo

	for _, entry := range entries {
		if entry.IsDir() || !isYAMLFile(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		baseName := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		enabled := !strings.HasPrefix(baseName, "_")

		pack, err := loadPack(path)
		if err != nil {
			infos = append(infos, PackInfo{Name: baseName, Enabled: enabled, Path: path})
			continue
		}

		info := PackInfo{
			Name:      pack.Name,
			Version:   pack.Version,
			Enabled:   enabled,
			Path:      path,
			RuleCount: len(pack.Rules),
		}
		if info.Name == "" {
			info.Name = baseName
		}
		infos = append(infos, info)

		if !enabled {
			continue
		}
		compiled, err := compilePack(pack)
		if err != nil {
			fmt.Fprintf(os.Stderr, "[agentguard] warning: rule pack %s: %v\n", path, err)
			continue
		}
		rules = append(rules, compiled...)
	}

	return rules, infos, nil
}

func loadPack(path string) (*RulePack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var pack RulePack
	if err := yaml.Unmarshal(data, &pack); err != nil {
		return nil, fmt.Errorf("failed to parse rule pack %s: %w", path, err)
	}
	return &pack, nil
}

func compilePack(pack *RulePack) ([]ScanRule, error) {
	rules := make([]ScanRule, 0, len(pack.Rules))
	for _, pr := range pack.Rules {
		if pr.ID == "" || pr.Regex == "" {
			return nil, fmt.Errorf("rule missing id or regex")
		}
		re, err := regexp.Compile(pr.Regex)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", pr.ID, err)
		}
		sev := action.RiskLevel(pr.Severity)
		if sev.Rank() == 0 {
			sev = action.RiskMedium
		}
		cat := pr.Category
		if cat == "" {
			cat = "custom"
		}
		rules = append(rules, ScanRule{
			ID:          pr.ID,
			Severity:    sev,
			Extensions:  pr.Extensions,
			Re:          re,
			Category:    cat,
			Description: pr.Description,
		})
	}
	return rules, nil
}

func isYAMLFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}
