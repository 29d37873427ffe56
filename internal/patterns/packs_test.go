package patterns

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const samplePack = `name: extra-checks
description: Custom checks
version: "1.0"
rules:
  - id: CUSTOM_RULE
    severity: high
    extensions: [js]
    regex: dangerousCall\(
    category: custom
`

func TestLoadRulePacks(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "extra.yaml"), []byte(samplePack), 0644); err != nil {
		t.Fatal(err)
	}

	rules, infos, err := LoadRulePacks(dir)
	if err != nil {
		t.Fatalf("LoadRulePacks: %v", err)
	}
	if len(rules) != 1 {
		t.Fatalf("got %d rules, want 1", len(rules))
	}
	if rules[0].ID != "CUSTOM_RULE" {
		t.Errorf("rule id = %s", rules[0].ID)
	}
	if string(rules[0].Severity) != "high" {
		t.Errorf("severity = %s, want high", rules[0].Severity)
	}
	if !rules[0].AppliesTo("js") || rules[0].AppliesTo("py") {
		t.Error("extension filter not honoured")
	}
	if len(infos) != 1 || !infos[0].Enabled {
		t.Errorf("infos = %+v", infos)
	}
}

func TestLoadRulePacks_DisabledPack(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "_extra.yaml"), []byte(samplePack), 0644); err != nil {
		t.Fatal(err)
	}

	rules, infos, err := LoadRulePacks(dir)
	if err != nil {
		t.Fatalf("LoadRulePacks: %v", err)
	}
	if len(rules) != 0 {
		t.Errorf("disabled pack contributed %d rules", len(rules))
	}
	if len(infos) != 1 || infos[0].Enabled {
		t.Errorf("infos = %+v", infos)
	}
}

func TestLoadRulePacks_MissingDir(t *testing.T) {
	rules, infos, err := LoadRulePacks(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatalf("missing dir should not error: %v", err)
	}
	if rules != nil || infos != nil {
		t.Error("expected empty results")
	}
}

func TestBuiltinScanRules_ScenarioCoverage(t *testing.T) {
	// The rule ids the vulnerable-sample scan is expected to raise.
	cases := []struct {
		ruleID string
		line   string
		ext    string
	}{
		{"SHELL_EXEC", `const { exec } = require("child_process");`, "js"},
		{"PRIVATE_KEY_PATTERN", "const key = 0x" + strings.Repeat("a", 64), "js"},
		{"WEBHOOK_EXFIL", `fetch("https://discord.com/api/webhooks/1/x")`, "js"},
		{"MNEMONIC_PATTERN", `"abandon ability able about above absent absorb abstract absurd abuse access accident"`, "js"},
		{"DANGEROUS_SELFDESTRUCT", "selfdestruct(payable(owner));", "sol"},
		{"UNLIMITED_APPROVAL", "token.approve(spender, type(uint256).max);", "sol"},
	}

	for _, tc := range cases {
		rule, ok := findRule(tc.ruleID)
		if !ok {
			t.Errorf("rule %s missing from catalog", tc.ruleID)
			continue
		}
		if !rule.AppliesTo(tc.ext) {
			t.Errorf("rule %s does not apply to .%s", tc.ruleID, tc.ext)
			continue
		}
		if !rule.Re.MatchString(tc.line) {
			t.Errorf("rule %s did not match %q", tc.ruleID, tc.line)
		}
	}
}

func findRule(id string) (ScanRule, bool) {
	for _, r := range BuiltinScanRules {
		if r.ID == id {
			return r, true
		}
	}
	return ScanRule{}, false
}
