package registry

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/agentguard/agentguard/internal/action"
	"github.com/agentguard/agentguard/internal/capability"
)

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	return New(NewStore(filepath.Join(t.TempDir(), "registry.json")))
}

func testSkill(id string) action.Skill {
	return action.Skill{
		ID:           id,
		Source:       "github.com/acme/" + id,
		VersionRef:   "v1.0.0",
		ArtifactHash: "abc123",
	}
}

func TestRecordKey_Stable(t *testing.T) {
	skill := testSkill("alpha")
	k1 := RecordKey(skill)
	k2 := RecordKey(skill)
	if k1 != k2 {
		t.Errorf("key not stable: %s vs %s", k1, k2)
	}
	if len(k1) != 16 {
		t.Errorf("key length %d, want 16", len(k1))
	}

	changed := skill
	changed.ArtifactHash = "different"
	if RecordKey(changed) == k1 {
		t.Error("different artifact hash must produce a different key")
	}
}

func TestLookup_MissingRecord(t *testing.T) {
	reg := testRegistry(t)

	result := reg.Lookup(testSkill("ghost"))
	if result.HasActiveRecord {
		t.Error("missing record should not be active")
	}
	if result.EffectiveTrustLevel != TrustUntrusted {
		t.Errorf("trust = %s, want untrusted", result.EffectiveTrustLevel)
	}
	if result.EffectiveCapabilities.Exec != capability.ExecDeny {
		t.Error("missing record must resolve to the none preset")
	}
}

func TestAttestAndLookup(t *testing.T) {
	reg := testRegistry(t)
	skill := testSkill("alpha")
	caps, _ := capability.Preset("read_only")

	rec, err := reg.Attest(skill, TrustRestricted, caps, Review{ReviewedBy: "dev"}, false)
	if err != nil {
		t.Fatalf("Attest: %v", err)
	}
	if rec.Status != StatusActive {
		t.Errorf("status = %s", rec.Status)
	}

	result := reg.Lookup(skill)
	if !result.HasActiveRecord {
		t.Fatal("expected an active record")
	}
	if result.EffectiveTrustLevel != TrustRestricted {
		t.Errorf("trust = %s", result.EffectiveTrustLevel)
	}
	if len(result.EffectiveCapabilities.FilesystemAllowlist) == 0 {
		t.Error("capabilities not carried through lookup")
	}
}

func TestAttest_RaiseNeedsForce(t *testing.T) {
	reg := testRegistry(t)
	skill := testSkill("alpha")

	if _, err := reg.Attest(skill, TrustRestricted, capability.None(), Review{}, false); err != nil {
		t.Fatal(err)
	}

	_, err := reg.Attest(skill, TrustTrusted, capability.None(), Review{}, false)
	if !errors.Is(err, ErrNeedsConfirmation) {
		t.Fatalf("raising trust without force: err = %v, want ErrNeedsConfirmation", err)
	}

	if _, err := reg.Attest(skill, TrustTrusted, capability.None(), Review{}, true); err != nil {
		t.Fatalf("forced raise: %v", err)
	}
	if got := reg.Lookup(skill).EffectiveTrustLevel; got != TrustTrusted {
		t.Errorf("trust after forced raise = %s", got)
	}

	// Lowering never needs force.
	if _, err := reg.Attest(skill, TrustUntrusted, capability.None(), Review{}, false); err != nil {
		t.Errorf("lowering trust: %v", err)
	}
}

func TestRevoke_Monotonic(t *testing.T) {
	reg := testRegistry(t)
	skill := testSkill("alpha")

	if _, err := reg.Attest(skill, TrustTrusted, capability.None(), Review{}, false); err != nil {
		t.Fatal(err)
	}

	count, err := reg.Revoke(Match{Source: skill.Source, VersionRef: skill.VersionRef}, "compromised")
	if err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if count != 1 {
		t.Errorf("revoked %d records, want 1", count)
	}

	result := reg.Lookup(skill)
	if result.HasActiveRecord {
		t.Error("revoked record must not be active")
	}
	if result.EffectiveTrustLevel != TrustUntrusted {
		t.Errorf("trust after revoke = %s", result.EffectiveTrustLevel)
	}

	// Re-attesting a revoked key needs force, at any level.
	_, err = reg.Attest(skill, TrustUntrusted, capability.None(), Review{}, false)
	if !errors.Is(err, ErrNeedsConfirmation) {
		t.Fatalf("re-attest without force: err = %v, want ErrNeedsConfirmation", err)
	}
	if _, err := reg.ForceAttest(skill, TrustRestricted, capability.None(), Review{}); err != nil {
		t.Fatalf("forced re-attest: %v", err)
	}
	if !reg.Lookup(skill).HasActiveRecord {
		t.Error("forced re-attest should reactivate the record")
	}
}

func TestRevoke_Idempotent(t *testing.T) {
	reg := testRegistry(t)
	skill := testSkill("alpha")

	if _, err := reg.Attest(skill, TrustRestricted, capability.None(), Review{}, false); err != nil {
		t.Fatal(err)
	}
	if _, err := reg.Revoke(Match{RecordKey: RecordKey(skill)}, "first"); err != nil {
		t.Fatal(err)
	}
	count, err := reg.Revoke(Match{RecordKey: RecordKey(skill)}, "second")
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("second revoke changed %d records, want 0", count)
	}
}

func TestRevoke_EmptyMatch(t *testing.T) {
	reg := testRegistry(t)
	if _, err := reg.Revoke(Match{}, "reason"); !errors.Is(err, ErrInvalidMatch) {
		t.Errorf("err = %v, want ErrInvalidMatch", err)
	}
}

func TestLookup_Expired(t *testing.T) {
	reg := testRegistry(t)
	skill := testSkill("alpha")

	if _, err := reg.Attest(skill, TrustTrusted, capability.None(), Review{}, false); err != nil {
		t.Fatal(err)
	}
	// Backdate the expiry directly in the store.
	past := time.Now().Add(-time.Hour)
	err := reg.store.Update(func(records []Record) ([]Record, error) {
		for i := range records {
			records[i].ExpiresAt = &past
		}
		return records, nil
	})
	if err != nil {
		t.Fatal(err)
	}

	result := reg.Lookup(skill)
	if result.HasActiveRecord {
		t.Error("expired record must not be active")
	}
	if result.EffectiveTrustLevel != TrustUntrusted {
		t.Errorf("trust = %s, want untrusted", result.EffectiveTrustLevel)
	}
	if result.Record == nil {
		t.Error("expired record should still be returned for inspection")
	}
}

func TestList_NewestFirst(t *testing.T) {
	reg := testRegistry(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	step := 0
	reg.now = func() time.Time {
		step++
		return base.Add(time.Duration(step) * time.Minute)
	}

	for _, id := range []string{"a", "b", "c"} {
		if _, err := reg.Attest(testSkill(id), TrustRestricted, capability.None(), Review{}, false); err != nil {
			t.Fatal(err)
		}
	}

	records, err := reg.List(ListFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records", len(records))
	}
	if records[0].Skill.ID != "c" || records[2].Skill.ID != "a" {
		t.Errorf("order = %s, %s, %s", records[0].Skill.ID, records[1].Skill.ID, records[2].Skill.ID)
	}
}

func TestList_Filters(t *testing.T) {
	reg := testRegistry(t)
	if _, err := reg.Attest(testSkill("alpha"), TrustTrusted, capability.None(), Review{}, false); err != nil {
		t.Fatal(err)
	}
	if _, err := reg.Attest(testSkill("beta"), TrustRestricted, capability.None(), Review{}, false); err != nil {
		t.Fatal(err)
	}
	if _, err := reg.Revoke(Match{Source: "github.com/acme/beta"}, "gone"); err != nil {
		t.Fatal(err)
	}

	trusted, _ := reg.List(ListFilter{TrustLevel: TrustTrusted})
	if len(trusted) != 1 || trusted[0].Skill.ID != "alpha" {
		t.Errorf("trust filter: %+v", trusted)
	}
	revoked, _ := reg.List(ListFilter{Status: StatusRevoked})
	if len(revoked) != 1 || revoked[0].Skill.ID != "beta" {
		t.Errorf("status filter: %+v", revoked)
	}
	bySource, _ := reg.List(ListFilter{SourcePattern: "acme/alpha"})
	if len(bySource) != 1 {
		t.Errorf("source filter: %+v", bySource)
	}
}

func TestStore_NewerSchemaIsReadOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")
	doc := `{"version": 99, "updated_at": "2026-01-01T00:00:00Z", "records": []}`
	if err := os.WriteFile(path, []byte(doc), 0600); err != nil {
		t.Fatal(err)
	}

	reg := New(NewStore(path))
	if _, err := reg.Attest(testSkill("alpha"), TrustRestricted, capability.None(), Review{}, false); !errors.Is(err, ErrReadOnly) {
		t.Errorf("write to newer-schema registry: err = %v, want ErrReadOnly", err)
	}
	// Reads still work.
	if _, err := reg.List(ListFilter{}); err != nil {
		t.Errorf("read from newer-schema registry: %v", err)
	}
}

func TestCalculateArtifactHash(t *testing.T) {
	dir := t.TempDir()
	write := func(rel, content string) {
		t.Helper()
		path := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	write("index.js", "console.log('hi')")
	write("lib/util.js", "module.exports = {}")

	h1, err := CalculateArtifactHash(dir)
	if err != nil {
		t.Fatal(err)
	}
	h2, err := CalculateArtifactHash(dir)
	if err != nil {
		t.Fatal(err)
	}
	if h1 != h2 {
		t.Error("hash not stable across runs")
	}

	// node_modules must not affect the hash.
	write("node_modules/dep/index.js", "whatever")
	h3, err := CalculateArtifactHash(dir)
	if err != nil {
		t.Fatal(err)
	}
	if h3 != h1 {
		t.Error("excluded directory changed the hash")
	}

	// Content changes must.
	write("index.js", "console.log('changed')")
	h4, err := CalculateArtifactHash(dir)
	if err != nil {
		t.Fatal(err)
	}
	if h4 == h1 {
		t.Error("content change did not change the hash")
	}
}
