package registry

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/agentguard/agentguard/internal/action"
	"github.com/agentguard/agentguard/internal/capability"
)

// Registry is the trust registry consulted by the action scanner and
// managed through the CLI.
type Registry struct {
	store *Store
	now   func() time.Time
}

// New creates a registry over the given store.
func New(store *Store) *Registry {
	return &Registry{store: store, now: time.Now}
}

// RecordKey derives the stable short key for a skill:
// sha256(source:version_ref:artifact_hash) truncated to 16 hex characters.
// Two records with different artifact hashes are distinct even under the
// same source+version.
func RecordKey(skill action.Skill) string {
	h := sha256.Sum256([]byte(skill.Source + ":" + skill.VersionRef + ":" + skill.ArtifactHash))
	return hex.EncodeToString(h[:])[:16]
}

// Lookup resolves a skill to its effective trust and capabilities. It never
// fails: registry read errors and missing records both resolve to
// untrusted with the `none` preset (fail-closed). Revoked or expired
// records are present but resolve to untrusted.
func (r *Registry) Lookup(skill action.Skill) LookupResult {
	result := LookupResult{
		EffectiveTrustLevel:   TrustUntrusted,
		EffectiveCapabilities: capability.None(),
	}

	key := RecordKey(skill)
	err := r.store.Read(func(records []Record) error {
		for i := range records {
			if records[i].RecordKey == key {
				rec := records[i]
				result.Record = &rec
				break
			}
		}
		return nil
	})
	if err != nil || result.Record == nil {
		return result
	}

	rec := result.Record
	if rec.Status == StatusRevoked || rec.Expired(r.now()) {
		return result
	}

	result.HasActiveRecord = true
	result.EffectiveTrustLevel = rec.TrustLevel
	result.EffectiveCapabilities = rec.Capabilities
	return result
}

// LookupByID finds the newest active record whose skill ID matches. Used by
// the untrusted-skill overlay, which only knows the initiating skill's ID.
func (r *Registry) LookupByID(id string) (LookupResult, bool) {
	var found *Record
	_ = r.store.Read(func(records []Record) error {
		for i := range records {
			if records[i].Skill.ID != id {
				continue
			}
			if found == nil || records[i].UpdatedAt.After(found.UpdatedAt) {
				rec := records[i]
				found = &rec
			}
		}
		return nil
	})
	if found == nil {
		return LookupResult{
			EffectiveTrustLevel:   TrustUntrusted,
			EffectiveCapabilities: capability.None(),
		}, false
	}
	return r.Lookup(found.Skill), true
}

// Attest creates or updates a trust record. Raising the trust level of an
// existing active record, or re-activating a revoked key, requires force;
// otherwise ErrNeedsConfirmation is returned and nothing is written.
func (r *Registry) Attest(skill action.Skill, level TrustLevel, caps capability.Capabilities, review Review, force bool) (Record, error) {
	key := RecordKey(skill)
	now := r.now().UTC()
	var out Record

	err := r.store.Update(func(records []Record) ([]Record, error) {
		for i := range records {
			if records[i].RecordKey != key {
				continue
			}
			existing := &records[i]
			if !force {
				if existing.Status == StatusRevoked {
					return nil, ErrNeedsConfirmation
				}
				if level.Rank() > existing.TrustLevel.Rank() {
					return nil, ErrNeedsConfirmation
				}
			}
			existing.Skill = skill
			existing.TrustLevel = level
			existing.Capabilities = caps
			existing.Review = review
			existing.Status = StatusActive
			existing.RevokeReason = ""
			existing.UpdatedAt = now
			out = *existing
			return records, nil
		}

		out = Record{
			RecordKey:    key,
			Skill:        skill,
			TrustLevel:   level,
			Capabilities: caps,
			Review:       review,
			Status:       StatusActive,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		return append(records, out), nil
	})
	if err != nil {
		return Record{}, err
	}
	return out, nil
}

// ForceAttest is an unconditional upsert; it never asks for confirmation.
func (r *Registry) ForceAttest(skill action.Skill, level TrustLevel, caps capability.Capabilities, review Review) (Record, error) {
	return r.Attest(skill, level, caps, review, true)
}

// Revoke marks every record matching m as revoked and returns how many
// records changed. Revocation is idempotent for already-revoked records.
func (r *Registry) Revoke(m Match, reason string) (int, error) {
	if m.Source == "" && m.VersionRef == "" && m.RecordKey == "" {
		return 0, ErrInvalidMatch
	}

	count := 0
	now := r.now().UTC()
	err := r.store.Update(func(records []Record) ([]Record, error) {
		for i := range records {
			if !matchRecord(records[i], m) {
				continue
			}
			if records[i].Status == StatusRevoked {
				continue
			}
			records[i].Status = StatusRevoked
			records[i].RevokeReason = reason
			records[i].UpdatedAt = now
			count++
		}
		return records, nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

func matchRecord(rec Record, m Match) bool {
	if m.RecordKey != "" && rec.RecordKey != m.RecordKey {
		return false
	}
	if m.Source != "" && rec.Skill.Source != m.Source {
		return false
	}
	if m.VersionRef != "" && rec.Skill.VersionRef != m.VersionRef {
		return false
	}
	return true
}

// List returns records matching the filter, newest first.
func (r *Registry) List(f ListFilter) ([]Record, error) {
	var out []Record
	now := r.now()
	err := r.store.Read(func(records []Record) error {
		for _, rec := range records {
			if f.TrustLevel != "" && rec.TrustLevel != f.TrustLevel {
				continue
			}
			if f.Status != "" && rec.Status != f.Status {
				continue
			}
			if f.SourcePattern != "" && !strings.Contains(rec.Skill.Source, f.SourcePattern) {
				continue
			}
			if !f.IncludeExpired && rec.Expired(now) {
				continue
			}
			out = append(out, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].UpdatedAt.After(out[i].UpdatedAt) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}
