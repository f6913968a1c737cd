// Package ident maps raw workbook field names to valid, unique
// target-language identifiers. The mapping table is an explicit object;
// there is no ambient global table, and every mutation re-validates the
// uniqueness invariant atomically.
package ident

import (
	"fmt"

	"github.com/dashport-dev/dashport/pkg/calc"
)

// Status is the validation state of a mapping.
type Status string

// Mapping status constants.
const (
	StatusValid   Status = "valid"
	StatusInvalid Status = "invalid"
)

// Origin records how a mapping's identifier came to be. It feeds UI
// display only; the translator never reads it.
type Origin string

// Mapping origin constants.
const (
	OriginGenerated  Origin = "generated"
	OriginUserEdited Origin = "user_edited"
)

// Mapping binds one source field to a target-language identifier.
type Mapping struct {
	SourceKey        string        `json:"source_key"`
	DisplayName      string        `json:"display_name"`
	TargetIdentifier string        `json:"target_identifier"`
	DataType         calc.DataType `json:"data_type"`
	Kind             calc.Kind     `json:"kind"`
	Status           Status        `json:"status"`
	Origin           Origin        `json:"-"`
}

// ConflictError reports a requested identifier that collides with another
// mapping. Callers may retry with a different name.
type ConflictError struct {
	Identifier string
	HeldBy     string // source key of the mapping already using it
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("identifier %q is already used by field %q", e.Identifier, e.HeldBy)
}

// Table is the mutable identifier table for one workbook. All mutation goes
// through Assign, Rename, and Import; each is atomic with respect to the
// uniqueness invariant.
type Table struct {
	entries map[string]*Mapping // keyed by SourceKey
	order   []string            // insertion order of source keys
}

// NewTable creates an empty identifier table.
func NewTable() *Table {
	return &Table{entries: make(map[string]*Mapping)}
}

// Len returns the number of mappings in the table.
func (t *Table) Len() int { return len(t.order) }

// Lookup returns the mapping for a source key.
func (t *Table) Lookup(sourceKey string) (*Mapping, bool) {
	m, ok := t.entries[sourceKey]
	return m, ok
}

// IdentifierFor returns the target identifier for a source key, or "" if
// the key has no mapping yet.
func (t *Table) IdentifierFor(sourceKey string) string {
	if m, ok := t.entries[sourceKey]; ok {
		return m.TargetIdentifier
	}
	return ""
}

// holder returns the source key currently holding an identifier, excluding
// the given source key. Empty identifiers never collide.
func (t *Table) holder(identifier, excludeKey string) (string, bool) {
	if identifier == "" {
		return "", false
	}
	for _, key := range t.order {
		if key == excludeKey {
			continue
		}
		if t.entries[key].TargetIdentifier == identifier {
			return key, true
		}
	}
	return "", false
}

// Assign creates a mapping for a field, generating a deterministic target
// identifier from its raw name. Assigning an already-mapped source key
// returns the existing mapping unchanged, so re-running assignment over an
// unchanged field set is idempotent.
func (t *Table) Assign(field calc.Field) *Mapping {
	if m, ok := t.entries[field.RawName]; ok {
		return m
	}

	name := Generate(field.RawName)

	// De-collide against already-assigned identifiers with a numeric
	// suffix. Deterministic: the same input order always yields the same
	// suffixes.
	candidate := name
	for n := 2; ; n++ {
		if _, taken := t.holder(candidate, field.RawName); !taken {
			break
		}
		candidate = fmt.Sprintf("%s_%d", name, n)
	}

	display := field.DisplayName
	if display == "" {
		display = DisplayName(field.RawName)
	}

	m := &Mapping{
		SourceKey:        field.RawName,
		DisplayName:      display,
		TargetIdentifier: candidate,
		DataType:         field.DataType,
		Kind:             field.Kind,
		Origin:           OriginGenerated,
	}
	m.Status = t.Validate(m)

	t.entries[field.RawName] = m
	t.order = append(t.order, field.RawName)
	return m
}

// Validate recomputes the status of a mapping against the current table.
// The status is derived, never stored stale: callers must use the returned
// value rather than a previously cached one.
func (t *Table) Validate(m *Mapping) Status {
	if !ValidIdentifier(m.TargetIdentifier) {
		return StatusInvalid
	}
	if _, taken := t.holder(m.TargetIdentifier, m.SourceKey); taken {
		return StatusInvalid
	}
	return StatusValid
}

// Rename sets a user-supplied identifier for an existing mapping. A name
// that is syntactically invalid, reserved, or held by another mapping is
// rejected in full and the table is left unchanged; user names are never
// silently disambiguated.
func (t *Table) Rename(sourceKey, newIdentifier string) error {
	m, ok := t.entries[sourceKey]
	if !ok {
		return fmt.Errorf("no mapping for source key %q", sourceKey)
	}
	if !ValidIdentifier(newIdentifier) {
		return fmt.Errorf("%q is not a valid target identifier", newIdentifier)
	}
	if heldBy, taken := t.holder(newIdentifier, sourceKey); taken {
		return &ConflictError{Identifier: newIdentifier, HeldBy: heldBy}
	}

	m.TargetIdentifier = newIdentifier
	m.Origin = OriginUserEdited
	m.Status = t.Validate(m)
	return nil
}

// SetDisplayName updates the display label. Labels are independent of the
// target identifier and never affect validation.
func (t *Table) SetDisplayName(sourceKey, display string) error {
	m, ok := t.entries[sourceKey]
	if !ok {
		return fmt.Errorf("no mapping for source key %q", sourceKey)
	}
	m.DisplayName = display
	return nil
}

// Export returns all mappings in insertion order, as copies.
func (t *Table) Export() []Mapping {
	out := make([]Mapping, 0, len(t.order))
	for _, key := range t.order {
		out = append(out, *t.entries[key])
	}
	return out
}

// Summary aggregates mapping counts for reporting.
type Summary struct {
	Total   int
	Valid   int
	Invalid int
	ByKind  map[calc.Kind]int
}

// Stats returns summary statistics over the table.
func (t *Table) Stats() Summary {
	s := Summary{ByKind: make(map[calc.Kind]int)}
	for _, key := range t.order {
		m := t.entries[key]
		s.Total++
		if t.Validate(m) == StatusValid {
			s.Valid++
		} else {
			s.Invalid++
		}
		s.ByKind[m.Kind]++
	}
	return s
}
