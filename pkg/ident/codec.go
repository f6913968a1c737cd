package ident

import (
	"encoding/json"
	"fmt"
	"strings"
)

// RecordError describes one offending record in a rejected import.
type RecordError struct {
	Index     int    // position in the imported list
	SourceKey string // may be empty when that is the problem
	Reason    string
}

func (e RecordError) String() string {
	return fmt.Sprintf("record %d (%q): %s", e.Index, e.SourceKey, e.Reason)
}

// ImportError rejects an entire import, listing every offending record so
// the caller can fix them all in one pass.
type ImportError struct {
	Records []RecordError
}

func (e *ImportError) Error() string {
	parts := make([]string, len(e.Records))
	for i, r := range e.Records {
		parts[i] = r.String()
	}
	return "import rejected: " + strings.Join(parts, "; ")
}

// Import replaces the entire table with the given mappings. The import is
// all-or-nothing: if any record fails structural validation (missing or
// duplicate source_key, malformed non-empty target_identifier) the table is
// left untouched and the returned ImportError lists every offending record.
// Records that pass structurally are accepted and then re-validated, so a
// record whose identifier is reserved or duplicated imports with status
// "invalid" rather than being dropped.
func (t *Table) Import(mappings []Mapping) error {
	var bad []RecordError
	seen := make(map[string]int)
	for i, m := range mappings {
		if m.SourceKey == "" {
			bad = append(bad, RecordError{Index: i, Reason: "missing source_key"})
			continue
		}
		if prev, dup := seen[m.SourceKey]; dup {
			bad = append(bad, RecordError{Index: i, SourceKey: m.SourceKey,
				Reason: fmt.Sprintf("duplicate source_key (first at record %d)", prev)})
			continue
		}
		seen[m.SourceKey] = i
		if m.TargetIdentifier != "" && !identPattern.MatchString(m.TargetIdentifier) {
			bad = append(bad, RecordError{Index: i, SourceKey: m.SourceKey,
				Reason: fmt.Sprintf("malformed target_identifier %q", m.TargetIdentifier)})
		}
	}
	if len(bad) > 0 {
		return &ImportError{Records: bad}
	}

	entries := make(map[string]*Mapping, len(mappings))
	order := make([]string, 0, len(mappings))
	for i := range mappings {
		m := mappings[i]
		if m.Origin == "" {
			m.Origin = OriginGenerated
		}
		entries[m.SourceKey] = &m
		order = append(order, m.SourceKey)
	}
	t.entries = entries
	t.order = order

	// Re-run validation on every record now that the full table is known.
	for _, key := range t.order {
		m := t.entries[key]
		m.Status = t.Validate(m)
	}
	return nil
}

// MarshalJSON encodes the table as the persisted mapping format: an ordered
// array of records.
func (t *Table) MarshalJSON() ([]byte, error) {
	return json.MarshalIndent(t.Export(), "", "  ")
}

// DecodeMappings parses the persisted mapping format.
func DecodeMappings(data []byte) ([]Mapping, error) {
	var mappings []Mapping
	if err := json.Unmarshal(data, &mappings); err != nil {
		return nil, fmt.Errorf("malformed mapping file: %w", err)
	}
	return mappings, nil
}

// LoadTable decodes the persisted mapping format and imports it into a new
// table.
func LoadTable(data []byte) (*Table, error) {
	mappings, err := DecodeMappings(data)
	if err != nil {
		return nil, err
	}
	t := NewTable()
	if err := t.Import(mappings); err != nil {
		return nil, err
	}
	return t, nil
}
