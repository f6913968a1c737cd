// Package calc defines the core data model of the translation engine:
// workbook fields, the calculation-language AST, and diagnostics.
package calc

import "fmt"

// Kind classifies a workbook field.
type Kind string

// Field kind constants.
const (
	KindDimension   Kind = "dimension"
	KindMeasure     Kind = "measure"
	KindParameter   Kind = "parameter"
	KindCalculation Kind = "calculation"
)

// DataType is the declared type of a field's values.
type DataType string

// Field data type constants.
const (
	TypeString   DataType = "string"
	TypeInteger  DataType = "integer"
	TypeReal     DataType = "real"
	TypeBoolean  DataType = "boolean"
	TypeDate     DataType = "date"
	TypeDatetime DataType = "datetime"
)

// ValidKind reports whether k is a known field kind.
func ValidKind(k Kind) bool {
	switch k {
	case KindDimension, KindMeasure, KindParameter, KindCalculation:
		return true
	}
	return false
}

// ValidDataType reports whether t is a known data type.
func ValidDataType(t DataType) bool {
	switch t {
	case TypeString, TypeInteger, TypeReal, TypeBoolean, TypeDate, TypeDatetime:
		return true
	}
	return false
}

// Field is a named, typed unit of data in the source workbook.
// Fields are immutable once handed to the engine; only their identifier
// mapping changes, and only through the identifier table.
type Field struct {
	// RawName is the opaque source identifier, brackets and all.
	RawName string `json:"raw_name" yaml:"raw_name"`
	// DisplayName is the human-readable label.
	DisplayName string `json:"display_name,omitempty" yaml:"display_name,omitempty"`
	Kind        Kind     `json:"kind" yaml:"kind"`
	DataType    DataType `json:"data_type" yaml:"data_type"`
	// Formula carries the calculation source text for kind "calculation".
	Formula string `json:"formula,omitempty" yaml:"formula,omitempty"`
}

// Validate checks the structural validity of a field definition.
func (f *Field) Validate() error {
	if f.RawName == "" {
		return fmt.Errorf("field has empty raw_name")
	}
	if !ValidKind(f.Kind) {
		return fmt.Errorf("field %q has unknown kind %q", f.RawName, f.Kind)
	}
	if !ValidDataType(f.DataType) {
		return fmt.Errorf("field %q has unknown data_type %q", f.RawName, f.DataType)
	}
	if f.Kind == KindCalculation && f.Formula == "" {
		return fmt.Errorf("calculation %q has no formula", f.RawName)
	}
	return nil
}

// Workbook is one workbook's worth of fields, in source order.
type Workbook struct {
	Name   string  `json:"name,omitempty" yaml:"name,omitempty"`
	Fields []Field `json:"fields" yaml:"fields"`
}

// Calculations returns the fields of kind "calculation", in source order.
func (w *Workbook) Calculations() []Field {
	var out []Field
	for _, f := range w.Fields {
		if f.Kind == KindCalculation {
			out = append(out, f)
		}
	}
	return out
}

// FieldSet is a lookup view over a workbook's fields keyed by raw name.
type FieldSet struct {
	byName map[string]*Field
	order  []string
}

// NewFieldSet builds a FieldSet from the given fields. Later duplicates of
// the same raw name are ignored; the first definition wins.
func NewFieldSet(fields []Field) *FieldSet {
	fs := &FieldSet{byName: make(map[string]*Field, len(fields))}
	for i := range fields {
		f := &fields[i]
		if _, ok := fs.byName[f.RawName]; ok {
			continue
		}
		fs.byName[f.RawName] = f
		fs.order = append(fs.order, f.RawName)
	}
	return fs
}

// Get returns the field with the given raw name.
func (fs *FieldSet) Get(rawName string) (*Field, bool) {
	f, ok := fs.byName[rawName]
	return f, ok
}

// Has reports whether a field with the given raw name exists.
func (fs *FieldSet) Has(rawName string) bool {
	_, ok := fs.byName[rawName]
	return ok
}

// Names returns all raw names in workbook order.
func (fs *FieldSet) Names() []string {
	return append([]string(nil), fs.order...)
}

// Len returns the number of fields in the set.
func (fs *FieldSet) Len() int {
	return len(fs.order)
}
