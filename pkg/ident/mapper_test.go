package ident

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dashport-dev/dashport/pkg/calc"
)

func dimension(raw string) calc.Field {
	return calc.Field{RawName: raw, Kind: calc.KindDimension, DataType: calc.TypeString}
}

func TestAssignGeneratesUniqueIdentifiers(t *testing.T) {
	table := NewTable()

	a := table.Assign(dimension("Order Date"))
	b := table.Assign(dimension("order date"))
	c := table.Assign(dimension("Order_Date"))

	assert.Equal(t, "order_date", a.TargetIdentifier)
	assert.Equal(t, "order_date_2", b.TargetIdentifier)
	assert.Equal(t, "order_date_3", c.TargetIdentifier)

	for _, m := range table.Export() {
		assert.Equal(t, StatusValid, m.Status, m.SourceKey)
	}
}

func TestAssignIsIdempotent(t *testing.T) {
	table := NewTable()

	first := table.Assign(dimension("Sales"))
	again := table.Assign(dimension("Sales"))

	assert.Same(t, first, again)
	assert.Equal(t, 1, table.Len())
}

func TestAssignDeterministicAcrossTables(t *testing.T) {
	fields := []calc.Field{
		dimension("Sales"), dimension("sales"), dimension("Profit Margin %"),
		dimension("class"), dimension("2022_(copy)_(copy)_780248699807363141"),
	}

	one, two := NewTable(), NewTable()
	for _, f := range fields {
		one.Assign(f)
		two.Assign(f)
	}

	assert.Equal(t, one.Export(), two.Export())
}

func TestAssignFillsDisplayName(t *testing.T) {
	table := NewTable()
	m := table.Assign(dimension("[Order Date]"))
	assert.Equal(t, "Order Date", m.DisplayName)

	withLabel := calc.Field{RawName: "x", DisplayName: "Custom", Kind: calc.KindMeasure, DataType: calc.TypeReal}
	assert.Equal(t, "Custom", table.Assign(withLabel).DisplayName)
}

func TestRename(t *testing.T) {
	table := NewTable()
	table.Assign(dimension("Sales"))
	table.Assign(dimension("Profit"))

	require.NoError(t, table.Rename("Sales", "revenue"))
	m, _ := table.Lookup("Sales")
	assert.Equal(t, "revenue", m.TargetIdentifier)
	assert.Equal(t, OriginUserEdited, m.Origin)
	assert.Equal(t, StatusValid, m.Status)
}

func TestRenameRejectsConflictAtomically(t *testing.T) {
	table := NewTable()
	table.Assign(dimension("Sales"))
	table.Assign(dimension("Profit"))

	err := table.Rename("Profit", "sales")
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "sales", conflict.Identifier)
	assert.Equal(t, "Sales", conflict.HeldBy)

	// The losing rename left the table untouched.
	m, _ := table.Lookup("Profit")
	assert.Equal(t, "profit", m.TargetIdentifier)
}

func TestRenameRejectsInvalidNames(t *testing.T) {
	table := NewTable()
	table.Assign(dimension("Sales"))

	for _, bad := range []string{"", "2cool", "has space", "class", "df"} {
		assert.Error(t, table.Rename("Sales", bad), bad)
	}
	assert.Error(t, table.Rename("Nope", "fine"), "unknown source key")
}

func TestExportImportRoundTrip(t *testing.T) {
	table := NewTable()
	table.Assign(dimension("Sales"))
	table.Assign(dimension("Order Date"))
	require.NoError(t, table.Rename("Sales", "revenue"))

	data, err := table.MarshalJSON()
	require.NoError(t, err)

	restored, err := LoadTable(data)
	require.NoError(t, err)

	assert.Equal(t, table.Len(), restored.Len())
	assert.Equal(t, "revenue", restored.IdentifierFor("Sales"))
	assert.Equal(t, "order_date", restored.IdentifierFor("Order Date"))

	// The persisted form is a fixed point: exporting the imported table
	// yields identical bytes.
	again, err := restored.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, string(data), string(again))
}

func TestImportRejectsStructuralErrorsInFull(t *testing.T) {
	table := NewTable()
	table.Assign(dimension("Keep Me"))

	err := table.Import([]Mapping{
		{SourceKey: "", TargetIdentifier: "a"},
		{SourceKey: "dup", TargetIdentifier: "b"},
		{SourceKey: "dup", TargetIdentifier: "c"},
		{SourceKey: "bad", TargetIdentifier: "not valid!"},
	})

	var importErr *ImportError
	require.ErrorAs(t, err, &importErr)
	assert.Len(t, importErr.Records, 3, "every offending record is listed")

	// All-or-nothing: the existing table survives a rejected import.
	assert.Equal(t, 1, table.Len())
	assert.Equal(t, "keep_me", table.IdentifierFor("Keep Me"))
}

func TestImportMarksSemanticProblemsInvalid(t *testing.T) {
	table := NewTable()
	err := table.Import([]Mapping{
		{SourceKey: "a", TargetIdentifier: "sales"},
		{SourceKey: "b", TargetIdentifier: "sales"}, // duplicate identifier
		{SourceKey: "c", TargetIdentifier: "class"}, // reserved
	})
	require.NoError(t, err, "semantic problems do not reject the import")

	ma, _ := table.Lookup("a")
	mb, _ := table.Lookup("b")
	mc, _ := table.Lookup("c")
	assert.Equal(t, StatusInvalid, ma.Status)
	assert.Equal(t, StatusInvalid, mb.Status)
	assert.Equal(t, StatusInvalid, mc.Status)
}

func TestStats(t *testing.T) {
	table := NewTable()
	table.Assign(dimension("Region"))
	table.Assign(calc.Field{RawName: "Sales", Kind: calc.KindMeasure, DataType: calc.TypeReal})
	require.NoError(t, table.Import(append(table.Export(),
		Mapping{SourceKey: "x", TargetIdentifier: "region", Kind: calc.KindCalculation})))

	// "x" reuses region's identifier, which invalidates both sides of the
	// collision; only Sales stays valid.
	s := table.Stats()
	assert.Equal(t, 3, s.Total)
	assert.Equal(t, 1, s.Valid)
	assert.Equal(t, 2, s.Invalid)
	assert.Equal(t, 1, s.ByKind[calc.KindMeasure])
}

func TestSetDisplayName(t *testing.T) {
	table := NewTable()
	table.Assign(calc.Field{RawName: "Order Date", Kind: calc.KindDimension, DataType: calc.TypeDate})

	require.NoError(t, table.SetDisplayName("Order Date", "Ordered On"))
	assert.Equal(t, "Ordered On", table.Export()[0].DisplayName)

	// Labels never affect the identifier.
	assert.Equal(t, "order_date", table.IdentifierFor("Order Date"))

	assert.Error(t, table.SetDisplayName("Ghost", "x"))
}
