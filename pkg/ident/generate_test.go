package ident

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerate(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"[Order Date]", "order_date"},
		{"Order Date", "order_date"},
		{"Profit Margin %", "profit_margin"},
		{"  Sales  ", "sales"},
		{"UPPER CASE", "upper_case"},
		{"Multi--Dash__Name", "multi_dash_name"},
		{"Année Fiscale", "annee_fiscale"},
		{"2023 Revenue", "field_2023_revenue"},
		{"class", "class_field"},
		{"df", "df_field"},
		{"", "unnamed_field"},
		{"%%%", "unnamed_field"},
		{"2022_(copy)_(copy)_780248699807363141", "value_2022_copy"},
		{"2019 (copy) 123456789", "value_2019_copy"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Generate(tt.raw), "raw=%q", tt.raw)
	}
}

func TestGenerateIsIdempotentAndValid(t *testing.T) {
	inputs := []string{
		"[Order Date]", "Profit Margin %", "class", "", "Année",
		"2022_(copy)_(copy)_780248699807363141", "9 Lives",
	}

	for _, raw := range inputs {
		first := Generate(raw)
		assert.Equal(t, first, Generate(raw), "raw=%q", raw)
		assert.True(t, ValidIdentifier(first), "raw=%q produced %q", raw, first)
	}
}

func TestValidIdentifier(t *testing.T) {
	valid := []string{"sales", "order_date", "_private", "x2"}
	for _, s := range valid {
		assert.True(t, ValidIdentifier(s), s)
	}

	invalid := []string{"", "2cool", "has space", "has-dash", "class", "lambda", "df", "data"}
	for _, s := range invalid {
		assert.False(t, ValidIdentifier(s), s)
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"[Order Date]", "Order Date"},
		{"order_date", "order date"},
		{"2022_(copy)_(copy)_780248699807363141", "2022 (copy)"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DisplayName(tt.raw), "raw=%q", tt.raw)
	}
}

func TestReserved(t *testing.T) {
	for _, name := range []string{"class", "for", "lambda", "None", "df", "data", "result", "value", "index", "np", "pd"} {
		assert.True(t, Reserved(name), name)
	}
	assert.False(t, Reserved("sales"))
}
