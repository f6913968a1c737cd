package ident

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// identPattern is the target-language identifier syntax.
var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// crypticPattern matches machine-generated duplicate field names of the form
// "2022_(copy)_(copy)_780248699807363141": a four-digit year, one or more
// copy markers, and a long numeric ID. Only the year fragment is worth
// keeping; the ID carries no meaning outside the source tool.
var crypticPattern = regexp.MustCompile(`^(\d{4})((?:[_ ]\(copy\))+)[_ ](\d{6,})$`)

// ValidIdentifier reports whether s is a syntactically valid, non-reserved
// target identifier.
func ValidIdentifier(s string) bool {
	return s != "" && identPattern.MatchString(s) && !Reserved(s)
}

// foldASCII decomposes unicode text and strips combining marks, so that
// accented letters reduce to their ASCII base ("Année" -> "Annee").
func foldASCII(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// stripDelimiters removes the bracket/quote delimiters the source tool wraps
// field names in.
func stripDelimiters(raw string) string {
	return strings.Trim(raw, "[]\"'")
}

// snakeCase lowercases s and converts every run of non-alphanumeric
// characters to a single underscore, trimming leading and trailing ones.
func snakeCase(s string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore && b.Len() > 0 {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	return strings.Trim(b.String(), "_")
}

// Generate derives a candidate target identifier from a raw source field
// name. The result is deterministic and syntactically valid but not yet
// checked for uniqueness; the table layer de-collides it.
func Generate(rawName string) string {
	cleaned := stripDelimiters(rawName)

	// Timestamp-style duplicate IDs collapse to the year plus a copy marker.
	if m := crypticPattern.FindStringSubmatch(cleaned); m != nil {
		return "value_" + m[1] + "_copy"
	}

	name := snakeCase(foldASCII(cleaned))

	if name == "" {
		name = "unnamed_field"
	}
	if name[0] >= '0' && name[0] <= '9' {
		name = "field_" + name
	}
	if Reserved(name) {
		name += "_field"
	}
	return name
}

// DisplayName derives a human-readable label from a raw source field name.
func DisplayName(rawName string) string {
	cleaned := stripDelimiters(rawName)

	if m := crypticPattern.FindStringSubmatch(cleaned); m != nil {
		return m[1] + " (copy)"
	}

	cleaned = strings.ReplaceAll(cleaned, "_", " ")
	return strings.Join(strings.Fields(cleaned), " ")
}
