// Package config provides configuration management for the dashport CLI.
package config

// Default configuration values.
const (
	DefaultTarget   = "pandas"
	DefaultMappings = "dashport-mappings.json"
	DefaultOutput   = "table"
)

// Config holds all CLI configuration options.
type Config struct {
	// Target is the translation target name.
	Target string `koanf:"target"`
	// Mappings is the path of the persisted identifier mapping file.
	Mappings string `koanf:"mappings"`
	// Concurrency bounds parallel formula parsing; 0 means one worker per
	// CPU.
	Concurrency int `koanf:"concurrency"`
	// GuardDivision makes translated divisions yield null on zero divisors.
	GuardDivision bool `koanf:"guard-division"`
	// Verbose enables debug logging to stderr.
	Verbose bool `koanf:"verbose"`
	// OutputFormat selects how command results render (table|json|code).
	OutputFormat string `koanf:"output"`
}
