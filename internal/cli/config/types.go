// Package config loads colmark's layered configuration: built-in defaults,
// a colmark.yaml file, COLMARK_-prefixed environment variables and
// explicitly-set command-line flags, in increasing priority.
package config

// Defaults.
const (
	// DefaultPrefix is the marker prepended to migrated identifiers. It
	// doubles as the idempotence guard: anything already carrying it is
	// never rematched.
	DefaultPrefix = "ced_todo_"

	DefaultWorkers = 4
	DefaultOutput  = "auto"
)

// DefaultExcludeDirs are directory names pruned from the scan at any depth
// (build outputs and test fixtures).
var DefaultExcludeDirs = []string{"target", "build", "test"}

// DefaultExtensions are the file suffixes treated as mapper files.
var DefaultExtensions = []string{".xml"}

// Config is the fully-resolved configuration for a run.
type Config struct {
	// ScanDir is the root of the mapper tree to rewrite.
	ScanDir string `koanf:"scan_dir"`

	// Targets lists "table.column" pairs to mark.
	Targets []string `koanf:"targets"`

	// Prefix is the marker prefix.
	Prefix string `koanf:"prefix"`

	// ExcludeDirs are directory names skipped during the scan.
	ExcludeDirs []string `koanf:"exclude_dirs"`

	// Extensions are the file suffixes scanned (default .xml).
	Extensions []string `koanf:"extensions"`

	// Workers bounds how many files are processed concurrently.
	Workers int `koanf:"workers"`

	// Backup keeps a .bak copy next to every rewritten file.
	Backup bool `koanf:"backup"`

	// Yes skips the interactive confirmation before modifying files.
	Yes bool `koanf:"yes"`

	Verbose      bool   `koanf:"verbose"`
	OutputFormat string `koanf:"output"`
}
