package diag

import "strings"

// Severity orders diagnostics; only SevError blocks a unit from starting.
type Severity uint8

const (
	SevInfo Severity = iota
	SevWarning
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "INFO"
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	}
	return "UNKNOWN"
}

// Blocking reports whether a diagnostic of this severity makes its unit
// not startable.
func (s Severity) Blocking() bool { return s >= SevError }

// ParseSeverity accepts the lower-case names used on the command line.
func ParseSeverity(name string) (Severity, bool) {
	switch strings.ToLower(name) {
	case "info":
		return SevInfo, true
	case "warning", "warn":
		return SevWarning, true
	case "error":
		return SevError, true
	}
	return 0, false
}
