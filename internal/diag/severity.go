package diag

import (
	"fmt"
	"strings"
)

// Severity defines the importance of a diagnostic.
type Severity uint8

const (
	// SevInfo is for informational diagnostics, e.g. a dropped variadic tail.
	SevInfo Severity = iota
	// SevWarning marks output that was generated but will not work as the
	// header intends (by-value aggregates, missing symbols).
	SevWarning
	// SevError aborts the declaration or the file.
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

// ParseSeverity accepts info, warning (or warn) and error in any case.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "info", "":
		return SevInfo, nil
	case "warning", "warn":
		return SevWarning, nil
	case "error":
		return SevError, nil
	}
	return SevInfo, fmt.Errorf("unknown severity %q (expected info|warning|error)", s)
}

// AtLeast builds a Bag.Filter predicate dropping diagnostics below min.
func AtLeast(min Severity) func(Diagnostic) bool {
	return func(d Diagnostic) bool { return d.Severity >= min }
}
