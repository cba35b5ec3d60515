package shapejson

import eng "github.com/reoring/shapejson/internal/engine"

// Strictness configures enforcement for duplicate member names.
type Strictness struct {
	OnDuplicateKey Severity // Ignore (last wins), Warn (last wins, logged) or Error.
}

// Severity expresses the severity level for issues.
type Severity int

const (
	Ignore Severity = iota
	Warn
	Error
)

// ParseOpt bundles parsing options. The zero value applies no limits and lets
// the last duplicate member win.
type ParseOpt struct {
	Strictness Strictness
	MaxDepth   int   // Maximum container nesting; 0 means unlimited.
	MaxBytes   int64 // Maximum input size; 0 means unlimited.
}

// lastOpt returns the effective option set: the last one passed wins.
func lastOpt(opts []ParseOpt) ParseOpt {
	if len(opts) == 0 {
		return ParseOpt{}
	}
	return opts[len(opts)-1]
}

func (o ParseOpt) enforced() bool {
	return o.Strictness.OnDuplicateKey != Ignore || o.MaxDepth > 0 || o.MaxBytes > 0
}

func toEngineDup(s Severity) eng.DuplicateStrictness {
	switch s {
	case Warn:
		return eng.DupWarn
	case Error:
		return eng.DupError
	default:
		return eng.DupIgnore
	}
}
