// Package herrors provides unified error handling across the CLI: a single
// *Error type carrying the failed operation, its category, and the exit
// code it maps to, plus suggestions the CLI can print alongside it. Modeled
// on the teacher's internal/errors, with ErrorKind narrowed to this
// program's taxonomy.
package herrors

import (
	"errors"
	"strings"
)

// ErrorCode is the process exit code an Error maps to.
type ErrorCode int

const (
	ExitSuccess ErrorCode = iota
	ExitError
	ExitUsageError
	ExitConfigError
	ExitReferenceError
	ExitCacheError
)

// ErrorKind categorizes an Error per the error-handling taxonomy: which
// stage of a run failed, and therefore how it should be reported and what
// exit code it should produce.
type ErrorKind int

const (
	KindOther ErrorKind = iota
	// KindConfig covers unreadable config or malformed rule filters: fatal
	// at startup.
	KindConfig
	// KindReference covers an unresolvable reference: fatal for check on
	// that one reference; check-all continues with the next repository.
	KindReference
	// KindWalk covers errors reading an individual commit during the walk
	// (shallow clone, corrupted object): logged and that commit is skipped,
	// never surfaced as an Error.
	KindWalk
	// KindRule covers a rule erroring inside OnDiffChange: treated as
	// Cancel for that rule on that commit, never surfaced as an Error.
	KindRule
	// KindCache covers cache read/write failures: a read failure is treated
	// as an empty cache, a write failure at flush is logged only. Neither
	// is surfaced as an Error during a run; KindCache is used for
	// unreadable cache state at startup that blocks check-all.
	KindCache
)

// Error is the unified error type returned by commands.
type Error struct {
	Op          string
	Kind        ErrorKind
	Code        ErrorCode
	Err         error
	Message     string
	Suggestions []string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}

	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	if e.Err != nil {
		b.WriteString(e.Err.Error())
	} else {
		b.WriteString(e.kindString())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// ExitCode returns the process exit code for this error: an explicit Code
// if set, otherwise one derived from Kind.
func (e *Error) ExitCode() int {
	if e.Code != ExitSuccess {
		return int(e.Code)
	}
	switch e.Kind {
	case KindConfig:
		return int(ExitConfigError)
	case KindReference:
		return int(ExitReferenceError)
	case KindCache:
		return int(ExitCacheError)
	default:
		return int(ExitError)
	}
}

// WithSuggestions appends suggestions and returns e for chaining.
func (e *Error) WithSuggestions(suggestions ...string) *Error {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

func (e *Error) kindString() string {
	switch e.Kind {
	case KindConfig:
		return "configuration error"
	case KindReference:
		return "reference resolution error"
	case KindWalk:
		return "commit walk error"
	case KindRule:
		return "rule processing error"
	case KindCache:
		return "cache error"
	default:
		return "error"
	}
}

// Wrap attaches op and kind to err, returning nil if err is nil. If err is
// already an *Error, its Kind is preserved unless overridden by a
// non-KindOther kind, matching the teacher's chain-preserving Wrap.
func Wrap(op string, kind ErrorKind, err error) *Error {
	if err == nil {
		return nil
	}
	var existing *Error
	if errors.As(err, &existing) && kind == KindOther {
		return &Error{Op: op, Err: err, Kind: existing.Kind}
	}
	return &Error{Op: op, Err: err, Kind: kind}
}

// Config wraps err as a KindConfig error.
func Config(op string, err error) *Error { return Wrap(op, KindConfig, err) }

// Reference wraps err as a KindReference error.
func Reference(op string, err error) *Error { return Wrap(op, KindReference, err) }

// Cache wraps err as a KindCache error.
func Cache(op string, err error) *Error { return Wrap(op, KindCache, err) }

// Usage builds a KindOther error with ExitUsageError, for missing or
// malformed subcommands.
func Usage(message string) *Error {
	return &Error{Message: message, Code: ExitUsageError}
}

// ExitCodeOf returns err's exit code if it (or something it wraps) is an
// *Error, or ExitError for any other non-nil error.
func ExitCodeOf(err error) int {
	if err == nil {
		return int(ExitSuccess)
	}
	var e *Error
	if errors.As(err, &e) {
		return e.ExitCode()
	}
	return int(ExitError)
}
