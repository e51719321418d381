// Package diag implements spec.md section 7's error taxonomy: an explicit
// sum type returned by every rewrite instead of the source's
// messageAssert()-and-exceptions pattern (spec.md section 9: "reimplement
// absences as explicit sum types {Ok(t), Unsupported, NotTypeable,
// Fatal(msg)}"). Adapted from the teacher's internal/errors (SentraError,
// ErrorType, SourceLocation, StackFrame), narrowed to the five kinds
// spec.md names.
package diag

import (
	"errors"
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

// Kind is one of the five error kinds spec.md section 7 defines.
type Kind string

const (
	Unsupported  Kind = "unsupported"
	Assertion    Kind = "assertion"
	TypeFailure  Kind = "type_failure"
	AmbiguousTop Kind = "ambiguous_top"
	UnsafeRewrite Kind = "unsafe_rewrite"
)

// ObjectRef names the object a diagnostic is about, for user-visible
// messages ("diagnostics reference the owning object: name + location if
// available", spec.md section 7).
type ObjectRef struct {
	Name     string
	Location string // e.g. a synthesized "file:line" when known, else ""
}

func (o ObjectRef) String() string {
	if o.Name == "" {
		return "<anonymous>"
	}
	if o.Location == "" {
		return o.Name
	}
	return fmt.Sprintf("%s (%s)", o.Name, o.Location)
}

// Diagnostic is the concrete error value every fallible operation in this
// module returns. Only Kind == Assertion is fatal (spec.md section 7:
// "Fatal: stop processing and surface a diagnostic"); every other kind is a
// local-rewrite failure the caller logs and moves past.
type Diagnostic struct {
	Kind   Kind
	Rule   string // the rewrite/contract name that triggered, e.g. "fixRangesDirection"
	Object ObjectRef
	Msg    string
	cause  error // wrapped via github.com/pkg/errors for Assertion-class stack capture
}

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s: %s: %s", d.Kind, d.Rule, d.Object, d.Msg)
}

func (d *Diagnostic) Unwrap() error { return d.cause }

// Fatal builds an Assertion-kind diagnostic with a captured stack trace,
// for a broken tree invariant (spec.md section 7: "Broken invariant in the
// tree... Fatal: stop processing").
func Fatal(rule string, obj ObjectRef, format string, args ...any) *Diagnostic {
	msg := fmt.Sprintf(format, args...)
	return &Diagnostic{
		Kind:   Assertion,
		Rule:   rule,
		Object: obj,
		Msg:    msg,
		cause:  pkgerrors.New(msg),
	}
}

// Local builds a non-fatal diagnostic of the given kind for a single
// rewrite's local failure. Callers append it to a Report (internal/report)
// and leave the node unchanged.
func Local(kind Kind, rule string, obj ObjectRef, format string, args ...any) *Diagnostic {
	return &Diagnostic{Kind: kind, Rule: rule, Object: obj, Msg: fmt.Sprintf(format, args...)}
}

// IsFatal reports whether err (or anything it wraps) is an Assertion-kind
// Diagnostic — the only kind spec.md section 7 says halts execution.
func IsFatal(err error) bool {
	var d *Diagnostic
	if errors.As(err, &d) {
		return d.Kind == Assertion
	}
	return false
}
