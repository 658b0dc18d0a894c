// Package error defines the structured error taxonomy relindex uses to
// report failures up through the execution tree to the server boundary.
package error

import (
	"fmt"
	"runtime"
	"strings"
)

// Kind classifies an error by the spec's taxonomy (spec §7). It
// determines how an operator or the server surrounding it should react.
type Kind int

const (
	// KindMissingRelation is a lookup for an unknown relation id. Fatal
	// for the calling operator; surfaced as a query failure.
	KindMissingRelation Kind = iota

	// KindLhsBelowRange is a block lookup invoked with an lhs smaller
	// than every block's FirstLhs. Indicates a planner bug; treated as
	// a hard assertion failure (see indexmeta.findBlock, which panics
	// directly rather than routing through this kind — KindLhsBelowRange
	// exists for callers that choose to recover the panic and report it
	// structurally instead of crashing the process).
	KindLhsBelowRange

	// KindIoError is a read/write failure on the index file. Surfaced up
	// and terminates the request.
	KindIoError

	// KindPlanMismatch is an attempt to compute a join whose inputs
	// disagree about sortedness.
	KindPlanMismatch

	// KindQueryAborted is a cancellation signal observed mid-query. It
	// propagates upward without being logged as an error.
	KindQueryAborted
)

func (k Kind) String() string {
	switch k {
	case KindMissingRelation:
		return "MissingRelation"
	case KindLhsBelowRange:
		return "LhsBelowRange"
	case KindIoError:
		return "IoError"
	case KindPlanMismatch:
		return "PlanMismatch"
	case KindQueryAborted:
		return "QueryAborted"
	default:
		return "Unknown"
	}
}

// QueryError is a structured error with enough context to render a
// useful message at the client boundary and to log an assertion failure
// with its full chain and the operator's plan string.
type QueryError struct {
	Kind Kind

	// Message is a human-readable description of what went wrong.
	Message string

	// Operation identifies what was being attempted, e.g. "GetRmd",
	// "BlockLookup", "Join.ComputeResult".
	Operation string

	// Component identifies the originating package, e.g. "indexmeta",
	// "join".
	Component string

	// PlanString is the plan-string of the operator that was executing
	// when the error occurred, when known.
	PlanString string

	// Cause is the underlying error, if any.
	Cause error

	// Stack is captured at New/Wrap time for assertion-failure logging.
	Stack []uintptr
}

// New creates a QueryError of the given kind.
func New(kind Kind, message string) *QueryError {
	return &QueryError{
		Kind:    kind,
		Message: message,
		Stack:   captureStack(),
	}
}

// Wrap attaches operation/component context to err. If err is already a
// *QueryError, it's enriched in place (only filling in blanks) rather
// than double-wrapped.
func Wrap(err error, kind Kind, operation, component string) *QueryError {
	if err == nil {
		return nil
	}

	if qe, ok := err.(*QueryError); ok {
		if qe.Operation == "" {
			qe.Operation = operation
		}
		if qe.Component == "" {
			qe.Component = component
		}
		return qe
	}

	return &QueryError{
		Kind:      kind,
		Message:   err.Error(),
		Operation: operation,
		Component: component,
		Cause:     err,
		Stack:     captureStack(),
	}
}

// WithPlanString records the plan string of the operator that was
// executing when the error occurred, returning the receiver for
// chaining at the call site.
func (e *QueryError) WithPlanString(planString string) *QueryError {
	e.PlanString = planString
	return e
}

func captureStack() []uintptr {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])
	return pcs[0:n]
}

func (e *QueryError) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Kind, e.Message))

	if e.Operation != "" {
		b.WriteString(fmt.Sprintf(" (operation: %s", e.Operation))
		if e.Component != "" {
			b.WriteString(fmt.Sprintf(", component: %s", e.Component))
		}
		b.WriteString(")")
	}

	if e.PlanString != "" {
		b.WriteString(fmt.Sprintf(" [plan: %s]", e.PlanString))
	}

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(" caused by: %v", e.Cause))
	}

	return b.String()
}

// Unwrap enables errors.Is/errors.As across the Cause chain.
func (e *QueryError) Unwrap() error {
	return e.Cause
}

// FormatStack renders a human-readable stack trace, used when logging
// assertion failures (spec §7: "Assertion failures are logged with the
// full error chain and the containing operator's plan string").
func (e *QueryError) FormatStack() string {
	if len(e.Stack) == 0 {
		return ""
	}

	var b strings.Builder
	frames := runtime.CallersFrames(e.Stack)

	b.WriteString("Stack trace:\n")
	for {
		f, more := frames.Next()
		b.WriteString(fmt.Sprintf("  %s\n    %s:%d\n", f.Function, f.File, f.Line))
		if !more {
			break
		}
	}

	return b.String()
}
