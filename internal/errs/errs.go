// Package errs provides the kind-tagged error taxonomy shared across sys2's
// components (spec.md §7). Callers distinguish error families with Kind()
// and errors.As rather than string matching or type switches per package.
package errs

import "fmt"

// Kind categorizes an error into one of the taxonomy families from spec.md
// §7. Kind does not replace Go's error chains — it augments them so a
// caller several layers up the stack (e.g. the Session facade) can decide
// whether to roll back a learn() call, return a partial result, or close
// the session without inspecting error strings.
type Kind string

const (
	KindSyntax      Kind = "syntax"
	KindBinding     Kind = "binding"
	KindStructural  Kind = "structural"
	KindSemantic    Kind = "semantic"
	KindResource    Kind = "resource"
	KindIntegrity   Kind = "integrity"
)

// Error is the concrete kind-tagged error type. It wraps an underlying
// cause so fmt.Errorf("...: %w", err) chains and errors.Is/As both work
// normally alongside Kind-based dispatch.
type Error struct {
	Kind    Kind
	Code    string // short machine-readable name, e.g. "UnboundReference"
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Code, e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Code, e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds an Error with no wrapped cause.
func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Wrap builds an Error that wraps an existing cause.
func Wrap(kind Kind, code, message string, cause error) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Cause: cause}
}

// Named constructors for the specific error codes spec.md §7 enumerates.
// These are convenience wrappers; callers may also use New/Wrap directly.

func UnboundReference(name string) *Error {
	return New(KindBinding, "UnboundReference", "reference to undefined name: "+name)
}

func NameAlreadyDefined(name string) *Error {
	return New(KindBinding, "NameAlreadyDefined", "name already defined in current scope: "+name)
}

func HoleInNonQueryContext(name string) *Error {
	return New(KindBinding, "HoleInNonQueryContext", "hole ?"+name+" used outside a query context")
}

func ArityMismatch(operator string, want, got int) *Error {
	return New(KindStructural, "ArityMismatch", fmt.Sprintf("operator %q expects %d argument(s), got %d", operator, want, got))
}

func UnknownOperator(operator string) *Error {
	return New(KindStructural, "UnknownOperator", "unknown operator in strict mode: "+operator)
}

func RecursionLimit(limit int) *Error {
	return New(KindStructural, "RecursionLimit", fmt.Sprintf("recursion horizon of %d exceeded", limit))
}

func Contradiction(operator string, args []string) *Error {
	return New(KindSemantic, "Contradiction", fmt.Sprintf("contradiction: %s(%v) already asserted with opposite polarity", operator, args))
}

func StrategyMismatch(a, b string) *Error {
	return New(KindSemantic, "StrategyMismatch", fmt.Sprintf("mismatched hdc strategies: %s vs %s", a, b))
}

func DepthExceeded(max int) *Error {
	return New(KindResource, "DepthExceeded", fmt.Sprintf("max proof depth %d exceeded", max))
}

func Timeout() *Error {
	return New(KindResource, "Timeout", "operation exceeded its wall-clock budget")
}

func SolutionCapReached(cap int) *Error {
	return New(KindResource, "SolutionCapReached", fmt.Sprintf("solution cap of %d reached", cap))
}

func VocabularyHashCollision(name, existing string) *Error {
	return New(KindIntegrity, "VocabularyHashCollision", fmt.Sprintf("hash collision: %q collides with existing atom %q", name, existing))
}

func VectorCorruption(detail string) *Error {
	return New(KindIntegrity, "VectorCorruption", "vector corruption detected: "+detail)
}

// IsFatal reports whether an error kind mandates closing the owning
// session, per spec.md §7's propagation policy (data-integrity errors are
// unrecoverable).
func IsFatal(err error) bool {
	var e *Error
	if as, ok := err.(*Error); ok {
		e = as
	} else {
		return false
	}
	return e.Kind == KindIntegrity
}
