package elements

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a pipeline failure. Every failure the tracker reports to
// a caller carries exactly one kind.
type Kind int

const (
	KindUnrecognizedFormat Kind = iota + 1
	KindInvalidTLE
	KindInvalidOMM
	KindPropagation
	KindTransform
)

func (k Kind) String() string {
	switch k {
	case KindUnrecognizedFormat:
		return "UnrecognizedFormat"
	case KindInvalidTLE:
		return "InvalidTle"
	case KindInvalidOMM:
		return "InvalidOmm"
	case KindPropagation:
		return "PropagationError"
	case KindTransform:
		return "TransformFailure"
	default:
		return "Unknown"
	}
}

// Error is the value every ingest, propagation, and transform failure is
// reported as. Code is only meaningful for KindPropagation.
type Error struct {
	Kind    Kind
	Code    int
	Message string
	Reasons []string
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.Kind == KindPropagation && e.Code != 0 {
		fmt.Fprintf(&b, " (code %d)", e.Code)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if len(e.Reasons) > 0 {
		b.WriteString(": ")
		b.WriteString(strings.Join(e.Reasons, "; "))
	}
	return b.String()
}

// Is matches any *Error of the same kind, so callers can test against the
// sentinels below with errors.Is. A sentinel with a non-zero Code only
// matches that code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Code == 0 || t.Code == e.Code)
}

var (
	ErrUnrecognizedFormat = &Error{Kind: KindUnrecognizedFormat}
	ErrInvalidTLE         = &Error{Kind: KindInvalidTLE}
	ErrInvalidOMM         = &Error{Kind: KindInvalidOMM}
	ErrPropagation        = &Error{Kind: KindPropagation}
	ErrTransform          = &Error{Kind: KindTransform}
)

// KindOf returns the kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func invalid(kind Kind, msg string, reasons ...string) *Error {
	return &Error{Kind: kind, Message: msg, Reasons: reasons}
}
