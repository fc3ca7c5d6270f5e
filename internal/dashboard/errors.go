package dashboard

import (
	"errors"
	"fmt"
)

// Kind classifies pipeline failures.
type Kind int

const (
	KindUnknown Kind = iota
	// KindInvalidInput covers empty or unparseable CSV and corrupt stored records.
	KindInvalidInput
	// KindNoUsableColumns means no chart could be built at all.
	KindNoUsableColumns
	// KindNotFound means no persisted state exists for an identifier.
	KindNotFound
	// KindPartialAssembly means some requested slots were skipped. Not fatal.
	KindPartialAssembly
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "InvalidInput"
	case KindNoUsableColumns:
		return "NoUsableColumns"
	case KindNotFound:
		return "NotFound"
	case KindPartialAssembly:
		return "AssemblyPartialFailure"
	default:
		return "Unknown"
	}
}

// Sentinels for errors.Is matching by kind.
var (
	ErrInvalidInput    = &Error{Kind: KindInvalidInput}
	ErrNoUsableColumns = &Error{Kind: KindNoUsableColumns}
	ErrNotFound        = &Error{Kind: KindNotFound}
	ErrPartialAssembly = &Error{Kind: KindPartialAssembly}
)

// Error is a pipeline failure with a kind, the operation that failed and an
// optional cause.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := e.Msg
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func newError(kind Kind, op, msg string, err error) *Error {
	return &Error{Kind: kind, Op: op, Msg: msg, Err: err}
}

// KindOf returns the Kind carried by err, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
