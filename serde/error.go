package serde

import (
	"fmt"
)

// Kind classifies an Error.
type Kind uint8

const (
	KindCustom Kind = iota
	KindInvalidType
	KindInvalidLength
	KindUnknownField
	KindMissingField
	KindUnsupported
)

func (k Kind) String() string {
	switch k {
	case KindInvalidType:
		return "invalid type"
	case KindInvalidLength:
		return "invalid length"
	case KindUnknownField:
		return "unknown field"
	case KindMissingField:
		return "missing field"
	case KindUnsupported:
		return "unsupported"
	default:
		return "custom"
	}
}

// Error is a decode or encode failure reported by a visitor or format.
// Unexpected describes what was found and Expected what the visitor wanted.
type Error struct {
	Kind       Kind
	Unexpected string
	Expected   string
	Msg        string
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindInvalidType, KindInvalidLength, KindUnknownField:
		return fmt.Sprintf("serde: %s: %s, expected %s", e.Kind, e.Unexpected, e.Expected)
	case KindMissingField:
		return fmt.Sprintf("serde: missing field %q", e.Unexpected)
	default:
		return "serde: " + e.Msg
	}
}

// Is matches another *Error of the same Kind, so callers can write
// errors.Is(err, &serde.Error{Kind: serde.KindInvalidType}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// InvalidType reports that the input held unexpected where expected was
// wanted.
func InvalidType(unexpected, expected string) *Error {
	return &Error{Kind: KindInvalidType, Unexpected: unexpected, Expected: expected}
}

// InvalidLength reports a sequence, map or struct with the wrong number of
// elements.
func InvalidLength(n int, expected string) *Error {
	return &Error{Kind: KindInvalidLength, Unexpected: fmt.Sprintf("%d elements", n), Expected: expected}
}

// UnknownField reports a field name the visitor does not accept.
func UnknownField(name string, expected string) *Error {
	return &Error{Kind: KindUnknownField, Unexpected: fmt.Sprintf("field %q", name), Expected: expected}
}

// MissingField reports a required field absent from the input.
func MissingField(name string) *Error {
	return &Error{Kind: KindMissingField, Unexpected: name}
}

// Unsupportedf reports a value or input a format cannot handle.
func Unsupportedf(format string, args ...any) *Error {
	return &Error{Kind: KindUnsupported, Msg: fmt.Sprintf(format, args...)}
}

// Customf reports any other failure.
func Customf(format string, args ...any) *Error {
	return &Error{Kind: KindCustom, Msg: fmt.Sprintf(format, args...)}
}
