// Package errz defines the error taxonomy shared by the decoder, encoder,
// and container patcher. Every error here is fatal to the conversion of
// the file that produced it.
package errz

import (
	"errors"
	"fmt"
)

// ErrorKind represents the category of a structural error.
type ErrorKind int

const (
	// ErrUnsupportedOpcode indicates an opcode/subcode combination outside
	// the supported instruction table.
	ErrUnsupportedOpcode ErrorKind = iota
	// ErrMalformedTypeDescriptor indicates a sub-call trailer that fails
	// the (true, subtype, 64) shape check.
	ErrMalformedTypeDescriptor
	// ErrUnsupportedLiteral indicates an argument matching none of the
	// literal forms.
	ErrUnsupportedLiteral
	// ErrUnsupportedLine indicates a text line matching none of the
	// instruction grammars.
	ErrUnsupportedLine
	// ErrSegmentNotFound indicates a script start offset absent from the
	// container's meta table.
	ErrSegmentNotFound
	// ErrCompanionMissing indicates a text input whose sibling container
	// file does not exist.
	ErrCompanionMissing
	// ErrCorruptStream indicates structural corruption: stack underflow,
	// a truncated record, an unterminated string, or a malformed header.
	ErrCorruptStream
)

// String returns the string representation of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case ErrUnsupportedOpcode:
		return "unsupported opcode"
	case ErrMalformedTypeDescriptor:
		return "malformed type descriptor"
	case ErrUnsupportedLiteral:
		return "unsupported literal"
	case ErrUnsupportedLine:
		return "unsupported instruction"
	case ErrSegmentNotFound:
		return "segment not found"
	case ErrCompanionMissing:
		return "companion file missing"
	case ErrCorruptStream:
		return "corrupt stream"
	default:
		return "error"
	}
}

// ScriptError is a structural error tagged with its kind and, when known,
// the byte offset or source line that produced it.
type ScriptError struct {
	Kind    ErrorKind
	Message string
	Offset  int64 // byte offset in the container, -1 if not applicable
	Line    int   // 1-based text line, 0 if not applicable
	Cause   error
}

// Error implements the error interface.
func (e *ScriptError) Error() string {
	switch {
	case e.Line > 0:
		return fmt.Sprintf("%s: %s (line %d)", e.Kind, e.Message, e.Line)
	case e.Offset >= 0:
		return fmt.Sprintf("%s: %s (offset 0x%X)", e.Kind, e.Message, e.Offset)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
}

// Unwrap returns the underlying cause, if any.
func (e *ScriptError) Unwrap() error {
	return e.Cause
}

// New creates a ScriptError with no position information.
func New(kind ErrorKind, format string, args ...any) *ScriptError {
	return &ScriptError{Kind: kind, Message: fmt.Sprintf(format, args...), Offset: -1}
}

// NewAt creates a ScriptError positioned at a byte offset.
func NewAt(kind ErrorKind, offset int64, format string, args ...any) *ScriptError {
	return &ScriptError{Kind: kind, Message: fmt.Sprintf(format, args...), Offset: offset}
}

// NewLine creates a ScriptError positioned at a 1-based text line.
func NewLine(kind ErrorKind, line int, format string, args ...any) *ScriptError {
	return &ScriptError{Kind: kind, Message: fmt.Sprintf(format, args...), Offset: -1, Line: line}
}

// Wrap creates a ScriptError wrapping an underlying cause.
func Wrap(kind ErrorKind, cause error, format string, args ...any) *ScriptError {
	return &ScriptError{Kind: kind, Message: fmt.Sprintf(format, args...), Offset: -1, Cause: cause}
}

// IsKind reports whether err is (or wraps) a ScriptError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var se *ScriptError
	if errors.As(err, &se) {
		return se.Kind == kind
	}
	return false
}
