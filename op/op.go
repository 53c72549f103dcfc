// Package op defines the storyboard bytecode instruction set and the
// fixed-size method record that carries it.
package op

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Code is an opcode stored in a method record's first field.
type Code int32

const (
	// End is the stream sentinel. A record with this opcode terminates
	// decoding of a segment.
	End Code = 0x0

	// Push pushes a value onto the stack. The subcode selects the value
	// interpretation (see SubCode).
	Push Code = 0x3

	// Command pops a uint16 selector. Selector zero pops an int and
	// produces a time-set instruction; any other selector produces a
	// macro invocation.
	Command Code = 0x4

	// PushTrue pushes the boolean true.
	PushTrue Code = 0x6

	// PushNil pushes the null marker.
	PushNil Code = 0xB

	// Exit pops an int and produces an exit instruction. It also marks
	// the scan boundary when the injector walks a trailing segment.
	Exit Code = 0xF

	// PushWord pushes the record value as an unsigned 16-bit integer.
	PushWord Code = 0x13

	// CallSub pops arguments and a type descriptor and produces a
	// sub-call instruction. The subcode is one greater than the number
	// of argument values on the stack (null markers included).
	CallSub Code = 0x15
)

// SubCode selects the value interpretation of a Push record.
type SubCode int32

const (
	PushInt    SubCode = 0x1 // value is a signed 32-bit integer
	PushFloat  SubCode = 0x2 // value bits reinterpreted as float32
	PushString SubCode = 0x3 // value locates a string in the pool
)

// String returns a mnemonic name for the subcode.
func (s SubCode) String() string {
	switch s {
	case PushInt:
		return "INT"
	case PushFloat:
		return "FLOAT"
	case PushString:
		return "STRING"
	default:
		return fmt.Sprintf("SUB(0x%X)", int32(s))
	}
}

// String returns a mnemonic name for the opcode.
func (c Code) String() string {
	switch c {
	case End:
		return "END"
	case Push:
		return "PUSH"
	case Command:
		return "COMMAND"
	case PushTrue:
		return "PUSH_TRUE"
	case PushNil:
		return "PUSH_NIL"
	case Exit:
		return "EXIT"
	case PushWord:
		return "PUSH_WORD"
	case CallSub:
		return "CALL_SUB"
	default:
		return fmt.Sprintf("UNKNOWN(0x%X)", int32(c))
	}
}

// RecordSize is the encoded size of one method record in bytes.
const RecordSize = 12

// StringOffsetBias is added to a string record's value field to obtain
// the absolute position of the literal in the container.
const StringOffsetBias = 0x58

// TypeDescriptorTag is the fixed integer at the bottom of every sub-call
// type descriptor.
const TypeDescriptorTag = 64

// Record is the atomic bytecode unit: an (opcode, subcode, value) triple
// stored as three little-endian int32 fields.
type Record struct {
	Op    Code
	Sub   SubCode
	Value int32
}

// IsSentinel reports whether the record terminates a bytecode stream.
func (r Record) IsSentinel() bool {
	return r.Op == End
}

// ReadRecord reads one method record from r.
func ReadRecord(r io.Reader) (Record, error) {
	var buf [RecordSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return Record{}, err
	}
	return DecodeRecord(buf[:]), nil
}

// DecodeRecord decodes a method record from the first RecordSize bytes of b.
func DecodeRecord(b []byte) Record {
	return Record{
		Op:    Code(int32(binary.LittleEndian.Uint32(b[0:4]))),
		Sub:   SubCode(int32(binary.LittleEndian.Uint32(b[4:8]))),
		Value: int32(binary.LittleEndian.Uint32(b[8:12])),
	}
}

// WriteRecord writes the record to w in its 12-byte wire form.
func WriteRecord(w io.Writer, rec Record) error {
	var buf [RecordSize]byte
	rec.Encode(buf[:])
	_, err := w.Write(buf[:])
	return err
}

// Encode stores the record's wire form into the first RecordSize bytes of b.
func (r Record) Encode(b []byte) {
	binary.LittleEndian.PutUint32(b[0:4], uint32(int32(r.Op)))
	binary.LittleEndian.PutUint32(b[4:8], uint32(int32(r.Sub)))
	binary.LittleEndian.PutUint32(b[8:12], uint32(r.Value))
}

func (r Record) String() string {
	return fmt.Sprintf("%s(0x%X, 0x%X)", r.Op, int32(r.Sub), r.Value)
}
