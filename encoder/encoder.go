// Package encoder parses textual instruction lines and emits storyboard
// bytecode records plus the trailing string pool.
//
// Encoding is a two-pass process. String records carry offsets defined in
// terms of the total record-region size, so that size is computed in a
// dedicated pre-pass before any record is emitted.
package encoder

import (
	"bytes"
	"regexp"
	"strconv"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"

	"github.com/yumesaki/stbtool/errz"
	"github.com/yumesaki/stbtool/op"
)

// Option is used to configure an Encoder.
type Option func(*Encoder)

// WithEncoding overrides the text encoding used for the string pool.
// The default is Shift-JIS.
func WithEncoding(enc encoding.Encoding) Option {
	return func(e *Encoder) {
		e.encoding = enc
	}
}

// Encoder converts instruction lines into a bytecode buffer. The zero
// Encoder is not usable; call New.
type Encoder struct {
	encoding encoding.Encoding
}

// New creates an Encoder.
func New(opts ...Option) *Encoder {
	e := &Encoder{encoding: japanese.ShiftJIS}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type instKind int

const (
	instTime instKind = iota
	instMacro
	instExit
	instSub
)

// instruction is one parsed text line.
type instruction struct {
	line  int // 1-based source line
	kind  instKind
	value int32 // time value, exit code, macro selector, or sub type
	args  []argument
}

var (
	timePattern  = regexp.MustCompile(`^time = (-?[0-9]+);$`)
	macroPattern = regexp.MustCompile(`^macro\(0x([0-9a-fA-F]{4})\);$`)
	exitPattern  = regexp.MustCompile(`^exit\((-?[0-9]+)\);$`)
	subPattern   = regexp.MustCompile(`^sub([0-9]{3})\((.*)\);$`)
)

// Encode converts lines into a single buffer holding the bytecode records
// followed by the string pool. origin is the absolute container offset at
// which the record region will be placed; string records encode positions
// relative to it.
func (e *Encoder) Encode(lines []string, origin int32) ([]byte, error) {
	insts, err := e.parse(lines)
	if err != nil {
		return nil, err
	}
	recordsSize := measureRecords(insts)

	var records bytes.Buffer
	var pool bytes.Buffer
	records.Grow(recordsSize)
	for _, inst := range insts {
		if err := emit(&records, &pool, inst, origin+int32(recordsSize)); err != nil {
			return nil, err
		}
	}
	records.Write(pool.Bytes())
	return records.Bytes(), nil
}

// Measure returns the unaligned byte size of the records+pool region the
// lines would encode to.
func (e *Encoder) Measure(lines []string) (int, error) {
	insts, err := e.parse(lines)
	if err != nil {
		return 0, err
	}
	return measureRecords(insts) + measurePool(insts), nil
}

// parse matches each line against the four instruction grammars and
// classifies sub-call arguments. String arguments are pre-encoded so both
// passes agree on pool sizes.
func (e *Encoder) parse(lines []string) ([]instruction, error) {
	insts := make([]instruction, 0, len(lines))
	for i, line := range lines {
		inst, err := e.parseLine(line, i+1)
		if err != nil {
			return nil, err
		}
		insts = append(insts, inst)
	}
	return insts, nil
}

func (e *Encoder) parseLine(line string, num int) (instruction, error) {
	if m := timePattern.FindStringSubmatch(line); m != nil {
		v, err := strconv.ParseInt(m[1], 10, 32)
		if err != nil {
			return instruction{}, errz.NewLine(errz.ErrUnsupportedLine, num, "time value %q", m[1])
		}
		return instruction{line: num, kind: instTime, value: int32(v)}, nil
	}
	if m := macroPattern.FindStringSubmatch(line); m != nil {
		v, err := strconv.ParseUint(m[1], 16, 16)
		if err != nil {
			return instruction{}, errz.NewLine(errz.ErrUnsupportedLine, num, "macro code %q", m[1])
		}
		return instruction{line: num, kind: instMacro, value: int32(v)}, nil
	}
	if m := exitPattern.FindStringSubmatch(line); m != nil {
		v, err := strconv.ParseInt(m[1], 10, 32)
		if err != nil {
			return instruction{}, errz.NewLine(errz.ErrUnsupportedLine, num, "exit value %q", m[1])
		}
		return instruction{line: num, kind: instExit, value: int32(v)}, nil
	}
	if m := subPattern.FindStringSubmatch(line); m != nil {
		subType, err := strconv.ParseInt(m[1], 10, 32)
		if err != nil {
			return instruction{}, errz.NewLine(errz.ErrUnsupportedLine, num, "sub type %q", m[1])
		}
		args, err := e.parseArgs(m[2], num)
		if err != nil {
			return instruction{}, err
		}
		return instruction{line: num, kind: instSub, value: int32(subType), args: args}, nil
	}
	return instruction{}, errz.NewLine(errz.ErrUnsupportedLine, num, "%q", line)
}

func (e *Encoder) parseArgs(list string, num int) ([]argument, error) {
	if list == "" {
		return nil, nil
	}
	var args []argument
	for _, raw := range splitArgs(list) {
		arg, err := classifyLiteral(raw, num)
		if err != nil {
			return nil, err
		}
		if arg.kind == litString {
			encoded, err := e.encoding.NewEncoder().Bytes([]byte(arg.text))
			if err != nil {
				return nil, errz.NewLine(errz.ErrUnsupportedLiteral, num, "cannot encode string %q", arg.text)
			}
			arg.encoded = encoded
		}
		args = append(args, arg)
	}
	return args, nil
}

// splitArgs splits a sub-call argument list on commas, honoring quoted
// strings so embedded commas survive.
func splitArgs(list string) []string {
	var args []string
	var cur []byte
	inQuote := false
	for i := 0; i < len(list); i++ {
		c := list[i]
		switch {
		case c == '"':
			inQuote = !inQuote
			cur = append(cur, c)
		case c == ',' && !inQuote:
			args = append(args, trimSpaces(cur))
			cur = cur[:0]
		default:
			cur = append(cur, c)
		}
	}
	return append(args, trimSpaces(cur))
}

func trimSpaces(b []byte) string {
	start, end := 0, len(b)
	for start < end && b[start] == ' ' {
		start++
	}
	for end > start && b[end-1] == ' ' {
		end--
	}
	return string(b[start:end])
}

// emit writes the record sequence for one instruction. poolBase is the
// absolute container offset of the string pool; string records store
// poolBase + pool offset - the fixed bias.
func emit(records, pool *bytes.Buffer, inst instruction, poolBase int32) error {
	switch inst.kind {
	case instTime:
		writeRecord(records, op.Push, op.PushInt, inst.value)
		writeRecord(records, op.PushWord, 0, 0)
		writeRecord(records, op.Command, 0, 0)
	case instMacro:
		writeRecord(records, op.PushWord, 0, inst.value)
		writeRecord(records, op.Command, 0, 0)
	case instExit:
		writeRecord(records, op.Push, op.PushInt, inst.value)
		writeRecord(records, op.Exit, 0, 0)
		writeRecord(records, op.End, 0, 0)
	case instSub:
		return emitSub(records, pool, inst, poolBase)
	}
	return nil
}

// emitSub writes a sub-call: the type descriptor pushes in reverse
// construction order, one or two records per argument, and the closing
// call record whose subcode counts the argument pushes plus one.
func emitSub(records, pool *bytes.Buffer, inst instruction, poolBase int32) error {
	writeRecord(records, op.Push, op.PushInt, op.TypeDescriptorTag)
	writeRecord(records, op.Push, op.PushInt, inst.value)
	writeRecord(records, op.PushTrue, 0, 0)

	pushes := 0
	for _, arg := range inst.args {
		switch arg.kind {
		case litString:
			value := poolBase + int32(pool.Len()) - op.StringOffsetBias
			writeRecord(records, op.Push, op.PushString, value)
			pool.Write(arg.encoded)
			pool.WriteByte(0)
		case litFloat, litNullFloat:
			bits, err := arg.floatBits()
			if err != nil {
				return errz.NewLine(errz.ErrUnsupportedLiteral, inst.line, "float %q", arg.text)
			}
			writeRecord(records, op.Push, op.PushFloat, bits)
		case litInt, litHexInt, litNullInt:
			v, err := arg.intValue()
			if err != nil {
				return errz.NewLine(errz.ErrUnsupportedLiteral, inst.line, "integer %q", arg.text)
			}
			writeRecord(records, op.Push, op.PushInt, v)
		}
		if arg.kind == litNullFloat || arg.kind == litNullInt {
			writeRecord(records, op.PushNil, 0, 0)
		}
		pushes += arg.recordCount()
	}

	writeRecord(records, op.CallSub, op.SubCode(pushes+1), 0)
	return nil
}

func writeRecord(buf *bytes.Buffer, code op.Code, sub op.SubCode, value int32) {
	var b [op.RecordSize]byte
	op.Record{Op: code, Sub: sub, Value: value}.Encode(b[:])
	buf.Write(b[:])
}
