// Package decoder translates storyboard bytecode into textual instruction
// lines, one line per decodable instruction.
package decoder

import (
	"io"
	"math"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"

	"github.com/yumesaki/stbtool/errz"
	"github.com/yumesaki/stbtool/object"
	"github.com/yumesaki/stbtool/op"
)

// DefaultStringScanLimit bounds the NUL scan when reading a string literal.
// It is a defensive bound, not a guaranteed maximum string length.
const DefaultStringScanLimit = 4096

// Option is used to configure a Decoder.
type Option func(*Decoder)

// WithEncoding overrides the text encoding used for string literals.
// The default is Shift-JIS.
func WithEncoding(enc encoding.Encoding) Option {
	return func(d *Decoder) {
		d.encoding = enc
	}
}

// WithStringScanLimit overrides the bounded NUL scan used when reading
// string literals.
func WithStringScanLimit(limit int) Option {
	return func(d *Decoder) {
		d.scanLimit = limit
	}
}

// Decoder consumes method records from a seekable byte source positioned
// at a segment's bytecode start and produces instruction lines. It is not
// restartable: once the sentinel is reached, Next returns io.EOF forever.
type Decoder struct {
	r         io.ReadSeeker
	stack     *object.Stack
	encoding  encoding.Encoding
	scanLimit int
	done      bool
}

// New creates a Decoder reading from r. The reader must be positioned at
// the first method record of a segment.
func New(r io.ReadSeeker, opts ...Option) *Decoder {
	d := &Decoder{
		r:         r,
		stack:     object.NewStack(),
		encoding:  japanese.ShiftJIS,
		scanLimit: DefaultStringScanLimit,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Decode collects the full instruction stream. It is a convenience over
// repeated Next calls.
func Decode(r io.ReadSeeker, opts ...Option) ([]string, error) {
	d := New(r, opts...)
	var lines []string
	for {
		line, err := d.Next()
		if err == io.EOF {
			return lines, nil
		}
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
}

// Next returns the next instruction line. It returns io.EOF once the
// stream sentinel has been read. Any other error is fatal to the decode.
func (d *Decoder) Next() (string, error) {
	if d.done {
		return "", io.EOF
	}
	for {
		pos, err := d.r.Seek(0, io.SeekCurrent)
		if err != nil {
			return "", err
		}
		rec, err := op.ReadRecord(d.r)
		if err != nil {
			return "", errz.Wrap(errz.ErrCorruptStream, err, "reading record at 0x%X", pos)
		}
		if rec.IsSentinel() {
			d.done = true
			if n := d.stack.Size(); n != 0 {
				return "", errz.NewAt(errz.ErrCorruptStream, pos, "%d values left on stack at sentinel", n)
			}
			return "", io.EOF
		}
		line, err := d.exec(rec, pos)
		if err != nil {
			return "", err
		}
		if line != "" {
			return line, nil
		}
	}
}

// exec applies one record to the stack. A non-empty return value is a
// completed instruction line.
func (d *Decoder) exec(rec op.Record, pos int64) (string, error) {
	switch rec.Op {
	case op.Push:
		switch rec.Sub {
		case op.PushInt:
			d.stack.Push(object.NewInt(rec.Value))
		case op.PushFloat:
			d.stack.Push(object.NewFloat(math.Float32frombits(uint32(rec.Value))))
		case op.PushString:
			s, err := d.readString(int64(rec.Value) + op.StringOffsetBias)
			if err != nil {
				return "", err
			}
			d.stack.Push(object.NewString(s))
		default:
			return "", errz.NewAt(errz.ErrUnsupportedOpcode, pos, "push subcode 0x%X", int32(rec.Sub))
		}
		return "", nil
	case op.PushTrue:
		d.stack.Push(object.True)
		return "", nil
	case op.PushNil:
		d.stack.Push(object.Nil)
		return "", nil
	case op.PushWord:
		d.stack.Push(object.NewWord(uint16(rec.Value)))
		return "", nil
	case op.Command:
		return d.execCommand(pos)
	case op.Exit:
		n, err := d.stack.PopInt()
		if err != nil {
			return "", err
		}
		return formatExit(n), nil
	case op.CallSub:
		return d.execCallSub(int(rec.Sub), pos)
	default:
		return "", errz.NewAt(errz.ErrUnsupportedOpcode, pos, "opcode 0x%X subcode 0x%X", int32(rec.Op), int32(rec.Sub))
	}
}

func (d *Decoder) execCommand(pos int64) (string, error) {
	selector, err := d.stack.PopWord()
	if err != nil {
		return "", err
	}
	if selector == 0 {
		t, err := d.stack.PopInt()
		if err != nil {
			return "", err
		}
		return formatTime(t), nil
	}
	return formatMacro(selector), nil
}

// execCallSub pops count-1 argument values, then the type descriptor
// triple (true, subtype, 64), and renders the sub-call line. A null
// marker on the stack attaches an "f" suffix to the next popped value.
func (d *Decoder) execCallSub(count int, pos int64) (string, error) {
	args := make([]string, 0, count)
	nilPending := false
	for i := 0; i < count-1; i++ {
		obj, err := d.stack.Pop()
		if err != nil {
			return "", err
		}
		if _, ok := obj.(*object.NilType); ok {
			nilPending = true
			continue
		}
		text, err := stringifyArg(obj, nilPending, pos)
		if err != nil {
			return "", err
		}
		nilPending = false
		args = append(args, text)
	}
	if nilPending {
		return "", errz.NewAt(errz.ErrCorruptStream, pos, "dangling null marker in sub-call")
	}

	// Type descriptor: (true, subtype, 64) in pop order.
	obj, err := d.stack.Pop()
	if err != nil {
		return "", err
	}
	if b, ok := obj.(*object.Bool); !ok || !b.Value() {
		return "", errz.NewAt(errz.ErrMalformedTypeDescriptor, pos, "expected true, got %s", obj.Inspect())
	}
	subType, err := d.stack.PopInt()
	if err != nil {
		return "", errz.NewAt(errz.ErrMalformedTypeDescriptor, pos, "missing subtype: %s", err)
	}
	tag, err := d.stack.PopInt()
	if err != nil {
		return "", errz.NewAt(errz.ErrMalformedTypeDescriptor, pos, "missing descriptor tag: %s", err)
	}
	if tag != op.TypeDescriptorTag {
		return "", errz.NewAt(errz.ErrMalformedTypeDescriptor, pos, "descriptor tag %d, expected %d", tag, op.TypeDescriptorTag)
	}

	// Args were collected in pop order; restore original push order.
	for i, j := 0, len(args)-1; i < j; i, j = i+1, j-1 {
		args[i], args[j] = args[j], args[i]
	}
	return formatSub(subType, args), nil
}

// stringifyArg renders one popped argument. Only ints, floats, and
// strings are legal; the null suffix applies to ints and floats only.
func stringifyArg(obj object.Object, nilSuffix bool, pos int64) (string, error) {
	switch obj.(type) {
	case *object.Int, *object.Float:
		if nilSuffix {
			return obj.Inspect() + "f", nil
		}
		return obj.Inspect(), nil
	case *object.String:
		if nilSuffix {
			return "", errz.NewAt(errz.ErrCorruptStream, pos, "null marker before string argument")
		}
		return obj.Inspect(), nil
	default:
		return "", errz.NewAt(errz.ErrCorruptStream, pos, "cannot stringify %s argument", obj.Type())
	}
}

func formatTime(t int32) string {
	return "time = " + object.NewInt(t).Inspect() + ";"
}

func formatMacro(code uint16) string {
	return "macro(" + object.NewWord(code).Inspect() + ");"
}

func formatExit(n int32) string {
	return "exit(" + object.NewInt(n).Inspect() + ");"
}

func formatSub(subType int32, args []string) string {
	var b strings.Builder
	b.WriteString("sub")
	sub := object.NewInt(subType).Inspect()
	for pad := 3 - len(sub); pad > 0; pad-- {
		b.WriteByte('0')
	}
	b.WriteString(sub)
	b.WriteByte('(')
	b.WriteString(strings.Join(args, ", "))
	b.WriteString(");")
	return b.String()
}
