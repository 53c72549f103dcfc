package encoder

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yumesaki/stbtool/decoder"
	"github.com/yumesaki/stbtool/errz"
	"github.com/yumesaki/stbtool/op"
)

func rec(code op.Code, sub op.SubCode, value int32) []byte {
	var b [op.RecordSize]byte
	op.Record{Op: code, Sub: sub, Value: value}.Encode(b[:])
	return b[:]
}

func TestEncodeMacro(t *testing.T) {
	buf, err := New().Encode([]string{"macro(0x00AB);"}, 0)
	require.NoError(t, err)
	want := bytes.Join([][]byte{
		rec(op.PushWord, 0, 0xAB),
		rec(op.Command, 0, 0),
	}, nil)
	require.Equal(t, want, buf)
}

func TestEncodeTimeSet(t *testing.T) {
	buf, err := New().Encode([]string{"time = 30;"}, 0)
	require.NoError(t, err)
	want := bytes.Join([][]byte{
		rec(op.Push, op.PushInt, 30),
		rec(op.PushWord, 0, 0),
		rec(op.Command, 0, 0),
	}, nil)
	require.Equal(t, want, buf)
}

func TestEncodeExit(t *testing.T) {
	buf, err := New().Encode([]string{"exit(1);"}, 0)
	require.NoError(t, err)
	want := bytes.Join([][]byte{
		rec(op.Push, op.PushInt, 1),
		rec(op.Exit, 0, 0),
		rec(op.End, 0, 0),
	}, nil)
	require.Equal(t, want, buf)
}

func TestEncodeSubCallWithString(t *testing.T) {
	buf, err := New().Encode([]string{`sub001(1, 2.5000, "hi");`}, 0)
	require.NoError(t, err)

	// 7 records, then the pool with the NUL-terminated string.
	recordsSize := int32(7 * op.RecordSize)
	value := recordsSize - op.StringOffsetBias
	want := bytes.Join([][]byte{
		rec(op.Push, op.PushInt, op.TypeDescriptorTag),
		rec(op.Push, op.PushInt, 1),
		rec(op.PushTrue, 0, 0),
		rec(op.Push, op.PushInt, 1),
		rec(op.Push, op.PushFloat, int32(math.Float32bits(2.5))),
		rec(op.Push, op.PushString, value),
		rec(op.CallSub, 4, 0),
		[]byte("hi\x00"),
	}, nil)
	require.Equal(t, want, buf)

	// The string record points at the pool entry.
	require.Equal(t, []byte("hi\x00"), buf[value+op.StringOffsetBias:])
}

func TestEncodeNullPrefixedValues(t *testing.T) {
	buf, err := New().Encode([]string{"sub010(3f, -1.2500f);"}, 0)
	require.NoError(t, err)
	want := bytes.Join([][]byte{
		rec(op.Push, op.PushInt, op.TypeDescriptorTag),
		rec(op.Push, op.PushInt, 10),
		rec(op.PushTrue, 0, 0),
		rec(op.Push, op.PushInt, 3),
		rec(op.PushNil, 0, 0),
		rec(op.Push, op.PushFloat, int32(math.Float32bits(-1.25))),
		rec(op.PushNil, 0, 0),
		rec(op.CallSub, 5, 0),
	}, nil)
	require.Equal(t, want, buf)
}

func TestEncodeHexArgument(t *testing.T) {
	buf, err := New().Encode([]string{"sub001(0x1F);"}, 0)
	require.NoError(t, err)
	require.Equal(t, rec(op.Push, op.PushInt, 31), buf[3*op.RecordSize:4*op.RecordSize])
}

func TestEncodeEmptySubCall(t *testing.T) {
	buf, err := New().Encode([]string{"sub002();"}, 0)
	require.NoError(t, err)
	require.Equal(t, rec(op.CallSub, 1, 0), buf[3*op.RecordSize:])
}

func TestStringOffsetsUseOrigin(t *testing.T) {
	origin := int32(0x400)
	buf, err := New().Encode([]string{`sub001("a", "bb");`}, origin)
	require.NoError(t, err)

	recordsSize := int32(6 * op.RecordSize)
	first := op.DecodeRecord(buf[3*op.RecordSize:])
	second := op.DecodeRecord(buf[4*op.RecordSize:])
	require.Equal(t, origin+recordsSize-op.StringOffsetBias, first.Value)
	require.Equal(t, origin+recordsSize+2-op.StringOffsetBias, second.Value)
}

func TestMeasureMatchesEncode(t *testing.T) {
	lines := []string{
		"time = 30;",
		"macro(0x00AB);",
		`sub001(1, 2.5000, "hi", 3f);`,
		"sub002();",
		"exit(0);",
	}
	e := New()
	size, err := e.Measure(lines)
	require.NoError(t, err)
	buf, err := e.Encode(lines, 0)
	require.NoError(t, err)
	require.Equal(t, size, len(buf))
}

func TestRoundTrip(t *testing.T) {
	lines := []string{
		"time = 0;",
		`sub076(0, "おはよう", 1.0000, 2f);`,
		`sub001(1, 2.5000, "hi, there");`,
		"macro(0x00AB);",
		"time = 250;",
		"sub002();",
		"exit(0);",
	}
	buf, err := New().Encode(lines, 0)
	require.NoError(t, err)
	got, err := decoder.Decode(bytes.NewReader(buf))
	require.NoError(t, err)
	require.Equal(t, lines, got)
}

func TestClassifyLiteral(t *testing.T) {
	tests := []struct {
		arg  string
		kind literalKind
		text string
	}{
		{`"hi"`, litString, "hi"},
		{`""`, litString, ""},
		{"2.5000f", litNullFloat, "2.5000"},
		{"-2.5000f", litNullFloat, "-2.5000"},
		{"3f", litNullInt, "3"},
		{"2.5000", litFloat, "2.5000"},
		{"-0.1250", litFloat, "-0.1250"},
		{"0x1F", litHexInt, "0x1F"},
		{"42", litInt, "42"},
		{"-42", litInt, "-42"},
	}
	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			arg, err := classifyLiteral(tt.arg, 1)
			require.NoError(t, err)
			require.Equal(t, tt.kind, arg.kind)
			require.Equal(t, tt.text, arg.text)
		})
	}
}

func TestClassifyLiteralRejects(t *testing.T) {
	for _, arg := range []string{"xyz", "1.5.0", "0x", "f", "--1", ""} {
		t.Run(arg, func(t *testing.T) {
			_, err := classifyLiteral(arg, 3)
			require.True(t, errz.IsKind(err, errz.ErrUnsupportedLiteral))
		})
	}
}

func TestUnsupportedLine(t *testing.T) {
	for _, line := range []string{
		"bogus;",
		"time=30;",
		"macro(0xAB);",
		"sub1(1);",
		"exit();",
		"",
	} {
		t.Run(line, func(t *testing.T) {
			_, err := New().Encode([]string{line}, 0)
			require.True(t, errz.IsKind(err, errz.ErrUnsupportedLine), "line %q", line)
		})
	}
}

func TestUnsupportedLiteralInSub(t *testing.T) {
	_, err := New().Encode([]string{"sub001(nope);"}, 0)
	require.True(t, errz.IsKind(err, errz.ErrUnsupportedLiteral))
}

func TestSplitArgsQuoteAware(t *testing.T) {
	require.Equal(t, []string{`"a, b"`, "1"}, splitArgs(`"a, b", 1`))
	require.Equal(t, []string{"1", "2", "3"}, splitArgs("1, 2, 3"))
	require.Equal(t, []string{"1"}, splitArgs("1"))
}
