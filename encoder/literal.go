package encoder

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/yumesaki/stbtool/errz"
)

// literalKind classifies one sub-call argument. Ordering matters when
// classifying: the most specific pattern is tried first.
type literalKind int

const (
	litString literalKind = iota
	litNullFloat
	litNullInt
	litFloat
	litHexInt
	litInt
)

var (
	nullFloatPattern = regexp.MustCompile(`^-?[0-9]+\.[0-9]+f$`)
	nullIntPattern   = regexp.MustCompile(`^[0-9]+f$`)
	floatPattern     = regexp.MustCompile(`^-?[0-9]+\.[0-9]+$`)
	hexIntPattern    = regexp.MustCompile(`^0x[0-9a-fA-F]+$`)
	intPattern       = regexp.MustCompile(`^-?[0-9]+$`)
)

// argument is one classified sub-call argument.
type argument struct {
	kind    literalKind
	text    string // literal text with quotes and any f suffix stripped
	encoded []byte // pool bytes for string arguments, without the NUL
}

// recordCount returns the number of method records the argument emits.
// Null-prefixed kinds emit a value record plus the null marker.
func (a argument) recordCount() int {
	switch a.kind {
	case litNullFloat, litNullInt:
		return 2
	default:
		return 1
	}
}

// classifyLiteral matches arg against the literal forms, most specific
// pattern first.
func classifyLiteral(arg string, line int) (argument, error) {
	switch {
	case len(arg) >= 2 && strings.HasPrefix(arg, `"`) && strings.HasSuffix(arg, `"`):
		return argument{kind: litString, text: arg[1 : len(arg)-1]}, nil
	case nullFloatPattern.MatchString(arg):
		return argument{kind: litNullFloat, text: strings.TrimSuffix(arg, "f")}, nil
	case nullIntPattern.MatchString(arg):
		return argument{kind: litNullInt, text: strings.TrimSuffix(arg, "f")}, nil
	case floatPattern.MatchString(arg):
		return argument{kind: litFloat, text: arg}, nil
	case hexIntPattern.MatchString(arg):
		return argument{kind: litHexInt, text: arg}, nil
	case intPattern.MatchString(arg):
		return argument{kind: litInt, text: arg}, nil
	default:
		return argument{}, errz.NewLine(errz.ErrUnsupportedLiteral, line, "argument %q", arg)
	}
}

// intValue parses the argument's integer value. Only valid for the int
// kinds.
func (a argument) intValue() (int32, error) {
	if a.kind == litHexInt {
		v, err := strconv.ParseInt(a.text[2:], 16, 32)
		return int32(v), err
	}
	v, err := strconv.ParseInt(a.text, 10, 32)
	return int32(v), err
}

// floatBits parses the argument as a float32 and returns its bit pattern,
// as stored in a method record's value field.
func (a argument) floatBits() (int32, error) {
	v, err := strconv.ParseFloat(a.text, 32)
	if err != nil {
		return 0, err
	}
	return int32(math.Float32bits(float32(v))), nil
}
