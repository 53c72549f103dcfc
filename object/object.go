// Package object provides the tagged value types manipulated by the
// storyboard stack machine.
//
// Values are type asserted to a specific object type, for example:
//
//	switch obj := obj.(type) {
//	case *object.String:
//		// do something with obj.Value()
//	case *object.Int:
//		// do something with obj.Value()
//	}
package object

import (
	"fmt"
	"strconv"
)

// Type of an object as a string.
type Type string

// Type constants
const (
	BOOL   Type = "bool"
	FLOAT  Type = "float"
	INT    Type = "int"
	NIL    Type = "nil"
	STRING Type = "string"
	WORD   Type = "word"
)

// Nil is the shared null marker value.
var Nil = &NilType{}

// True is the shared boolean true value.
var True = &Bool{value: true}

// Object is a value on the stack machine's stack.
type Object interface {
	// Type of the object.
	Type() Type

	// Inspect returns the textual form of the object as it appears in a
	// decoded instruction line.
	Inspect() string
}

// Int wraps a signed 32-bit integer.
type Int struct {
	value int32
}

func NewInt(value int32) *Int {
	return &Int{value: value}
}

func (i *Int) Type() Type {
	return INT
}

func (i *Int) Value() int32 {
	return i.value
}

func (i *Int) Inspect() string {
	return strconv.FormatInt(int64(i.value), 10)
}

func (i *Int) String() string {
	return i.Inspect()
}

// Float wraps a 32-bit float. Instruction lines carry floats in fixed
// 4-decimal notation with an invariant decimal point.
type Float struct {
	value float32
}

func NewFloat(value float32) *Float {
	return &Float{value: value}
}

func (f *Float) Type() Type {
	return FLOAT
}

func (f *Float) Value() float32 {
	return f.value
}

func (f *Float) Inspect() string {
	return strconv.FormatFloat(float64(f.value), 'f', 4, 32)
}

func (f *Float) String() string {
	return f.Inspect()
}

// String wraps a decoded string literal.
type String struct {
	value string
}

func NewString(value string) *String {
	return &String{value: value}
}

func (s *String) Type() Type {
	return STRING
}

func (s *String) Value() string {
	return s.value
}

func (s *String) Inspect() string {
	return `"` + s.value + `"`
}

func (s *String) String() string {
	return s.Inspect()
}

// Bool wraps a boolean. Only true is ever pushed by the instruction set,
// as part of a sub-call's type descriptor.
type Bool struct {
	value bool
}

func (b *Bool) Type() Type {
	return BOOL
}

func (b *Bool) Value() bool {
	return b.value
}

func (b *Bool) Inspect() string {
	return strconv.FormatBool(b.value)
}

func (b *Bool) String() string {
	return b.Inspect()
}

// Word wraps an unsigned 16-bit integer, used as the command selector.
type Word struct {
	value uint16
}

func NewWord(value uint16) *Word {
	return &Word{value: value}
}

func (w *Word) Type() Type {
	return WORD
}

func (w *Word) Value() uint16 {
	return w.value
}

func (w *Word) Inspect() string {
	return fmt.Sprintf("0x%04X", w.value)
}

func (w *Word) String() string {
	return w.Inspect()
}

// NilType is the null marker pushed ahead of f-suffixed values.
type NilType struct{}

func (n *NilType) Type() Type {
	return NIL
}

func (n *NilType) Inspect() string {
	return "nil"
}

func (n *NilType) String() string {
	return "nil"
}
