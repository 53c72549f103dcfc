package object

import "github.com/yumesaki/stbtool/errz"

// Stack is the value stack for one decode or encode pass. It is owned by
// a single pass and never shared; concurrent conversions use independent
// instances.
type Stack struct {
	items []Object
}

// NewStack returns an empty stack.
func NewStack() *Stack {
	return &Stack{}
}

// Push places obj on top of the stack.
func (s *Stack) Push(obj Object) {
	s.items = append(s.items, obj)
}

// Pop removes and returns the top of the stack. Popping from an empty
// stack is structural corruption, not a recoverable condition.
func (s *Stack) Pop() (Object, error) {
	if len(s.items) == 0 {
		return nil, errz.New(errz.ErrCorruptStream, "pop from empty stack")
	}
	top := s.items[len(s.items)-1]
	s.items = s.items[:len(s.items)-1]
	return top, nil
}

// PopInt pops the top of the stack, requiring it to be an Int.
func (s *Stack) PopInt() (int32, error) {
	obj, err := s.Pop()
	if err != nil {
		return 0, err
	}
	i, ok := obj.(*Int)
	if !ok {
		return 0, errz.New(errz.ErrCorruptStream, "expected int on stack, got %s", obj.Type())
	}
	return i.Value(), nil
}

// PopWord pops the top of the stack, requiring it to be a Word.
func (s *Stack) PopWord() (uint16, error) {
	obj, err := s.Pop()
	if err != nil {
		return 0, err
	}
	w, ok := obj.(*Word)
	if !ok {
		return 0, errz.New(errz.ErrCorruptStream, "expected word on stack, got %s", obj.Type())
	}
	return w.Value(), nil
}

// Size returns the number of values on the stack.
func (s *Stack) Size() int {
	return len(s.items)
}
