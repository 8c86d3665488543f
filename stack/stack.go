// Package stack implements the typed operand stack and per-call context
// that the Quill VM hands to native primitives.
//
// Primitive arguments and results flow exclusively through a Stack. Each
// element is a discriminated value: a 64-bit signed integer, a 64-bit
// float, a string, or a tagged resource handle. Handles replace the raw
// pointer operands of earlier runtimes: they carry a class tag and an
// index into an owning registry, so a primitive can reject a statement
// handle where a connection handle is expected instead of dereferencing
// garbage.
package stack

import (
	"errors"
	"fmt"
	"strings"
)

// Kind identifies the type of a stack element.
type Kind uint8

const (
	KindInt Kind = iota + 1
	KindFloat
	KindString
	KindHandle
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindHandle:
		return "handle"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// HandleClass tags a Handle with the kind of native resource it names.
// Classes are allocated by the modules that own the resources.
type HandleClass uint8

// Handle is an opaque reference to a native resource: a class tag plus
// an index into the owning module's registry. The zero Handle refers to
// nothing.
type Handle struct {
	Class HandleClass
	ID    uint32
}

// Elem is one stack slot. Kind selects which field is meaningful.
type Elem struct {
	Kind   Kind
	Int    int64
	Float  float64
	Str    string
	Handle Handle
}

func (e Elem) String() string {
	switch e.Kind {
	case KindInt:
		return fmt.Sprintf("%d", e.Int)
	case KindFloat:
		return fmt.Sprintf("%g", e.Float)
	case KindString:
		return fmt.Sprintf("%q", e.Str)
	case KindHandle:
		return fmt.Sprintf("<handle %d:%d>", e.Handle.Class, e.Handle.ID)
	default:
		return "<empty>"
	}
}

// ErrUnderflow is returned when popping from an empty stack.
var ErrUnderflow = errors.New("stack underflow")

// TypeError reports a pop that found an element of the wrong kind.
// The offending element has already been consumed by the time the
// error is reported; detection pops are not undone.
type TypeError struct {
	Want Kind
	Got  Kind
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("type mismatch: want %s, got %s", e.Want, e.Got)
}

// ClassError reports a handle pop that found a handle of the wrong class.
type ClassError struct {
	Want HandleClass
	Got  HandleClass
}

func (e *ClassError) Error() string {
	return fmt.Sprintf("handle class mismatch: want class %d, got class %d", e.Want, e.Got)
}

// Stack is the VM operand stack. It is not safe for concurrent use;
// the VM guarantees a single goroutine per call context.
type Stack struct {
	elems []Elem
}

// New returns an empty stack.
func New() *Stack {
	return &Stack{}
}

// Len returns the number of elements on the stack.
func (s *Stack) Len() int {
	return len(s.elems)
}

// Push appends an element to the top of the stack.
func (s *Stack) Push(e Elem) {
	s.elems = append(s.elems, e)
}

// PushInt pushes a 64-bit signed integer.
func (s *Stack) PushInt(v int64) {
	s.Push(Elem{Kind: KindInt, Int: v})
}

// PushFloat pushes a 64-bit float.
func (s *Stack) PushFloat(v float64) {
	s.Push(Elem{Kind: KindFloat, Float: v})
}

// PushString pushes a string.
func (s *Stack) PushString(v string) {
	s.Push(Elem{Kind: KindString, Str: v})
}

// PushHandle pushes a resource handle.
func (s *Stack) PushHandle(h Handle) {
	s.Push(Elem{Kind: KindHandle, Handle: h})
}

// Pop removes and returns the top element.
func (s *Stack) Pop() (Elem, error) {
	if len(s.elems) == 0 {
		return Elem{}, ErrUnderflow
	}
	e := s.elems[len(s.elems)-1]
	s.elems = s.elems[:len(s.elems)-1]
	return e, nil
}

// PopInt pops the top element, which must be an integer.
func (s *Stack) PopInt() (int64, error) {
	e, err := s.Pop()
	if err != nil {
		return 0, err
	}
	if e.Kind != KindInt {
		return 0, &TypeError{Want: KindInt, Got: e.Kind}
	}
	return e.Int, nil
}

// PopFloat pops the top element, which must be a float.
func (s *Stack) PopFloat() (float64, error) {
	e, err := s.Pop()
	if err != nil {
		return 0, err
	}
	if e.Kind != KindFloat {
		return 0, &TypeError{Want: KindFloat, Got: e.Kind}
	}
	return e.Float, nil
}

// PopString pops the top element, which must be a string.
func (s *Stack) PopString() (string, error) {
	e, err := s.Pop()
	if err != nil {
		return "", err
	}
	if e.Kind != KindString {
		return "", &TypeError{Want: KindString, Got: e.Kind}
	}
	return e.Str, nil
}

// PopHandle pops the top element, which must be a handle of the given
// class.
func (s *Stack) PopHandle(class HandleClass) (Handle, error) {
	e, err := s.Pop()
	if err != nil {
		return Handle{}, err
	}
	if e.Kind != KindHandle {
		return Handle{}, &TypeError{Want: KindHandle, Got: e.Kind}
	}
	if e.Handle.Class != class {
		return Handle{}, &ClassError{Want: class, Got: e.Handle.Class}
	}
	return e.Handle, nil
}

// String renders the stack bottom-to-top for diagnostics.
func (s *Stack) String() string {
	parts := make([]string, len(s.elems))
	for i, e := range s.elems {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}
