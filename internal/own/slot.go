// Package own tracks exclusive ownership of driver resources.
//
// A resource is either present in its Slot or checked out to whoever called Take. Using a
// resource in the wrong state is a programming error and panics.
package own

import "errors"

// Errors
var (
	ErrCheckedOut = errors.New("own: resource is checked out")
	ErrOccupied   = errors.New("own: resource is already present")
)

// Slot holds a single resource of type T.
type Slot[T any] struct {
	name    string
	value   T
	present bool
}

// New returns a slot named name holding v.
func New[T any](name string, v T) Slot[T] {
	return Slot[T]{name: name, value: v, present: true}
}

// Name of the resource, used in panics and logs.
func (s *Slot[T]) Name() string {
	return s.name
}

// Present reports whether the resource is checked in.
func (s *Slot[T]) Present() bool {
	return s.present
}

// Take checks the resource out. The slot is empty until Put is called.
func (s *Slot[T]) Take() T {
	if !s.present {
		panic(&Error{Name: s.name, Err: ErrCheckedOut})
	}
	v := s.value
	var zero T
	s.value, s.present = zero, false
	return v
}

// Put checks the resource back in.
func (s *Slot[T]) Put(v T) {
	if s.present {
		panic(&Error{Name: s.name, Err: ErrOccupied})
	}
	s.value, s.present = v, true
}

// Borrow returns the resource without checking it out. The caller must not keep the value
// beyond the next Take.
func (s *Slot[T]) Borrow() T {
	if !s.present {
		panic(&Error{Name: s.name, Err: ErrCheckedOut})
	}
	return s.value
}

// Error describes an ownership violation.
type Error struct {
	Name string
	Err  error
}

func (e *Error) Error() string {
	return e.Err.Error() + ": " + e.Name
}

func (e *Error) Unwrap() error {
	return e.Err
}
