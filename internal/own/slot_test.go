package own

import (
	"errors"
	"testing"
)

func TestSlot(t *testing.T) {
	s := New("chunk", []byte{1, 2})
	if !s.Present() {
		t.Fatal("expected new slot to be present")
	}

	v := s.Take()
	if len(v) != 2 {
		t.Errorf("expected 2 bytes, got %d", len(v))
	}
	if s.Present() {
		t.Error("expected slot to be checked out after Take")
	}

	s.Put(v)
	if !s.Present() {
		t.Error("expected slot to be present after Put")
	}
	if b := s.Borrow(); len(b) != 2 {
		t.Errorf("expected borrowed value of 2 bytes, got %d", len(b))
	}
	if !s.Present() {
		t.Error("expected Borrow to leave the slot present")
	}
}

func TestSlotPanics(t *testing.T) {
	tests := []struct {
		name string
		f    func(s *Slot[int])
		want error
	}{
		{"double take", func(s *Slot[int]) { s.Take(); s.Take() }, ErrCheckedOut},
		{"borrow checked out", func(s *Slot[int]) { s.Take(); s.Borrow() }, ErrCheckedOut},
		{"double put", func(s *Slot[int]) { s.Put(2) }, ErrOccupied},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			defer func() {
				r := recover()
				if r == nil {
					t.Fatal("expected panic")
				}
				err, ok := r.(error)
				if !ok || !errors.Is(err, test.want) {
					t.Errorf("expected %v, got %v", test.want, r)
				}
			}()
			s := New("value", 1)
			test.f(&s)
		})
	}
}
