package selection

import (
	"reflect"
	"testing"

	"pgregory.net/rapid"
)

func TestEnter(t *testing.T) {
	tests := []struct {
		name string
		seed []string
		want []string
	}{
		{"empty", nil, []string{}},
		{"seeded by long press", []string{"42"}, []string{"42"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			s.Enter(tt.seed...)
			if !s.Active() {
				t.Error("Enter() should activate selection mode")
			}
			if got := s.IDs(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("IDs() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSelectAllToggles(t *testing.T) {
	visible := []string{"1", "2", "3"}
	s := New()
	s.Enter("2")

	s.SelectAll(visible)
	if got := s.IDs(); !reflect.DeepEqual(got, visible) {
		t.Fatalf("first SelectAll() = %v, want %v", got, visible)
	}

	s.SelectAll(visible)
	if got := s.IDs(); len(got) != 0 {
		t.Fatalf("second SelectAll() = %v, want empty", got)
	}

	s.SelectAll(visible)
	if got := s.IDs(); !reflect.DeepEqual(got, visible) {
		t.Errorf("third SelectAll() = %v, want %v", got, visible)
	}
}

func TestExitAndClear(t *testing.T) {
	for _, leave := range []func(*State){(*State).Exit, (*State).Clear} {
		s := New()
		s.Enter("1")
		s.Toggle("2")
		leave(s)
		if s.Active() || s.Selected().Len() != 0 {
			t.Errorf("after leaving: active=%v ids=%v", s.Active(), s.IDs())
		}
	}
}

func TestSnapshotsAreImmutable(t *testing.T) {
	s := New()
	s.Enter("1")
	before := s.Selected()

	s.Toggle("2")
	s.Toggle("1")

	if before.Len() != 1 || !before.Has("1") {
		t.Errorf("earlier snapshot changed: %v", before.IDs())
	}
}

func TestPrune(t *testing.T) {
	s := New()
	s.Enter("1")
	s.Toggle("2")
	s.Toggle("3")

	s.Prune(func(id string) bool { return id != "2" })

	if got := s.IDs(); !reflect.DeepEqual(got, []string{"1", "3"}) {
		t.Errorf("IDs() = %v, want [1 3]", got)
	}
}

func TestToggleSymmetry(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		pool := []string{"a", "b", "c", "d", "e"}
		s := New()
		s.Enter()
		for _, id := range rapid.SliceOf(rapid.SampledFrom(pool)).Draw(t, "initial") {
			s.Toggle(id)
		}

		before := s.IDs()
		id := rapid.SampledFrom(pool).Draw(t, "id")
		s.Toggle(id)
		s.Toggle(id)

		if after := s.IDs(); !reflect.DeepEqual(before, after) {
			t.Fatalf("toggle(%s) twice: %v -> %v", id, before, after)
		}
	})
}
