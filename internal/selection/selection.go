// Package selection tracks the transient multi-select mode over notes.
// Nothing here is persisted.
package selection

import (
	"sort"
	"sync"
)

// Set is an immutable set of note ids. Every mutation of State swaps in a
// new Set, so a Set obtained earlier never changes under the caller.
type Set struct {
	ids map[string]struct{}
}

func newSet(ids ...string) Set {
	m := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		m[id] = struct{}{}
	}
	return Set{ids: m}
}

// Len returns the number of ids.
func (s Set) Len() int { return len(s.ids) }

// Has reports whether id is in the set.
func (s Set) Has(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// IDs returns the ids, sorted.
func (s Set) IDs() []string {
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// State is the selection mode flag plus the selected ids.
type State struct {
	mu     sync.RWMutex
	active bool
	set    Set
}

func New() *State {
	return &State{set: newSet()}
}

// Enter activates selection mode. With a seed id the selection starts
// with that note, otherwise it starts empty.
func (s *State) Enter(seed ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.active = true
	s.set = newSet(seed...)
}

// Toggle adds id to the selection, or removes it when already selected.
func (s *State) Toggle(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, s.set.Len()+1)
	found := false
	for cur := range s.set.ids {
		if cur == id {
			found = true
			continue
		}
		ids = append(ids, cur)
	}
	if !found {
		ids = append(ids, id)
	}
	s.set = newSet(ids...)
}

// SelectAll selects exactly visible, or clears the selection when its size
// already matches the visible list.
func (s *State) SelectAll(visible []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.set.Len() == len(visible) {
		s.set = newSet()
		return
	}
	s.set = newSet(visible...)
}

// Exit leaves selection mode and empties the selection.
func (s *State) Exit() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.active = false
	s.set = newSet()
}

// Clear is Exit under the name the UI calls it by.
func (s *State) Clear() {
	s.Exit()
}

// Prune drops selected ids for which keep returns false, for example notes
// that were deleted in the meantime.
func (s *State) Prune(keep func(id string) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, s.set.Len())
	for id := range s.set.ids {
		if keep(id) {
			ids = append(ids, id)
		}
	}
	if len(ids) != s.set.Len() {
		s.set = newSet(ids...)
	}
}

// Active reports whether selection mode is on.
func (s *State) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// Selected returns the current selection.
func (s *State) Selected() Set {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.set
}

// IDs returns the selected ids, sorted.
func (s *State) IDs() []string {
	return s.Selected().IDs()
}

// Has reports whether id is selected.
func (s *State) Has(id string) bool {
	return s.Selected().Has(id)
}
