package model

import "sort"

// DataState labels a property of the working data, e.g. raw or scale.
type DataState string

const (
	StateRaw          DataState = "raw"
	StateLogNormalize DataState = "lognormalize"
	StateScale        DataState = "scale"
)

// StateSet is the set of data states available at a point of execution.
type StateSet map[DataState]struct{}

// NewStateSet creates a set holding the given states.
func NewStateSet[S ~string](states ...S) StateSet {
	set := make(StateSet, len(states))
	for _, state := range states {
		set[DataState(state)] = struct{}{}
	}

	return set
}

func (s StateSet) Has(state DataState) bool {
	_, ok := s[state]
	return ok
}

func (s StateSet) Len() int {
	return len(s)
}

// Clone returns a copy of the set.
func (s StateSet) Clone() StateSet {
	out := make(StateSet, len(s))
	for state := range s {
		out[state] = struct{}{}
	}

	return out
}

// Union returns a new set holding the states of both sets.
func (s StateSet) Union(other StateSet) StateSet {
	out := s.Clone()
	for state := range other {
		out[state] = struct{}{}
	}

	return out
}

// Minus returns the states of s that are not in other.
func (s StateSet) Minus(other StateSet) StateSet {
	out := make(StateSet)
	for state := range s {
		if !other.Has(state) {
			out[state] = struct{}{}
		}
	}

	return out
}

// Sorted returns the states in lexical order.
func (s StateSet) Sorted() []DataState {
	out := make([]DataState, 0, len(s))
	for state := range s {
		out = append(out, state)
	}

	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	return out
}

// Strings returns the states as sorted strings.
func (s StateSet) Strings() []string {
	sorted := s.Sorted()
	out := make([]string, len(sorted))

	for i, state := range sorted {
		out[i] = string(state)
	}

	return out
}

// Collapse removes the states superseded by a higher-order state:
// scale supersedes raw and lognormalize, lognormalize supersedes raw.
// The result only depends on the content of s, and s is left untouched.
func (s StateSet) Collapse() StateSet {
	out := s.Clone()

	switch {
	case s.Has(StateScale):
		delete(out, StateRaw)
		delete(out, StateLogNormalize)
	case s.Has(StateLogNormalize):
		delete(out, StateRaw)
	}

	return out
}
