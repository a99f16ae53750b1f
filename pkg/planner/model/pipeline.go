package model

import "strings"

// Pipeline is an ordered sequence of tools.
type Pipeline []ToolID

// Contains reports whether the tool is part of the pipeline.
func (p Pipeline) Contains(id ToolID) bool {
	for _, tool := range p {
		if tool == id {
			return true
		}
	}

	return false
}

// Insert returns a copy of the pipeline with id inserted at pos.
// pos ranges from 0 (front) to len(p) (back).
func (p Pipeline) Insert(pos int, id ToolID) Pipeline {
	out := make(Pipeline, 0, len(p)+1)
	out = append(out, p[:pos]...)
	out = append(out, id)
	out = append(out, p[pos:]...)

	return out
}

// Reverse returns a reversed copy of the pipeline.
func (p Pipeline) Reverse() Pipeline {
	out := make(Pipeline, len(p))
	for i, id := range p {
		out[len(p)-1-i] = id
	}

	return out
}

// Key returns a string identifying the tool sequence.
func (p Pipeline) Key() string {
	parts := make([]string, len(p))
	for i, id := range p {
		parts[i] = string(id)
	}

	return strings.Join(parts, "\x00")
}

// End returns the terminal tool, or an empty id for an empty pipeline.
func (p Pipeline) End() ToolID {
	if len(p) == 0 {
		return ""
	}

	return p[len(p)-1]
}

// Candidate is a pipeline found by the path search, along with the states
// it is missing when threaded from the preloading.
type Candidate struct {
	Pipeline Pipeline
	Unmet    StateSet
	End      ToolID
}

// Valid reports whether the candidate has no unmet requirement.
func (c Candidate) Valid() bool {
	return c.Unmet.Len() == 0
}

// PlanStep is one step of an authored plan.
type PlanStep struct {
	ID    ToolID
	Name  string
	Title string
}

// Label returns the best human readable name of the step.
func (s PlanStep) Label() string {
	switch {
	case s.Name != "":
		return s.Name
	case s.Title != "":
		return s.Title
	default:
		return string(s.ID)
	}
}
