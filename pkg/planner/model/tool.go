package model

// ToolID is the opaque identifier of a tool in the catalog.
type ToolID string

// ProjectID identifies a project owning tools.
type ProjectID string

// PublicProject owns the tools visible to every project.
const PublicProject ProjectID = "Public"

// Tool is a unit of analysis as seen by the planner.
// Input and output data states are held in separate Requirements maps.
type Tool struct {
	ID       ToolID
	Name     string
	Projects []ProjectID
	Task     string
	Citation float64
}

// ToolIDs returns the ids of the given tools, in order.
func ToolIDs(tools []Tool) []ToolID {
	ids := make([]ToolID, 0, len(tools))
	for _, tool := range tools {
		ids = append(ids, tool.ID)
	}

	return ids
}

// Requirements maps a tool to a set of data states.
// A missing tool is equivalent to an empty set.
type Requirements map[ToolID]StateSet

// Of returns the states of the tool, never nil.
func (r Requirements) Of(id ToolID) StateSet {
	if states, ok := r[id]; ok && states != nil {
		return states
	}

	return StateSet{}
}
