// Package catalog gives the planner read-only access to the tool dependency
// graph: which tools a project can see, the data states they require and
// produce, and the paths that lead to a set of target tools.
//
// Two implementations are provided. Memory builds the graph in process from a
// YAML definition and is used for tests, fixtures and offline planning. Neo4j
// reads the same graph from a Neo4j database with the Cypher queries the
// planner needs and nothing more.
package catalog

import (
	"context"

	"github.com/pkg/errors"

	"github.com/askiada/go-toolplan/pkg/planner/model"
)

var (
	// ErrNotFound reports a tool, project or task absent from the catalog.
	ErrNotFound = errors.New("not found in catalog")
	// ErrUnavailable reports a graph store that cannot be reached or that timed out.
	ErrUnavailable = errors.New("graph store unavailable")
)

// Catalog is the narrow read interface the planner depends on.
// Implementations must be safe for concurrent use.
type Catalog interface {
	// ScopeTools lists the tools belonging to project or to the public project.
	ScopeTools(ctx context.Context, project model.ProjectID) ([]model.Tool, error)
	// InputRequirements returns the states each tool requires.
	InputRequirements(ctx context.Context, ids []model.ToolID) (model.Requirements, error)
	// OutputFormats returns the states each tool produces.
	OutputFormats(ctx context.Context, ids []model.ToolID) (model.Requirements, error)
	// CopyDuplicates returns the tools of ids copied by another tool of ids.
	CopyDuplicates(ctx context.Context, ids []model.ToolID) ([]model.ToolID, error)
	// Paths returns the tool sequences of the graph paths matching query.
	Paths(ctx context.Context, query PathQuery) ([]model.Pipeline, error)
	// ToolNames returns the display name of each known tool.
	ToolNames(ctx context.Context, ids []model.ToolID) (map[model.ToolID]string, error)
	// Placement returns the project and task of a tool.
	Placement(ctx context.Context, id model.ToolID) (Placement, error)
	// TaskTools lists the tools of task owned by project or by the public project,
	// one row per owning project.
	TaskTools(ctx context.Context, project model.ProjectID, task string) ([]ScopedTool, error)
}

// PathQuery selects paths of at most MaxEdges edges ending at a tool named
// after one of TargetNames. Every tool on a path must be in Allowed, data
// state nodes are not restricted.
type PathQuery struct {
	TargetNames []string
	Allowed     []model.ToolID
	MaxEdges    int
}

// Placement locates a tool in the project and task hierarchy.
type Placement struct {
	Project model.ProjectID
	Task    string
}

// ScopedTool is a tool along with the project it was listed under.
type ScopedTool struct {
	Tool    model.Tool
	Project model.ProjectID
}

// Scope returns the projects visible from project.
func Scope(project model.ProjectID) []model.ProjectID {
	if project == model.PublicProject {
		return []model.ProjectID{model.PublicProject}
	}

	return []model.ProjectID{project, model.PublicProject}
}

type unavailableError struct {
	op  string
	err error
}

// Unavailable wraps err so that it matches both ErrUnavailable and err.
func Unavailable(op string, err error) error {
	return &unavailableError{op: op, err: err}
}

func (e *unavailableError) Error() string {
	return ErrUnavailable.Error() + ": " + e.op + ": " + e.err.Error()
}

func (e *unavailableError) Unwrap() []error {
	return []error{ErrUnavailable, e.err}
}
