package catalog

import (
	"context"

	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"

	"github.com/askiada/go-toolplan/internal/store"
	"github.com/askiada/go-toolplan/pkg/planner/model"
)

type nodeKind string

const (
	toolNode    nodeKind = "tool"
	stateNode   nodeKind = "state"
	projectNode nodeKind = "project"
	taskNode    nodeKind = "task"
)

// Relations between the graph nodes, stored as the "relation" edge attribute.
const (
	relationAttribute = "relation"

	RelationInputRequirement = "input_requirement"
	RelationOutputFormat     = "output_format"
	RelationBelongsTo        = "belongs_to"
	RelationCopyFrom         = "copy_from"
)

type node struct {
	kind nodeKind
	name string
}

func (n node) key() string {
	return string(n.kind) + ":" + n.name
}

func nodeHash(n node) string {
	return n.key()
}

func toolKey(id model.ToolID) string {
	return node{kind: toolNode, name: string(id)}.key()
}

func projectKey(id model.ProjectID) string {
	return node{kind: projectNode, name: string(id)}.key()
}

func taskKey(task string) string {
	return node{kind: taskNode, name: task}.key()
}

func edgeKey(source, target string) string {
	return source + "->" + target
}

// Memory is a catalog held in process. It is immutable once built.
type Memory struct {
	graph graph.Graph[string, node]
	store store.RelationStore[string, node]
	tools map[model.ToolID]model.Tool
	order []model.ToolID
}

var _ Catalog = (*Memory)(nil)

// NewMemory builds the catalog graph described by def.
func NewMemory(def Definition) (*Memory, error) {
	err := def.validate()
	if err != nil {
		return nil, err
	}

	st := store.NewMemoryStore[string, node](relationAttribute)
	mem := &Memory{
		graph: graph.NewWithStore(nodeHash, st, graph.Directed()),
		store: st,
		tools: make(map[model.ToolID]model.Tool, len(def.Tools)),
		order: make([]model.ToolID, 0, len(def.Tools)),
	}

	for _, td := range def.Tools {
		tool := model.Tool{
			ID:       model.ToolID(td.ID),
			Name:     td.Name,
			Task:     td.Task,
			Citation: td.Citation,
		}
		for _, project := range td.Projects {
			tool.Projects = append(tool.Projects, model.ProjectID(project))
		}

		mem.tools[tool.ID] = tool
		mem.order = append(mem.order, tool.ID)

		err = mem.addNode(node{kind: toolNode, name: td.ID}, graph.VertexAttribute("name", td.Name))
		if err != nil {
			return nil, err
		}
	}

	for _, td := range def.Tools {
		err = mem.addToolEdges(td)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to link tool %s", td.ID)
		}
	}

	return mem, nil
}

// LoadMemory reads a definition file and builds its catalog.
func LoadMemory(path string) (*Memory, error) {
	def, err := LoadDefinition(path)
	if err != nil {
		return nil, err
	}

	return NewMemory(def)
}

func (m *Memory) addNode(n node, options ...func(*graph.VertexProperties)) error {
	err := m.graph.AddVertex(n, options...)
	if err != nil && !errors.Is(err, graph.ErrVertexAlreadyExists) {
		return errors.Wrapf(err, "unable to add vertex %s", n.key())
	}

	return nil
}

func (m *Memory) link(source, target node, relation string) error {
	err := m.addNode(source)
	if err != nil {
		return err
	}

	err = m.addNode(target)
	if err != nil {
		return err
	}

	err = m.graph.AddEdge(source.key(), target.key(), graph.EdgeAttribute(relationAttribute, relation))
	if err != nil && !errors.Is(err, graph.ErrEdgeAlreadyExists) {
		return errors.Wrapf(err, "unable to add edge from %s to %s", source.key(), target.key())
	}

	return nil
}

func (m *Memory) addToolEdges(td ToolDefinition) error {
	tool := node{kind: toolNode, name: td.ID}

	for _, input := range td.Inputs {
		err := m.link(node{kind: stateNode, name: input}, tool, RelationInputRequirement)
		if err != nil {
			return err
		}
	}

	for _, output := range td.Outputs {
		err := m.link(tool, node{kind: stateNode, name: output}, RelationOutputFormat)
		if err != nil {
			return err
		}
	}

	for _, project := range td.Projects {
		err := m.link(tool, node{kind: projectNode, name: project}, RelationBelongsTo)
		if err != nil {
			return err
		}
	}

	if td.Task != "" {
		err := m.link(tool, node{kind: taskNode, name: td.Task}, RelationBelongsTo)
		if err != nil {
			return err
		}
	}

	if td.CopyFrom != "" {
		return m.link(tool, node{kind: toolNode, name: td.CopyFrom}, RelationCopyFrom)
	}

	return nil
}

// related returns the names of the nodes of kind linked to key by relation.
// Incoming edges are followed when incoming is set, outgoing ones otherwise.
func (m *Memory) related(key string, relation string, kind nodeKind, incoming bool) []string {
	var (
		edges []graph.Edge[string]
		err   error
	)

	if incoming {
		edges, err = m.store.Incoming(key, relation)
	} else {
		edges, err = m.store.Outgoing(key, relation)
	}

	if err != nil {
		return nil
	}

	names := []string{}

	for _, edge := range edges {
		other := edge.Target
		if incoming {
			other = edge.Source
		}

		n, _, err := m.store.Vertex(other)
		if err != nil || n.kind != kind {
			continue
		}

		names = append(names, n.name)
	}

	return names
}

func (m *Memory) ScopeTools(ctx context.Context, project model.ProjectID) ([]model.Tool, error) {
	if err := ctx.Err(); err != nil {
		return nil, Unavailable("scope tools", err)
	}

	visible := map[model.ToolID]struct{}{}

	for _, scope := range Scope(project) {
		for _, id := range m.related(projectKey(scope), RelationBelongsTo, toolNode, true) {
			visible[model.ToolID(id)] = struct{}{}
		}
	}

	tools := []model.Tool{}

	for _, id := range m.order {
		if _, ok := visible[id]; ok {
			tools = append(tools, m.tools[id])
		}
	}

	return tools, nil
}

func (m *Memory) requirements(ctx context.Context, ids []model.ToolID, relation string, incoming bool) (model.Requirements, error) {
	if err := ctx.Err(); err != nil {
		return nil, Unavailable(relation, err)
	}

	reqs := make(model.Requirements, len(ids))

	for _, id := range ids {
		if _, ok := m.tools[id]; !ok {
			continue
		}

		reqs[id] = model.NewStateSet(m.related(toolKey(id), relation, stateNode, incoming)...)
	}

	return reqs, nil
}

func (m *Memory) InputRequirements(ctx context.Context, ids []model.ToolID) (model.Requirements, error) {
	return m.requirements(ctx, ids, RelationInputRequirement, true)
}

func (m *Memory) OutputFormats(ctx context.Context, ids []model.ToolID) (model.Requirements, error) {
	return m.requirements(ctx, ids, RelationOutputFormat, false)
}

func (m *Memory) CopyDuplicates(ctx context.Context, ids []model.ToolID) ([]model.ToolID, error) {
	if err := ctx.Err(); err != nil {
		return nil, Unavailable("copy duplicates", err)
	}

	links := []copyLink{}

	for _, id := range ids {
		for _, source := range m.related(toolKey(id), RelationCopyFrom, toolNode, false) {
			links = append(links, copyLink{tool: id, source: model.ToolID(source)})
		}
	}

	return copiedSources(ids, links), nil
}

func (m *Memory) ToolNames(ctx context.Context, ids []model.ToolID) (map[model.ToolID]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, Unavailable("tool names", err)
	}

	names := make(map[model.ToolID]string, len(ids))

	for _, id := range ids {
		if tool, ok := m.tools[id]; ok {
			names[id] = tool.Name
		}
	}

	return names, nil
}

func (m *Memory) Placement(ctx context.Context, id model.ToolID) (Placement, error) {
	if err := ctx.Err(); err != nil {
		return Placement{}, Unavailable("placement", err)
	}

	tool, ok := m.tools[id]
	if !ok || len(tool.Projects) == 0 || tool.Task == "" {
		return Placement{}, errors.Wrapf(ErrNotFound, "placement of tool %s", id)
	}

	return Placement{Project: tool.Projects[0], Task: tool.Task}, nil
}

func (m *Memory) TaskTools(ctx context.Context, project model.ProjectID, task string) ([]ScopedTool, error) {
	if err := ctx.Err(); err != nil {
		return nil, Unavailable("task tools", err)
	}

	inTask := map[model.ToolID]struct{}{}
	for _, id := range m.related(taskKey(task), RelationBelongsTo, toolNode, true) {
		inTask[model.ToolID(id)] = struct{}{}
	}

	rows := []ScopedTool{}

	for _, id := range m.order {
		if _, ok := inTask[id]; !ok {
			continue
		}

		tool := m.tools[id]

		for _, scope := range Scope(project) {
			for _, owner := range tool.Projects {
				if owner == scope {
					rows = append(rows, ScopedTool{Tool: tool, Project: scope})
				}
			}
		}
	}

	return rows, nil
}

// Paths walks the graph backwards from every allowed tool named after a
// target. Each path start that is a tool yields the tools met on the way, in
// forward order. A relationship is used at most once per path.
func (m *Memory) Paths(ctx context.Context, query PathQuery) ([]model.Pipeline, error) {
	targets := make(map[string]struct{}, len(query.TargetNames))
	for _, name := range query.TargetNames {
		targets[name] = struct{}{}
	}

	allowed := make(map[model.ToolID]struct{}, len(query.Allowed))
	for _, id := range query.Allowed {
		allowed[id] = struct{}{}
	}

	walk := &backwardWalk{
		mem:      m,
		allowed:  allowed,
		maxEdges: query.MaxEdges,
		used:     map[string]struct{}{},
	}

	for _, id := range m.order {
		if _, ok := targets[m.tools[id].Name]; !ok {
			continue
		}

		if _, ok := allowed[id]; !ok {
			continue
		}

		err := walk.visit(ctx, toolKey(id), 0, nil)
		if err != nil {
			return nil, err
		}
	}

	if walk.paths == nil {
		return []model.Pipeline{}, nil
	}

	return walk.paths, nil
}

type backwardWalk struct {
	mem      *Memory
	allowed  map[model.ToolID]struct{}
	maxEdges int
	used     map[string]struct{}
	paths    []model.Pipeline
}

// visit handles the node key reached after depth edges. reversed holds the
// tools already met, from the path end backwards.
func (w *backwardWalk) visit(ctx context.Context, key string, depth int, reversed model.Pipeline) error {
	if err := ctx.Err(); err != nil {
		return Unavailable("paths", err)
	}

	current, _, err := w.mem.store.Vertex(key)
	if err != nil {
		return errors.Wrapf(err, "unable to get vertex %s", key)
	}

	if current.kind == toolNode {
		reversed = append(reversed[:len(reversed):len(reversed)], model.ToolID(current.name))
		w.paths = append(w.paths, reversed.Reverse())
	}

	if depth >= w.maxEdges {
		return nil
	}

	edges, err := w.mem.store.Incoming(key, store.AnyRelation)
	if err != nil {
		return errors.Wrapf(err, "unable to get edges entering %s", key)
	}

	for _, edge := range edges {
		id := edgeKey(edge.Source, edge.Target)
		if _, ok := w.used[id]; ok {
			continue
		}

		source, _, err := w.mem.store.Vertex(edge.Source)
		if err != nil {
			return errors.Wrapf(err, "unable to get vertex %s", edge.Source)
		}

		if source.kind == toolNode {
			if _, ok := w.allowed[model.ToolID(source.name)]; !ok {
				continue
			}
		}

		w.used[id] = struct{}{}

		err = w.visit(ctx, edge.Source, depth+1, reversed)
		if err != nil {
			return err
		}

		delete(w.used, id)
	}

	return nil
}
