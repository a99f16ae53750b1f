package catalog

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/pkg/errors"

	"github.com/askiada/go-toolplan/pkg/planner/model"
)

const (
	scopeToolsCypher = `MATCH (n:Tools)-[:belongs_to]->(p:Project)
WHERE p.id IN $projects
OPTIONAL MATCH (n)-[:belongs_to]->(t:Task)
RETURN n.workflow_id AS id, n.name AS name, n.citation AS citation,
       collect(DISTINCT p.id) AS projects, head(collect(t.name)) AS task
ORDER BY id`

	inputRequirementCypher = `MATCH (m:DataState)-[:input_requirement]->(n:Tools)
WHERE n.workflow_id IN $ids
RETURN n.workflow_id AS id, collect(DISTINCT m.name) AS states`

	outputFormatCypher = `MATCH (n:Tools)-[:output_format]->(m:DataState)
WHERE n.workflow_id IN $ids
RETURN n.workflow_id AS id, collect(DISTINCT m.name) AS states`

	copyDuplicatesCypher = `MATCH (n:Tools)-[:copy_from]->(m:Tools)
WHERE n.workflow_id IN $ids AND m.workflow_id IN $ids
RETURN DISTINCT n.workflow_id AS tool, m.workflow_id AS source`

	toolNamesCypher = `MATCH (n:Tools)
WHERE n.workflow_id IN $ids
RETURN n.workflow_id AS id, n.name AS name`

	placementCypher = `MATCH (n:Tools {workflow_id: $id})-[:belongs_to]->(p:Project)
MATCH (n)-[:belongs_to]->(t:Task)
RETURN p.id AS project, t.name AS task
LIMIT 1`

	taskToolsCypher = `MATCH (n:Tools)-[:belongs_to]->(p:Project)
WHERE p.id IN $projects AND (n)-[:belongs_to]->(:Task {name: $task})
RETURN n.workflow_id AS id, n.name AS name, n.citation AS citation, p.id AS project
ORDER BY id, project`

	// The variable length bound cannot be a query parameter.
	pathsCypherFormat = `MATCH p=(m:Tools)-[*0..%d]->(n:Tools)
WHERE n.name IN $targets
AND ALL(node IN nodes(p) WHERE (node:Tools AND node.workflow_id IN $allowed) OR NOT node:Tools)
RETURN [node IN nodes(p) WHERE node:Tools | node.workflow_id] AS ids`
)

// Neo4jConfig holds the connection settings of a Neo4j catalog.
type Neo4jConfig struct {
	// URI is bolt://host:port, bolt+s://host:port, neo4j://host:port...
	URI      string
	Username string
	Password string
	// Database is the database name, the server default when empty.
	Database                string
	MaxConnectionPoolSize   int
	ConnectionTimeout       time.Duration
	MaxTransactionRetryTime time.Duration
}

var ErrInvalidNeo4jConfig = errors.New("invalid neo4j configuration")

// DefaultNeo4jConfig targets a local server.
func DefaultNeo4jConfig() Neo4jConfig {
	return Neo4jConfig{
		URI:                     "bolt://localhost:7687",
		Username:                "neo4j",
		MaxConnectionPoolSize:   50,
		ConnectionTimeout:       30 * time.Second,
		MaxTransactionRetryTime: 30 * time.Second,
	}
}

// Validate checks the configuration can be used to connect.
func (c Neo4jConfig) Validate() error {
	if c.URI == "" {
		return errors.Wrap(ErrInvalidNeo4jConfig, "URI cannot be empty")
	}

	if c.Username == "" {
		return errors.Wrap(ErrInvalidNeo4jConfig, "username cannot be empty")
	}

	if c.ConnectionTimeout <= 0 {
		return errors.Wrap(ErrInvalidNeo4jConfig, "connection timeout must be positive")
	}

	return nil
}

type readFunc func(ctx context.Context, cypher string, params map[string]any) ([]*neo4j.Record, error)

// Neo4j is a catalog backed by a Neo4j database. The driver keeps a
// connection pool shared by every request.
type Neo4j struct {
	config Neo4jConfig
	driver neo4j.DriverWithContext
	read   readFunc
}

var _ Catalog = (*Neo4j)(nil)

// NewNeo4j creates a catalog. It must be connected with Connect before use.
func NewNeo4j(config Neo4jConfig) (*Neo4j, error) {
	err := config.Validate()
	if err != nil {
		return nil, err
	}

	return &Neo4j{config: config}, nil
}

const (
	connectAttempts  = 5
	connectBaseDelay = 100 * time.Millisecond
)

// Connect creates the driver and checks connectivity, retrying with an
// exponential backoff.
func (c *Neo4j) Connect(ctx context.Context) error {
	auth := neo4j.BasicAuth(c.config.Username, c.config.Password, "")
	configure := func(cfg *neo4j.Config) {
		if c.config.MaxConnectionPoolSize > 0 {
			cfg.MaxConnectionPoolSize = c.config.MaxConnectionPoolSize
		}

		cfg.ConnectionAcquisitionTimeout = c.config.ConnectionTimeout

		if c.config.MaxTransactionRetryTime > 0 {
			cfg.MaxTransactionRetryTime = c.config.MaxTransactionRetryTime
		}
	}

	var lastErr error

	for attempt := 0; attempt < connectAttempts; attempt++ {
		driver, err := neo4j.NewDriverWithContext(c.config.URI, auth, configure)
		if err == nil {
			err = driver.VerifyConnectivity(ctx)
			if err == nil {
				c.driver = driver
				c.read = c.readRecords

				return nil
			}

			_ = driver.Close(ctx)
		}

		lastErr = err

		delay := connectBaseDelay * time.Duration(math.Pow(2, float64(attempt)))
		if delay > c.config.ConnectionTimeout {
			delay = c.config.ConnectionTimeout
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return Unavailable("connect", ctx.Err())
		}
	}

	return Unavailable(fmt.Sprintf("connect after %d attempts", connectAttempts), lastErr)
}

// Close releases the connection pool.
func (c *Neo4j) Close(ctx context.Context) error {
	if c.driver == nil {
		return nil
	}

	err := c.driver.Close(ctx)
	c.driver = nil
	c.read = nil

	if err != nil {
		return errors.Wrap(err, "unable to close neo4j driver")
	}

	return nil
}

func (c *Neo4j) readRecords(ctx context.Context, cypher string, params map[string]any) ([]*neo4j.Record, error) {
	session := c.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: c.config.Database,
	})
	defer session.Close(ctx)

	res, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}

		return result.Collect(ctx)
	})
	if err != nil {
		return nil, err
	}

	records, _ := res.([]*neo4j.Record)

	return records, nil
}

func (c *Neo4j) query(ctx context.Context, op, cypher string, params map[string]any) ([]*neo4j.Record, error) {
	if c.read == nil {
		return nil, Unavailable(op, errors.New("neo4j catalog is not connected"))
	}

	records, err := c.read(ctx, cypher, params)
	if err != nil {
		return nil, Unavailable(op, err)
	}

	return records, nil
}

func (c *Neo4j) ScopeTools(ctx context.Context, project model.ProjectID) ([]model.Tool, error) {
	records, err := c.query(ctx, "scope tools", scopeToolsCypher, map[string]any{
		"projects": projectParams(Scope(project)),
	})
	if err != nil {
		return nil, err
	}

	tools := make([]model.Tool, 0, len(records))

	for _, record := range records {
		tool, err := decodeTool(record)
		if err != nil {
			return nil, err
		}

		projects, err := decodeStrings(value(record, "projects"))
		if err != nil {
			return nil, errors.Wrap(err, "unable to decode projects")
		}

		for _, project := range projects {
			tool.Projects = append(tool.Projects, model.ProjectID(project))
		}

		tool.Task, err = decodeString(value(record, "task"))
		if err != nil {
			return nil, errors.Wrap(err, "unable to decode task")
		}

		tools = append(tools, tool)
	}

	return tools, nil
}

func (c *Neo4j) requirements(ctx context.Context, op, cypher string, ids []model.ToolID) (model.Requirements, error) {
	records, err := c.query(ctx, op, cypher, map[string]any{"ids": idParams(ids)})
	if err != nil {
		return nil, err
	}

	reqs := make(model.Requirements, len(records))

	for _, record := range records {
		id, err := decodeString(value(record, "id"))
		if err != nil {
			return nil, errors.Wrapf(err, "unable to decode %s tool id", op)
		}

		states, err := decodeStrings(value(record, "states"))
		if err != nil {
			return nil, errors.Wrapf(err, "unable to decode %s states", op)
		}

		reqs[model.ToolID(id)] = model.NewStateSet(states...)
	}

	return reqs, nil
}

func (c *Neo4j) InputRequirements(ctx context.Context, ids []model.ToolID) (model.Requirements, error) {
	return c.requirements(ctx, "input requirements", inputRequirementCypher, ids)
}

func (c *Neo4j) OutputFormats(ctx context.Context, ids []model.ToolID) (model.Requirements, error) {
	return c.requirements(ctx, "output formats", outputFormatCypher, ids)
}

func (c *Neo4j) CopyDuplicates(ctx context.Context, ids []model.ToolID) ([]model.ToolID, error) {
	records, err := c.query(ctx, "copy duplicates", copyDuplicatesCypher, map[string]any{"ids": idParams(ids)})
	if err != nil {
		return nil, err
	}

	links := make([]copyLink, 0, len(records))

	for _, record := range records {
		tool, err := decodeString(value(record, "tool"))
		if err != nil {
			return nil, errors.Wrap(err, "unable to decode copying tool id")
		}

		source, err := decodeString(value(record, "source"))
		if err != nil {
			return nil, errors.Wrap(err, "unable to decode copied tool id")
		}

		links = append(links, copyLink{tool: model.ToolID(tool), source: model.ToolID(source)})
	}

	return copiedSources(ids, links), nil
}

func (c *Neo4j) Paths(ctx context.Context, query PathQuery) ([]model.Pipeline, error) {
	records, err := c.query(ctx, "paths", fmt.Sprintf(pathsCypherFormat, query.MaxEdges), map[string]any{
		"targets": stringParams(query.TargetNames),
		"allowed": idParams(query.Allowed),
	})
	if err != nil {
		return nil, err
	}

	paths := make([]model.Pipeline, 0, len(records))

	for _, record := range records {
		ids, err := decodeStrings(value(record, "ids"))
		if err != nil {
			return nil, errors.Wrap(err, "unable to decode path")
		}

		pipe := make(model.Pipeline, 0, len(ids))
		for _, id := range ids {
			pipe = append(pipe, model.ToolID(id))
		}

		paths = append(paths, pipe)
	}

	return paths, nil
}

func (c *Neo4j) ToolNames(ctx context.Context, ids []model.ToolID) (map[model.ToolID]string, error) {
	records, err := c.query(ctx, "tool names", toolNamesCypher, map[string]any{"ids": idParams(ids)})
	if err != nil {
		return nil, err
	}

	names := make(map[model.ToolID]string, len(records))

	for _, record := range records {
		id, err := decodeString(value(record, "id"))
		if err != nil {
			return nil, errors.Wrap(err, "unable to decode tool id")
		}

		names[model.ToolID(id)], err = decodeString(value(record, "name"))
		if err != nil {
			return nil, errors.Wrap(err, "unable to decode tool name")
		}
	}

	return names, nil
}

func (c *Neo4j) Placement(ctx context.Context, id model.ToolID) (Placement, error) {
	records, err := c.query(ctx, "placement", placementCypher, map[string]any{"id": string(id)})
	if err != nil {
		return Placement{}, err
	}

	if len(records) == 0 {
		return Placement{}, errors.Wrapf(ErrNotFound, "placement of tool %s", id)
	}

	project, err := decodeString(value(records[0], "project"))
	if err != nil {
		return Placement{}, errors.Wrap(err, "unable to decode project")
	}

	task, err := decodeString(value(records[0], "task"))
	if err != nil {
		return Placement{}, errors.Wrap(err, "unable to decode task")
	}

	return Placement{Project: model.ProjectID(project), Task: task}, nil
}

func (c *Neo4j) TaskTools(ctx context.Context, project model.ProjectID, task string) ([]ScopedTool, error) {
	records, err := c.query(ctx, "task tools", taskToolsCypher, map[string]any{
		"projects": projectParams(Scope(project)),
		"task":     task,
	})
	if err != nil {
		return nil, err
	}

	rows := make([]ScopedTool, 0, len(records))

	for _, record := range records {
		tool, err := decodeTool(record)
		if err != nil {
			return nil, err
		}

		owner, err := decodeString(value(record, "project"))
		if err != nil {
			return nil, errors.Wrap(err, "unable to decode project")
		}

		tool.Task = task
		tool.Projects = []model.ProjectID{model.ProjectID(owner)}
		rows = append(rows, ScopedTool{Tool: tool, Project: model.ProjectID(owner)})
	}

	return rows, nil
}
