package planner_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/askiada/go-toolplan/pkg/planner"
	"github.com/askiada/go-toolplan/pkg/planner/catalog"
	"github.com/askiada/go-toolplan/pkg/planner/model"
)

func tool(id, name string, citation float64, inputs, outputs []string) catalog.ToolDefinition {
	return catalog.ToolDefinition{
		ID:       id,
		Name:     name,
		Projects: []string{string(model.PublicProject)},
		Task:     name,
		Citation: citation,
		Inputs:   inputs,
		Outputs:  outputs,
	}
}

func newCatalog(t *testing.T, tools ...catalog.ToolDefinition) *catalog.Memory {
	t.Helper()

	mem, err := catalog.NewMemory(catalog.Definition{Tools: tools})
	require.NoError(t, err)

	return mem
}

func newPlanner(t *testing.T, cat catalog.Catalog, opts ...planner.Option) *planner.Planner {
	t.Helper()

	p, err := planner.New(cat, opts...)
	require.NoError(t, err)

	return p
}

// spatialChain is a linear chain raw -> qc -> spatial -> clustered -> annotated -> report.
func spatialChain() []catalog.ToolDefinition {
	return []catalog.ToolDefinition{
		tool("qc1", "QualityControl", 50, []string{"raw"}, []string{"qc"}),
		tool("sp1", "SpatialMapping", 40, []string{"qc"}, []string{"spatial"}),
		tool("cl1", "Clustering", 120, []string{"spatial"}, []string{"clustered"}),
		tool("an1", "Annotation", 30, []string{"clustered"}, []string{"annotated"}),
		tool("gs1", "GraphST_Tutorial", 80, []string{"annotated"}, []string{"report"}),
	}
}

type failingCatalog struct {
	catalog.Catalog
	err error
}

func (f failingCatalog) Paths(context.Context, catalog.PathQuery) ([]model.Pipeline, error) {
	return nil, f.err
}

type blockingCatalog struct {
	catalog.Catalog
}

func (b blockingCatalog) Paths(ctx context.Context, _ catalog.PathQuery) ([]model.Pipeline, error) {
	<-ctx.Done()

	return nil, catalog.Unavailable("paths", ctx.Err())
}

type namelessCatalog struct {
	catalog.Catalog
}

func (namelessCatalog) ToolNames(context.Context, []model.ToolID) (map[model.ToolID]string, error) {
	return map[model.ToolID]string{}, nil
}
