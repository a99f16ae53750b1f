package catalog_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-toolplan/pkg/planner/catalog"
	"github.com/askiada/go-toolplan/pkg/planner/model"
)

func loadFixture(t *testing.T) *catalog.Memory {
	t.Helper()

	mem, err := catalog.LoadMemory("testdata/catalog.yaml")
	require.NoError(t, err)

	return mem
}

func TestMemoryScopeTools(t *testing.T) {
	t.Parallel()

	mem := loadFixture(t)

	tcs := map[string]struct {
		project  model.ProjectID
		expected []model.ToolID
	}{
		"public": {
			project:  model.PublicProject,
			expected: []model.ToolID{"qc1", "sp1", "cl1", "cl3", "cl4", "an1", "gs1"},
		},
		"private project sees public tools": {
			project:  "LabA",
			expected: []model.ToolID{"qc1", "sp1", "cl1", "cl2", "cl3", "cl4", "an1", "gs1"},
		},
		"unknown project": {
			project:  "LabB",
			expected: []model.ToolID{"qc1", "sp1", "cl1", "cl3", "cl4", "an1", "gs1"},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			tools, err := mem.ScopeTools(t.Context(), tc.project)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, model.ToolIDs(tools))
		})
	}
}

func TestMemoryRequirements(t *testing.T) {
	t.Parallel()

	mem := loadFixture(t)

	in, err := mem.InputRequirements(t.Context(), []model.ToolID{"cl2", "cl4", "unknown"})
	require.NoError(t, err)
	assert.Equal(t, []string{"lognormalize", "spatial"}, in.Of("cl2").Strings())
	assert.Equal(t, 0, in.Of("cl4").Len())
	assert.NotContains(t, in, model.ToolID("unknown"))

	out, err := mem.OutputFormats(t.Context(), []model.ToolID{"gs1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"report"}, out.Of("gs1").Strings())
}

func TestMemoryCopyDuplicates(t *testing.T) {
	t.Parallel()

	mem := loadFixture(t)

	dups, err := mem.CopyDuplicates(t.Context(), []model.ToolID{"cl1", "cl3", "cl4"})
	require.NoError(t, err)
	assert.Equal(t, []model.ToolID{"cl4"}, dups)

	dups, err = mem.CopyDuplicates(t.Context(), []model.ToolID{"cl1", "cl4"})
	require.NoError(t, err)
	assert.Empty(t, dups)
}

func TestMemoryCopyDuplicatesMutualPair(t *testing.T) {
	t.Parallel()

	mem, err := catalog.NewMemory(catalog.Definition{Tools: []catalog.ToolDefinition{
		{ID: "a", Name: "Clustering", Projects: []string{"Public"}, CopyFrom: "b"},
		{ID: "b", Name: "Clustering", Projects: []string{"Public"}, CopyFrom: "a"},
		{ID: "c", Name: "Clustering", Projects: []string{"Public"}, CopyFrom: "c"},
	}})
	require.NoError(t, err)

	tcs := map[string]struct {
		ids      []model.ToolID
		expected []model.ToolID
	}{
		"first id stays":   {ids: []model.ToolID{"a", "b"}, expected: []model.ToolID{"b"}},
		"order decides":    {ids: []model.ToolID{"b", "a"}, expected: []model.ToolID{"a"}},
		"self copy kept":   {ids: []model.ToolID{"c"}, expected: []model.ToolID{}},
		"one end in scope": {ids: []model.ToolID{"a", "c"}, expected: []model.ToolID{}},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			dups, err := mem.CopyDuplicates(t.Context(), tc.ids)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, dups)
		})
	}
}

func TestMemoryPlacementAndNames(t *testing.T) {
	t.Parallel()

	mem := loadFixture(t)

	placement, err := mem.Placement(t.Context(), "cl2")
	require.NoError(t, err)
	assert.Equal(t, catalog.Placement{Project: "LabA", Task: "Clustering"}, placement)

	_, err = mem.Placement(t.Context(), "missing")
	assert.ErrorIs(t, err, catalog.ErrNotFound)

	names, err := mem.ToolNames(t.Context(), []model.ToolID{"qc1", "missing"})
	require.NoError(t, err)
	assert.Equal(t, map[model.ToolID]string{"qc1": "QualityControl"}, names)
}

func TestMemoryTaskTools(t *testing.T) {
	t.Parallel()

	mem := loadFixture(t)

	rows, err := mem.TaskTools(t.Context(), "LabA", "Clustering")
	require.NoError(t, err)

	got := make([]model.ToolID, 0, len(rows))
	for _, row := range rows {
		got = append(got, row.Tool.ID)
	}

	assert.Equal(t, []model.ToolID{"cl1", "cl2", "cl3", "cl4"}, got)
	assert.Equal(t, model.ProjectID("LabA"), rows[1].Project)
	assert.Equal(t, model.PublicProject, rows[0].Project)
}

func TestMemoryPaths(t *testing.T) {
	t.Parallel()

	mem := loadFixture(t)

	tcs := map[string]struct {
		query    catalog.PathQuery
		expected []model.Pipeline
	}{
		"zero length path only": {
			query: catalog.PathQuery{
				TargetNames: []string{"Clustering"},
				Allowed:     []model.ToolID{"cl1"},
				MaxEdges:    7,
			},
			expected: []model.Pipeline{{"cl1"}},
		},
		"full chain": {
			query: catalog.PathQuery{
				TargetNames: []string{"Clustering"},
				Allowed:     []model.ToolID{"qc1", "sp1", "cl1"},
				MaxEdges:    7,
			},
			expected: []model.Pipeline{{"cl1"}, {"sp1", "cl1"}, {"qc1", "sp1", "cl1"}},
		},
		"bounded length": {
			query: catalog.PathQuery{
				TargetNames: []string{"Clustering"},
				Allowed:     []model.ToolID{"qc1", "sp1", "cl1"},
				MaxEdges:    2,
			},
			expected: []model.Pipeline{{"cl1"}, {"sp1", "cl1"}},
		},
		"target outside allowed set": {
			query: catalog.PathQuery{
				TargetNames: []string{"Annotation"},
				Allowed:     []model.ToolID{"cl1"},
				MaxEdges:    7,
			},
			expected: []model.Pipeline{},
		},
		"several targets": {
			query: catalog.PathQuery{
				TargetNames: []string{"Clustering", "GraphST_Tutorial"},
				Allowed:     []model.ToolID{"cl1", "an1", "gs1"},
				MaxEdges:    7,
			},
			expected: []model.Pipeline{{"cl1"}, {"gs1"}, {"an1", "gs1"}, {"cl1", "an1", "gs1"}},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			paths, err := mem.Paths(t.Context(), tc.query)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, paths)
		})
	}
}

func TestMemoryPathsUseEachRelationOnce(t *testing.T) {
	t.Parallel()

	mem, err := catalog.NewMemory(catalog.Definition{Tools: []catalog.ToolDefinition{
		{ID: "a", Name: "Loop", Projects: []string{"Public"}, Inputs: []string{"x"}, Outputs: []string{"x"}},
	}})
	require.NoError(t, err)

	paths, err := mem.Paths(t.Context(), catalog.PathQuery{
		TargetNames: []string{"Loop"},
		Allowed:     []model.ToolID{"a"},
		MaxEdges:    7,
	})
	require.NoError(t, err)
	assert.Equal(t, []model.Pipeline{{"a"}, {"a", "a"}}, paths)
}

func TestMemoryCancelledContext(t *testing.T) {
	t.Parallel()

	mem := loadFixture(t)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := mem.ScopeTools(ctx, model.PublicProject)
	require.ErrorIs(t, err, catalog.ErrUnavailable)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = mem.Paths(ctx, catalog.PathQuery{TargetNames: []string{"Clustering"}, Allowed: []model.ToolID{"cl1"}})
	assert.ErrorIs(t, err, catalog.ErrUnavailable)
}

func TestNewMemoryInvalidDefinition(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		def catalog.Definition
	}{
		"missing id": {
			def: catalog.Definition{Tools: []catalog.ToolDefinition{{Name: "a"}}},
		},
		"missing name": {
			def: catalog.Definition{Tools: []catalog.ToolDefinition{{ID: "a"}}},
		},
		"duplicated id": {
			def: catalog.Definition{Tools: []catalog.ToolDefinition{{ID: "a", Name: "a"}, {ID: "a", Name: "b"}}},
		},
		"unknown copy source": {
			def: catalog.Definition{Tools: []catalog.ToolDefinition{{ID: "a", Name: "a", CopyFrom: "b"}}},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := catalog.NewMemory(tc.def)
			assert.True(t, errors.Is(err, catalog.ErrInvalidDefinition), err)
		})
	}
}

func TestParseDefinition(t *testing.T) {
	t.Parallel()

	def, err := catalog.ParseDefinition([]byte(`
tools:
  - id: a
    name: A
    projects: [Public]
    citation: 12.5
    inputs: [raw]
`))
	require.NoError(t, err)
	require.Len(t, def.Tools, 1)
	assert.Equal(t, 12.5, def.Tools[0].Citation)
	assert.Equal(t, []string{"raw"}, def.Tools[0].Inputs)

	_, err = catalog.ParseDefinition([]byte("tools: {"))
	require.Error(t, err)

	_, err = catalog.LoadDefinition("testdata/missing.yaml")
	require.Error(t, err)
}
