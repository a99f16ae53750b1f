package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/askiada/go-toolplan/pkg/planner/model"
)

func TestPipelineInsert(t *testing.T) {
	t.Parallel()

	pipe := model.Pipeline{"a", "b"}

	assert.Equal(t, model.Pipeline{"x", "a", "b"}, pipe.Insert(0, "x"))
	assert.Equal(t, model.Pipeline{"a", "x", "b"}, pipe.Insert(1, "x"))
	assert.Equal(t, model.Pipeline{"a", "b", "x"}, pipe.Insert(2, "x"))
	assert.Equal(t, model.Pipeline{"a", "b"}, pipe)
}

func TestPipelineHelpers(t *testing.T) {
	t.Parallel()

	pipe := model.Pipeline{"a", "b", "c"}

	assert.True(t, pipe.Contains("b"))
	assert.False(t, pipe.Contains("d"))
	assert.Equal(t, model.ToolID("c"), pipe.End())
	assert.Equal(t, model.ToolID(""), model.Pipeline{}.End())
	assert.Equal(t, model.Pipeline{"c", "b", "a"}, pipe.Reverse())
	assert.NotEqual(t, pipe.Key(), pipe.Reverse().Key())
}

func TestPlanStepLabel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Clustering", model.PlanStep{ID: "1", Name: "Clustering", Title: "t"}.Label())
	assert.Equal(t, "t", model.PlanStep{ID: "1", Title: "t"}.Label())
	assert.Equal(t, "1", model.PlanStep{ID: "1"}.Label())
}

func TestRequirementsOf(t *testing.T) {
	t.Parallel()

	reqs := model.Requirements{"a": model.NewStateSet("raw")}

	assert.True(t, reqs.Of("a").Has("raw"))
	assert.NotNil(t, reqs.Of("missing"))
	assert.Equal(t, 0, reqs.Of("missing").Len())
}
