package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/askiada/go-toolplan/pkg/planner/model"
)

func TestCollapse(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		input    model.StateSet
		expected []string
	}{
		"empty": {
			input:    model.StateSet{},
			expected: []string{},
		},
		"raw only": {
			input:    model.NewStateSet("raw", "qc"),
			expected: []string{"qc", "raw"},
		},
		"lognormalize drops raw": {
			input:    model.NewStateSet("raw", "lognormalize", "qc"),
			expected: []string{"lognormalize", "qc"},
		},
		"scale drops raw and lognormalize": {
			input:    model.NewStateSet("raw", "lognormalize", "scale", "spatial"),
			expected: []string{"scale", "spatial"},
		},
		"scale without raw": {
			input:    model.NewStateSet("scale", "clustered"),
			expected: []string{"clustered", "scale"},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got := tc.input.Collapse()
			assert.Equal(t, tc.expected, got.Strings())
		})
	}
}

func TestCollapseIdempotent(t *testing.T) {
	t.Parallel()

	sets := []model.StateSet{
		model.NewStateSet("raw"),
		model.NewStateSet("raw", "lognormalize"),
		model.NewStateSet("raw", "lognormalize", "scale"),
		model.NewStateSet("lognormalize", "scale", "qc", "spatial"),
	}

	for _, set := range sets {
		once := set.Collapse()
		assert.Equal(t, once, once.Collapse())
	}
}

func TestCollapseDoesNotMutate(t *testing.T) {
	t.Parallel()

	set := model.NewStateSet("raw", "scale")
	_ = set.Collapse()
	assert.True(t, set.Has("raw"))
	assert.True(t, set.Has("scale"))
}

func TestCollapseKeepsOtherStates(t *testing.T) {
	t.Parallel()

	set := model.NewStateSet("raw", "lognormalize", "scale", "qc", "spatial", "clustered")
	got := set.Collapse()

	assert.False(t, got.Has(model.StateRaw))
	assert.False(t, got.Has(model.StateLogNormalize))
	for _, state := range []model.DataState{"scale", "qc", "spatial", "clustered"} {
		assert.True(t, got.Has(state), state)
	}
}

func TestStateSetOperations(t *testing.T) {
	t.Parallel()

	left := model.NewStateSet("raw", "qc")
	right := model.NewStateSet("qc", "spatial")

	assert.Equal(t, []string{"qc", "raw", "spatial"}, left.Union(right).Strings())
	assert.Equal(t, []string{"raw"}, left.Minus(right).Strings())
	assert.Empty(t, model.NewStateSet("qc").Minus(left))
}
