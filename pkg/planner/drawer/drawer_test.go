package drawer_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/go-playground/colors.v1" //nolint

	"github.com/askiada/go-toolplan/pkg/planner"
	"github.com/askiada/go-toolplan/pkg/planner/drawer"
	"github.com/askiada/go-toolplan/pkg/planner/model"
)

func hex(t *testing.T, r, g, b uint8) string {
	t.Helper()

	c, err := colors.RGB(r, g, b)
	require.NoError(t, err)

	return c.ToHEX().String()
}

func TestDrawPipelines(t *testing.T) {
	t.Parallel()

	pipes := []planner.ScoredPipeline{
		{Tools: model.Pipeline{"a", "b", "c"}, Names: []string{"Prepare", "Cluster", "Annotate"}, Score: 10},
		{Tools: model.Pipeline{"a", "c"}, Names: []string{"Prepare", "Annotate"}, Score: 5},
		{Tools: model.Pipeline{"a", "b"}, Names: []string{"Prepare", ""}, Score: 1},
	}

	d := drawer.NewDOTDrawer()
	require.NoError(t, drawer.DrawPipelines(d, pipes))

	var buf bytes.Buffer
	require.NoError(t, d.Draw(&buf))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "strict digraph {"), out)
	assert.Contains(t, out, `rankdir="LR";`)
	assert.Contains(t, out, `"a" [ label="Prepare" ];`)
	assert.Contains(t, out, `"a" -> "b" [ color="`+hex(t, 240, 0, 0)+`", fontcolor="blue", label="#0,#2" ];`)
	assert.Contains(t, out, `"a" -> "c" [ color="`+hex(t, 120, 0, 120)+`", fontcolor="blue", label="#1" ];`)
	assert.Contains(t, out, `"b" -> "c" [ color="`+hex(t, 240, 0, 0)+`"`)
	assert.Contains(t, out, `"c" [ label=<Annotate <BR /> <FONT POINT-SIZE="12">#1: 10.00, #2: 5.00</FONT>> ];`)
	assert.Contains(t, out, `#3: 1.00`)
	assert.NotContains(t, out, "ranks")
}

func TestDrawStable(t *testing.T) {
	t.Parallel()

	pipes := []planner.ScoredPipeline{
		{Tools: model.Pipeline{"x", "y", "z"}, Score: 3},
		{Tools: model.Pipeline{"w", "z"}, Score: 2},
	}

	render := func() string {
		d := drawer.NewDOTDrawer()
		require.NoError(t, drawer.DrawPipelines(d, pipes))

		var buf bytes.Buffer
		require.NoError(t, d.Draw(&buf))

		return buf.String()
	}

	first := render()
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, render())
	}

	assert.Contains(t, first, `"w" [ label="w" ];`)
}

func TestDrawEmpty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, drawer.NewDOTDrawer().Draw(&buf))
	assert.Equal(t, "strict digraph {\n\trankdir=\"LR\";\n}\n", buf.String())
}

func TestSetScoreUnknownTool(t *testing.T) {
	t.Parallel()

	assert.Error(t, drawer.NewDOTDrawer().SetScore("missing", 0, 1))
}
