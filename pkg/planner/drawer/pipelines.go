package drawer

import (
	"github.com/pkg/errors"

	"github.com/askiada/go-toolplan/pkg/planner"
)

// DrawPipelines adds the ranked pipelines to d, best first.
func DrawPipelines(d Drawer, pipes []planner.ScoredPipeline) error {
	for rank, pipe := range pipes {
		for i, id := range pipe.Tools {
			name := string(id)
			if i < len(pipe.Names) && pipe.Names[i] != "" {
				name = pipe.Names[i]
			}

			err := d.AddStep(string(id), name)
			if err != nil {
				return errors.Wrapf(err, "pipeline %d", rank)
			}

			if i == 0 {
				continue
			}

			err = d.AddLink(string(pipe.Tools[i-1]), string(id), rank)
			if err != nil {
				return errors.Wrapf(err, "pipeline %d", rank)
			}
		}

		if len(pipe.Tools) > 0 {
			err := d.SetScore(string(pipe.Tools.End()), rank, pipe.Score)
			if err != nil {
				return errors.Wrapf(err, "pipeline %d", rank)
			}
		}
	}

	return nil
}
