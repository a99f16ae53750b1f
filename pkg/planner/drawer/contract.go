package drawer

import "io"

// Drawer is an interface that defines the methods for drawing ranked pipelines.
type Drawer interface {
	// AddStep adds a tool to the drawing.
	AddStep(id, name string) error
	// AddLink links two consecutive tools of the pipeline ranked rank, 0 being the best.
	AddLink(parentID, childID string, rank int) error
	// SetScore annotates the terminal tool of the pipeline ranked rank.
	SetScore(id string, rank int, score float64) error
	// Draw writes the drawing to w.
	Draw(w io.Writer) error
}
