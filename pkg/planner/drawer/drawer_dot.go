package drawer

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"text/template"

	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"
	"gopkg.in/go-playground/colors.v1" //nolint
)

const (
	maxRGB         = 240
	rankAttribute  = "ranks"
	noteAttribute  = "note"
	labelAttribute = "label"
)

// DOTDrawer renders the pipelines as a Graphviz digraph. Each tool is a
// vertex. Each edge carries the ranks of the pipelines using it and is
// coloured from red, for the best pipeline, to blue.
type DOTDrawer struct {
	graph   graph.Graph[string, string]
	maxRank int
}

// NewDOTDrawer creates a new DOT drawer.
func NewDOTDrawer() *DOTDrawer {
	return &DOTDrawer{
		graph: graph.New(graph.StringHash, graph.Directed()),
	}
}

// AddStep adds a tool to the graph. Adding a tool twice is a no-op.
func (d *DOTDrawer) AddStep(id, name string) error {
	err := d.graph.AddVertex(id, graph.VertexAttribute(labelAttribute, escape(name)))
	if err != nil && !errors.Is(err, graph.ErrVertexAlreadyExists) {
		return errors.Wrap(err, "unable to add vertex")
	}

	return nil
}

// AddLink adds a link between parent and child tools. A link shared by
// several pipelines keeps every rank.
func (d *DOTDrawer) AddLink(parentID, childID string, rank int) error {
	if rank > d.maxRank {
		d.maxRank = rank
	}

	edge, err := d.graph.Edge(parentID, childID)
	if errors.Is(err, graph.ErrEdgeNotFound) {
		err = d.graph.AddEdge(parentID, childID, graph.EdgeAttribute(rankAttribute, strconv.Itoa(rank)))
		if err != nil {
			return errors.Wrapf(err, "unable to add edge from %s to %s", parentID, childID)
		}

		return nil
	}

	if err != nil {
		return errors.Wrapf(err, "unable to get edge from %s to %s", parentID, childID)
	}

	ranks := edge.Properties.Attributes[rankAttribute] + "," + strconv.Itoa(rank)

	err = d.graph.UpdateEdge(parentID, childID, graph.EdgeAttribute(rankAttribute, ranks))
	if err != nil {
		return errors.Wrapf(err, "unable to update edge from %s to %s", parentID, childID)
	}

	return nil
}

// SetScore annotates a tool with the score of the pipeline it ends.
func (d *DOTDrawer) SetScore(id string, rank int, score float64) error {
	_, properties, err := d.graph.VertexWithProperties(id)
	if err != nil {
		return errors.Wrap(err, "unable to get end vertex properties")
	}

	note := fmt.Sprintf("#%d: %.2f", rank+1, score)
	if previous, ok := properties.Attributes[noteAttribute]; ok {
		note = previous + ", " + note
	}

	properties.Attributes[noteAttribute] = note

	return nil
}

// rankColour returns the colour of the rank out of maxRank.
func rankColour(rank, maxRank int) (string, error) {
	fraction := 1.0
	if maxRank > 0 {
		fraction = 1 - float64(rank)/float64(maxRank)
	}

	red := maxRGB * fraction
	blue := maxRGB - red

	colour, err := colors.RGB(uint8(red), 0, uint8(blue)) //nolint
	if err != nil {
		return "", errors.Wrap(err, "unable to get colour")
	}

	return colour.ToHEX().String(), nil
}

// Draw writes the DOT description of the graph to w.
func (d *DOTDrawer) Draw(w io.Writer) error {
	doc, err := d.document()
	if err != nil {
		return err
	}

	tpl, err := template.New("pipelines").Parse(dotTemplate)
	if err != nil {
		return errors.Wrap(err, "failed to parse template")
	}

	err = tpl.Execute(w, doc)
	if err != nil {
		return errors.Wrap(err, "unable to draw pipelines")
	}

	return nil
}

func escape(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}

//nolint:lll //this is a template
const dotTemplate = `strict digraph {
	rankdir="LR";
{{range .Steps}}	"{{.ID}}" [ label={{.Label}} ];
{{$id := .ID}}{{range .Links}}	"{{$id}}" -> "{{.Target}}" [ color="{{.Colour}}", fontcolor="blue", label="{{.Label}}" ];
{{end}}{{end}}}
`

type dotDocument struct {
	Steps []dotStep
}

type dotStep struct {
	ID    string
	Label string
	Links []dotLink
}

type dotLink struct {
	Target string
	Colour string
	Label  string
}

// document lists the steps, then their outgoing links, in key order so that
// the output is stable.
func (d *DOTDrawer) document() (dotDocument, error) {
	adjacencyMap, err := d.graph.AdjacencyMap()
	if err != nil {
		return dotDocument{}, errors.Wrap(err, "unable to get adjacency map")
	}

	ids := make([]string, 0, len(adjacencyMap))
	for id := range adjacencyMap {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	doc := dotDocument{Steps: make([]dotStep, 0, len(ids))}

	for _, id := range ids {
		_, properties, err := d.graph.VertexWithProperties(id)
		if err != nil {
			return dotDocument{}, errors.Wrapf(err, "unable to get properties of %s", id)
		}

		step := dotStep{ID: id, Label: stepLabel(properties.Attributes)}

		targets := make([]string, 0, len(adjacencyMap[id]))
		for target := range adjacencyMap[id] {
			targets = append(targets, target)
		}

		sort.Strings(targets)

		for _, target := range targets {
			link, err := d.link(adjacencyMap[id][target])
			if err != nil {
				return dotDocument{}, err
			}

			step.Links = append(step.Links, link)
		}

		doc.Steps = append(doc.Steps, step)
	}

	return doc, nil
}

// stepLabel quotes the tool name. A tool ending pipelines gets an HTML label
// with their scores below the name.
func stepLabel(attributes map[string]string) string {
	note, ok := attributes[noteAttribute]
	if !ok {
		return `"` + attributes[labelAttribute] + `"`
	}

	return fmt.Sprintf(`<%s <BR /> <FONT POINT-SIZE="12">%s</FONT>>`, attributes[labelAttribute], note)
}

// link labels an edge with the ranks of the pipelines using it and colours
// it after the best of them.
func (d *DOTDrawer) link(edge graph.Edge[string]) (dotLink, error) {
	ranks := strings.Split(edge.Properties.Attributes[rankAttribute], ",")
	best := -1

	for _, raw := range ranks {
		rank, err := strconv.Atoi(raw)
		if err != nil {
			return dotLink{}, errors.Wrapf(err, "invalid rank on edge from %s to %s", edge.Source, edge.Target)
		}

		if best < 0 || rank < best {
			best = rank
		}
	}

	colour, err := rankColour(best, d.maxRank)
	if err != nil {
		return dotLink{}, err
	}

	return dotLink{Target: edge.Target, Colour: colour, Label: "#" + strings.Join(ranks, ",#")}, nil
}

var _ Drawer = (*DOTDrawer)(nil)
