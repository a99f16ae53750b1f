// Package store provides a thread-safe in-memory graph.Store that indexes
// edges by relation, so the catalog can follow one kind of link at a time.
package store

import (
	"cmp"
	"slices"
	"sync"

	"github.com/dominikbraun/graph"
)

// AnyRelation matches every edge in Incoming and Outgoing.
const AnyRelation = ""

// RelationStore is a graph.Store that lists the edges around a vertex.
type RelationStore[K cmp.Ordered, T any] interface {
	graph.Store[K, T]
	// Incoming returns the edges entering k carrying relation, by source.
	Incoming(k K, relation string) ([]graph.Edge[K], error)
	// Outgoing returns the edges leaving k carrying relation, by target.
	Outgoing(k K, relation string) ([]graph.Edge[K], error)
}

type link[K comparable] struct {
	source K
	target K
}

type vertex[T any] struct {
	value      T
	properties graph.VertexProperties
}

// MemoryStore keeps every edge once and two neighbour indexes per vertex.
type MemoryStore[K cmp.Ordered, T any] struct {
	lock        sync.RWMutex
	attribute   string
	vertices    map[K]vertex[T]
	edges       map[link[K]]graph.Edge[K]
	sources     map[K]map[K]struct{} // target -> sources
	targets     map[K]map[K]struct{} // source -> targets
	edgeOrdinal map[link[K]]int
	nextOrdinal int
}

// NewMemoryStore creates a store reading the relation of each edge from the
// edge attribute named attribute.
func NewMemoryStore[K cmp.Ordered, T any](attribute string) *MemoryStore[K, T] {
	return &MemoryStore[K, T]{
		attribute:   attribute,
		vertices:    make(map[K]vertex[T]),
		edges:       make(map[link[K]]graph.Edge[K]),
		sources:     make(map[K]map[K]struct{}),
		targets:     make(map[K]map[K]struct{}),
		edgeOrdinal: make(map[link[K]]int),
	}
}

func (s *MemoryStore[K, T]) AddVertex(k K, t T, p graph.VertexProperties) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.vertices[k]; ok {
		return graph.ErrVertexAlreadyExists
	}

	s.vertices[k] = vertex[T]{value: t, properties: p}

	return nil
}

func (s *MemoryStore[K, T]) Vertex(k K) (T, graph.VertexProperties, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	v, ok := s.vertices[k]
	if !ok {
		var zero T

		return zero, graph.VertexProperties{}, graph.ErrVertexNotFound
	}

	return v.value, v.properties, nil
}

// RemoveVertex only removes vertices without edges.
func (s *MemoryStore[K, T]) RemoveVertex(k K) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.vertices[k]; !ok {
		return graph.ErrVertexNotFound
	}

	if len(s.sources[k]) > 0 || len(s.targets[k]) > 0 {
		return graph.ErrVertexHasEdges
	}

	delete(s.sources, k)
	delete(s.targets, k)
	delete(s.vertices, k)

	return nil
}

// ListVertices returns the vertex keys in ascending order.
func (s *MemoryStore[K, T]) ListVertices() ([]K, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	keys := make([]K, 0, len(s.vertices))
	for k := range s.vertices {
		keys = append(keys, k)
	}

	slices.Sort(keys)

	return keys, nil
}

func (s *MemoryStore[K, T]) VertexCount() (int, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return len(s.vertices), nil
}

func (s *MemoryStore[K, T]) AddEdge(sourceHash, targetHash K, edge graph.Edge[K]) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	id := link[K]{source: sourceHash, target: targetHash}
	if _, ok := s.edges[id]; !ok {
		s.edgeOrdinal[id] = s.nextOrdinal
		s.nextOrdinal++
	}

	s.edges[id] = edge
	index(s.sources, targetHash, sourceHash)
	index(s.targets, sourceHash, targetHash)

	return nil
}

func (s *MemoryStore[K, T]) UpdateEdge(sourceHash, targetHash K, edge graph.Edge[K]) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	id := link[K]{source: sourceHash, target: targetHash}
	if _, ok := s.edges[id]; !ok {
		return graph.ErrEdgeNotFound
	}

	s.edges[id] = edge

	return nil
}

func (s *MemoryStore[K, T]) RemoveEdge(sourceHash, targetHash K) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	id := link[K]{source: sourceHash, target: targetHash}

	delete(s.edges, id)
	delete(s.edgeOrdinal, id)
	delete(s.sources[targetHash], sourceHash)
	delete(s.targets[sourceHash], targetHash)

	return nil
}

func (s *MemoryStore[K, T]) Edge(sourceHash, targetHash K) (graph.Edge[K], error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	edge, ok := s.edges[link[K]{source: sourceHash, target: targetHash}]
	if !ok {
		return graph.Edge[K]{}, graph.ErrEdgeNotFound
	}

	return edge, nil
}

// ListEdges returns the edges in insertion order.
func (s *MemoryStore[K, T]) ListEdges() ([]graph.Edge[K], error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	ids := make([]link[K], 0, len(s.edges))
	for id := range s.edges {
		ids = append(ids, id)
	}

	slices.SortFunc(ids, func(a, b link[K]) int { return cmp.Compare(s.edgeOrdinal[a], s.edgeOrdinal[b]) })

	res := make([]graph.Edge[K], len(ids))
	for i, id := range ids {
		res[i] = s.edges[id]
	}

	return res, nil
}

func (s *MemoryStore[K, T]) Incoming(k K, relation string) ([]graph.Edge[K], error) {
	return s.around(k, relation, s.sources, func(neighbour K) link[K] { return link[K]{source: neighbour, target: k} })
}

func (s *MemoryStore[K, T]) Outgoing(k K, relation string) ([]graph.Edge[K], error) {
	return s.around(k, relation, s.targets, func(neighbour K) link[K] { return link[K]{source: k, target: neighbour} })
}

func (s *MemoryStore[K, T]) around(k K, relation string, neighbours map[K]map[K]struct{}, linkTo func(K) link[K]) ([]graph.Edge[K], error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	if _, ok := s.vertices[k]; !ok {
		return nil, graph.ErrVertexNotFound
	}

	keys := make([]K, 0, len(neighbours[k]))
	for neighbour := range neighbours[k] {
		keys = append(keys, neighbour)
	}

	slices.Sort(keys)

	res := make([]graph.Edge[K], 0, len(keys))

	for _, neighbour := range keys {
		edge := s.edges[linkTo(neighbour)]
		if relation != AnyRelation && edge.Properties.Attributes[s.attribute] != relation {
			continue
		}

		res = append(res, edge)
	}

	return res, nil
}

func index[K comparable](idx map[K]map[K]struct{}, k, neighbour K) {
	if _, ok := idx[k]; !ok {
		idx[k] = make(map[K]struct{})
	}

	idx[k][neighbour] = struct{}{}
}

var _ RelationStore[string, struct{}] = (*MemoryStore[string, struct{}])(nil)
