// Package drawer renders ranked pipelines as Graphviz DOT graphs.
package drawer
