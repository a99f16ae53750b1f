// Package model provides the data structures shared by the planner packages.
// It defines the tools of a catalog, the data states they consume and produce,
// the pipelines built from them and the plan steps submitted for validation.
package model
