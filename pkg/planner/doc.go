// Package planner finds, checks and ranks pipelines of analysis tools.
//
// A catalog describes tools as a dependency graph over data states: each tool
// requires some states and produces others. The planner answers three
// questions over that graph:
//
//   - ResolvePipelines: which orderings of tools lead from a set of preloaded
//     states to a set of target tools. Candidate paths are validated by
//     threading the state set through them, repaired by inserting missing
//     targets, then ranked by citation.
//   - ValidatePlan: whether an authored list of steps can run from the
//     preloaded states, and otherwise which step fails and why.
//   - SuggestReplacements: which tools of the same task could replace a tool.
//
// A Planner holds no state between calls and is safe for concurrent use.
package planner
