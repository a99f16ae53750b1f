// Package measure records how long each stage of a planning request takes
// and how many candidates it handles.
package measure
