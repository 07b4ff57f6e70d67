// Package model defines the core data structures used throughout csmareport.
//
// This package contains the following main types:
//   - Row: one simulation run at a given node count
//   - Table: the loaded result rows in run order, plus the derived
//     per-node throughput column
//   - Summary: the extrema and delay figures printed after rendering
//   - Run: the state carried through one pipeline execution
//
// The models live in their own package because the dataset, chart,
// pipeline, report, export and database packages all share them.
//
// Rows and summaries are serializable to JSON for report output and history
// storage. Non-finite numbers (the result of dividing by a zero node count)
// encode as null.
package model
