// Package dataset loads simulation result tables from CSV files.
//
// The input is comma-delimited text with a header row. Columns are located
// by their exact header names (Nodes, Throughput, PDR, Delay, Collisions),
// so their order does not matter and extra columns are ignored. Values are
// taken as they are: there is no range checking.
package dataset
