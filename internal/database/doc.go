// Package database provides SQLite-based storage for csmareport run history.
//
// Every successful report run is stored with its input path, row count,
// delay lookup mode and summary figures, so that later runs on the same
// results file can be listed and compared. The database is a single file
// opened through modernc.org/sqlite, which needs no cgo.
package database
