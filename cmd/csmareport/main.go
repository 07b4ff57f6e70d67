// Package main provides the entry point for the csmareport CLI.
//
// csmareport turns the results file of a CSMA/CA ad-hoc Wi-Fi simulation
// into performance charts and a summary report.
//
// Usage:
//
//	csmareport report [results.csv]
//	csmareport history [results.csv]
//
// See --help for all available options.
package main

// main is the entry point for csmareport.
func main() {
	Execute()
}
