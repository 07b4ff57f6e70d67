// Package report renders a finished run for people and tools.
//
// This package contains writers for different output formats:
//   - SimpleWriter: the plain text performance summary printed to stdout
//   - JSONWriter: structured JSON output for tool integration
//   - MarkdownWriter: GitHub Flavored Markdown with the charts embedded
//
// Writers implement the Writer interface, allowing them to be used
// interchangeably and composed for multi-format output.
package report
