// Package chart renders the performance panel and the collision chart as PNG
// images with gonum/plot.
//
// Every chart plots one column of a model.Table against the node count using
// circle markers joined by a line, with grid lines on both axes. Values that
// are not finite cannot be placed on an axis, so they are left out of the
// drawn series and reported to the caller.
package chart
