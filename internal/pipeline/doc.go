// Package pipeline executes the report steps in sequence.
//
// A run loads the results file, derives the per-node throughput column,
// renders the performance panel and the collision chart, and computes the
// summary. Each stage is a Step that receives the current model.Run and adds
// its result to it. Execution is strictly sequential and stops at the first
// failing step.
package pipeline
