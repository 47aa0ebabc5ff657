// Package pipeline runs the fetch-count-append loop over a file of image URLs.
//
// A Pipeline recreates the output file, streams the input file line by line
// and hands each non-blank line to a bounded errgroup. Each worker fetches
// its URL, counts colors, and appends one CSV record before taking the next
// item, so memory use is bounded by the worker count rather than the input
// size.
//
// The first failing item ends the run. Records already appended stay in the
// output file; there is no rollback and no retry. All errors returned by Run
// are one of the typed errors in errors.go, each of which renders the
// message printed to the user.
//
// EstimateWorkers derives the pool size from a memory budget and the CPU
// count when the user does not give one explicitly.
package pipeline
