/*
Package observability provides tools for monitoring runs of the espalier engine.

It includes a step aggregator that attaches to a run through hooks and
condenses the step stream into summary statistics: operation counts, peak
stack depths and elapsed wall time.
*/
package observability
