// Package types defines the shared input records of the generation pipeline:
// the ContentAnalysis produced by the upstream page scraper and the
// GenerationOptions supplied by the caller. Both are read-only inside the
// pipeline; no stage mutates them.
package types
