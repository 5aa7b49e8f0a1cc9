// Package chain extracts the critical request chain: the render-blocking
// lineage of high-priority network requests, reported to the audit layer.
//
// Extraction is a pure graph filter. It never simulates anything and it
// never mutates the graph it reads.
package chain
