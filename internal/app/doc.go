// Package app wires the dispatch dependencies for the CLI and HTTP server.
//
// It loads the technician roster from the configured source, builds the
// registry, selector and session store, and exposes them through Wire.
package app
