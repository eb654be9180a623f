// Package server hosts the read-only diagnostics HTTP service started by
// `modkit serve`. It builds the Fiber application, assigns request IDs, logs
// requests, and leaves endpoint registration to the routes subpackage so the
// handlers can depend on the registry without creating import cycles.
package server
