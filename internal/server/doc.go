// Package server hosts the Fiber app behind the `view` command: the embedded
// documentation page and client script, a stdlib search endpoint the script
// calls, and the request middleware chain (panic recovery, request IDs).
// Cache diagnostics live in the routes subpackage so callers choose whether to
// expose them.
package server
