// Package cache defines the key-value store that backs the module discovery
// cache. The store is an opaque collaborator with get/put/forget semantics and
// a per-entry TTL; two backends are provided: a disk store that writes each key
// to <StoragePath>/<key>.cache with temp file + rename and records the expiry
// in the file's ModTime, and an in-memory store for tests and single-shot CLI
// runs. Callers above this package treat every error as a cache miss unless
// they explicitly opt into strict handling.
package cache
