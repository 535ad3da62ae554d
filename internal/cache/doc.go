// Package cache defines the disk-backed version cache: every Go release gets
// its own partition directory under the cache root holding the freshness
// marker, the serialized builtin descriptor set and the source archive blob.
// Writes go through a temp file + rename so readers only ever observe a
// complete old file or a complete new one, and a per-entry lock serializes
// concurrent writers inside one process. Higher layers (policy, docs) decide
// when to read or refresh; this package only resolves paths and moves bytes.
package cache
