// Package docs acquires and caches the two per-version artifacts the server
// needs: the builtin function descriptor set and the Go source archive.
//
// The metadata pipeline (EnsureDocs) consults the freshness policy, reuses the
// cached descriptor set when allowed and otherwise fetches the builtin page,
// writing the descriptor set first and the freshness marker last. Remote
// "not found" answers surface as ErrVersionNotFound; everything else network
// or parse related surfaces as ErrUpstream.
//
// The archive pipeline (GetArchive) has no freshness policy. A cached blob is
// returned as is; otherwise mirrors are tried in order and the first success
// wins. When every mirror fails a synthetic fallback envelope is produced so
// callers always receive usable bytes. Archive.Kind tells the two apart.
package docs
