// Package cassettestore provides durable load/save implementations for
// cassettes.
//
// Three stores share one contract: JSONFileStore (the reference
// implementation), YAMLFileStore, and SQLiteStore. Every save rewrites
// the full snapshot; none of the stores append. Every load rebuilds the
// cassette through the tape package, so interactions are re-validated
// and the fingerprint index is reconstructed from scratch.
//
// Read failures surface as *LoadError and write failures as
// *SaveError, both preserving the underlying cause and the store path
// for diagnostics.
//
// Persistence is not transactional across processes: concurrent
// writers to the same location can race. Serializing writers is the
// caller's responsibility.
package cassettestore
