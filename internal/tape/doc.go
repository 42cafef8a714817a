// Package tape provides the value types for recorded interactions.
//
// This package contains the interaction model only. All other internal
// packages import tape; tape imports nothing internal. This keeps the
// model the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - All types are immutable by discipline: no mutator methods, updates
//     construct new values (Cassette.Append returns a new Cassette)
//   - Fingerprints are content-addressed via RFC 8785 canonical JSON
//     and SHA-256; header order never affects a fingerprint
//   - The cassette lookup index is derived state, rebuilt on every
//     construction and never serialized
//   - All JSON tags use snake_case
package tape
