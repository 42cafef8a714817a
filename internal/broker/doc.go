// Package broker implements the mode-dependent replay/record decision
// protocol over a cassette.
//
// A Broker owns the single mutable reference in the system: its current
// cassette value. All mutation funnels through Replay, which holds one
// exclusive lock around the whole lookup, forward, append, persist
// sequence, so two concurrent misses for the same fingerprint cannot
// lose a recording.
//
// The decision table (Replay):
//
//	hit  + replay/auto  -> return recorded chunks, responder not invoked
//	hit  + record       -> forward live anyway, record fresh response
//	miss + replay       -> INTERACTION_NOT_FOUND
//	miss + record       -> forward live, or LIVE_RESPONDER_REQUIRED
//	miss + auto         -> forward live, or INTERACTION_NOT_FOUND
//
// Record mode always prefers live truth and treats the cassette as
// write-only history.
package broker
