// Package credstore provides durable storage for the client's credential
// record: the JSON-encoded user profile and the raw bearer token, kept as two
// independent entries under fixed keys.
//
// # Components
//
//   - [Store] — the read/write/clear contract the session manager depends on.
//   - [Memory] — mutex-guarded in-process store for tests and ephemeral use.
//   - [File] — one file per entry under a directory; the durable store for
//     CLI and desktop processes.
//   - [Redis] — two keys under a prefix, for processes that share a session
//     through Redis.
//
// # Read contract
//
// The two entries are written and cleared together, but the store cannot make
// that atomic. The mitigation is read-side: Read treats a partial record
// (either entry missing) or a corrupt user entry as fully absent, never as
// partially valid.
package credstore
