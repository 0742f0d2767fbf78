// Package goTasks provides a session-managing client SDK for token-authenticated
// task backends: bearer-token login/register/logout flows, durable credential
// storage with optimistic session restore, and an authenticated task CRUD surface.
//
// The package is designed for long-lived client processes: Client methods are safe
// to call from multiple goroutines after initialization through [Builder.Build],
// and at most one session-mutating operation is in flight at a time.
//
// # Architecture boundaries
//
// goTasks is the public surface. It exposes [Client], [Builder], [Config], the
// credstore store implementations, and value types (Profile, Task,
// SessionSnapshot, etc.). All internal coordination — HTTP gateway calls, wire
// decoding, token expiry inspection, audit dispatch — lives under internal/ and
// is never exported.
//
// # What this package must NOT do
//
//   - Expose HTTP response bodies, wire DTOs, or transport details in its public
//     API. Backend failures surface only through the closed error taxonomy in
//     errors.go.
//   - Trust a cached token beyond display: every privileged call carries the
//     bearer token and any authorization failure tears the session down.
//   - Import any sub-package that re-imports goTasks (no import cycles).
//
// # Session contract
//
// A [Client] holds exactly one session. Its status is StatusUnknown until
// [Client.Restore] runs, StatusChecking while the persisted token is being
// confirmed, and settles to StatusAuthenticated or StatusAnonymous. CurrentUser
// is non-nil and Token non-empty exactly when the status is StatusAuthenticated.
package goTasks
