// Package gateway implements the HTTP client for the task backend: the auth
// endpoints (login, register, logout, verify) and the task CRUD endpoints,
// all under one base path.
//
// # Architecture boundaries
//
// This package owns wire encoding, header attachment (bearer token, request
// correlation id, user agent), and the mapping of backend responses into the
// closed error set in errors.go. Callers never see raw response bodies or
// status codes.
//
// # What this package must NOT do
//
//   - Mutate session state or the credential store; it reports outcomes and
//     the Client decides.
//   - Retry. The session layer owns retry policy, and today that policy is
//     "don't".
package gateway
