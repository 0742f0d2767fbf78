package credstore

import (
	"context"
	"encoding/json"
)

// Storage keys, fixed by the backend contract. The user entry holds the
// JSON-encoded profile, the token entry the raw bearer string.
const (
	KeyUser  = "user"
	KeyToken = "access_token"
)

// Record is the persisted credential pair mirroring an authenticated session.
type Record struct {
	UserJSON []byte
	Token    string
}

// Store is the durable key/value contract the session manager depends on.
// Implementations hold no session logic.
type Store interface {
	// Read returns the stored record and true when both entries are present
	// and the user entry is valid JSON. Partial or corrupt state is reported
	// as absent with a nil error; only real I/O or transport faults return an
	// error.
	Read(ctx context.Context) (Record, bool, error)

	// Write stores both entries, overwriting any prior value.
	Write(ctx context.Context, rec Record) error

	// Clear removes both entries unconditionally. It is idempotent.
	Clear(ctx context.Context) error
}

// validRecord reports whether both entries are present and the user entry
// deserializes. Shared by every implementation so the absent-on-partial rule
// cannot drift between backends.
func validRecord(userJSON []byte, token string) bool {
	if len(userJSON) == 0 || token == "" {
		return false
	}
	return json.Valid(userJSON)
}
