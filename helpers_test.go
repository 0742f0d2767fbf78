package goTasks

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// expiredJWT mints a structurally valid HS256 token whose exp claim is an
// hour in the past. The signature key is irrelevant: the client only peeks
// at claims, it never verifies.
func expiredJWT(t *testing.T) string {
	t.Helper()

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "1",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	signed, err := tok.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign test token: %v", err)
	}
	return signed
}
