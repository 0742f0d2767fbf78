// Package token inspects bearer tokens without trusting them. The backend is
// the only party that validates a token; this package exists so an obviously
// expired JWT can skip the optimistic restore path.
package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ExpiresAt returns the exp claim of tok when tok parses as a JWT carrying
// one. The signature is NOT verified; the result is a hint, never an
// authorization decision. Opaque tokens return ok=false.
func ExpiresAt(tok string) (time.Time, bool) {
	parser := jwt.NewParser()

	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(tok, claims); err != nil {
		return time.Time{}, false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// ExpiredBy reports whether tok is a JWT whose exp claim lies more than
// leeway in the past as of now. Opaque tokens and tokens without exp are
// never considered expired.
func ExpiredBy(tok string, now time.Time, leeway time.Duration) bool {
	exp, ok := ExpiresAt(tok)
	if !ok {
		return false
	}
	return now.After(exp.Add(leeway))
}
