package session

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenValid checks whether the given bearer token has the structural shape of a
// JWT (three dot-separated segments) and carries an expiry claim that lies
// strictly in the future. The signature is NOT verified here - the check only
// decides whether a locally cached credential is worth presenting to the
// backend at all.
func TokenValid(token string, now time.Time) bool {
	if strings.Count(token, ".") != 2 {
		return false
	}

	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}

	return exp.Time.After(now)
}
