package api

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenExpired reports whether a JWT bearer token carries an exp claim in the past.
// The signature is not checked; the backend remains the authority. Opaque
// (non-JWT) tokens are never considered expired.
func TokenExpired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !now.Before(exp.Time)
}

// UserIDFromToken extracts the user id from a JWT's user_id or sub claim.
func UserIDFromToken(token string) (int64, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return 0, false
	}

	switch v := claims["user_id"].(type) {
	case float64:
		return int64(v), true
	case string:
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			return id, true
		}
	}

	if sub, err := claims.GetSubject(); err == nil && sub != "" {
		if id, err := strconv.ParseInt(sub, 10, 64); err == nil {
			return id, true
		}
	}
	return 0, false
}
