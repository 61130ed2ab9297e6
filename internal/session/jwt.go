package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	jwt "github.com/golang-jwt/jwt/v4"
)

// Claims beyond this are clamped so the conversion to int64 cannot overflow
const maxExpSeconds = 1 << 40

var errNoExpiry = errors.New("credential carries no usable exp claim")

// The signature is never checked here: the backend does that on every request. Only the
// exp claim is read, to decide locally when to stop using the credential.
var unverifiedParser = jwt.NewParser(jwt.WithJSONNumber())

// ExpiresAt decodes the credential's exp claim without contacting the backend.
func ExpiresAt(token string) (time.Time, error) {
	if token == "" {
		return time.Time{}, errNoExpiry
	}

	claims := jwt.MapClaims{}
	if _, _, err := unverifiedParser.ParseUnverified(token, claims); err != nil {
		return time.Time{}, fmt.Errorf("decode credential: %w", err)
	}

	var seconds float64
	switch exp := claims["exp"].(type) {
	case json.Number:
		f, err := exp.Float64()
		if err != nil {
			return time.Time{}, errNoExpiry
		}
		seconds = f
	case float64:
		seconds = exp
	default:
		return time.Time{}, errNoExpiry
	}

	if seconds <= 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return time.Time{}, errNoExpiry
	}

	if seconds > maxExpSeconds {
		seconds = maxExpSeconds
	}

	whole, frac := math.Modf(seconds)
	return time.Unix(int64(whole), int64(frac*1e9)), nil
}

// IsExpired reports whether the credential must no longer be used at now. It fails
// closed: anything that cannot be decoded counts as expired.
func IsExpired(token string, now time.Time) bool {
	exp, err := ExpiresAt(token)
	if err != nil {
		return true
	}
	return !now.Before(exp)
}
