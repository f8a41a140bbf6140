package domain

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"
)

// Credential is the bearer value sent as "Authorization: Bearer <value>".
// It is either an opaque API key or a three-segment signed token whose
// payload carries user_id/sub and exp claims.
type Credential string

type tokenClaims struct {
	UserID  string `json:"user_id"`
	Subject string `json:"sub"`
	Expiry  int64  `json:"exp"`
}

func (c Credential) IsEmpty() bool {
	return strings.TrimSpace(string(c)) == ""
}

// IsSignedToken reports whether the credential has the three-segment shape
// with base64url-decodable header and payload segments.
func (c Credential) IsSignedToken() bool {
	parts := strings.Split(strings.TrimSpace(string(c)), ".")
	if len(parts) != 3 {
		return false
	}

	for _, part := range parts[:2] {
		if _, err := decodeSegment(part); err != nil {
			return false
		}
	}

	return true
}

// UserID extracts the user identifier from the payload segment, preferring
// the user_id claim over sub. Empty on any decode failure.
func (c Credential) UserID() string {
	claims, ok := c.claims()
	if !ok {
		return ""
	}

	if claims.UserID != "" {
		return claims.UserID
	}

	return claims.Subject
}

// ExpiresAt returns the exp claim as a UTC timestamp, or a zero time when
// the credential is not a signed token or carries no expiry.
func (c Credential) ExpiresAt() time.Time {
	claims, ok := c.claims()
	if !ok || claims.Expiry <= 0 {
		return time.Time{}
	}

	return time.Unix(claims.Expiry, 0).UTC()
}

func (c Credential) claims() (tokenClaims, bool) {
	parts := strings.Split(strings.TrimSpace(string(c)), ".")
	if len(parts) != 3 {
		return tokenClaims{}, false
	}

	decoded, err := decodeSegment(parts[1])
	if err != nil {
		return tokenClaims{}, false
	}

	var claims tokenClaims
	if err := json.Unmarshal(decoded, &claims); err != nil {
		return tokenClaims{}, false
	}

	return claims, true
}

func decodeSegment(segment string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(strings.TrimRight(segment, "="))
}
