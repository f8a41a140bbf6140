package application

import (
	"encoding/base64"
	"testing"

	"github.com/bnema/packybar/internal/domain"
)

func testSignedToken(t *testing.T, payload string) domain.Credential {
	t.Helper()

	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256"}`))
	body := base64.RawURLEncoding.EncodeToString([]byte(payload))
	return domain.Credential(header + "." + body + ".sig")
}
