// Package auth gates the API behind a shared service token. The server
// sits between trusted bot frontends and the database, so callers
// authenticate as a service, not as individual players.
package auth

import (
	"crypto/subtle"
	"errors"
	"strings"
)

var ErrInvalidToken = errors.New("invalid or missing service token")

type Verifier struct {
	token []byte
}

func NewVerifier(token string) *Verifier {
	return &Verifier{token: []byte(strings.TrimSpace(token))}
}

// Verify checks a presented bearer token in constant time.
func (v *Verifier) Verify(presented string) error {
	presented = strings.TrimSpace(presented)
	if len(v.token) == 0 || presented == "" {
		return ErrInvalidToken
	}
	if subtle.ConstantTimeCompare(v.token, []byte(presented)) != 1 {
		return ErrInvalidToken
	}
	return nil
}
