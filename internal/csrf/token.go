// Package csrf issues and verifies anti-CSRF nonce/token pairs for
// server-rendered forms.
//
// A pair is a random nonce plus an HMAC-SHA256 tag over the nonce's hex
// string, keyed by an application secret. Verification only proves that the
// pair was produced by a holder of the secret: pairs do not expire, are not
// bound to a session and may be replayed.
package csrf

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
)

// NonceSize is the number of random bytes behind each nonce.
const NonceSize = 16

// ErrEntropy reports that the secure random source could not supply a nonce.
var ErrEntropy = errors.New("csrf: random source unavailable")

// Pair is a nonce and the token proving it was issued with the secret key.
type Pair struct {
	Nonce string
	Token string
}

// Authenticator generates and verifies pairs for a single secret key.
// It holds no mutable state and is safe for concurrent use.
type Authenticator struct {
	secret []byte
	random io.Reader
}

// Option customises an Authenticator.
type Option func(*Authenticator)

// WithRandom replaces the random source used for nonces.
func WithRandom(r io.Reader) Option {
	return func(a *Authenticator) {
		if r != nil {
			a.random = r
		}
	}
}

var defaultRandom io.Reader = rand.Reader

// NewAuthenticator returns an Authenticator keyed by secret. The key is not
// checked for length or strength.
func NewAuthenticator(secret string, opts ...Option) *Authenticator {
	a := &Authenticator{secret: []byte(secret), random: defaultRandom}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Generate draws a fresh nonce and signs it.
func (a *Authenticator) Generate() (Pair, error) {
	buf := make([]byte, NonceSize)
	if _, err := io.ReadFull(a.random, buf); err != nil {
		return Pair{}, fmt.Errorf("%w: %w", ErrEntropy, err)
	}
	nonce := hex.EncodeToString(buf)
	return Pair{Nonce: nonce, Token: a.Sign(nonce)}, nil
}

// Sign returns the lowercase hex HMAC-SHA256 of the nonce string.
func (a *Authenticator) Sign(nonce string) string {
	mac := hmac.New(sha256.New, a.secret)
	_, _ = mac.Write([]byte(nonce))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether token is the tag for nonce. Empty values never verify.
// Tokens of the wrong length are rejected without comparing bytes; only the
// public tag length (64 hex characters) is revealed by timing.
func (a *Authenticator) Verify(nonce, token string) bool {
	if nonce == "" || token == "" {
		return false
	}
	expected := a.Sign(nonce)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(token)) == 1
}
