package jwtkeys

import "errors"

// ErrKeyNotFound is returned when no signing key matches the token.
var ErrKeyNotFound = errors.New("jwt signing key not found")

// KeyProvider resolves the HMAC secret for a token's kid header.
type KeyProvider interface {
	ResolveKey(kid string) ([]byte, error)
}

// StaticProvider serves one shared secret and ignores kid.
type StaticProvider struct {
	secret []byte
}

// NewStaticProvider creates a provider for a single shared secret.
func NewStaticProvider(secret string) *StaticProvider {
	return &StaticProvider{secret: []byte(secret)}
}

// ResolveKey returns the shared secret, or ErrKeyNotFound when it is empty.
func (p *StaticProvider) ResolveKey(string) ([]byte, error) {
	if len(p.secret) == 0 {
		return nil, ErrKeyNotFound
	}
	return p.secret, nil
}
