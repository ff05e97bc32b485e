// Package sessioncookie seals session identifiers into opaque cookie
// values using AES-GCM authenticated encryption. The cookie value is
// base64url(nonce ∥ ciphertext) over the 16 raw UUID bytes, so a client
// cannot read, forge, or swap session ids; any tampering fails
// authentication on open.
package sessioncookie

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"

	"github.com/google/uuid"
)

// Name is the session cookie name.
const Name = "RESOLVER_SESSION"

// encoding is unpadded base64url, safe for cookie values.
var encoding = base64.RawURLEncoding

// ErrInvalid is returned when a cookie value cannot be opened: wrong
// length, wrong key, or tampered ciphertext.
var ErrInvalid = errors.New("invalid session cookie")

// Sealer encrypts and decrypts session ids with a fixed 32-byte key.
type Sealer struct {
	aead cipher.AEAD
}

// NewSealer builds a Sealer from a 32-byte key.
func NewSealer(key []byte) (*Sealer, error) {
	if len(key) != 32 {
		return nil, errors.New("session cookie key must be 32 bytes")
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Sealer{aead: aead}, nil
}

// Seal encrypts a session id (UUID string) into a cookie value.
func (s *Sealer) Seal(sessionID string) (string, error) {
	id, err := uuid.Parse(sessionID)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	raw := id[:]
	sealed := s.aead.Seal(nonce, nonce, raw, nil)
	return encoding.EncodeToString(sealed), nil
}

// Open decrypts a cookie value back into the session id. Garbage or
// tampered values yield ErrInvalid.
func (s *Sealer) Open(value string) (string, error) {
	data, err := encoding.DecodeString(value)
	if err != nil {
		return "", ErrInvalid
	}

	ns := s.aead.NonceSize()
	// Must at least hold the nonce and the GCM tag.
	if len(data) < ns+16 {
		return "", ErrInvalid
	}

	plain, err := s.aead.Open(nil, data[:ns], data[ns:], nil)
	if err != nil {
		return "", ErrInvalid
	}
	if len(plain) != 16 {
		return "", ErrInvalid
	}

	id, err := uuid.FromBytes(plain)
	if err != nil {
		return "", ErrInvalid
	}
	return id.String(), nil
}
