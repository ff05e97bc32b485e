package sessioncookie

import (
	"encoding/base64"
	"errors"
	"testing"

	"github.com/google/uuid"
)

func testKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	return key
}

func TestNewSealer_RejectsWrongKeySize(t *testing.T) {
	for _, n := range []int{0, 16, 31, 33, 64} {
		if _, err := NewSealer(make([]byte, n)); err == nil {
			t.Errorf("NewSealer with %d-byte key succeeded, want error", n)
		}
	}
	if _, err := NewSealer(testKey(t)); err != nil {
		t.Fatalf("NewSealer with 32-byte key: %v", err)
	}
}

func TestSealOpen_RoundTrip(t *testing.T) {
	s, err := NewSealer(testKey(t))
	if err != nil {
		t.Fatalf("new sealer: %v", err)
	}

	id := uuid.NewString()
	sealed, err := s.Seal(id)
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if sealed == id {
		t.Fatalf("sealed value leaks the session id")
	}

	got, err := s.Open(sealed)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if got != id {
		t.Fatalf("round trip = %q, want %q", got, id)
	}
}

func TestSeal_FreshNoncePerCall(t *testing.T) {
	s, err := NewSealer(testKey(t))
	if err != nil {
		t.Fatalf("new sealer: %v", err)
	}

	id := uuid.NewString()
	a, _ := s.Seal(id)
	b, _ := s.Seal(id)
	if a == b {
		t.Fatalf("two seals of the same id are identical, nonce reuse")
	}
}

func TestOpen_RejectsGarbageAndTampering(t *testing.T) {
	s, err := NewSealer(testKey(t))
	if err != nil {
		t.Fatalf("new sealer: %v", err)
	}

	for _, v := range []string{"", "not-base64!!", "AAAA", base64.RawURLEncoding.EncodeToString(make([]byte, 5))} {
		if _, err := s.Open(v); !errors.Is(err, ErrInvalid) {
			t.Errorf("Open(%q) err = %v, want ErrInvalid", v, err)
		}
	}

	sealed, err := s.Seal(uuid.NewString())
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	raw, err := base64.RawURLEncoding.DecodeString(sealed)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	raw[len(raw)-1] ^= 0x01
	if _, err := s.Open(base64.RawURLEncoding.EncodeToString(raw)); !errors.Is(err, ErrInvalid) {
		t.Fatalf("tampered cookie err = %v, want ErrInvalid", err)
	}
}

func TestOpen_RejectsOtherKey(t *testing.T) {
	a, err := NewSealer(testKey(t))
	if err != nil {
		t.Fatalf("sealer a: %v", err)
	}
	otherKey := testKey(t)
	otherKey[0] ^= 0xff
	b, err := NewSealer(otherKey)
	if err != nil {
		t.Fatalf("sealer b: %v", err)
	}

	sealed, err := a.Seal(uuid.NewString())
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if _, err := b.Open(sealed); !errors.Is(err, ErrInvalid) {
		t.Fatalf("cross-key open err = %v, want ErrInvalid", err)
	}
}
