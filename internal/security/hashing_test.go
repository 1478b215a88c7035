package security

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHasher_HashAndVerify(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)
	hash, err := h.Hash("secret123")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if hash == "" || hash == "secret123" {
		t.Fatalf("Hash returned %q", hash)
	}
	if !h.Verify(hash, "secret123") {
		t.Fatal("Verify rejected the correct password")
	}
	if h.Verify(hash, "wrong") {
		t.Fatal("Verify accepted a wrong password")
	}
}

func TestHasher_VerifyMalformedHash(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)
	if h.Verify("", "secret123") {
		t.Error("empty hash verified")
	}
	if h.Verify("not-a-bcrypt-hash", "secret123") {
		t.Error("malformed hash verified")
	}
}

func TestHasher_EmptyPassword(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)
	if _, err := h.Hash(""); !errors.Is(err, ErrEmptyPassword) {
		t.Fatalf("Hash(\"\"): want ErrEmptyPassword, got %v", err)
	}
}

func TestHasher_PasswordLength(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)
	if _, err := h.Hash(strings.Repeat("p", MaxPasswordBytes)); err != nil {
		t.Fatalf("Hash at limit: %v", err)
	}
	if _, err := h.Hash(strings.Repeat("p", MaxPasswordBytes+1)); !errors.Is(err, ErrPasswordTooLong) {
		t.Fatalf("Hash over limit: want ErrPasswordTooLong, got %v", err)
	}
}

func TestNewHasher_Cost(t *testing.T) {
	testCases := []struct {
		in, want int
	}{
		{12, 12},
		{0, bcrypt.DefaultCost},
		{-1, bcrypt.DefaultCost},
		{2, bcrypt.MinCost},
		{99, bcrypt.MaxCost},
	}
	for _, tc := range testCases {
		if got := NewHasher(tc.in).Cost(); got != tc.want {
			t.Errorf("NewHasher(%d).Cost() = %d, want %d", tc.in, got, tc.want)
		}
	}
}
