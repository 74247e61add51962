package auth

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

// Tests use bcrypt.MinCost — the logic is identical, only slower at the
// production cost.
func newTestPasswordService(t *testing.T) *PasswordService {
	t.Helper()
	return NewPasswordServiceWithCost(bcrypt.MinCost)
}

func TestHashAndVerify(t *testing.T) {
	ps := newTestPasswordService(t)

	hash, err := ps.Hash("secreto123")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if hash == "secreto123" {
		t.Fatal("Hash() returned the plaintext")
	}

	if err := ps.Verify(hash, "secreto123"); err != nil {
		t.Errorf("Verify() with correct password: %v", err)
	}
}

func TestVerify_WrongPassword(t *testing.T) {
	ps := newTestPasswordService(t)

	hash, err := ps.Hash("secreto123")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	if err := ps.Verify(hash, "otracosa"); err == nil {
		t.Error("Verify() accepted a wrong password")
	}
}

func TestHash_SamePasswordDifferentHashes(t *testing.T) {
	ps := newTestPasswordService(t)

	h1, err := ps.Hash("secreto123")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	h2, err := ps.Hash("secreto123")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	// Each hash embeds a fresh random salt.
	if h1 == h2 {
		t.Error("two hashes of the same password are identical — salt missing?")
	}
}

func TestHash_TooLong(t *testing.T) {
	ps := newTestPasswordService(t)

	if _, err := ps.Hash(strings.Repeat("x", 73)); err == nil {
		t.Error("Hash() should reject passwords over 72 bytes")
	}
}

func TestVerify_GarbageHash(t *testing.T) {
	ps := newTestPasswordService(t)

	if err := ps.Verify("not-a-bcrypt-hash", "secreto123"); err == nil {
		t.Error("Verify() accepted a malformed hash")
	}
}
