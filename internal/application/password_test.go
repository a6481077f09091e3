package application

import (
	"errors"
	"strings"
	"testing"
)

// lightArgon2idParams keeps the KDF cheap enough for the test suite.
var lightArgon2idParams = Argon2idParams{
	Memory:      8 * 1024,
	Iterations:  1,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

func TestHashPasswordRoundTrip(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("correct horse battery", lightArgon2idParams)
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=") {
		t.Fatalf("unexpected hash encoding: %q", hash)
	}

	if err := VerifyPassword(hash, "correct horse battery"); err != nil {
		t.Fatalf("VerifyPassword rejected the original password: %v", err)
	}
	if err := VerifyPassword(hash, "wrong password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestHashPasswordSaltsEveryHash(t *testing.T) {
	t.Parallel()

	first, err := HashPassword("same password", lightArgon2idParams)
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	second, err := HashPassword("same password", lightArgon2idParams)
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if first == second {
		t.Fatal("two hashes of the same password should differ")
	}
}

func TestVerifyPasswordEmbeddedParams(t *testing.T) {
	t.Parallel()

	// The stored hash carries its own parameters, so verification works even
	// when they differ from the current defaults.
	hash, err := HashPassword("correct horse battery", lightArgon2idParams)
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if err := VerifyPassword(hash, "correct horse battery"); err != nil {
		t.Fatalf("VerifyPassword returned error: %v", err)
	}
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		hash string
	}{
		{"empty", ""},
		{"plain text", "not-a-hash"},
		{"wrong algorithm", "$bcrypt$v=19$m=8192,t=1,p=1$c2FsdA$aGFzaA"},
		{"missing sections", "$argon2id$v=19$m=8192,t=1,p=1"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if err := VerifyPassword(tc.hash, "password"); !errors.Is(err, ErrInvalidPasswordHash) {
				t.Fatalf("expected ErrInvalidPasswordHash, got %v", err)
			}
		})
	}
}

func TestVerifyPasswordIncompatibleVersion(t *testing.T) {
	t.Parallel()

	hash := "$argon2id$v=18$m=8192,t=1,p=1$c2FsdHNhbHRzYWx0c2FsdA$aGFzaGhhc2hoYXNoaGFzaGhhc2hoYXNoaGFzaGhhc2g"
	if err := VerifyPassword(hash, "password"); !errors.Is(err, ErrIncompatiblePasswordVersion) {
		t.Fatalf("expected ErrIncompatiblePasswordVersion, got %v", err)
	}
}
