package util

import "testing"

func TestHashPassword_VerifyRoundTrip(t *testing.T) {
	hash, err := HashPassword("p1")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "p1" || hash == "" {
		t.Fatalf("hash must not be empty or the plaintext: %q", hash)
	}

	ok, err := VerifyHash(hash, "p1")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !ok {
		t.Fatal("expected original password to verify")
	}

	ok, err = VerifyHash(hash, "p2")
	if err != nil {
		t.Fatalf("verify wrong password: %v", err)
	}
	if ok {
		t.Fatal("expected wrong password to fail verification")
	}
}

func TestHashPassword_Salted(t *testing.T) {
	h1, err := HashPassword("same-password")
	if err != nil {
		t.Fatalf("hash 1: %v", err)
	}
	h2, err := HashPassword("same-password")
	if err != nil {
		t.Fatalf("hash 2: %v", err)
	}
	if h1 == h2 {
		t.Fatal("two hashes of the same password must differ")
	}
}

func TestVerifyHash_InvalidEncoding(t *testing.T) {
	if _, err := VerifyHash("not-base64!!!", "p1"); err == nil {
		t.Fatal("expected error for invalid base64 hash")
	}
}
