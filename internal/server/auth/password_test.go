package auth

import "testing"

func TestHashAndVerify_Roundtrip(t *testing.T) {
	t.Parallel()

	h := NewPasswordHasher()

	hash, err := h.Hash("secret1")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if hash == "secret1" {
		t.Fatalf("hash must not equal plaintext")
	}
	if !h.Verify("secret1", hash) {
		t.Fatalf("expected password to verify against its own hash")
	}
	if h.Verify("secret2", hash) {
		t.Fatalf("expected wrong password to fail verification")
	}
}

func TestHash_FreshSaltPerCall(t *testing.T) {
	t.Parallel()

	h := NewPasswordHasher()

	a, err := h.Hash("secret1")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	b, err := h.Hash("secret1")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if a == b {
		t.Fatalf("expected distinct hashes for the same input")
	}
	if !h.Verify("secret1", a) || !h.Verify("secret1", b) {
		t.Fatalf("both hashes must verify against the original password")
	}
}

func TestVerify_MalformedHash(t *testing.T) {
	t.Parallel()

	h := NewPasswordHasher()

	for _, malformed := range []string{"", "not-a-bcrypt-hash", "$2a$xx$broken"} {
		if h.Verify("secret1", malformed) {
			t.Fatalf("malformed hash %q must not verify", malformed)
		}
	}
}
