// Traces: FR-140
// No t.Parallel() — JWT helpers read process-global env vars via t.Setenv.
package auth

import (
	"strings"
	"testing"
	"time"
)

func TestHashSecret_VerifyRoundTrip(t *testing.T) {
	hash, err := HashSecret("s3cret-value")
	if err != nil {
		t.Fatalf("HashSecret error = %v", err)
	}
	if hash == "s3cret-value" {
		t.Fatal("hash must not equal plaintext")
	}

	if !VerifySecret(hash, "s3cret-value") {
		t.Fatal("VerifySecret should accept the original secret")
	}
	if VerifySecret(hash, "wrong") {
		t.Fatal("VerifySecret should reject a wrong secret")
	}
}

func TestVerifySecret_InvalidHash_ReturnsFalse(t *testing.T) {
	if VerifySecret("not-a-bcrypt-hash", "anything") {
		t.Fatal("invalid hash should verify as false, not panic or pass")
	}
}

func TestGenerateJWT_ParseRoundTrip(t *testing.T) {
	t.Setenv("BEACON_JWT_SECRET", "test-secret")
	t.Setenv("BEACON_JWT_EXPIRY", "1")

	token, err := GenerateJWT("client-123")
	if err != nil {
		t.Fatalf("GenerateJWT error = %v", err)
	}
	if strings.Count(token, ".") != 2 {
		t.Fatalf("expected JWT with 3 segments, got %q", token)
	}

	claims, err := ParseJWT(token)
	if err != nil {
		t.Fatalf("ParseJWT error = %v", err)
	}
	if claims.ClientID != "client-123" {
		t.Fatalf("ClientID = %q; want %q", claims.ClientID, "client-123")
	}
}

func TestParseJWT_WrongSecret_Fails(t *testing.T) {
	t.Setenv("BEACON_JWT_SECRET", "secret-a")
	token, err := GenerateJWT("client-123")
	if err != nil {
		t.Fatalf("GenerateJWT error = %v", err)
	}

	t.Setenv("BEACON_JWT_SECRET", "secret-b")
	if _, err := ParseJWT(token); err == nil {
		t.Fatal("expected error parsing token signed with a different secret")
	}
}

func TestParseJWT_Garbage_Fails(t *testing.T) {
	t.Setenv("BEACON_JWT_SECRET", "test-secret")
	if _, err := ParseJWT("not.a.jwt"); err == nil {
		t.Fatal("expected error for malformed token")
	}
}

func TestParseJWTExpiry(t *testing.T) {
	cases := []struct {
		in   string
		want time.Duration
	}{
		{"", time.Duration(DefaultJWTExpiry) * time.Hour},
		{"abc", time.Duration(DefaultJWTExpiry) * time.Hour},
		{"2", 2 * time.Hour},
		{"48", 48 * time.Hour},
	}

	for _, tc := range cases {
		if got := parseJWTExpiry(tc.in); got != tc.want {
			t.Errorf("parseJWTExpiry(%q) = %v; want %v", tc.in, got, tc.want)
		}
	}
}
