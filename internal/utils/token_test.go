package utils

import (
	"testing"
	"time"
)

func TestNewRefreshTokenIsUniqueAndHashable(t *testing.T) {
	a, err := NewRefreshToken(7)
	if err != nil {
		t.Fatalf("new refresh token: %v", err)
	}
	b, err := NewRefreshToken(7)
	if err != nil {
		t.Fatalf("new refresh token: %v", err)
	}
	if a.Raw == b.Raw {
		t.Fatal("two refresh tokens must not collide")
	}
	if len(a.Raw) != 96 {
		t.Errorf("raw token length = %d, want 96 hex chars", len(a.Raw))
	}
	if got, want := a.Exp.Sub(time.Now().UTC()), 7*24*time.Hour; got > want || got < want-time.Minute {
		t.Errorf("expiry in %s, want about %s", got, want)
	}
	if HashRefreshRaw(a.Raw) != HashRefreshRaw(a.Raw) {
		t.Error("hash must be deterministic")
	}
	if HashRefreshRaw(a.Raw) == HashRefreshRaw(b.Raw) {
		t.Error("different tokens must hash differently")
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery", 4)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if !VerifyPassword(hash, "correct horse battery") {
		t.Error("correct password rejected")
	}
	if VerifyPassword(hash, "wrong password") {
		t.Error("wrong password accepted")
	}
}

func TestHashPasswordClampsInvalidCost(t *testing.T) {
	hash, err := HashPassword("some password", 99)
	if err != nil {
		t.Fatalf("hash password with out-of-range cost: %v", err)
	}
	if !VerifyPassword(hash, "some password") {
		t.Error("round trip failed after cost clamp")
	}
}
