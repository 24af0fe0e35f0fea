package service

import (
	"testing"
	"time"
)

func TestJWTRoundTrip(t *testing.T) {
	InitJWT("test-secret", time.Hour)

	token, err := GenerateJWT("user-1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	id, err := ParseJWT(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if id != "user-1" {
		t.Fatalf("user id = %q", id)
	}

	if _, err := ParseJWT(token + "x"); err == nil {
		t.Fatal("tampered token accepted")
	}

	InitJWT("other-secret", time.Hour)
	if _, err := ParseJWT(token); err == nil {
		t.Fatal("token signed with another secret accepted")
	}
}
