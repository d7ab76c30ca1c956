package token

import (
	"testing"
	"time"
)

func TestIssueAndParseRoundTrip(t *testing.T) {
	mgr := New("test-secret", "portal", time.Hour)

	raw, err := mgr.Issue("user-1", "reviewer")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := mgr.Parse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != "user-1" || claims.Role != "reviewer" {
		t.Fatalf("claims = %+v", claims)
	}
	if !claims.ExpiresAt.After(time.Now()) {
		t.Fatal("token already expired")
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	raw, err := New("secret-a", "portal", time.Hour).Issue("user-1", "student")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := New("secret-b", "portal", time.Hour).Parse(raw); err == nil {
		t.Fatal("token signed with another secret accepted")
	}
}

func TestParseRejectsExpired(t *testing.T) {
	mgr := New("test-secret", "portal", -time.Minute)
	raw, err := mgr.Issue("user-1", "student")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := mgr.Parse(raw); err == nil {
		t.Fatal("expired token accepted")
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, err := New("test-secret", "portal", time.Hour).Parse("not.a.token"); err == nil {
		t.Fatal("garbage accepted")
	}
}
