package ratelimiter

import (
	"context"
	"testing"
	"time"
)

func TestNilClientIsPermissive(t *testing.T) {
	ctx := context.Background()

	release, ok, err := TryLock(ctx, nil, ScopeCertificate, "s:c", time.Second)
	if err != nil || !ok {
		t.Fatalf("TryLock: want ok got ok=%v err=%v", ok, err)
	}
	release()

	n, err := Hit(ctx, nil, ScopeLogin, "a@b.c", time.Minute)
	if err != nil || n != 0 {
		t.Fatalf("Hit: want 0 got %d err=%v", n, err)
	}
	if n, _ := Attempts(ctx, nil, ScopeLogin, "a@b.c"); n != 0 {
		t.Fatalf("Attempts: want 0 got %d", n)
	}
	if err := Clear(ctx, nil, ScopeLogin, "a@b.c"); err != nil {
		t.Fatalf("Clear: %v", err)
	}
}

func TestKeyFormat(t *testing.T) {
	if got := key(ScopeLogin, "a@b.c"); got != "rate_limit:login:a@b.c" {
		t.Fatalf("key: got=%s", got)
	}
}
