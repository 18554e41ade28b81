package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/devconnector/directory-api/internal/core/domain"
	"github.com/devconnector/directory-api/internal/core/ports"
)

func newTestCache(t *testing.T) (*ProfileCache, string) {
	t.Helper()
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("set REDIS_TEST_ADDR to run this integration test")
	}

	ctx := context.Background()
	client, err := Connect(ctx, Config{Addr: addr})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}

	cache := NewProfileCache(client, time.Minute)
	userID := "cache-test-" + time.Now().Format("150405.000000")
	t.Cleanup(func() {
		client.Del(ctx, cache.key(userID), cache.genKey(userID))
		client.Close()
	})
	return cache, userID
}

func testView(userID, status string) *ports.ProfileView {
	return &ports.ProfileView{
		Profile: domain.Profile{ID: "p1", UserID: userID, Status: status, Skills: []string{"go"}},
		User:    ports.ProfileOwner{ID: userID, Name: "Ann"},
	}
}

// TestProfileCache_Integration runs against a live Redis.
func TestProfileCache_Integration(t *testing.T) {
	cache, userID := newTestCache(t)
	ctx := context.Background()

	miss, gen, err := cache.Get(ctx, userID)
	if err != nil || miss != nil {
		t.Fatalf("expected miss, got view=%v err=%v", miss, err)
	}

	if err := cache.Set(ctx, testView(userID, "Developer"), gen); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, _, err := cache.Get(ctx, userID)
	if err != nil || got == nil {
		t.Fatalf("expected hit, got view=%v err=%v", got, err)
	}
	if got.Status != "Developer" || got.User.Name != "Ann" || got.UserID != userID {
		t.Fatalf("unexpected cached view: %+v", got)
	}

	if err := cache.Invalidate(ctx, userID); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if view, _, _ := cache.Get(ctx, userID); view != nil {
		t.Fatalf("expected miss after invalidate")
	}
}

func TestProfileCache_SetSkipsStaleGeneration(t *testing.T) {
	cache, userID := newTestCache(t)
	ctx := context.Background()

	_, readGen, err := cache.Get(ctx, userID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if err := cache.Invalidate(ctx, userID); err != nil {
		t.Fatalf("invalidate: %v", err)
	}

	if err := cache.Set(ctx, testView(userID, "Stale"), readGen); err != nil {
		t.Fatalf("stale set should be skipped silently, got %v", err)
	}
	view, gen, err := cache.Get(ctx, userID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if view != nil {
		t.Fatalf("stale view was stored: %+v", view)
	}
	if gen != readGen+1 {
		t.Fatalf("expected generation %d, got %d", readGen+1, gen)
	}

	if err := cache.Set(ctx, testView(userID, "Fresh"), gen); err != nil {
		t.Fatalf("set: %v", err)
	}
	if view, _, _ := cache.Get(ctx, userID); view == nil || view.Status != "Fresh" {
		t.Fatalf("expected fresh view, got %+v", view)
	}
}

func TestProfileCache_DefaultTTL(t *testing.T) {
	c := NewProfileCache(nil, 0)
	if c.ttl != defaultProfileTTL {
		t.Fatalf("expected default ttl %s, got %s", defaultProfileTTL, c.ttl)
	}
	if got := c.key("abc"); got != "profile:user:abc" {
		t.Fatalf("unexpected key %q", got)
	}
	if got := c.genKey("abc"); got != "profile:gen:abc" {
		t.Fatalf("unexpected generation key %q", got)
	}
}
