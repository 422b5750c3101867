package cache

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestChatLockAcquireRelease(t *testing.T) {
	mr, client := newTestClient(t)
	ctx := context.Background()

	first := NewChatLock(client, "instance-1")
	second := NewChatLock(client, "instance-2")

	ok, err := first.Acquire(ctx, -1001, time.Minute)
	if err != nil || !ok {
		t.Fatalf("first Acquire() = %v, %v, want true, nil", ok, err)
	}
	if !mr.Exists("trivia:chat:-1001:lock") {
		t.Fatalf("expected lock key to be set")
	}

	ok, err = second.Acquire(ctx, -1001, time.Minute)
	if err != nil || ok {
		t.Fatalf("second Acquire() = %v, %v, want false, nil", ok, err)
	}

	if err := second.Release(ctx, -1001); err != nil {
		t.Fatalf("second Release() error = %v", err)
	}
	if !mr.Exists("trivia:chat:-1001:lock") {
		t.Fatalf("lock released by a different owner")
	}

	if err := first.Release(ctx, -1001); err != nil {
		t.Fatalf("first Release() error = %v", err)
	}
	if mr.Exists("trivia:chat:-1001:lock") {
		t.Fatalf("expected lock key to be removed")
	}
}

func TestChatLockExpires(t *testing.T) {
	mr, client := newTestClient(t)
	ctx := context.Background()
	lock := NewChatLock(client, "instance-1")

	if ok, _ := lock.Acquire(ctx, 7, time.Minute); !ok {
		t.Fatalf("Acquire() = false, want true")
	}
	mr.FastForward(2 * time.Minute)

	if ok, err := NewChatLock(client, "instance-2").Acquire(ctx, 7, time.Minute); err != nil || !ok {
		t.Fatalf("Acquire() after expiry = %v, %v, want true, nil", ok, err)
	}
}

func TestTokenStore(t *testing.T) {
	mr, client := newTestClient(t)
	ctx := context.Background()
	store := NewTokenStore(client)

	token, err := store.Token(ctx)
	if err != nil || token != "" {
		t.Fatalf("Token() on empty store = %q, %v, want empty, nil", token, err)
	}

	if err := store.SaveToken(ctx, "abc123"); err != nil {
		t.Fatalf("SaveToken() error = %v", err)
	}
	if got := mr.TTL(tokenKey); got != TokenTTL {
		t.Errorf("token TTL = %v, want %v", got, TokenTTL)
	}
	if token, _ := store.Token(ctx); token != "abc123" {
		t.Errorf("Token() = %q, want %q", token, "abc123")
	}

	if err := store.ClearToken(ctx); err != nil {
		t.Fatalf("ClearToken() error = %v", err)
	}
	if token, _ := store.Token(ctx); token != "" {
		t.Errorf("Token() after clear = %q, want empty", token)
	}
}

func TestJSONCache(t *testing.T) {
	mr, client := newTestClient(t)
	ctx := context.Background()
	c := NewJSONCache(client, "trivia:categories:", time.Hour)

	type category struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}

	var got []category
	hit, err := c.Load(ctx, "all", &got)
	if err != nil || hit {
		t.Fatalf("Load() on miss = %v, %v, want false, nil", hit, err)
	}

	want := []category{{ID: 9, Name: "General Knowledge"}, {ID: 31, Name: "Entertainment: Japanese Anime & Manga"}}
	if err := c.Store(ctx, "all", want); err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	hit, err = c.Load(ctx, "all", &got)
	if err != nil || !hit {
		t.Fatalf("Load() = %v, %v, want true, nil", hit, err)
	}
	if len(got) != 2 || got[1] != want[1] {
		t.Errorf("Load() = %+v, want %+v", got, want)
	}

	mr.FastForward(2 * time.Hour)
	if hit, _ := c.Load(ctx, "all", &got); hit {
		t.Errorf("Load() after TTL = hit, want miss")
	}
}

func TestJSONCacheCorruptEntry(t *testing.T) {
	mr, client := newTestClient(t)
	c := NewJSONCache(client, "p:", time.Hour)
	if err := mr.Set("p:bad", "{not json"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	var dst map[string]int
	if _, err := c.Load(context.Background(), "bad", &dst); err == nil {
		t.Error("Load() on corrupt entry expected error, got nil")
	}
}
