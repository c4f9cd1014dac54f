//go:build integration

package session

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/matzehuels/gritea/pkg/gitea"
)

func TestRedisStore_Integration(t *testing.T) {
	addr := os.Getenv("GITEA_REDIS_ADDR")
	if addr == "" {
		t.Skip("GITEA_REDIS_ADDR not set, skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err := NewRedisStore(ctx, RedisConfig{Addr: addr, Prefix: "gritea-test:"})
	if err != nil {
		t.Fatalf("NewRedisStore() error: %v", err)
	}
	defer store.Close()

	sess := New("git.example.com", "https", gitea.TokenCredential("abc"), "alice", time.Minute)
	if err := store.Set(ctx, sess); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	got, err := store.Get(ctx, "git.example.com")
	if err != nil || got == nil || got.Token != "abc" {
		t.Fatalf("Get() = %+v, %v", got, err)
	}
	if err := store.Delete(ctx, "git.example.com"); err != nil {
		t.Fatal(err)
	}
	if got, _ := store.Get(ctx, "git.example.com"); got != nil {
		t.Error("session present after Delete")
	}

	state, err := store.Generate(ctx, time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if ok, err := store.Validate(ctx, state); !ok || err != nil {
		t.Errorf("Validate() = %v, %v", ok, err)
	}
	if ok, _ := store.Validate(ctx, state); ok {
		t.Error("state accepted twice")
	}
}
