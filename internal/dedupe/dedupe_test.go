package dedupe

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestDeduper(t *testing.T) (*Deduper, *miniredis.Miniredis) {
	t.Helper()
	m, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(m.Close)

	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	t.Cleanup(func() {
		if cerr := client.Close(); cerr != nil {
			t.Logf("redis close: %v", cerr)
		}
	})
	return New(client, time.Minute), m
}

func TestAddDetectsDuplicates(t *testing.T) {
	d, _ := newTestDeduper(t)
	ctx := context.Background()

	added, err := d.Add(ctx, 7, "k1")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !added {
		t.Fatalf("expected first add to succeed")
	}

	added, err = d.Add(ctx, 7, "k1")
	if err != nil {
		t.Fatalf("second add: %v", err)
	}
	if added {
		t.Fatalf("expected duplicate key to be rejected")
	}
}

func TestAddNamespacesByUser(t *testing.T) {
	d, m := newTestDeduper(t)
	ctx := context.Background()

	if _, err := d.Add(ctx, 7, "k1"); err != nil {
		t.Fatalf("add: %v", err)
	}
	added, err := d.Add(ctx, 8, "k1")
	if err != nil {
		t.Fatalf("add for second user: %v", err)
	}
	if !added {
		t.Fatalf("expected same key under another user to be accepted")
	}
	if !m.Exists("dedupe:7:k1") || !m.Exists("dedupe:8:k1") {
		t.Fatalf("expected namespaced keys in redis")
	}
}

func TestRemoveAllowsRetry(t *testing.T) {
	d, _ := newTestDeduper(t)
	ctx := context.Background()

	if _, err := d.Add(ctx, 7, "k1"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := d.Remove(ctx, 7, "k1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	added, err := d.Add(ctx, 7, "k1")
	if err != nil {
		t.Fatalf("re-add: %v", err)
	}
	if !added {
		t.Fatalf("expected key to be addable again after removal")
	}
}
