package cache_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yeisme/reportvault/pkg/cache"
	"github.com/yeisme/reportvault/pkg/configs"
	"github.com/yeisme/reportvault/pkg/internal/storage/kv"
)

// linkMark 测试用的去重标记.
type linkMark struct {
	ReportID string    `json:"report_id"`
	LinkedAt time.Time `json:"linked_at"`
}

func newStore(t *testing.T) kv.KVStore {
	t.Helper()

	store, err := kv.NewKVStore(context.Background(), configs.KVTypeMemory, nil)
	if err != nil {
		t.Fatalf("create memory kv: %v", err)
	}

	return store
}

func TestCache_GetSet(t *testing.T) {
	ctx := context.Background()
	c := cache.NewCache(newStore(t), "activity.linked")

	if _, err := cache.Get[linkMark](ctx, c, "missing"); !errors.Is(err, kv.ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}

	mark := linkMark{ReportID: "r1", LinkedAt: time.Unix(1_700_000_000, 0).UTC()}
	if err := cache.Set(ctx, c, "a1", mark, 0); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, err := cache.Get[linkMark](ctx, c, "a1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	if got.ReportID != "r1" || !got.LinkedAt.Equal(mark.LinkedAt) {
		t.Fatalf("unexpected value: %+v", got)
	}
}

func TestCache_Namespace(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	c := cache.NewCache(store, "activity.linked.")

	if k := c.Key("a1"); k != "activity.linked.a1" {
		t.Fatalf("unexpected key %q", k)
	}

	if err := cache.Set(ctx, c, "a1", 1, 0); err != nil {
		t.Fatalf("set: %v", err)
	}

	if ok, _ := store.Exists(ctx, "activity.linked.a1"); !ok {
		t.Fatal("entry should be stored under the namespaced key")
	}

	if k := cache.NewCache(store, "").Key("raw"); k != "raw" {
		t.Fatalf("empty namespace should keep key, got %q", k)
	}
}

func TestCache_SetOnceConcurrent(t *testing.T) {
	ctx := context.Background()
	c := cache.NewCache(newStore(t), "activity.linked")

	var (
		wg      sync.WaitGroup
		winners atomic.Int32
	)

	for i := range 16 {
		wg.Add(1)

		go func(i int) {
			defer wg.Done()

			first, err := cache.SetOnce(ctx, c, "a2", linkMark{ReportID: string(rune('a' + i))}, time.Hour)
			if err != nil {
				t.Errorf("set once: %v", err)
			}

			if first {
				winners.Add(1)
			}
		}(i)
	}

	wg.Wait()

	if winners.Load() != 1 {
		t.Fatalf("expected exactly one winner, got %d", winners.Load())
	}
}

func TestCache_DeleteAndEntries(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	c := cache.NewCache(store, "activity.linked")

	for _, id := range []string{"a", "b", "c"} {
		if err := cache.Set(ctx, c, id, id, 0); err != nil {
			t.Fatalf("set: %v", err)
		}
	}

	if err := store.Set(ctx, "other.x", []byte(`1`), 0); err != nil {
		t.Fatalf("set other: %v", err)
	}

	if err := c.Delete(ctx, "b"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if ok, _ := c.Exists(ctx, "b"); ok {
		t.Fatal("b should be gone")
	}

	entries, err := c.Entries(ctx)
	if err != nil {
		t.Fatalf("entries: %v", err)
	}

	sort.Strings(entries)

	if len(entries) != 2 || entries[0] != "a" || entries[1] != "c" {
		t.Fatalf("unexpected entries: %v", entries)
	}
}
