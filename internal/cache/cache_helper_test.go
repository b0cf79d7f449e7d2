package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestCache(t *testing.T) (*CacheHelper, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewCacheHelper(client, "doubt:"), mr
}

type cachedDoubt struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

func TestCacheHelper_SetGet(t *testing.T) {
	helper, _ := newTestCache(t)
	ctx := context.Background()

	want := cachedDoubt{ID: "d1", Title: "gorm preload question"}
	if err := helper.Set(ctx, "id:d1", want, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	var got cachedDoubt
	if err := helper.Get(ctx, "id:d1", &got); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestCacheHelper_GetMiss(t *testing.T) {
	helper, _ := newTestCache(t)

	var got cachedDoubt
	err := helper.Get(context.Background(), "id:missing", &got)
	if err != ErrCacheNotFound {
		t.Errorf("got %v, want ErrCacheNotFound", err)
	}
}

func TestCacheHelper_Delete(t *testing.T) {
	helper, _ := newTestCache(t)
	ctx := context.Background()

	_ = helper.Set(ctx, "id:d1", cachedDoubt{ID: "d1"}, time.Minute)
	_ = helper.Set(ctx, "id:d2", cachedDoubt{ID: "d2"}, time.Minute)

	if err := helper.Delete(ctx, "id:d1", "id:d2"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	for _, key := range []string{"id:d1", "id:d2"} {
		exists, err := helper.Exists(ctx, key)
		if err != nil {
			t.Fatalf("Exists(%s): %v", key, err)
		}
		if exists {
			t.Errorf("key %s still present after delete", key)
		}
	}
}

func TestCacheHelper_InvalidatePattern(t *testing.T) {
	helper, _ := newTestCache(t)
	ctx := context.Background()

	_ = helper.Set(ctx, "list:page1", []string{"d1"}, time.Minute)
	_ = helper.Set(ctx, "list:page2", []string{"d2"}, time.Minute)
	_ = helper.Set(ctx, "id:d1", cachedDoubt{ID: "d1"}, time.Minute)

	if err := helper.InvalidatePattern(ctx, "list:*"); err != nil {
		t.Fatalf("InvalidatePattern: %v", err)
	}

	if exists, _ := helper.Exists(ctx, "list:page1"); exists {
		t.Error("list:page1 survived pattern invalidation")
	}
	if exists, _ := helper.Exists(ctx, "id:d1"); !exists {
		t.Error("id:d1 should not be touched by list:* invalidation")
	}
}

func TestCacheHelper_NilClientDegradesGracefully(t *testing.T) {
	helper := NewCacheHelper(nil, "doubt:")
	ctx := context.Background()

	if err := helper.Set(ctx, "id:d1", cachedDoubt{}, time.Minute); err != nil {
		t.Errorf("Set with nil client: %v", err)
	}
	if err := helper.Delete(ctx, "id:d1"); err != nil {
		t.Errorf("Delete with nil client: %v", err)
	}
	var got cachedDoubt
	if err := helper.Get(ctx, "id:d1", &got); err != ErrCacheNotAvailable {
		t.Errorf("Get with nil client: got %v, want ErrCacheNotAvailable", err)
	}
}

func TestCacheOrExecute(t *testing.T) {
	helper, _ := newTestCache(t)
	ctx := context.Background()

	calls := 0
	fetch := func() (interface{}, error) {
		calls++
		return cachedDoubt{ID: "d1", Title: "fetched"}, nil
	}

	var got cachedDoubt
	if err := helper.CacheOrExecute(ctx, "id:d1", &got, time.Minute, fetch); err != nil {
		t.Fatalf("CacheOrExecute: %v", err)
	}
	if calls != 1 {
		t.Errorf("fetch called %d times, want 1", calls)
	}
	if got.Title != "fetched" {
		t.Errorf("got title %q", got.Title)
	}

	// Cache write happens asynchronously; wait for it before the
	// second read.
	deadline := time.Now().Add(time.Second)
	for {
		if exists, _ := helper.Exists(ctx, "id:d1"); exists || time.Now().After(deadline) {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	var second cachedDoubt
	if err := helper.CacheOrExecute(ctx, "id:d1", &second, time.Minute, fetch); err != nil {
		t.Fatalf("CacheOrExecute second call: %v", err)
	}
	if calls != 1 {
		t.Errorf("fetch called %d times after cached read, want 1", calls)
	}
}
