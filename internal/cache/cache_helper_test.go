package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestHelper(t *testing.T) (*CacheHelper, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewCacheHelper(client, "test:"), mr
}

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestCacheHelper_SetGetDelete(t *testing.T) {
	helper, _ := newTestHelper(t)
	ctx := context.Background()

	if err := helper.Set(ctx, "k", payload{Name: "a", Count: 2}, time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	var got payload
	if err := helper.Get(ctx, "k", &got); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Name != "a" || got.Count != 2 {
		t.Errorf("unexpected value %+v", got)
	}

	if err := helper.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := helper.Get(ctx, "k", &got); !errors.Is(err, ErrCacheNotFound) {
		t.Errorf("expected ErrCacheNotFound after delete, got %v", err)
	}
}

func TestCacheHelper_CacheOrExecute(t *testing.T) {
	helper, mr := newTestHelper(t)
	ctx := context.Background()

	calls := 0
	fetch := func() (interface{}, error) {
		calls++
		return payload{Name: "fetched", Count: calls}, nil
	}

	var got payload
	if err := helper.CacheOrExecute(ctx, "k", &got, time.Minute, fetch); err != nil {
		t.Fatalf("CacheOrExecute failed: %v", err)
	}
	if got.Name != "fetched" || calls != 1 {
		t.Fatalf("expected one fetch, got %d (%+v)", calls, got)
	}

	// Write-back is async; wait for the key to land before the second read.
	deadline := time.Now().Add(2 * time.Second)
	for !mr.Exists("test:k") {
		if time.Now().After(deadline) {
			t.Fatal("write-back never reached redis")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if err := helper.CacheOrExecute(ctx, "k", &got, time.Minute, fetch); err != nil {
		t.Fatalf("CacheOrExecute failed: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected cache hit, fetch ran %d times", calls)
	}

	t.Run("fetch error propagates", func(t *testing.T) {
		wantErr := errors.New("storage down")
		err := helper.CacheOrExecute(ctx, "missing", &got, time.Minute, func() (interface{}, error) {
			return nil, wantErr
		})
		if !errors.Is(err, wantErr) {
			t.Errorf("expected fetch error unwrapped, got %v", err)
		}
	})
}

func TestCacheHelper_NilClientDegradesGracefully(t *testing.T) {
	helper := NewCacheHelper(nil, "test:")
	ctx := context.Background()

	if err := helper.Set(ctx, "k", payload{}, time.Minute); err != nil {
		t.Errorf("Set with nil client should be a no-op, got %v", err)
	}
	var got payload
	if err := helper.Get(ctx, "k", &got); !errors.Is(err, ErrCacheNotAvailable) {
		t.Errorf("expected ErrCacheNotAvailable, got %v", err)
	}

	calls := 0
	err := helper.CacheOrExecute(ctx, "k", &got, time.Minute, func() (interface{}, error) {
		calls++
		return payload{Name: "direct"}, nil
	})
	if err != nil || calls != 1 || got.Name != "direct" {
		t.Errorf("expected direct fetch without cache, err=%v calls=%d got=%+v", err, calls, got)
	}
}
