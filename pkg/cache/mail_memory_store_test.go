package cache

import (
	"context"
	"testing"
	"time"

	"github.com/Karan2916/Intellimail-2/core/port/out"
	"github.com/nalgeon/be"
)

var (
	_ out.SessionStore = (*MemoryStore)(nil)
	_ out.SessionStore = (*RedisStore)(nil)
)

func TestMemoryStoreJSON(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(10)

	type item struct {
		ID string `json:"id"`
	}

	be.Err(t, s.SetJSON(ctx, "k", []item{{ID: "a"}, {ID: "b"}}, time.Minute), nil)

	var got []item
	hit, err := s.GetJSON(ctx, "k", &got)
	be.Err(t, err, nil)
	be.True(t, hit)
	be.Equal(t, len(got), 2)
	be.Equal(t, got[1].ID, "b")

	hit, err = s.GetJSON(ctx, "missing", &got)
	be.Err(t, err, nil)
	be.True(t, !hit)
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(10)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	be.Err(t, s.Set(ctx, "state", "v", time.Minute), nil)

	now = now.Add(2 * time.Minute)
	_, ok, err := s.Take(ctx, "state")
	be.Err(t, err, nil)
	be.True(t, !ok)
}

func TestMemoryStoreTakeIsOneShot(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(10)

	be.Err(t, s.Set(ctx, "state", "v", time.Minute), nil)

	v, ok, err := s.Take(ctx, "state")
	be.Err(t, err, nil)
	be.True(t, ok)
	be.Equal(t, v, "v")

	_, ok, _ = s.Take(ctx, "state")
	be.True(t, !ok)
}

func TestMemoryStoreBounded(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(2)

	be.Err(t, s.Set(ctx, "a", "1", time.Minute), nil)
	be.Err(t, s.Set(ctx, "b", "2", time.Hour), nil)
	be.Err(t, s.Set(ctx, "c", "3", time.Hour), nil)

	be.Equal(t, s.Len(), 2)
	_, ok, _ := s.Take(ctx, "a")
	be.True(t, !ok)
}

func TestMemoryStoreDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(0)

	be.Err(t, s.Set(ctx, "k", "v", 0), nil)
	be.Err(t, s.Delete(ctx, "k"), nil)
	_, ok, _ := s.Take(ctx, "k")
	be.True(t, !ok)
}
