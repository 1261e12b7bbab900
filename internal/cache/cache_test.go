package cache_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nyashahama/scas-screening-backend/internal/cache"
	"github.com/nyashahama/scas-screening-backend/internal/screening"
)

type recordingCache struct {
	invalidated [][]string
	err         error
}

func (r *recordingCache) Get(context.Context, string, any) (bool, error) { return false, nil }
func (r *recordingCache) Set(context.Context, string, any) error         { return nil }
func (r *recordingCache) Invalidate(_ context.Context, keys ...string) error {
	r.invalidated = append(r.invalidated, keys)
	return r.err
}

func discardLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestInvalidator_DropsDashboardKeys(t *testing.T) {
	rc := &recordingCache{}
	inv := cache.NewInvalidator(rc, discardLogger())

	inv.SubmissionAccepted(context.Background(), screening.Result{SubmissionID: uuid.New()})

	if len(rc.invalidated) != 1 {
		t.Fatalf("invalidations: got %d, want 1", len(rc.invalidated))
	}
	keys := rc.invalidated[0]
	if len(keys) != 2 || keys[0] != cache.KeyDashboardStats || keys[1] != cache.KeyStudentList {
		t.Errorf("keys: %v", keys)
	}
}

func TestInvalidator_ErrorIsLoggedNotPropagated(t *testing.T) {
	rc := &recordingCache{err: errors.New("redis down")}
	inv := cache.NewInvalidator(rc, discardLogger())
	// Must not panic or block.
	inv.SubmissionAccepted(context.Background(), screening.Result{})
}

func TestNoopCache_AlwaysMisses(t *testing.T) {
	c := cache.NewNoopCache()
	ctx := context.Background()
	if err := c.Set(ctx, "k", 1); err != nil {
		t.Fatalf("Set: %v", err)
	}
	var v int
	found, err := c.Get(ctx, "k", &v)
	if err != nil || found {
		t.Errorf("Get: found=%v err=%v", found, err)
	}
}

// TestRedisCache_RoundTrip runs against a real server when REDIS_URL is set.
func TestRedisCache_RoundTrip(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	ctx := context.Background()
	client, err := cache.NewRedisClient(ctx, url)
	if err != nil {
		t.Fatalf("NewRedisClient: %v", err)
	}
	defer client.Close()

	c := cache.NewRedisCache(client, "scas-test-"+uuid.NewString(), time.Minute)
	type stats struct {
		Students int64   `json:"students"`
		AvgLast  float64 `json:"avg_last"`
	}

	var got stats
	if found, err := c.Get(ctx, cache.KeyDashboardStats, &got); err != nil || found {
		t.Fatalf("initial Get: found=%v err=%v", found, err)
	}
	if err := c.Set(ctx, cache.KeyDashboardStats, stats{Students: 4, AvgLast: 41.5}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	found, err := c.Get(ctx, cache.KeyDashboardStats, &got)
	if err != nil || !found || got.Students != 4 || got.AvgLast != 41.5 {
		t.Fatalf("Get after Set: found=%v err=%v got=%+v", found, err, got)
	}
	if err := c.Invalidate(ctx, cache.KeyDashboardStats); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if found, _ := c.Get(ctx, cache.KeyDashboardStats, &got); found {
		t.Error("entry survived Invalidate")
	}
}
