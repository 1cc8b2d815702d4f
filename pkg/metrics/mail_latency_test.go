package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/nalgeon/be"
)

func TestTrackerStats(t *testing.T) {
	tr := NewTracker(100)
	be.Equal(t, tr.Stats(), Stats{})

	for i := 1; i <= 100; i++ {
		tr.Record(time.Duration(i) * time.Millisecond)
	}
	s := tr.Stats()
	be.Equal(t, s.Count, int64(100))
	be.Equal(t, s.Samples, 100)
	be.Equal(t, s.MinMS, 1.0)
	be.Equal(t, s.MaxMS, 100.0)
	be.Equal(t, s.P50MS, 50.0)
	be.Equal(t, s.P95MS, 95.0)
	be.Equal(t, s.P99MS, 99.0)
}

func TestTrackerWindowDropsOldest(t *testing.T) {
	tr := NewTracker(3)
	for _, ms := range []int{500, 1, 2, 3} {
		tr.Record(time.Duration(ms) * time.Millisecond)
	}
	s := tr.Stats()
	be.Equal(t, s.Count, int64(4))
	be.Equal(t, s.Samples, 3)
	be.Equal(t, s.MaxMS, 3.0)

	// Stats must not reorder the ring.
	tr.Record(4 * time.Millisecond)
	be.Equal(t, tr.Stats().MinMS, 2.0)
}

func TestRegistryConcurrent(t *testing.T) {
	r := NewRegistry(10)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				r.Record("GET /api/inbox", time.Millisecond)
			}
		}()
	}
	wg.Wait()

	snap := r.Snapshot()
	be.Equal(t, len(snap), 1)
	be.Equal(t, snap["GET /api/inbox"].Count, int64(400))
	be.Equal(t, snap["GET /api/inbox"].Samples, 10)
}
