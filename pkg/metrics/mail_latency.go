// Package metrics keeps in-process latency percentiles per route.
package metrics

import (
	"slices"
	"sync"
	"time"
)

const DefaultWindow = 1000

// Tracker keeps the most recent window latencies in a ring.
type Tracker struct {
	mu      sync.Mutex
	samples []time.Duration
	next    int
	full    bool
	total   int64
}

func NewTracker(window int) *Tracker {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Tracker{samples: make([]time.Duration, window)}
}

func (t *Tracker) Record(d time.Duration) {
	t.mu.Lock()
	t.samples[t.next] = d
	t.next++
	if t.next == len(t.samples) {
		t.next = 0
		t.full = true
	}
	t.total++
	t.mu.Unlock()
}

// Stats summarizes the current window.
func (t *Tracker) Stats() Stats {
	t.mu.Lock()
	n := t.next
	if t.full {
		n = len(t.samples)
	}
	window := make([]time.Duration, n)
	copy(window, t.samples[:n])
	total := t.total
	t.mu.Unlock()

	if n == 0 {
		return Stats{}
	}
	slices.Sort(window)

	var sum time.Duration
	for _, d := range window {
		sum += d
	}
	at := func(p float64) float64 {
		return millis(window[int(float64(n-1)*p)])
	}

	return Stats{
		Count:   total,
		Samples: n,
		MinMS:   millis(window[0]),
		MaxMS:   millis(window[n-1]),
		AvgMS:   millis(sum / time.Duration(n)),
		P50MS:   at(0.50),
		P95MS:   at(0.95),
		P99MS:   at(0.99),
	}
}

type Stats struct {
	Count   int64   `json:"count"`
	Samples int     `json:"samples"`
	MinMS   float64 `json:"min_ms"`
	MaxMS   float64 `json:"max_ms"`
	AvgMS   float64 `json:"avg_ms"`
	P50MS   float64 `json:"p50_ms"`
	P95MS   float64 `json:"p95_ms"`
	P99MS   float64 `json:"p99_ms"`
}

func millis(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}

// Registry holds one Tracker per name, created on first use.
type Registry struct {
	mu       sync.RWMutex
	trackers map[string]*Tracker
	window   int
}

func NewRegistry(window int) *Registry {
	return &Registry{
		trackers: make(map[string]*Tracker),
		window:   window,
	}
}

func (r *Registry) Record(name string, d time.Duration) {
	r.mu.RLock()
	tracker, ok := r.trackers[name]
	r.mu.RUnlock()

	if !ok {
		r.mu.Lock()
		if tracker, ok = r.trackers[name]; !ok {
			tracker = NewTracker(r.window)
			r.trackers[name] = tracker
		}
		r.mu.Unlock()
	}

	tracker.Record(d)
}

func (r *Registry) Snapshot() map[string]Stats {
	r.mu.RLock()
	trackers := make(map[string]*Tracker, len(r.trackers))
	for name, t := range r.trackers {
		trackers[name] = t
	}
	r.mu.RUnlock()

	out := make(map[string]Stats, len(trackers))
	for name, t := range trackers {
		out[name] = t.Stats()
	}
	return out
}
