package generate

import (
	"context"
	"slices"
	"sync"
	"time"
)

type partKey struct{}

// WithPart tags ctx with the part a generation call is for, so clients can
// attribute their latency samples.
func WithPart(ctx context.Context, part Part) context.Context {
	return context.WithValue(ctx, partKey{}, part)
}

// PartFrom returns the part set by WithPart, or "" when untagged.
func PartFrom(ctx context.Context) Part {
	p, _ := ctx.Value(partKey{}).(Part)
	return p
}

// untaggedPart is the ByPart key for calls made without WithPart.
const untaggedPart = "other"

type callSample struct {
	at         time.Time
	part       Part
	durationMs int64
	ok         bool
}

// StatsSnapshot aggregates the generation calls inside the window.
type StatsSnapshot struct {
	Count    int     `json:"count"`
	Failures int     `json:"failures"`
	MinMs    int64   `json:"min_ms"`
	MaxMs    int64   `json:"max_ms"`
	AvgMs    float64 `json:"avg_ms"`
	P50Ms    float64 `json:"p50_ms"`
	P95Ms    float64 `json:"p95_ms"`
	P99Ms    float64 `json:"p99_ms"`

	ByPart map[string]PartStats `json:"by_part,omitempty"`
}

// PartStats is the per-part slice of a snapshot.
type PartStats struct {
	Count    int     `json:"count"`
	Failures int     `json:"failures"`
	AvgMs    float64 `json:"avg_ms"`
	P95Ms    float64 `json:"p95_ms"`
}

// LLMStats keeps generation call samples for a rolling window.
type LLMStats struct {
	mu      sync.Mutex
	samples []callSample
	window  time.Duration
}

func NewLLMStats(window time.Duration) *LLMStats {
	if window <= 0 {
		window = time.Hour
	}
	return &LLMStats{samples: make([]callSample, 0, 256), window: window}
}

// Record adds one call. ok is false when the call returned an error.
func (s *LLMStats) Record(part Part, durationMs int64, ok bool) {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expireLocked(now)
	s.samples = append(s.samples, callSample{at: now, part: part, durationMs: max(durationMs, 0), ok: ok})
}

func (s *LLMStats) Snapshot() StatsSnapshot {
	now := time.Now()
	s.mu.Lock()
	s.expireLocked(now)
	samples := slices.Clone(s.samples)
	s.mu.Unlock()

	if len(samples) == 0 {
		return StatsSnapshot{}
	}

	snap := summarize(samples)
	grouped := make(map[string][]callSample)
	for _, sm := range samples {
		key := string(sm.part)
		if key == "" {
			key = untaggedPart
		}
		grouped[key] = append(grouped[key], sm)
	}
	snap.ByPart = make(map[string]PartStats, len(grouped))
	for key, group := range grouped {
		g := summarize(group)
		snap.ByPart[key] = PartStats{Count: g.Count, Failures: g.Failures, AvgMs: g.AvgMs, P95Ms: g.P95Ms}
	}
	return snap
}

// summarize computes the aggregate fields of a non-empty sample set.
func summarize(samples []callSample) StatsSnapshot {
	durations := make([]int64, len(samples))
	var total int64
	failures := 0
	for i, sm := range samples {
		durations[i] = sm.durationMs
		total += sm.durationMs
		if !sm.ok {
			failures++
		}
	}
	slices.Sort(durations)
	return StatsSnapshot{
		Count:    len(durations),
		Failures: failures,
		MinMs:    durations[0],
		MaxMs:    durations[len(durations)-1],
		AvgMs:    float64(total) / float64(len(durations)),
		P50Ms:    percentile(durations, 50),
		P95Ms:    percentile(durations, 95),
		P99Ms:    percentile(durations, 99),
	}
}

// expireLocked drops samples older than the window. Samples are appended in
// time order, so the expired ones form a prefix.
func (s *LLMStats) expireLocked(now time.Time) {
	cutoff := now.Add(-s.window)
	i, _ := slices.BinarySearchFunc(s.samples, cutoff, func(sm callSample, t time.Time) int {
		return sm.at.Compare(t)
	})
	if i > 0 {
		s.samples = slices.Delete(s.samples, 0, i)
	}
}

// percentile interpolates linearly between the closest ranks of sorted.
func percentile(sorted []int64, pct float64) float64 {
	switch {
	case len(sorted) == 0:
		return 0
	case pct <= 0:
		return float64(sorted[0])
	case pct >= 100:
		return float64(sorted[len(sorted)-1])
	}
	rank := float64(len(sorted)-1) * pct / 100
	lower := int(rank)
	if lower+1 >= len(sorted) {
		return float64(sorted[lower])
	}
	lo, hi := float64(sorted[lower]), float64(sorted[lower+1])
	return lo + (hi-lo)*(rank-float64(lower))
}
