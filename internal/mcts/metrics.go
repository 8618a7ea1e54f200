package mcts

import (
	"sync/atomic"
	"time"
)

// Stats describes one call to Plan.
type Stats struct {
	Iterations   int64
	Playouts     int64
	CacheHits    int64
	CacheMisses  int64
	RootChildren int
	Duration     time.Duration
	// TimedOut is set when the budget, rather than the iteration limit or
	// the caller's context, ended the search.
	TimedOut bool
}

type collector struct {
	startTime   time.Time
	iterations  atomic.Int64
	playouts    atomic.Int64
	cacheHits   atomic.Int64
	cacheMisses atomic.Int64
}

func (c *collector) Start()          { c.startTime = time.Now() }
func (c *collector) AddIteration()   { c.iterations.Add(1) }
func (c *collector) AddFullPlayout() { c.playouts.Add(1) }
func (c *collector) AddCacheHit()    { c.cacheHits.Add(1) }
func (c *collector) AddCacheMiss()   { c.cacheMisses.Add(1) }

func (c *collector) Complete() Stats {
	return Stats{
		Iterations:  c.iterations.Load(),
		Playouts:    c.playouts.Load(),
		CacheHits:   c.cacheHits.Load(),
		CacheMisses: c.cacheMisses.Load(),
		Duration:    time.Since(c.startTime),
	}
}

// Metrics accumulates Stats across searches. It is safe for concurrent use
// by planners running in different goroutines.
type Metrics struct {
	searches    atomic.Int64
	iterations  atomic.Int64
	playouts    atomic.Int64
	cacheHits   atomic.Int64
	cacheMisses atomic.Int64
	timeouts    atomic.Int64
	duration    atomic.Int64
}

// MetricsSnapshot is a point-in-time copy of Metrics.
type MetricsSnapshot struct {
	Searches    int64
	Iterations  int64
	Playouts    int64
	CacheHits   int64
	CacheMisses int64
	Timeouts    int64
	Duration    time.Duration
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) record(s Stats) {
	m.searches.Add(1)
	m.iterations.Add(s.Iterations)
	m.playouts.Add(s.Playouts)
	m.cacheHits.Add(s.CacheHits)
	m.cacheMisses.Add(s.CacheMisses)
	m.duration.Add(int64(s.Duration))
	if s.TimedOut {
		m.timeouts.Add(1)
	}
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Searches:    m.searches.Load(),
		Iterations:  m.iterations.Load(),
		Playouts:    m.playouts.Load(),
		CacheHits:   m.cacheHits.Load(),
		CacheMisses: m.cacheMisses.Load(),
		Timeouts:    m.timeouts.Load(),
		Duration:    time.Duration(m.duration.Load()),
	}
}

// IterationsPerSecond averages search throughput over all recorded searches.
func (s MetricsSnapshot) IterationsPerSecond() float64 {
	if s.Duration <= 0 {
		return 0
	}
	return float64(s.Iterations) / s.Duration.Seconds()
}
