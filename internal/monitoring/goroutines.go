package monitoring

import (
	"context"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	DefaultCheckInterval  = 30 * time.Second
	DefaultAlertThreshold = 1000
	defaultAlertCooldown  = 5 * time.Minute
)

// Gauge reports a current count, e.g. active matches.
type Gauge func() int

// GoroutineMonitor periodically samples the goroutine count and any
// registered gauges, logging them and warning on likely leaks.
type GoroutineMonitor struct {
	logger zerolog.Logger

	mu             sync.RWMutex
	baseline       int
	current        int
	peak           int
	checkInterval  time.Duration
	alertThreshold int
	lastAlert      time.Time
	alertCooldown  time.Duration
	gauges         map[string]Gauge
	readings       map[string]int
	numGoroutine   func() int
}

// NewGoroutineMonitor creates a monitor; interval and threshold fall back
// to the defaults when not positive.
func NewGoroutineMonitor(logger zerolog.Logger, interval time.Duration, threshold int) *GoroutineMonitor {
	if interval <= 0 {
		interval = DefaultCheckInterval
	}
	if threshold <= 0 {
		threshold = DefaultAlertThreshold
	}
	baseline := runtime.NumGoroutine()
	return &GoroutineMonitor{
		logger:         logger.With().Str("component", "GoroutineMonitor").Logger(),
		baseline:       baseline,
		current:        baseline,
		peak:           baseline,
		checkInterval:  interval,
		alertThreshold: threshold,
		alertCooldown:  defaultAlertCooldown,
		gauges:         make(map[string]Gauge),
		readings:       make(map[string]int),
		numGoroutine:   runtime.NumGoroutine,
	}
}

// Track registers a gauge sampled on every check.
func (gm *GoroutineMonitor) Track(name string, g Gauge) {
	gm.mu.Lock()
	defer gm.mu.Unlock()
	gm.gauges[name] = g
}

// Run samples until ctx is done.
func (gm *GoroutineMonitor) Run(ctx context.Context) {
	gm.logger.Info().
		Int("baseline", gm.baseline).
		Dur("interval", gm.checkInterval).
		Msg("Started goroutine monitoring")

	ticker := time.NewTicker(gm.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			gm.Check()
		case <-ctx.Done():
			return
		}
	}
}

// Check takes one sample.
func (gm *GoroutineMonitor) Check() {
	current := gm.numGoroutine()

	gm.mu.Lock()
	gm.current = current
	if current > gm.peak {
		gm.peak = current
	}
	for name, g := range gm.gauges {
		gm.readings[name] = g()
	}
	readings := copyMap(gm.readings)

	growth := current - gm.baseline
	growthRate := 0.0
	if gm.baseline > 0 {
		growthRate = float64(growth) / float64(gm.baseline) * 100
	}

	shouldAlert := current > gm.alertThreshold &&
		time.Since(gm.lastAlert) > gm.alertCooldown
	if shouldAlert {
		gm.lastAlert = time.Now()
	}
	peak := gm.peak
	gm.mu.Unlock()

	event := gm.logger.Debug().
		Int("current", current).
		Int("baseline", gm.baseline).
		Int("peak", peak).
		Float64("growth_rate", growthRate)
	for _, name := range sortedKeys(readings) {
		event = event.Int(name, readings[name])
	}
	event.Msg("Goroutine metrics")

	if shouldAlert {
		gm.logger.Warn().
			Int("current", current).
			Int("threshold", gm.alertThreshold).
			Float64("growth_rate", growthRate).
			Msg("High goroutine count detected - possible leak")
	}
}

// GetMetrics returns the latest sample.
func (gm *GoroutineMonitor) GetMetrics() GoroutineMetrics {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	return GoroutineMetrics{
		Current:  gm.current,
		Baseline: gm.baseline,
		Peak:     gm.peak,
		Growth:   gm.current - gm.baseline,
		Gauges:   copyMap(gm.readings),
	}
}

// GoroutineMetrics contains goroutine statistics and gauge readings
type GoroutineMetrics struct {
	Current  int            `json:"current"`
	Baseline int            `json:"baseline"`
	Peak     int            `json:"peak"`
	Growth   int            `json:"growth"`
	Gauges   map[string]int `json:"gauges"`
}

func copyMap(m map[string]int) map[string]int {
	result := make(map[string]int, len(m))
	for k, v := range m {
		result[k] = v
	}
	return result
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
