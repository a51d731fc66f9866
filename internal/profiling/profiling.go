// Package profiling accumulates per-frame CPU time by section name.
package profiling

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"
)

var (
	mu          sync.Mutex
	frameTotals = make(map[string]time.Duration)
	frameCounts = make(map[string]int)
)

// Track returns a stop function that adds the elapsed time to name.
// Usage: defer profiling.Track("pipeline.DrawAll")()
func Track(name string) func() {
	start := time.Now()
	return func() {
		d := time.Since(start)
		mu.Lock()
		frameTotals[name] += d
		frameCounts[name]++
		mu.Unlock()
	}
}

// ResetFrame clears the totals. Call at the start of each frame.
func ResetFrame() {
	mu.Lock()
	clear(frameTotals)
	clear(frameCounts)
	mu.Unlock()
}

// Snapshot returns a copy of the current totals.
func Snapshot() map[string]time.Duration {
	mu.Lock()
	defer mu.Unlock()
	return maps.Clone(frameTotals)
}

// Count returns how many times name was tracked this frame.
func Count(name string) int {
	mu.Lock()
	defer mu.Unlock()
	return frameCounts[name]
}

// TopN formats the n most expensive sections, largest first. A
// non-positive n yields an empty string.
// Example: "pipeline.DrawAll:4.2ms, pipeline.PrepareBasic:2.1ms"
func TopN(n int) string {
	totals := Snapshot()
	names := slices.SortedFunc(maps.Keys(totals), func(a, b string) int {
		if c := totals[b] - totals[a]; c != 0 {
			if c > 0 {
				return 1
			}
			return -1
		}
		return strings.Compare(a, b)
	})
	names = names[:min(max(n, 0), len(names))]
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + ":" + formatMs(totals[name])
	}
	return strings.Join(parts, ", ")
}

// formatMs keeps one decimal and drops it for whole milliseconds.
func formatMs(d time.Duration) string {
	ms := float64(d.Microseconds()) / 1000
	s := fmt.Sprintf("%.1f", ms)
	return strings.TrimSuffix(s, ".0") + "ms"
}
