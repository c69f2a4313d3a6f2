// Package stats holds process-wide counters accumulated across every
// procedure analyzed in a run. Initialized once, accumulated monotonically,
// read only for reporting.
package stats

import (
	"fmt"
	"io"
	"sort"
	"sync"
	"time"
)

var (
	mu      sync.Mutex
	started = make(map[string]time.Time)
	elapsed = make(map[string]time.Duration)
	strs    = make(map[string]string)
	counts  = make(map[string]int64)
)

// Resume starts (or restarts) the named timer. Elapsed time accumulates
// across Resume/Stop pairs.
func Resume(name string) {
	mu.Lock()
	defer mu.Unlock()
	started[name] = time.Now()
}

func Stop(name string) {
	mu.Lock()
	defer mu.Unlock()
	t0, ok := started[name]
	if !ok {
		return
	}
	delete(started, name)
	elapsed[name] += time.Since(t0)
}

func Elapsed(name string) time.Duration {
	mu.Lock()
	defer mu.Unlock()
	return elapsed[name]
}

// Sset records a named string, overwriting any previous value.
func Sset(name, value string) {
	mu.Lock()
	defer mu.Unlock()
	strs[name] = value
}

func Sget(name string) string {
	mu.Lock()
	defer mu.Unlock()
	return strs[name]
}

func Count(name string) {
	mu.Lock()
	defer mu.Unlock()
	counts[name]++
}

func CountVal(name string) int64 {
	mu.Lock()
	defer mu.Unlock()
	return counts[name]
}

func Print(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	names := make([]string, 0, len(strs)+len(counts)+len(elapsed))
	for n := range strs {
		names = append(names, n)
	}
	for n := range counts {
		names = append(names, n)
	}
	for n := range elapsed {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		if v, ok := strs[n]; ok {
			fmt.Fprintf(w, "%s: %s\n", n, v)
		} else if v, ok := counts[n]; ok {
			fmt.Fprintf(w, "%s: %d\n", n, v)
		} else {
			fmt.Fprintf(w, "%s: %.3fs\n", n, elapsed[n].Seconds())
		}
	}
}

// Reset clears everything. Tests only.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	started = make(map[string]time.Time)
	elapsed = make(map[string]time.Duration)
	strs = make(map[string]string)
	counts = make(map[string]int64)
}
