// Package metrics provides Prometheus-compatible metrics for
// actiontrace.
//
// Features:
//   - Counters for ingested events, emitted actions, errors
//   - Gauges for pending spool files and worker activity
//   - Prometheus text exposition and a JSON snapshot
//   - Thread-safe operations
package metrics

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
)

// Labels represents metric labels.
type Labels map[string]string

// String returns the Prometheus label form, with keys sorted for
// reproducible output.
func (l Labels) String() string {
	if len(l) == 0 {
		return ""
	}

	keys := make([]string, 0, len(l))
	for k := range l {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(l))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf(`%s="%s"`, k, l[k]))
	}
	return "{" + strings.Join(parts, ",") + "}"
}

// Counter is a monotonically increasing counter.
type Counter struct {
	name   string
	help   string
	labels Labels
	value  atomic.Uint64
}

// Inc increments the counter by 1.
func (c *Counter) Inc() {
	c.value.Add(1)
}

// Add adds the given value to the counter.
func (c *Counter) Add(v uint64) {
	c.value.Add(v)
}

// Value returns the current value.
func (c *Counter) Value() uint64 {
	return c.value.Load()
}

// Gauge is a value that can go up and down.
type Gauge struct {
	name   string
	help   string
	labels Labels
	value  atomic.Int64
}

// Set sets the gauge to the given value.
func (g *Gauge) Set(v int64) {
	g.value.Store(v)
}

// Inc increments the gauge by 1.
func (g *Gauge) Inc() {
	g.value.Add(1)
}

// Dec decrements the gauge by 1.
func (g *Gauge) Dec() {
	g.value.Add(-1)
}

// Value returns the current value.
func (g *Gauge) Value() int64 {
	return g.value.Load()
}

// Registry holds a set of named metrics.
type Registry struct {
	namespace string

	mu       sync.RWMutex
	counters map[string]*Counter
	gauges   map[string]*Gauge
	order    []string
}

// NewRegistry creates a registry. namespace is prefixed onto every
// metric name.
func NewRegistry(namespace string) *Registry {
	return &Registry{
		namespace: namespace,
		counters:  make(map[string]*Counter),
		gauges:    make(map[string]*Gauge),
	}
}

func (r *Registry) fullName(name string) string {
	if r.namespace == "" {
		return name
	}
	return r.namespace + "_" + name
}

// RegisterCounter creates and registers a counter, returning the
// existing one when the name is already registered.
func (r *Registry) RegisterCounter(name, help string, labels Labels) *Counter {
	full := r.fullName(name) + labels.String()

	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.counters[full]; ok {
		return c
	}
	c := &Counter{name: r.fullName(name), help: help, labels: labels}
	r.counters[full] = c
	r.order = append(r.order, full)
	return c
}

// RegisterGauge creates and registers a gauge, returning the existing
// one when the name is already registered.
func (r *Registry) RegisterGauge(name, help string, labels Labels) *Gauge {
	full := r.fullName(name) + labels.String()

	r.mu.Lock()
	defer r.mu.Unlock()

	if g, ok := r.gauges[full]; ok {
		return g
	}
	g := &Gauge{name: r.fullName(name), help: help, labels: labels}
	r.gauges[full] = g
	r.order = append(r.order, full)
	return g
}

// WritePrometheus writes all metrics in Prometheus text exposition
// format, in registration order.
func (r *Registry) WritePrometheus(w io.Writer) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, key := range r.order {
		if c, ok := r.counters[key]; ok {
			if _, err := fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s counter\n%s%s %d\n",
				c.name, c.help, c.name, c.name, c.labels.String(), c.Value()); err != nil {
				return err
			}
			continue
		}
		if g, ok := r.gauges[key]; ok {
			if _, err := fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s gauge\n%s%s %d\n",
				g.name, g.help, g.name, g.name, g.labels.String(), g.Value()); err != nil {
				return err
			}
		}
	}
	return nil
}

// Snapshot returns the current value of every metric keyed by its full
// labelled name.
func (r *Registry) Snapshot() map[string]int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snap := make(map[string]int64, len(r.counters)+len(r.gauges))
	for key, c := range r.counters {
		snap[key] = int64(c.Value())
	}
	for key, g := range r.gauges {
		snap[key] = g.Value()
	}
	return snap
}
