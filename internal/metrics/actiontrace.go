package metrics

import "actiontrace/internal/action"

// Metrics holds the actiontrace extraction metrics.
type Metrics struct {
	registry *Registry

	// Counters
	SessionsTotal  *Counter
	EventsTotal    *Counter
	ErrorsTotal    *Counter
	actionCounters map[string]*Counter

	// Gauges
	SpoolPending  *Gauge
	ActiveWorkers *Gauge
}

// New creates and registers all actiontrace metrics on a fresh
// registry.
func New() *Metrics {
	registry := NewRegistry("actiontrace")

	m := &Metrics{
		registry: registry,

		SessionsTotal: registry.RegisterCounter(
			"sessions_processed_total",
			"Total number of session logs extracted",
			nil,
		),
		EventsTotal: registry.RegisterCounter(
			"events_ingested_total",
			"Total number of raw input events read",
			nil,
		),
		ErrorsTotal: registry.RegisterCounter(
			"extraction_errors_total",
			"Total number of sessions that failed extraction",
			nil,
		),
		actionCounters: make(map[string]*Counter),

		SpoolPending: registry.RegisterGauge(
			"spool_files_pending",
			"Session logs waiting to stabilize in the spool",
			nil,
		),
		ActiveWorkers: registry.RegisterGauge(
			"active_workers",
			"Extraction workers currently running",
			nil,
		),
	}

	for _, typ := range []string{
		action.TypeClick, action.TypeDrag, action.TypeTyped,
		action.TypeHotkey, action.TypeScroll,
	} {
		m.actionCounters[typ] = registry.RegisterCounter(
			"actions_emitted_total",
			"Total number of semantic actions emitted",
			Labels{"type": typ},
		)
	}

	return m
}

// CountActions bumps the per-type emission counters.
func (m *Metrics) CountActions(actions []action.Action) {
	for _, a := range actions {
		if c, ok := m.actionCounters[a.Type()]; ok {
			c.Inc()
		}
	}
}

// ActionsEmitted returns the emission counter for one action type.
func (m *Metrics) ActionsEmitted(typ string) uint64 {
	if c, ok := m.actionCounters[typ]; ok {
		return c.Value()
	}
	return 0
}

// Registry returns the underlying registry for exposition.
func (m *Metrics) Registry() *Registry {
	return m.registry
}
