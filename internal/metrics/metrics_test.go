package metrics

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"actiontrace/internal/action"
)

func TestCounterAndGauge(t *testing.T) {
	r := NewRegistry("test")

	c := r.RegisterCounter("things_total", "Things seen", nil)
	c.Inc()
	c.Add(4)
	assert.Equal(t, uint64(5), c.Value())

	g := r.RegisterGauge("depth", "Queue depth", nil)
	g.Set(10)
	g.Inc()
	g.Dec()
	g.Dec()
	assert.Equal(t, int64(9), g.Value())
}

func TestRegisterIsIdempotent(t *testing.T) {
	r := NewRegistry("test")

	a := r.RegisterCounter("hits_total", "", nil)
	b := r.RegisterCounter("hits_total", "", nil)
	require.Same(t, a, b)

	a.Inc()
	assert.Equal(t, uint64(1), b.Value())
}

func TestLabelsAreSorted(t *testing.T) {
	l := Labels{"zeta": "1", "alpha": "2"}
	assert.Equal(t, `{alpha="2",zeta="1"}`, l.String())
	assert.Equal(t, "", Labels{}.String())
}

func TestWritePrometheus(t *testing.T) {
	r := NewRegistry("actiontrace")
	r.RegisterCounter("sessions_processed_total", "Sessions extracted", nil).Add(3)
	r.RegisterGauge("spool_files_pending", "Pending files", nil).Set(2)
	r.RegisterCounter("actions_emitted_total", "Actions", Labels{"type": "mouseclick"}).Inc()

	var sb strings.Builder
	require.NoError(t, r.WritePrometheus(&sb))
	out := sb.String()

	assert.Contains(t, out, "# TYPE actiontrace_sessions_processed_total counter")
	assert.Contains(t, out, "actiontrace_sessions_processed_total 3")
	assert.Contains(t, out, "# TYPE actiontrace_spool_files_pending gauge")
	assert.Contains(t, out, "actiontrace_spool_files_pending 2")
	assert.Contains(t, out, `actiontrace_actions_emitted_total{type="mouseclick"} 1`)
}

func TestSnapshot(t *testing.T) {
	r := NewRegistry("x")
	r.RegisterCounter("a_total", "", nil).Add(7)
	r.RegisterGauge("b", "", nil).Set(-2)

	snap := r.Snapshot()
	assert.Equal(t, int64(7), snap["x_a_total"])
	assert.Equal(t, int64(-2), snap["x_b"])
}

func TestMetrics_CountActions(t *testing.T) {
	m := New()

	m.CountActions([]action.Action{
		action.Click{Timestamp: 0},
		action.Click{Timestamp: 10},
		action.TypeText{Text: "hi", Timestamp: 20},
		action.Scroll{Delta: 1, Timestamp: 30},
	})

	assert.Equal(t, uint64(2), m.ActionsEmitted(action.TypeClick))
	assert.Equal(t, uint64(1), m.ActionsEmitted(action.TypeTyped))
	assert.Equal(t, uint64(1), m.ActionsEmitted(action.TypeScroll))
	assert.Equal(t, uint64(0), m.ActionsEmitted(action.TypeDrag))
}
