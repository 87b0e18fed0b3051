package runner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"actiontrace/internal/action"
	"actiontrace/internal/config"
	"actiontrace/internal/engine"
	"actiontrace/internal/metrics"
	"actiontrace/internal/store"
)

const clickAndTypeLog = `{"event": "mousemove", "data": {"x": 10, "y": 10}, "time": 1000}
{"event": "mousedown", "data": {"x": 10, "y": 10, "button": "left"}, "time": 1050}
{"event": "mouseup", "data": {"x": 10, "y": 10, "button": "left"}, "time": 1150}
{"event": "keydown", "data": {"key": "h"}, "time": 2000}
{"event": "keydown", "data": {"key": "i"}, "time": 2050}
`

func writeLog(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestProcess(t *testing.T) {
	path := writeLog(t, t.TempDir(), "session.jsonl", clickAndTypeLog)

	r := New(Options{Engine: engine.DefaultConfig()})
	res, err := r.Process(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, 5, res.EventCount)
	require.Len(t, res.Actions, 2)
	assert.Equal(t, action.Click{X: 10, Y: 10, Timestamp: 50}, res.Actions[0])
	assert.Equal(t, action.TypeText{Text: "hi", Timestamp: 1000}, res.Actions[1])
	assert.Equal(t, map[string]int{action.TypeClick: 1, action.TypeTyped: 1}, res.ByType)
	assert.Zero(t, res.SessionID, "no store configured")
}

func TestProcess_StrictRejectsBadLog(t *testing.T) {
	path := writeLog(t, t.TempDir(), "bad.jsonl",
		`{"event": "keydown", "data": {"key": "a"}, "time": 1, "extra": true}`+"\n")

	strict := New(Options{Engine: engine.DefaultConfig(), Strict: true})
	_, err := strict.Process(context.Background(), path)
	assert.Error(t, err)

	// The same log reads fine without schema validation; unknown
	// top-level fields are a schema concern, not a parse error.
	lax := New(Options{Engine: engine.DefaultConfig()})
	_, err = lax.Process(context.Background(), path)
	assert.NoError(t, err)
}

func TestProcess_PersistsToStore(t *testing.T) {
	path := writeLog(t, t.TempDir(), "session.jsonl", clickAndTypeLog)

	s, err := store.Open(filepath.Join(t.TempDir(), "db.sqlite"))
	require.NoError(t, err)
	defer s.Close()

	r := New(Options{Engine: engine.DefaultConfig(), Store: s})
	res, err := r.Process(context.Background(), path)
	require.NoError(t, err)
	require.Positive(t, res.SessionID)

	records, err := s.Actions(res.SessionID)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestProcess_UpdatesMetrics(t *testing.T) {
	path := writeLog(t, t.TempDir(), "session.jsonl", clickAndTypeLog)

	m := metrics.New()
	r := New(Options{Engine: engine.DefaultConfig(), Metrics: m})
	_, err := r.Process(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, uint64(1), m.SessionsTotal.Value())
	assert.Equal(t, uint64(5), m.EventsTotal.Value())
	assert.Equal(t, uint64(1), m.ActionsEmitted(action.TypeClick))
	assert.Equal(t, uint64(1), m.ActionsEmitted(action.TypeTyped))
}

func TestProcess_MissingFile(t *testing.T) {
	r := New(Options{Engine: engine.DefaultConfig()})
	_, err := r.Process(context.Background(), filepath.Join(t.TempDir(), "nope.jsonl"))
	assert.Error(t, err)
}

func TestProcessAll(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeLog(t, dir, "a.jsonl", clickAndTypeLog),
		writeLog(t, dir, "b.jsonl", `{"event": "mousewheel", "data": {"delta": 3}, "time": 5}`+"\n"),
		writeLog(t, dir, "c.jsonl", "not json\n"),
	}

	m := metrics.New()
	r := New(Options{Engine: engine.DefaultConfig(), Metrics: m})
	results, err := r.ProcessAll(context.Background(), paths, 2)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.NoError(t, results[0].Err)
	assert.Len(t, results[0].Actions, 2)
	assert.NoError(t, results[1].Err)
	assert.Len(t, results[1].Actions, 1)
	assert.Error(t, results[2].Err, "malformed log fails its own session only")

	assert.Equal(t, uint64(2), m.SessionsTotal.Value())
	assert.Equal(t, uint64(1), m.ErrorsTotal.Value())
	assert.Equal(t, int64(0), m.ActiveWorkers.Value())
}

func TestProcessAll_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := New(Options{Engine: engine.DefaultConfig()})
	_, err := r.ProcessAll(ctx, []string{"a", "b"}, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEngineConfigConversion(t *testing.T) {
	cfg := config.EngineConfig{
		ClickDistancePx: 7,
		ClickDurationMs: 250,
		TextIdleMs:      2000,
		DragPoints:      16,
	}

	ec := EngineConfig(cfg)
	assert.Equal(t, engine.Config{
		ClickDistancePx: 7,
		ClickDurationMs: 250,
		TextIdleMs:      2000,
		DragPoints:      16,
	}, ec)
}
