// Package engine reconstructs semantic actions from raw interaction
// telemetry.
//
// The engine is a single-pass state machine. Each raw event is routed
// by kind to one of three trackers:
//
//   - pointer events feed the gesture classifier, which pairs button
//     presses with releases and classifies the result as a click or a
//     drag (resampling the accumulated path for drags)
//   - keydown/keyup feed the modifier tracker, which detects hotkey
//     chords, and the text accumulator, which buffers printable
//     characters into typed-text actions
//   - mousewheel events emit scroll actions
//
// State lives entirely inside one Engine value and one Engine processes
// one session. Separate sessions can run concurrently with separate
// engines; nothing is shared.
package engine

import (
	"strings"

	"actiontrace/internal/action"
	"actiontrace/internal/geom"
	"actiontrace/internal/keymap"
	"actiontrace/internal/telemetry"
)

// Classification thresholds. A press-release pair within both limits is
// a click; anything beyond either limit with enough samples is a drag.
const (
	DefaultClickDistancePx = 5
	DefaultClickDurationMs = 500
	DefaultTextIdleMs      = 1000
)

// Config holds the engine thresholds.
type Config struct {
	// ClickDistancePx is the maximum pointer travel for a click.
	ClickDistancePx float64
	// ClickDurationMs is the maximum press duration for a click.
	ClickDurationMs int64
	// TextIdleMs is the keystroke gap that forces a typed-text flush.
	TextIdleMs int64
	// DragPoints is the number of control points drags are resampled to.
	DragPoints int
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{
		ClickDistancePx: DefaultClickDistancePx,
		ClickDurationMs: DefaultClickDurationMs,
		TextIdleMs:      DefaultTextIdleMs,
		DragPoints:      geom.DefaultDragPoints,
	}
}

// withDefaults fills zero-valued fields so a partially populated config
// from TOML behaves sensibly.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.ClickDistancePx <= 0 {
		c.ClickDistancePx = d.ClickDistancePx
	}
	if c.ClickDurationMs <= 0 {
		c.ClickDurationMs = d.ClickDurationMs
	}
	if c.TextIdleMs <= 0 {
		c.TextIdleMs = d.TextIdleMs
	}
	if c.DragPoints < 2 {
		c.DragPoints = d.DragPoints
	}
	return c
}

// position is a known pointer position.
type position struct {
	x, y int
}

// Engine is the per-session reconstruction state machine. The zero
// value is not usable; call New.
type Engine struct {
	cfg Config

	// Modifier tracking. Both slices keep capture order and behave as
	// sets: held is what is physically down right now, sequence is
	// every modifier seen since the last text flush.
	held     []keymap.Key
	sequence []keymap.Key

	// Text accumulation.
	pending      strings.Builder
	textStart    int64
	lastKeyTime  int64
	lastKeyKnown bool

	// Pointer tracking.
	pointerDown bool
	downTime    int64
	downPos     position
	points      []geom.Point
	lastPos     *position
}

// New creates an engine for one session's event stream.
func New(cfg Config) *Engine {
	return &Engine{cfg: cfg.withDefaults()}
}

// Feed processes one event and returns the actions it caused, in
// emission order. Events missing the fields their kind requires are
// ignored.
func (e *Engine) Feed(ev telemetry.RawEvent) []action.Action {
	switch ev.Kind {
	case telemetry.KindMouseMove:
		e.handleMove(ev)
		return nil
	case telemetry.KindMouseDown:
		return e.handleDown(ev)
	case telemetry.KindMouseUp:
		return e.handleUp(ev)
	case telemetry.KindMouseWheel:
		return e.handleWheel(ev)
	case telemetry.KindKeyDown:
		return e.handleKeyDown(ev)
	case telemetry.KindKeyUp:
		return e.handleKeyUp(ev)
	}
	return nil
}

// Flush ends the stream, emitting any buffered typed text.
func (e *Engine) Flush() []action.Action {
	return e.flushText()
}

// Extract runs the full single-pass reconstruction over a session's
// events: epoch normalization, one Feed per event, final flush. Events
// must be ordered by time non-decreasing.
func Extract(events []telemetry.RawEvent, cfg Config) []action.Action {
	eng := New(cfg)
	var out []action.Action
	for _, ev := range telemetry.NormalizeEpoch(events) {
		out = append(out, eng.Feed(ev)...)
	}
	return append(out, eng.Flush()...)
}

// leftButton reports whether the event is for the left mouse button.
// Recorders that only capture the primary button omit the field.
func leftButton(ev telemetry.RawEvent) bool {
	return ev.Button == "" || ev.Button == "left"
}

func (e *Engine) handleMove(ev telemetry.RawEvent) {
	x, y, ok := ev.Pos()
	if !ok {
		return
	}
	e.lastPos = &position{x, y}
	if e.pointerDown {
		e.points = append(e.points, geom.Point{T: ev.Time - e.downTime, X: x, Y: y})
	}
}

func (e *Engine) handleDown(ev telemetry.RawEvent) []action.Action {
	if x, y, ok := ev.Pos(); ok {
		e.lastPos = &position{x, y}
	}
	if !leftButton(ev) || e.lastPos == nil {
		return nil
	}

	out := e.flushText()
	e.pointerDown = true
	e.downTime = ev.Time
	e.downPos = *e.lastPos
	e.points = []geom.Point{{T: 0, X: e.downPos.x, Y: e.downPos.y}}
	return out
}

func (e *Engine) handleUp(ev telemetry.RawEvent) []action.Action {
	if x, y, ok := ev.Pos(); ok {
		e.lastPos = &position{x, y}
	}

	out := e.flushText()
	if !e.pointerDown || !leftButton(ev) {
		return out
	}

	dist := geom.Distance(
		float64(e.downPos.x), float64(e.downPos.y),
		float64(e.lastPos.x), float64(e.lastPos.y),
	)
	duration := ev.Time - e.downTime

	switch {
	case dist <= e.cfg.ClickDistancePx && duration <= e.cfg.ClickDurationMs:
		out = append(out, action.Click{X: e.downPos.x, Y: e.downPos.y, Timestamp: e.downTime})
	case len(e.points) >= 2:
		out = append(out, action.Drag{
			Timestamp: e.downTime,
			Points:    geom.Resample(e.points, e.cfg.DragPoints),
		})
	}
	// Sub-threshold motion with fewer than 2 samples emits nothing.

	e.pointerDown = false
	e.points = nil
	return out
}

func (e *Engine) handleWheel(ev telemetry.RawEvent) []action.Action {
	out := e.flushText()
	if ev.Delta == nil {
		return out
	}
	return append(out, action.Scroll{Delta: *ev.Delta, Timestamp: ev.Time})
}

func (e *Engine) handleKeyDown(ev telemetry.RawEvent) []action.Action {
	if ev.Key == "" {
		return nil
	}
	key := keymap.Normalize(ev.Key)

	// Idle timeout: a long gap since the previous keystroke flushes the
	// buffered text before this key is processed.
	var out []action.Action
	if e.pending.Len() > 0 && e.lastKeyKnown && ev.Time-e.lastKeyTime > e.cfg.TextIdleMs {
		out = e.flushText()
	}

	switch {
	case key.IsModifier():
		e.held = addKey(e.held, key)
		e.sequence = addKey(e.sequence, key)

	case e.comboPending():
		// A non-shift modifier is held: this keypress completes a
		// chord. Held modifiers join in capture order.
		out = append(out, e.flushText()...)
		parts := make([]string, 0, len(e.held)+1)
		for _, m := range e.held {
			parts = append(parts, m.Name)
		}
		parts = append(parts, strings.ToLower(key.Name))
		out = append(out, action.Hotkey{Combo: strings.Join(parts, "+"), Timestamp: ev.Time})
		e.held = nil
		e.sequence = nil

	case key.IsSpecial():
		out = append(out, e.flushText()...)
		out = append(out, action.Hotkey{Combo: key.Name, Timestamp: ev.Time})

	default:
		// Printable character, possibly an unmapped key passing through
		// as literal text.
		if sym, ok := keymap.Symbol(key, e.shiftHeld()); ok {
			if e.pending.Len() == 0 {
				e.textStart = ev.Time
			}
			e.pending.WriteString(sym)
			e.lastKeyTime = ev.Time
			e.lastKeyKnown = true
		}
	}
	return out
}

func (e *Engine) handleKeyUp(ev telemetry.RawEvent) []action.Action {
	if ev.Key == "" {
		return nil
	}
	key := keymap.Normalize(ev.Key)
	if !key.IsModifier() {
		return nil
	}

	e.held = removeKey(e.held, key)
	if len(e.held) > 0 {
		return nil
	}

	// The whole chord is released. If no keypress consumed it and no
	// text is pending, the held modifiers were the action themselves
	// (e.g. tapping ctrl+alt and letting go).
	var out []action.Action
	if len(e.sequence) > 0 && e.pending.Len() == 0 {
		parts := make([]string, 0, len(e.sequence))
		for _, m := range e.sequence {
			parts = append(parts, m.Name)
		}
		out = append(out, action.Hotkey{Combo: strings.Join(parts, "+"), Timestamp: ev.Time})
	}
	e.sequence = nil
	return out
}

// comboPending reports whether held modifiers block normal text entry.
// Shift alone does not: it cases the next character instead.
func (e *Engine) comboPending() bool {
	for _, k := range e.held {
		if k.IsComboOnly() {
			return true
		}
	}
	return false
}

func (e *Engine) shiftHeld() bool {
	for _, k := range e.held {
		if k.Name == keymap.KeyShift {
			return true
		}
	}
	return false
}

// flushText emits the buffered typed text, if any, and resets the text
// and sequence-modifier state.
func (e *Engine) flushText() []action.Action {
	if e.pending.Len() == 0 {
		return nil
	}
	out := []action.Action{action.TypeText{Text: e.pending.String(), Timestamp: e.textStart}}
	e.pending.Reset()
	e.textStart = 0
	e.lastKeyKnown = false
	e.sequence = nil
	return out
}

// addKey appends a key if absent, preserving capture order.
func addKey(keys []keymap.Key, k keymap.Key) []keymap.Key {
	for _, have := range keys {
		if have.Name == k.Name {
			return keys
		}
	}
	return append(keys, k)
}

func removeKey(keys []keymap.Key, k keymap.Key) []keymap.Key {
	out := keys[:0]
	for _, have := range keys {
		if have.Name != k.Name {
			out = append(out, have)
		}
	}
	return out
}
