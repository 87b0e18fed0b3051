// Package telemetry models the raw desktop-interaction events recorded
// during a training session and reads them from newline-delimited JSON
// session logs.
//
// A session log is one JSON record per line:
//
//	{"event": "mousemove", "data": {"x": 100, "y": 200}, "time": 1714000000123}
//
// Records are ordered by time non-decreasing. That ordering is assumed,
// not enforced; the recorder writes events as they happen.
package telemetry

import "fmt"

// Kind identifies the raw event type.
type Kind string

// Raw event kinds.
const (
	KindMouseMove  Kind = "mousemove"
	KindMouseDown  Kind = "mousedown"
	KindMouseUp    Kind = "mouseup"
	KindKeyDown    Kind = "keydown"
	KindKeyUp      Kind = "keyup"
	KindMouseWheel Kind = "mousewheel"
)

// Valid reports whether k is one of the known event kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindMouseMove, KindMouseDown, KindMouseUp, KindKeyDown, KindKeyUp, KindMouseWheel:
		return true
	}
	return false
}

// RawEvent is one recorded input event. Time is milliseconds; after
// NormalizeEpoch it is relative to the session start. Optional fields
// are nil pointers when the record omitted them, so the engine can skip
// events missing the fields it needs.
type RawEvent struct {
	Kind   Kind
	Time   int64
	X      *int
	Y      *int
	Key    string
	Button string
	Delta  *float64
}

// Pos returns the event position and whether both coordinates are
// present.
func (e RawEvent) Pos() (x, y int, ok bool) {
	if e.X == nil || e.Y == nil {
		return 0, 0, false
	}
	return *e.X, *e.Y, true
}

// wireEvent is the on-disk record shape.
type wireEvent struct {
	Event string   `json:"event"`
	Data  wireData `json:"data"`
	Time  int64    `json:"time"`
}

type wireData struct {
	X      *int     `json:"x"`
	Y      *int     `json:"y"`
	Key    *string  `json:"key"`
	Button *string  `json:"button"`
	Delta  *float64 `json:"delta"`
}

func (w wireEvent) toEvent() (RawEvent, error) {
	kind := Kind(w.Event)
	if !kind.Valid() {
		return RawEvent{}, fmt.Errorf("unknown event kind %q", w.Event)
	}

	ev := RawEvent{
		Kind:  kind,
		Time:  w.Time,
		X:     w.Data.X,
		Y:     w.Data.Y,
		Delta: w.Data.Delta,
	}
	if w.Data.Key != nil {
		ev.Key = *w.Data.Key
	}
	if w.Data.Button != nil {
		ev.Button = *w.Data.Button
	}
	return ev, nil
}

// NormalizeEpoch rebases every timestamp onto the session epoch, the
// time of the first event, so output timestamps start at 0. The input
// slice is not modified.
func NormalizeEpoch(events []RawEvent) []RawEvent {
	if len(events) == 0 {
		return nil
	}

	epoch := events[0].Time
	out := make([]RawEvent, len(events))
	for i, ev := range events {
		ev.Time -= epoch
		out[i] = ev
	}
	return out
}
