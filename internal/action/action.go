// Package action defines the semantic actions reconstructed from raw
// interaction telemetry and their wire encoding.
//
// An extracted session is an ordered sequence of actions: mouse clicks,
// mouse drags, typed text, hotkey chords, and scroll-wheel events. The
// sequence is ordered by emission time, which equals each action's
// start-of-action time, so downstream consumers can merge it with frame
// timelines without re-sorting.
package action

import (
	"encoding/json"
	"fmt"

	"actiontrace/internal/geom"
)

// Wire type tags for action records.
const (
	TypeClick  = "mouseclick"
	TypeDrag   = "mousedrag"
	TypeTyped  = "type"
	TypeHotkey = "hotkey"
	TypeScroll = "mousewheel"
)

// Action is one semantic action. Timestamps are session-relative
// milliseconds.
type Action interface {
	// Type returns the wire type tag.
	Type() string
	// Time returns the action's start time.
	Time() int64
	// Record returns the wire form.
	Record() Record
}

// Click is a press-and-release at one position.
type Click struct {
	X         int
	Y         int
	Timestamp int64
}

// Drag is a pointer path between press and release, resampled to a fixed
// number of control points. Points always has length >= 2.
type Drag struct {
	Timestamp int64
	Points    []geom.Point
}

// TypeText is a run of consecutive printable keystrokes. Text is never
// empty.
type TypeText struct {
	Text      string
	Timestamp int64
}

// Hotkey is a modifier chord or a standalone special key, e.g. "ctrl+c"
// or "enter".
type Hotkey struct {
	Combo     string
	Timestamp int64
}

// Scroll is one mouse-wheel event.
type Scroll struct {
	Delta     float64
	Timestamp int64
}

func (a Click) Type() string    { return TypeClick }
func (a Drag) Type() string     { return TypeDrag }
func (a TypeText) Type() string { return TypeTyped }
func (a Hotkey) Type() string   { return TypeHotkey }
func (a Scroll) Type() string   { return TypeScroll }

func (a Click) Time() int64    { return a.Timestamp }
func (a Drag) Time() int64     { return a.Timestamp }
func (a TypeText) Time() int64 { return a.Timestamp }
func (a Hotkey) Time() int64   { return a.Timestamp }
func (a Scroll) Time() int64   { return a.Timestamp }

// Record is the serialized form of an action:
// {type, timestamp, data}.
type Record struct {
	Type      string `json:"type" yaml:"type"`
	Timestamp int64  `json:"timestamp" yaml:"timestamp"`
	Data      any    `json:"data" yaml:"data"`
}

// ClickData is the payload of a mouseclick record.
type ClickData struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// DragData is the payload of a mousedrag record.
type DragData struct {
	Coordinates []geom.Point `json:"coordinates" yaml:"coordinates"`
}

// TextData is the payload of type and hotkey records.
type TextData struct {
	Text string `json:"text" yaml:"text"`
}

// ScrollData is the payload of a mousewheel record.
type ScrollData struct {
	Delta float64 `json:"delta" yaml:"delta"`
}

func (a Click) Record() Record {
	return Record{Type: TypeClick, Timestamp: a.Timestamp, Data: ClickData{X: a.X, Y: a.Y}}
}

func (a Drag) Record() Record {
	return Record{Type: TypeDrag, Timestamp: a.Timestamp, Data: DragData{Coordinates: a.Points}}
}

func (a TypeText) Record() Record {
	return Record{Type: TypeTyped, Timestamp: a.Timestamp, Data: TextData{Text: a.Text}}
}

func (a Hotkey) Record() Record {
	return Record{Type: TypeHotkey, Timestamp: a.Timestamp, Data: TextData{Text: a.Combo}}
}

func (a Scroll) Record() Record {
	return Record{Type: TypeScroll, Timestamp: a.Timestamp, Data: ScrollData{Delta: a.Delta}}
}

// Encode converts actions to their wire records, preserving order.
func Encode(actions []Action) []Record {
	records := make([]Record, 0, len(actions))
	for _, a := range actions {
		records = append(records, a.Record())
	}
	return records
}

// FromRecord converts one wire record back into an action. The record's
// Data may be a payload struct (as produced by Record methods) or raw
// JSON (as read back from storage).
func FromRecord(r Record) (Action, error) {
	raw, err := json.Marshal(r.Data)
	if err != nil {
		return nil, fmt.Errorf("re-encode %s payload: %w", r.Type, err)
	}

	switch r.Type {
	case TypeClick:
		var d ClickData
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", r.Type, err)
		}
		return Click{X: d.X, Y: d.Y, Timestamp: r.Timestamp}, nil
	case TypeDrag:
		var d DragData
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", r.Type, err)
		}
		if len(d.Coordinates) < 2 {
			return nil, fmt.Errorf("drag record at %dms has %d coordinates, need at least 2", r.Timestamp, len(d.Coordinates))
		}
		return Drag{Timestamp: r.Timestamp, Points: d.Coordinates}, nil
	case TypeTyped:
		var d TextData
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", r.Type, err)
		}
		if d.Text == "" {
			return nil, fmt.Errorf("type record at %dms has empty text", r.Timestamp)
		}
		return TypeText{Text: d.Text, Timestamp: r.Timestamp}, nil
	case TypeHotkey:
		var d TextData
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", r.Type, err)
		}
		return Hotkey{Combo: d.Text, Timestamp: r.Timestamp}, nil
	case TypeScroll:
		var d ScrollData
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", r.Type, err)
		}
		return Scroll{Delta: d.Delta, Timestamp: r.Timestamp}, nil
	default:
		return nil, fmt.Errorf("unknown action type %q", r.Type)
	}
}

// Decode converts wire records back into actions, preserving order.
func Decode(records []Record) ([]Action, error) {
	actions := make([]Action, 0, len(records))
	for i, r := range records {
		a, err := FromRecord(r)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		actions = append(actions, a)
	}
	return actions, nil
}
