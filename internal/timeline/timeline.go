// Package timeline merges an extracted action sequence with screenshot
// frames sampled by an external collaborator.
//
// Frame sampling itself (video decoding, screenshot capture) happens
// outside this repository; the FrameSource interface is the boundary.
// The merged timeline is what captioning and grading consume, so it
// must stay in chronological order with all text already flushed, which
// the engine guarantees.
package timeline

import (
	"context"
	"sort"

	"actiontrace/internal/action"
)

// Frame is one sampled screenshot keyed by its session-relative
// timestamp in milliseconds.
type Frame struct {
	Timestamp int64  `json:"timestamp" yaml:"timestamp"`
	Path      string `json:"path" yaml:"path"`
}

// FrameSource supplies the frames for one session. Implementations live
// outside this repository.
type FrameSource interface {
	Frames(ctx context.Context) ([]Frame, error)
}

// Entry is one element of the merged timeline: either an action or a
// frame, never both.
type Entry struct {
	Timestamp int64          `json:"timestamp" yaml:"timestamp"`
	Action    *action.Record `json:"action,omitempty" yaml:"action,omitempty"`
	Frame     *Frame         `json:"frame,omitempty" yaml:"frame,omitempty"`
}

// Merge interleaves actions and frames by timestamp. Both inputs are
// already time-ordered; on equal timestamps the action comes first so a
// frame never precedes the action it illustrates. The merge is stable
// within each input.
func Merge(actions []action.Action, frames []Frame) []Entry {
	// Frames arrive ordered from well-behaved sources, but an external
	// sampler is not trusted the way the engine is.
	sorted := make([]Frame, len(frames))
	copy(sorted, frames)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp < sorted[j].Timestamp
	})

	out := make([]Entry, 0, len(actions)+len(sorted))
	ai, fi := 0, 0
	for ai < len(actions) || fi < len(sorted) {
		takeAction := fi >= len(sorted) ||
			(ai < len(actions) && actions[ai].Time() <= sorted[fi].Timestamp)

		if takeAction {
			rec := actions[ai].Record()
			out = append(out, Entry{Timestamp: rec.Timestamp, Action: &rec})
			ai++
		} else {
			f := sorted[fi]
			out = append(out, Entry{Timestamp: f.Timestamp, Frame: &f})
			fi++
		}
	}
	return out
}

// MergeSource pulls frames from a source and merges them with the
// actions.
func MergeSource(ctx context.Context, actions []action.Action, src FrameSource) ([]Entry, error) {
	frames, err := src.Frames(ctx)
	if err != nil {
		return nil, err
	}
	return Merge(actions, frames), nil
}
