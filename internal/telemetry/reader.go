package telemetry

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// maxLineBytes bounds a single log line. Drag-heavy sessions produce
// long mousemove bursts but individual records stay small; 1 MiB is far
// above anything the recorders emit.
const maxLineBytes = 1 << 20

// ReadLog reads a newline-delimited JSON session log. Blank lines are
// skipped. Any syntactically invalid record aborts the whole read: a
// corrupt log means the session is unusable, so there is no per-record
// recovery. The returned events keep their absolute timestamps; call
// NormalizeEpoch before feeding them to the engine.
func ReadLog(r io.Reader) ([]RawEvent, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var events []RawEvent
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		var w wireEvent
		if err := json.Unmarshal([]byte(text), &w); err != nil {
			return nil, fmt.Errorf("line %d: malformed event record: %w", line, err)
		}
		ev, err := w.toEvent()
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		events = append(events, ev)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read session log: %w", err)
	}
	return events, nil
}

// ReadLogFile reads a session log from disk.
func ReadLogFile(path string) ([]RawEvent, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open session log: %w", err)
	}
	defer f.Close()

	events, err := ReadLog(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return events, nil
}
