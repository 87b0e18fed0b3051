package telemetry

import (
	"bufio"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed raw-event-v1.schema.json
var rawEventSchema string

const schemaName = "raw-event-v1.schema.json"

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(schemaName, strings.NewReader(rawEventSchema)); err != nil {
			schemaErr = fmt.Errorf("add schema resource: %w", err)
			return
		}
		schema, schemaErr = compiler.Compile(schemaName)
	})
	return schema, schemaErr
}

// ValidateLog checks every record in a session log against the raw
// event JSON Schema. It reports the first offending line and stops; a
// log that fails validation is rejected as a whole, matching the
// reader's fail-fast contract.
func ValidateLog(r io.Reader) error {
	sch, err := compiledSchema()
	if err != nil {
		return err
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		var instance any
		if err := json.Unmarshal([]byte(text), &instance); err != nil {
			return fmt.Errorf("line %d: malformed event record: %w", line, err)
		}
		if err := sch.Validate(instance); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read session log: %w", err)
	}
	return nil
}

// ValidateLogFile validates a session log on disk.
func ValidateLogFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open session log: %w", err)
	}
	defer f.Close()

	if err := ValidateLog(f); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}
