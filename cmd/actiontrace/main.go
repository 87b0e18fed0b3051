// actiontrace - Reconstruct semantic desktop actions from raw input telemetry
//
//	actiontrace extract <log>...   Extract actions from session logs
//	actiontrace validate <log>...  Schema-validate session logs
//	actiontrace watch              Watch spool directories and ingest logs
//	actiontrace sessions           List stored sessions
//	actiontrace show <id>          Print the actions of a stored session
//	actiontrace status             Show configuration and store summary
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"sync"
	"syscall"
	"time"

	"gopkg.in/yaml.v3"

	"actiontrace/internal/action"
	"actiontrace/internal/config"
	"actiontrace/internal/logging"
	"actiontrace/internal/metrics"
	"actiontrace/internal/runner"
	"actiontrace/internal/store"
	"actiontrace/internal/telemetry"
	"actiontrace/internal/watcher"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cmd := os.Args[1]

	switch cmd {
	case "extract":
		cmdExtract()
	case "validate":
		cmdValidate()
	case "watch":
		cmdWatch()
	case "sessions":
		cmdSessions()
	case "show":
		cmdShow()
	case "status":
		cmdStatus()
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Println(`actiontrace - Semantic action reconstruction from input telemetry

USAGE:
    actiontrace <command> [options]

COMMANDS:
    extract <log>...    Extract actions from one or more session logs
    validate <log>...   Validate session logs against the record schema
    watch               Watch spool directories and ingest arriving logs
    sessions            List sessions stored in the database
    show <id>           Print the actions of a stored session
    status              Show configuration and store summary
    help                Show this help message

Input logs are JSONL files of raw mouse and keyboard events. Extraction
folds them into clicks, drags, typed text, hotkeys, and scrolls.

Run 'actiontrace <command> -h' for command options.`)
}

func loadConfig(path string) *config.Config {
	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func newLogger(cfg *config.Config) *logging.Logger {
	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	format, err := logging.ParseFormat(cfg.Logging.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	log, err := logging.New(&logging.Config{
		Level:    level,
		Format:   format,
		Output:   cfg.Logging.Output,
		FilePath: cfg.Logging.FilePath,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error setting up logging: %v\n", err)
		os.Exit(1)
	}
	logging.SetDefault(log)
	return log
}

func openStore(cfg *config.Config) *store.Store {
	path := cfg.Storage.Path
	if cfg.Storage.Type == "memory" {
		path = ":memory:"
	}
	st, err := store.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
		os.Exit(1)
	}
	return st
}

func writeRecords(v any, format string, outPath string) error {
	var data []byte
	var err error
	switch format {
	case "json":
		data, err = json.MarshalIndent(v, "", "  ")
		if err == nil {
			data = append(data, '\n')
		}
	case "yaml":
		data, err = yaml.Marshal(v)
	default:
		return fmt.Errorf("unknown format %q (want json or yaml)", format)
	}
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	if outPath == "" || outPath == "-" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(outPath, data, 0644)
}

func cmdExtract() {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	output := fs.String("o", "", "output path (default stdout)")
	format := fs.String("format", "json", "output format: json or yaml")
	strict := fs.Bool("strict", false, "schema-validate logs before extraction")
	persist := fs.Bool("store", false, "persist extracted sessions to the database")
	fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: actiontrace extract [options] <log>...")
		os.Exit(1)
	}

	cfg := loadConfig(*configPath)
	log := newLogger(cfg)
	defer log.Close()

	opts := runner.Options{
		Engine: runner.EngineConfig(cfg.Engine),
		Strict: *strict || cfg.Ingest.Strict,
		Logger: log,
	}
	var st *store.Store
	if *persist {
		st = openStore(cfg)
		defer st.Close()
		opts.Store = st
	}

	r := runner.New(opts)
	results, err := r.ProcessAll(context.Background(), fs.Args(), cfg.Ingest.Workers)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "%s: %v\n", res.Path, res.Err)
		}
	}

	var out any
	if len(results) == 1 {
		out = action.Encode(results[0].Actions)
	} else {
		type fileActions struct {
			Path    string          `json:"path" yaml:"path"`
			Actions []action.Record `json:"actions" yaml:"actions"`
		}
		all := make([]fileActions, 0, len(results))
		for _, res := range results {
			if res.Err != nil {
				continue
			}
			all = append(all, fileActions{Path: res.Path, Actions: action.Encode(res.Actions)})
		}
		out = all
	}

	if err := writeRecords(out, *format, *output); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
		os.Exit(1)
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func cmdValidate() {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: actiontrace validate <log>...")
		os.Exit(1)
	}

	failed := 0
	for _, path := range fs.Args() {
		if err := telemetry.ValidateLogFile(path); err != nil {
			failed++
			fmt.Printf("%s: FAIL\n  %v\n", path, err)
		} else {
			fmt.Printf("%s: OK\n", path)
		}
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func cmdWatch() {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	fs.Parse(os.Args[2:])

	cfg := loadConfig(*configPath)
	log := newLogger(cfg)
	defer log.Close()

	st := openStore(cfg)
	defer st.Close()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	for _, dir := range cfg.Ingest.SpoolDirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			fmt.Fprintf(os.Stderr, "Error creating spool dir %s: %v\n", dir, err)
			os.Exit(1)
		}
	}

	debounce := time.Duration(cfg.Ingest.DebounceSec) * time.Second
	w, err := watcher.New(cfg.Ingest.SpoolDirs, cfg.Ingest.Pattern, debounce)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating watcher: %v\n", err)
		os.Exit(1)
	}
	if err := w.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Error starting watcher: %v\n", err)
		os.Exit(1)
	}
	defer w.Stop()

	r := runner.New(runner.Options{
		Engine:  runner.EngineConfig(cfg.Engine),
		Strict:  cfg.Ingest.Strict,
		Store:   st,
		Metrics: m,
		Logger:  log,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	workers := cfg.Ingest.Workers
	if workers < 1 {
		workers = 1
	}
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	log.Info("watching spool directories",
		"dirs", cfg.Ingest.SpoolDirs,
		"pattern", cfg.Ingest.Pattern,
		"debounce", debounce.String())

	for {
		select {
		case <-sigChan:
			cancel()
			wg.Wait()
			if m != nil {
				fmt.Println()
				if err := m.Registry().WritePrometheus(os.Stdout); err != nil {
					log.Error("metrics dump failed", "error", err)
				}
			}
			log.Info("shutting down")
			return
		case ev, ok := <-w.Events():
			if !ok {
				wg.Wait()
				return
			}
			if m != nil {
				m.SpoolPending.Set(int64(w.PendingFiles()))
			}
			wg.Add(1)
			sem <- struct{}{}
			go func(path string) {
				defer wg.Done()
				defer func() { <-sem }()
				if _, err := r.Process(ctx, path); err != nil {
					if m != nil {
						m.ErrorsTotal.Inc()
					}
					log.Error("session failed", "path", path, "error", err)
				}
			}(ev.Path)
		case err, ok := <-w.Errors():
			if !ok {
				continue
			}
			log.Error("watcher error", "error", err)
		}
	}
}

func cmdSessions() {
	fs := flag.NewFlagSet("sessions", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	fs.Parse(os.Args[2:])

	cfg := loadConfig(*configPath)
	st := openStore(cfg)
	defer st.Close()

	sessions, err := st.Sessions()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing sessions: %v\n", err)
		os.Exit(1)
	}
	if len(sessions) == 0 {
		fmt.Println("No sessions stored.")
		return
	}

	fmt.Printf("%-6s %-20s %8s %8s  %s\n", "ID", "INGESTED", "EVENTS", "ACTIONS", "SOURCE")
	for _, s := range sessions {
		fmt.Printf("%-6d %-20s %8d %8d  %s\n",
			s.ID,
			s.IngestedAt.Format("2006-01-02 15:04:05"),
			s.EventCount,
			s.ActionCount,
			s.SourcePath)
	}
}

func cmdShow() {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	format := fs.String("format", "json", "output format: json or yaml")
	fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: actiontrace show [options] <session-id>")
		os.Exit(1)
	}
	id, err := strconv.ParseInt(fs.Arg(0), 10, 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid session ID: %s\n", fs.Arg(0))
		os.Exit(1)
	}

	cfg := loadConfig(*configPath)
	st := openStore(cfg)
	defer st.Close()

	session, err := st.Session(id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if session == nil {
		fmt.Fprintf(os.Stderr, "Session %d not found\n", id)
		os.Exit(1)
	}

	records, err := st.Actions(id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading actions: %v\n", err)
		os.Exit(1)
	}

	if err := writeRecords(records, *format, ""); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
		os.Exit(1)
	}
}

func cmdStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	fs.Parse(os.Args[2:])

	cfg := loadConfig(*configPath)

	fmt.Println("=== actiontrace Status ===")
	fmt.Println()

	path := *configPath
	if path == "" {
		path = config.DefaultPath()
	}
	if _, err := os.Stat(path); err == nil {
		fmt.Printf("Config:     %s\n", path)
	} else {
		fmt.Printf("Config:     %s (not found, using defaults)\n", path)
	}
	fmt.Printf("Spool dirs: %v\n", cfg.Ingest.SpoolDirs)
	fmt.Printf("Pattern:    %s\n", cfg.Ingest.Pattern)
	fmt.Printf("Workers:    %d\n", cfg.Ingest.Workers)
	fmt.Printf("Strict:     %v\n", cfg.Ingest.Strict)
	fmt.Println()

	fmt.Println("Engine thresholds:")
	fmt.Printf("  click distance: %.0f px\n", cfg.Engine.ClickDistancePx)
	fmt.Printf("  click duration: %d ms\n", cfg.Engine.ClickDurationMs)
	fmt.Printf("  text idle gap:  %d ms\n", cfg.Engine.TextIdleMs)
	fmt.Printf("  drag points:    %d\n", cfg.Engine.DragPoints)
	fmt.Println()

	fmt.Println("Database:")
	if cfg.Storage.Type == "memory" {
		fmt.Println("  in-memory store (nothing persisted)")
		return
	}
	if _, err := os.Stat(cfg.Storage.Path); os.IsNotExist(err) {
		fmt.Printf("  %s (not created yet)\n", cfg.Storage.Path)
		return
	}
	st := openStore(cfg)
	defer st.Close()

	summary, err := st.Summarize()
	if err != nil {
		fmt.Printf("  Error reading store: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("  %s\n", cfg.Storage.Path)
	fmt.Printf("  Sessions: %d\n", summary.Sessions)
	fmt.Printf("  Actions:  %d\n", summary.Actions)
	types := make([]string, 0, len(summary.ByType))
	for typ := range summary.ByType {
		types = append(types, typ)
	}
	sort.Strings(types)
	for _, typ := range types {
		fmt.Printf("    %-12s %d\n", typ, summary.ByType[typ])
	}
}
