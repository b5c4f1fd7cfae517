// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func startWatcher(t *testing.T, cfg Config) (cancel func()) {
	t.Helper()

	w, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	ctx, cancelCtx := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()

	// Give the event loop time to start.
	time.Sleep(50 * time.Millisecond)

	return func() {
		cancelCtx()
		select {
		case err := <-errCh:
			if err != nil {
				t.Errorf("Run() error: %v", err)
			}
		case <-time.After(5 * time.Second):
			t.Error("Run() did not return after cancellation")
		}
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestWatcherDebounce(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	var (
		mu        sync.Mutex
		calls     int
		collected []string
	)
	done := make(chan struct{})

	stop := startWatcher(t, Config{
		Root:     dir,
		Debounce: 100 * time.Millisecond,
		OnChange: func(_ context.Context, changed []string) error {
			mu.Lock()
			defer mu.Unlock()
			calls++
			collected = append(collected, changed...)
			if calls == 1 {
				close(done)
			}
			return nil
		},
	})
	defer stop()

	for _, name := range []string{"a.go", "b.go", "c.go"} {
		writeFile(t, filepath.Join(dir, name), "package x")
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for callback")
	}
	time.Sleep(200 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if calls != 1 {
		t.Errorf("expected 1 debounced callback, got %d", calls)
	}
	for _, want := range []string{"a.go", "b.go", "c.go"} {
		if !slices.Contains(collected, want) {
			t.Errorf("expected %q in changed files, got %v", want, collected)
		}
	}
}

func TestWatcherIgnorePatterns(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "gitingest-ingest"), 0o755); err != nil {
		t.Fatal(err)
	}
	fired := make(chan []string, 10)

	stop := startWatcher(t, Config{
		Root:     dir,
		Ignore:   []string{"digest*.txt", "gitingest-ingest/**"},
		Debounce: 50 * time.Millisecond,
		OnChange: func(_ context.Context, changed []string) error {
			fired <- changed
			return nil
		},
	})
	defer stop()

	writeFile(t, filepath.Join(dir, "digest (1).txt"), "saved")
	writeFile(t, filepath.Join(dir, "gitingest-ingest", "copy.go"), "package x")
	time.Sleep(200 * time.Millisecond)
	writeFile(t, filepath.Join(dir, "main.go"), "package main")

	select {
	case changed := <-fired:
		if !slices.Equal(changed, []string{"main.go"}) {
			t.Errorf("changed = %v, want [main.go]", changed)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for callback on non-ignored file")
	}
}

func TestWatcherBusyTriggersRestart(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	var (
		calls   atomic.Int32
		busy    atomic.Int32
		started = make(chan struct{})
		second  = make(chan []string, 1)
		unblock = make(chan struct{})
	)

	stop := startWatcher(t, Config{
		Root:     dir,
		Debounce: 50 * time.Millisecond,
		OnChange: func(_ context.Context, changed []string) error {
			switch calls.Add(1) {
			case 1:
				close(started)
				<-unblock
			case 2:
				second <- changed
			}
			return nil
		},
		OnBusy: func() {
			if busy.Add(1) == 1 {
				close(unblock)
			}
		},
	})
	defer stop()

	writeFile(t, filepath.Join(dir, "first.go"), "1")
	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("first callback never started")
	}

	writeFile(t, filepath.Join(dir, "second.go"), "2")

	select {
	case changed := <-second:
		if !slices.Contains(changed, "second.go") {
			t.Errorf("second callback changed = %v, want second.go", changed)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("changes made during a run were never delivered")
	}
	if got := busy.Load(); got != 1 {
		t.Errorf("OnBusy called %d times, want 1", got)
	}
}

func TestWatcherNewDirectoryIsWatched(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	fired := make(chan []string, 10)
	stop := startWatcher(t, Config{
		Root:     dir,
		Debounce: 50 * time.Millisecond,
		OnChange: func(_ context.Context, changed []string) error {
			fired <- changed
			return nil
		},
	})
	defer stop()

	sub := filepath.Join(dir, "pkg")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	<-fired
	time.Sleep(50 * time.Millisecond)
	writeFile(t, filepath.Join(sub, "api.go"), "package pkg")

	deadline := time.After(5 * time.Second)
	for {
		select {
		case changed := <-fired:
			if slices.Contains(changed, "pkg/api.go") {
				return
			}
		case <-deadline:
			t.Fatal("file in a directory created after startup was not reported")
		}
	}
}

func TestDefaultIgnores(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path    string
		ignored bool
	}{
		{".git/config", true},
		{".venv/lib/python3.12/site-packages/x.py", true},
		{"node_modules/express/index.js", true},
		{"src/__pycache__/mod.cpython-312.pyc", true},
		{"main.go.swp", true},
		{"backup~", true},
		{"sub/.DS_Store", true},
		{"main.go", false},
		{"README.md", false},
		{".gitignore", false},
	}

	for _, tt := range tests {
		if got := matchAny(defaultIgnores, tt.path); got != tt.ignored {
			t.Errorf("matchAny(defaults, %q) = %v, want %v", tt.path, got, tt.ignored)
		}
	}
}

func TestNew_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if _, err := New(Config{Root: dir, Ignore: []string{"[invalid"}}); err == nil ||
		!strings.Contains(err.Error(), "invalid ignore pattern") {
		t.Errorf("New() with invalid pattern error = %v", err)
	}

	file := filepath.Join(dir, "f.txt")
	writeFile(t, file, "x")
	if _, err := New(Config{Root: file}); err == nil {
		t.Error("New() with a file root should fail")
	}
}

func TestWatcherDoubleRunError(t *testing.T) {
	t.Parallel()

	w, err := New(Config{Root: t.TempDir()})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()
	time.Sleep(50 * time.Millisecond)

	if err := w.Run(ctx); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Run() error = %v, want ErrAlreadyRunning", err)
	}
	cancel()
	if err := <-errCh; err != nil {
		t.Fatalf("first Run() error: %v", err)
	}
}
