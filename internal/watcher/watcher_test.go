package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventTypeString(t *testing.T) {
	tests := []struct {
		eventType EventType
		want      string
	}{
		{EventTypeCreated, "created"},
		{EventTypeModified, "modified"},
		{EventTypeDeleted, "deleted"},
		{EventTypeRenamed, "renamed"},
		{EventType(99), "unknown"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.eventType.String())
	}
}

func TestNewFileWatcher(t *testing.T) {
	watcher, err := NewFileWatcher(100*time.Millisecond, nil)
	require.NoError(t, err)
	defer watcher.Stop()

	assert.NotNil(t, watcher.watcher)
	assert.NotNil(t, watcher.debouncer)
	assert.Equal(t, 100*time.Millisecond, watcher.debouncer.delay)
}

func TestFileWatcherAddPath(t *testing.T) {
	watcher, err := NewFileWatcher(100*time.Millisecond, nil)
	require.NoError(t, err)
	defer watcher.Stop()

	// The watch set must stay inside the working directory.
	tempDir := "test_temp_dir"
	require.NoError(t, os.MkdirAll(tempDir, 0755))
	defer os.RemoveAll(tempDir)

	assert.NoError(t, watcher.AddPath(tempDir))
	assert.Error(t, watcher.AddPath("/non/existent/path"))
	assert.Error(t, watcher.AddPath("../outside"))
}

func TestFileWatcherStartStop(t *testing.T) {
	watcher, err := NewFileWatcher(50*time.Millisecond, nil)
	require.NoError(t, err)
	defer watcher.Stop()

	tempDir := "test_temp_start_stop"
	require.NoError(t, os.MkdirAll(tempDir, 0755))
	defer os.RemoveAll(tempDir)

	require.NoError(t, watcher.AddPath(tempDir))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var eventReceived bool
	var eventMutex sync.Mutex

	watcher.AddHandler(func(events []ChangeEvent) error {
		eventMutex.Lock()
		eventReceived = true
		eventMutex.Unlock()
		return nil
	})

	require.NoError(t, watcher.Start(ctx))
	time.Sleep(100 * time.Millisecond)

	testFile := filepath.Join(tempDir, "page.tpl")
	require.NoError(t, os.WriteFile(testFile, []byte("<div></div>"), 0644))

	// Wait for debouncing and event processing.
	time.Sleep(200 * time.Millisecond)

	eventMutex.Lock()
	received := eventReceived
	eventMutex.Unlock()

	assert.True(t, received)

	cancel()
	assert.NoError(t, watcher.Stop())
}

func TestExtFilter(t *testing.T) {
	filter := ExtFilter(".tpl")

	tests := []struct {
		path string
		want bool
	}{
		{"views/page.tpl", true},
		{"views/page.TPL", true},
		{"views/page.html", false},
		{"views/page.tpl.bak", false},
		{"page", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, filter(tt.path), "path %q", tt.path)
	}
}

func TestNoGitFilter(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"views/page.tpl", true},
		{".git/config", false},
		{"project/.git/hooks/pre-commit", false},
		{"gitlog.tpl", true},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NoGitFilter(tt.path), "path %q", tt.path)
	}
}

func TestNoCacheDirFilter(t *testing.T) {
	filter := NoCacheDirFilter(".tplslim/cache")

	tests := []struct {
		path string
		want bool
	}{
		{"views/page.tpl", true},
		{".tplslim/cache/views/page.tpl", false},
		{"project/.tplslim/cache/page.tpl", false},
		{".tplslim/config.yml", true},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, filter(tt.path), "path %q", tt.path)
	}
}

func TestFilteredEventsDropped(t *testing.T) {
	watcher, err := NewFileWatcher(20*time.Millisecond, nil)
	require.NoError(t, err)
	defer watcher.Stop()

	watcher.AddFilter(ExtFilter(".tpl"))

	watcher.handleFsnotifyEvent(fsnotify.Event{Name: "views/page.html", Op: fsnotify.Write})
	select {
	case <-watcher.debouncer.events:
		t.Fatal("filtered event must not reach the debouncer")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestDebouncerBatchesAndDeduplicates(t *testing.T) {
	d := &Debouncer{
		delay:   30 * time.Millisecond,
		events:  make(chan ChangeEvent, 100),
		output:  make(chan []ChangeEvent, 10),
		pending: make([]ChangeEvent, 0),
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.start(ctx)

	d.events <- ChangeEvent{Type: EventTypeCreated, Path: "a.tpl"}
	d.events <- ChangeEvent{Type: EventTypeModified, Path: "a.tpl"}
	d.events <- ChangeEvent{Type: EventTypeModified, Path: "b.tpl"}

	select {
	case batch := <-d.output:
		assert.Len(t, batch, 2)

		byPath := make(map[string]ChangeEvent)
		for _, ev := range batch {
			byPath[ev.Path] = ev
		}
		assert.Equal(t, EventTypeModified, byPath["a.tpl"].Type)
		assert.Equal(t, EventTypeModified, byPath["b.tpl"].Type)
	case <-time.After(time.Second):
		t.Fatal("debouncer never flushed")
	}
}

func TestAddRecursive(t *testing.T) {
	watcher, err := NewFileWatcher(50*time.Millisecond, nil)
	require.NoError(t, err)
	defer watcher.Stop()

	tempDir := "test_temp_recursive"
	require.NoError(t, os.MkdirAll(filepath.Join(tempDir, "sub", "deep"), 0755))
	defer os.RemoveAll(tempDir)

	assert.NoError(t, watcher.AddRecursive(tempDir))
	assert.Error(t, watcher.AddRecursive("/etc"))
}
