package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWatcher_DefaultDebounce(t *testing.T) {
	w := NewWatcher("/tmp", 0)
	assert.Equal(t, DefaultDebounce, w.debounce)

	w = NewWatcher("/tmp", time.Second)
	assert.Equal(t, time.Second, w.debounce)
}

func TestWatcher_Watch(t *testing.T) {
	t.Run("signals once for a burst of writes", func(t *testing.T) {
		dir := t.TempDir()
		w := NewWatcher(dir, 50*time.Millisecond)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		changes, err := w.Watch(ctx)
		require.NoError(t, err)

		for i := 0; i < 3; i++ {
			require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte{byte('a' + i)}, 0644))
		}

		select {
		case <-changes:
		case <-time.After(2 * time.Second):
			t.Fatal("timeout waiting for change signal")
		}
	})

	t.Run("closes channel on cancel", func(t *testing.T) {
		w := NewWatcher(t.TempDir(), 10*time.Millisecond)
		ctx, cancel := context.WithCancel(context.Background())

		changes, err := w.Watch(ctx)
		require.NoError(t, err)
		cancel()

		select {
		case _, ok := <-changes:
			assert.False(t, ok, "channel should be closed")
		case <-time.After(2 * time.Second):
			t.Fatal("channel not closed after cancel")
		}
	})

	t.Run("missing directory", func(t *testing.T) {
		w := NewWatcher(filepath.Join(t.TempDir(), "missing"), 0)
		_, err := w.Watch(context.Background())
		assert.Error(t, err)
	})
}

func TestIsRelevant(t *testing.T) {
	tests := []struct {
		name     string
		event    fsnotify.Event
		expected bool
	}{
		{"create txt", fsnotify.Event{Name: "/d/a.txt", Op: fsnotify.Create}, true},
		{"write txt", fsnotify.Event{Name: "/d/a.txt", Op: fsnotify.Write}, true},
		{"remove txt", fsnotify.Event{Name: "/d/a.txt", Op: fsnotify.Remove}, true},
		{"rename txt", fsnotify.Event{Name: "/d/a.txt", Op: fsnotify.Rename}, true},
		{"chmod txt", fsnotify.Event{Name: "/d/a.txt", Op: fsnotify.Chmod}, false},
		{"write and chmod", fsnotify.Event{Name: "/d/a.txt", Op: fsnotify.Write | fsnotify.Chmod}, true},
		{"other extension", fsnotify.Event{Name: "/d/a.md", Op: fsnotify.Write}, false},
		{"dot-prefixed file", fsnotify.Event{Name: "/d/.a.txt", Op: fsnotify.Write}, true},
		{"editor swap file", fsnotify.Event{Name: "/d/.a.txt.swp", Op: fsnotify.Write}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, isRelevant(tt.event))
		})
	}
}
