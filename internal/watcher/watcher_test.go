package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simrig-tools/simconf/internal/logging"
)

func TestWatcherReportsWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Settings.JSON")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))

	w, err := New(logging.Nop(), WithDebounce(20*time.Millisecond))
	require.NoError(t, err)
	defer w.Close()

	changes := make(chan string, 8)
	w.OnChange(func(p string) { changes <- p })
	require.NoError(t, w.Add(path))
	w.Start()

	// Give the watch a moment to register before touching the file.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte(`{"a": 1}`), 0o644))

	select {
	case got := <-changes:
		abs, _ := filepath.Abs(path)
		assert.Equal(t, abs, got)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for change notification")
	}
}

func TestWatcherIgnoresUnregisteredFiles(t *testing.T) {
	dir := t.TempDir()
	watched := filepath.Join(dir, "watched.ini")
	other := filepath.Join(dir, "other.ini")
	require.NoError(t, os.WriteFile(watched, nil, 0o644))

	w, err := New(logging.Nop(), WithDebounce(20*time.Millisecond))
	require.NoError(t, err)
	defer w.Close()

	changes := make(chan string, 8)
	w.OnChange(func(p string) { changes <- p })
	require.NoError(t, w.Add(watched))
	w.Start()

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(other, []byte("x"), 0o644))

	select {
	case p := <-changes:
		t.Fatalf("unexpected notification for %s", p)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcherDetectsReplace(t *testing.T) {
	// Atomic saves write a temp file and rename it over the target, which
	// shows up as a Create in the parent directory.
	dir := t.TempDir()
	path := filepath.Join(dir, "Settings.JSON")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))

	w, err := New(logging.Nop(), WithDebounce(20*time.Millisecond))
	require.NoError(t, err)
	defer w.Close()

	changes := make(chan string, 8)
	w.OnChange(func(p string) { changes <- p })
	require.NoError(t, w.Add(path))
	w.Start()

	time.Sleep(100 * time.Millisecond)
	tmp := filepath.Join(dir, ".settings.tmp")
	require.NoError(t, os.WriteFile(tmp, []byte(`{"b": 2}`), 0o644))
	require.NoError(t, os.Rename(tmp, path))

	select {
	case got := <-changes:
		abs, _ := filepath.Abs(path)
		assert.Equal(t, abs, got)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for replace notification")
	}
}

func TestWatcherDebounceCoalesces(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.ini")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	w, err := New(logging.Nop(), WithDebounce(150*time.Millisecond))
	require.NoError(t, err)
	defer w.Close()

	changes := make(chan string, 16)
	w.OnChange(func(p string) { changes <- p })
	require.NoError(t, w.Add(path))
	w.Start()

	time.Sleep(100 * time.Millisecond)
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte{byte('0' + i)}, 0o644))
		time.Sleep(10 * time.Millisecond)
	}

	// Wait out the debounce window plus slack, then count deliveries.
	time.Sleep(600 * time.Millisecond)
	assert.Len(t, drain(changes), 1, "a write burst collapses into one notification")
}

func TestWatcherCloseIdempotent(t *testing.T) {
	w, err := New(logging.Nop())
	require.NoError(t, err)
	w.Start()
	require.NoError(t, w.Close())
	assert.NoError(t, w.Close())
}

func drain(ch chan string) []string {
	var out []string
	for {
		select {
		case p := <-ch:
			out = append(out, p)
		default:
			return out
		}
	}
}
