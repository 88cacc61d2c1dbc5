package export

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_ReportsWrites(t *testing.T) {
	dir := t.TempDir()
	watched := filepath.Join(dir, "general.json")
	other := filepath.Join(dir, "other.json")
	require.NoError(t, os.WriteFile(watched, []byte("[]"), 0o600))

	w := NewWatcher([]string{watched}, 100*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan string, 10)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(path string) { changes <- path })
	}()

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(other, []byte("[]"), 0o600))
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(watched, []byte(sampleExport), 0o600))
	}

	select {
	case path := <-changes:
		assert.Equal(t, watched, path)
	case <-time.After(2 * time.Second):
		t.Fatal("no change reported")
	}

	// The burst is coalesced into a single notification.
	select {
	case path := <-changes:
		t.Fatalf("unexpected second change for %s", path)
	case <-time.After(400 * time.Millisecond):
	}

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatcher_MissingDirectory(t *testing.T) {
	w := NewWatcher([]string{filepath.Join(t.TempDir(), "absent", "x.json")}, 0)
	assert.Equal(t, DefaultDebounce, w.debounce)

	err := w.Run(context.Background(), func(string) {})
	assert.Error(t, err)
}

func TestDebouncer_DropsExpiredTimerAfterRetouch(t *testing.T) {
	d := newDebouncer(5 * time.Millisecond)

	d.touch("general.json")
	// Let the first timer expire and block on delivery.
	time.Sleep(50 * time.Millisecond)
	d.touch("general.json")

	accepted := 0
	for i := 0; i < 2; i++ {
		select {
		case f := <-d.fire:
			if d.accept(f) {
				accepted++
				assert.Equal(t, uint64(2), f.gen)
			}
		case <-time.After(time.Second):
			t.Fatal("timer did not fire")
		}
	}
	assert.Equal(t, 1, accepted)

	d.stop()
}

func TestDebouncer_StopReleasesBlockedTimers(t *testing.T) {
	d := newDebouncer(time.Millisecond)
	d.touch("general.json")
	d.touch("random.json")
	time.Sleep(50 * time.Millisecond)

	stopped := make(chan struct{})
	go func() {
		d.stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("stop left timer goroutines blocked")
	}
}

func TestDebouncer_StopCancelsPendingTimers(t *testing.T) {
	d := newDebouncer(time.Hour)
	d.touch("general.json")
	d.touch("general.json")

	stopped := make(chan struct{})
	go func() {
		d.stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("stop waited on a pending timer")
	}
}
