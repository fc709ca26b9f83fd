package watch

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type emission struct {
	reason string
	cause  string
}

func startDebouncer(t *testing.T, cfg DebouncerConfig) (*Debouncer, chan emission) {
	t.Helper()

	emits := make(chan emission, 16)
	cfg.Emit = func(reason, cause string) {
		emits <- emission{reason: reason, cause: cause}
	}

	deb, err := NewDebouncer(cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = deb.Run(ctx) }()
	<-deb.Ready()

	return deb, emits
}

func waitEmit(t *testing.T, emits chan emission, within time.Duration) emission {
	t.Helper()
	select {
	case e := <-emits:
		return e
	case <-time.After(within):
		t.Fatal("timed out waiting for emission")
		return emission{}
	}
}

func assertNoEmit(t *testing.T, emits chan emission, within time.Duration) {
	t.Helper()
	select {
	case e := <-emits:
		t.Fatalf("unexpected emission %+v", e)
	case <-time.After(within):
	}
}

func TestNewDebouncerValidation(t *testing.T) {
	emit := func(string, string) {}

	_, err := NewDebouncer(DebouncerConfig{MaxDelay: time.Second, Emit: emit})
	assert.Error(t, err)

	_, err = NewDebouncer(DebouncerConfig{QuietWindow: time.Second, Emit: emit})
	assert.Error(t, err)

	_, err = NewDebouncer(DebouncerConfig{QuietWindow: time.Second, MaxDelay: time.Second})
	assert.Error(t, err)
}

func TestDebouncerCoalescesBurst(t *testing.T) {
	deb, emits := startDebouncer(t, DebouncerConfig{
		QuietWindow: 30 * time.Millisecond,
		MaxDelay:    2 * time.Second,
	})

	for i := 0; i < 10; i++ {
		deb.Request("file:post.md")
	}
	deb.Request("file:other.md")

	e := waitEmit(t, emits, time.Second)
	assert.Equal(t, "quiet", e.cause)
	assert.Equal(t, "file:other.md", e.reason)

	assertNoEmit(t, emits, 150*time.Millisecond)
}

func TestDebouncerMaxDelayBoundsPostponement(t *testing.T) {
	deb, emits := startDebouncer(t, DebouncerConfig{
		QuietWindow: 60 * time.Millisecond,
		MaxDelay:    200 * time.Millisecond,
	})

	// Keep requesting faster than the quiet window so only the max delay
	// can fire.
	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(20 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				deb.Request("file:busy.md")
			case <-stop:
				return
			}
		}
	}()

	e := waitEmit(t, emits, 2*time.Second)
	close(stop)
	<-done
	assert.Equal(t, "max_delay", e.cause)
	assert.Equal(t, "file:busy.md", e.reason)
}

func TestDebouncerQueuesOneFollowUpWhileBuildRuns(t *testing.T) {
	var running atomic.Bool
	running.Store(true)

	deb, emits := startDebouncer(t, DebouncerConfig{
		QuietWindow:       10 * time.Millisecond,
		MaxDelay:          time.Second,
		PollInterval:      10 * time.Millisecond,
		CheckBuildRunning: running.Load,
	})

	deb.Request("file:a.md")
	deb.Request("file:b.md")

	// Nothing may emit while the build is running.
	assertNoEmit(t, emits, 100*time.Millisecond)

	running.Store(false)

	e := waitEmit(t, emits, time.Second)
	assert.Equal(t, "after_running", e.cause)
	assert.Equal(t, "file:b.md", e.reason)

	// Exactly one follow-up, no matter how many requests queued.
	assertNoEmit(t, emits, 150*time.Millisecond)
}

func TestDebouncerRunStopsOnCancel(t *testing.T) {
	deb, err := NewDebouncer(DebouncerConfig{
		QuietWindow: 10 * time.Millisecond,
		MaxDelay:    time.Second,
		Emit:        func(string, string) {},
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- deb.Run(ctx) }()
	<-deb.Ready()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
