// Package watch triggers rebuilds from filesystem events and schedules.
package watch

import (
	"context"
	"sync"
	"time"

	"git.home.luguber.info/inful/sitegen/internal/xerrors"
)

// DebouncerConfig tunes rebuild coalescing.
type DebouncerConfig struct {
	QuietWindow time.Duration
	MaxDelay    time.Duration

	// CheckBuildRunning reports whether a build is currently running.
	// When true, the debouncer avoids emitting and instead schedules
	// exactly one follow-up build after the running build finishes.
	CheckBuildRunning func() bool

	// PollInterval controls how often the debouncer polls for build
	// completion after it has detected that a build is running.
	PollInterval time.Duration

	// Emit fires the coalesced rebuild. Called from the Run goroutine.
	Emit func(reason, cause string)
}

// Debouncer coalesces bursts of rebuild requests into single emissions:
// quiet window debounce, a max delay so emission cannot be postponed
// indefinitely, and exactly one queued follow-up while a build runs.
//
// It is safe to run as a single goroutine.
type Debouncer struct {
	cfg DebouncerConfig

	requests chan string

	mu        sync.Mutex
	readyOnce sync.Once
	ready     chan struct{}

	pending         bool
	pendingAfterRun bool
	pollingAfterRun bool
	requestCount    int
	lastReason      string
}

func NewDebouncer(cfg DebouncerConfig) (*Debouncer, error) {
	if cfg.QuietWindow <= 0 {
		return nil, xerrors.ValidationError("quiet window must be > 0")
	}
	if cfg.MaxDelay <= 0 {
		return nil, xerrors.ValidationError("max delay must be > 0")
	}
	if cfg.Emit == nil {
		return nil, xerrors.ValidationError("emit callback is required")
	}
	if cfg.CheckBuildRunning == nil {
		cfg.CheckBuildRunning = func() bool { return false }
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 250 * time.Millisecond
	}
	return &Debouncer{cfg: cfg, requests: make(chan string, 64), ready: make(chan struct{})}, nil
}

// Request queues a rebuild request; drops are fine because any queued
// request already guarantees an emission.
func (d *Debouncer) Request(reason string) {
	select {
	case d.requests <- reason:
	default:
	}
}

// Ready is closed once Run has fully initialized, for deterministic tests.
func (d *Debouncer) Ready() <-chan struct{} {
	return d.ready
}

func (d *Debouncer) Run(ctx context.Context) error {
	if ctx == nil {
		return xerrors.ValidationError("context cannot be nil")
	}

	d.readyOnce.Do(func() { close(d.ready) })

	newStoppedTimer := func() *time.Timer {
		t := time.NewTimer(time.Hour)
		if !t.Stop() {
			select {
			case <-t.C:
			default:
			}
		}
		return t
	}
	quietTimer := newStoppedTimer()
	maxTimer := newStoppedTimer()
	pollTimer := newStoppedTimer()

	var (
		quietC <-chan time.Time
		maxC   <-chan time.Time
		pollC  <-chan time.Time
	)

	resetTimer := func(t *time.Timer, after time.Duration) {
		if !t.Stop() {
			select {
			case <-t.C:
			default:
			}
		}
		t.Reset(after)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case reason := <-d.requests:
			d.onRequest(reason)

			resetTimer(quietTimer, d.cfg.QuietWindow)
			quietC = quietTimer.C

			if d.shouldStartMaxTimer() {
				resetTimer(maxTimer, d.cfg.MaxDelay)
				maxC = maxTimer.C
			}

		case <-quietC:
			if d.tryEmit("quiet") {
				quietC = nil
				maxC = nil
			}
			// else: build running; pendingAfterRun holds until completion.

		case <-maxC:
			if d.tryEmit("max_delay") {
				quietC = nil
				maxC = nil
			}

		case <-pollC:
			if d.tryEmitAfterRunning() {
				pollC = nil
				quietC = nil
				maxC = nil
				continue
			}
			resetTimer(pollTimer, d.cfg.PollInterval)
			pollC = pollTimer.C
		}

		// Start polling only once pendingAfterRun is set.
		if d.shouldPollAfterRun() && pollC == nil {
			resetTimer(pollTimer, d.cfg.PollInterval)
			pollC = pollTimer.C
		}
	}
}

func (d *Debouncer) onRequest(reason string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.pending {
		d.pending = true
		d.requestCount = 0
	}
	d.requestCount++
	d.lastReason = reason
}

func (d *Debouncer) shouldStartMaxTimer() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending && d.requestCount == 1
}

func (d *Debouncer) shouldPollAfterRun() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pendingAfterRun && !d.pollingAfterRun
}

func (d *Debouncer) tryEmit(cause string) bool {
	d.mu.Lock()
	if !d.pending {
		d.mu.Unlock()
		return true
	}
	reason := d.lastReason

	if d.cfg.CheckBuildRunning() {
		d.pendingAfterRun = true
		d.mu.Unlock()
		return false
	}

	d.pending = false
	d.pendingAfterRun = false
	d.pollingAfterRun = false
	d.mu.Unlock()

	d.cfg.Emit(reason, cause)
	return true
}

func (d *Debouncer) tryEmitAfterRunning() bool {
	d.mu.Lock()
	if !d.pendingAfterRun {
		d.mu.Unlock()
		return true
	}
	d.pollingAfterRun = true
	d.mu.Unlock()

	if d.cfg.CheckBuildRunning() {
		return false
	}

	// Build finished; emit exactly one follow-up.
	return d.tryEmit("after_running")
}
