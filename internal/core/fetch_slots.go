package core

// fetch_slots.go caps how many upstream fetches run at once across all
// sessions and records which identifiers are being fetched. A fetch that
// finds every slot taken waits up to maxWait, then fails with
// ErrTooManyFetches.

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"
)

// ErrTooManyFetches is returned when all fetch slots are occupied and the
// wait timeout expires.
var ErrTooManyFetches = errors.New("too many concurrent fetches, please try again later")

// DefaultMaxConcurrentFetches is the default limit for parallel fetches.
const DefaultMaxConcurrentFetches = 4

// DefaultMaxWaitTime is how long to wait for a slot before rejecting.
const DefaultMaxWaitTime = 10 * time.Second

// FetchStatus reports upstream fetch activity for /api/status.
type FetchStatus struct {
	Active      int      `json:"active"`
	Limit       int      `json:"limit"`
	Identifiers []string `json:"identifiers,omitempty"`
}

type fetchSlots struct {
	slots   chan struct{}
	maxWait time.Duration

	mu       sync.Mutex
	inFlight map[string]int
	idle     chan struct{} // closed while nothing is in flight
}

func newFetchSlots(limit int, maxWait time.Duration) *fetchSlots {
	if limit <= 0 {
		limit = DefaultMaxConcurrentFetches
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}

	idle := make(chan struct{})
	close(idle)

	return &fetchSlots{
		slots:    make(chan struct{}, limit),
		maxWait:  maxWait,
		inFlight: make(map[string]int),
		idle:     idle,
	}
}

// acquire takes a slot for identifier. release must be called exactly once
// when err is nil.
func (f *fetchSlots) acquire(ctx context.Context, identifier string) (release func(), err error) {
	timer := time.NewTimer(f.maxWait)
	defer timer.Stop()

	select {
	case f.slots <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		return nil, ErrTooManyFetches
	}

	f.mu.Lock()
	if f.active() == 0 {
		f.idle = make(chan struct{})
	}
	f.inFlight[identifier]++
	f.mu.Unlock()

	var once sync.Once
	return func() { once.Do(func() { f.release(identifier) }) }, nil
}

func (f *fetchSlots) release(identifier string) {
	f.mu.Lock()
	if f.inFlight[identifier]--; f.inFlight[identifier] <= 0 {
		delete(f.inFlight, identifier)
	}
	if f.active() == 0 {
		close(f.idle)
	}
	f.mu.Unlock()

	<-f.slots
}

// active counts held slots. f.mu must be held.
func (f *fetchSlots) active() int {
	n := 0
	for _, c := range f.inFlight {
		n += c
	}
	return n
}

// drain waits until no fetch holds a slot.
func (f *fetchSlots) drain(ctx context.Context) error {
	f.mu.Lock()
	idle := f.idle
	f.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fetchSlots) status() FetchStatus {
	f.mu.Lock()
	defer f.mu.Unlock()

	ids := make([]string, 0, len(f.inFlight))
	for id := range f.inFlight {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	return FetchStatus{Active: f.active(), Limit: cap(f.slots), Identifiers: ids}
}
