package state

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/five82/mycoach/internal/api"
)

var (
	// ErrUnsupported is returned when a holder has no operation for the call.
	ErrUnsupported = errors.New("operation not supported")
	// ErrClosed is returned by calls made after Close.
	ErrClosed = errors.New("state holder closed")
)

// None is the filter type of holders that load without parameters.
type None struct{}

// Ops are the backend calls a holder wraps. Only Load is required.
type Ops[T, F any, K comparable, R any] struct {
	Load   func(ctx context.Context, filter F) (T, error)
	Create func(ctx context.Context, req R) (api.Ack, error)
	Update func(ctx context.Context, id K, req R) (api.Ack, error)
	Delete func(ctx context.Context, id K) (api.Ack, error)
	// Clone copies data handed out in snapshots. Nil shares the value.
	Clone func(T) T
}

// Snapshot represents the latest state available to a view.
type Snapshot[T, F any] struct {
	Data                T
	HasData             bool
	Filter              F
	Loading             bool
	Error               string
	LastUpdated         time.Time
	ConsecutiveFailures int // Number of consecutive load failures
	Version             uint64
}

// IsOffline returns true when the API has been unreachable for multiple loads.
func (s Snapshot[T, F]) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Holder owns the data/loading/error state of one screen.
type Holder[T, F any, K comparable, R any] struct {
	name   string
	ops    Ops[T, F, K, R]
	logger *slog.Logger

	mu       sync.Mutex
	snapshot Snapshot[T, F]
	seq      uint64 // last issued load
	applied  uint64 // last load whose result was written
	inflight int
	closed   bool
	subs     map[int]chan Snapshot[T, F]
	nextSub  int
}

// New returns a holder named for logging. A nil logger discards output.
func New[T, F any, K comparable, R any](name string, ops Ops[T, F, K, R], logger *slog.Logger) *Holder[T, F, K, R] {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Holder[T, F, K, R]{
		name:   name,
		ops:    ops,
		logger: logger.With("holder", name),
		subs:   make(map[int]chan Snapshot[T, F]),
	}
}

// Name returns the holder's name.
func (h *Holder[T, F, K, R]) Name() string {
	return h.name
}

// Load fetches data for filter. Success replaces the data and clears the
// error; failure records the error and keeps the data. A completion older
// than one already applied is discarded.
func (h *Holder[T, F, K, R]) Load(ctx context.Context, filter F) error {
	if h.ops.Load == nil {
		h.fail(ErrUnsupported)
		return ErrUnsupported
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return ErrClosed
	}
	h.seq++
	seq := h.seq
	h.inflight++
	h.snapshot.Filter = filter
	h.snapshot.Loading = true
	h.publishLocked()
	h.mu.Unlock()

	data, err := h.ops.Load(ctx, filter)

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return err
	}
	h.inflight--
	if seq > h.applied {
		h.applied = seq
		h.snapshot.LastUpdated = time.Now()
		if err != nil {
			h.snapshot.Error = api.Message(err)
			h.snapshot.ConsecutiveFailures++
			h.logger.Warn("load failed", "seq", seq, "error", err)
		} else {
			h.snapshot.Data = data
			h.snapshot.HasData = true
			h.snapshot.Error = ""
			h.snapshot.ConsecutiveFailures = 0
			h.logger.Debug("load applied", "seq", seq)
		}
	} else {
		h.logger.Debug("discarding stale load", "seq", seq, "applied", h.applied)
	}
	h.snapshot.Loading = h.inflight > 0
	h.publishLocked()
	return err
}

// Reload repeats Load with the most recent filter.
func (h *Holder[T, F, K, R]) Reload(ctx context.Context) error {
	return h.Load(ctx, h.Filter())
}

// Save creates when id is the zero value and updates id otherwise. Success
// triggers exactly one reload with the current filter; the reload outcome is
// recorded in the state, not returned. Failure records the error without
// touching data.
func (h *Holder[T, F, K, R]) Save(ctx context.Context, id K, req R) (api.Ack, error) {
	var zero K
	if id == zero {
		if h.ops.Create == nil {
			return h.writeFailed(ErrUnsupported)
		}
		return h.write(ctx, "create", func() (api.Ack, error) { return h.ops.Create(ctx, req) })
	}
	if h.ops.Update == nil {
		return h.writeFailed(ErrUnsupported)
	}
	return h.write(ctx, "update", func() (api.Ack, error) { return h.ops.Update(ctx, id, req) })
}

// Create is Save with the zero id.
func (h *Holder[T, F, K, R]) Create(ctx context.Context, req R) (api.Ack, error) {
	var zero K
	return h.Save(ctx, zero, req)
}

// Delete removes id and reloads on success.
func (h *Holder[T, F, K, R]) Delete(ctx context.Context, id K) (api.Ack, error) {
	if h.ops.Delete == nil {
		return h.writeFailed(ErrUnsupported)
	}
	return h.write(ctx, "delete", func() (api.Ack, error) { return h.ops.Delete(ctx, id) })
}

func (h *Holder[T, F, K, R]) write(ctx context.Context, op string, call func() (api.Ack, error)) (api.Ack, error) {
	if h.isClosed() {
		return api.Ack{}, ErrClosed
	}
	ack, err := call()
	if err != nil {
		h.logger.Warn(op+" failed", "error", err)
		return h.writeFailed(err)
	}
	h.logger.Info(op+" succeeded", "id", ack.IDValue(), "message", ack.Message)
	_ = h.Reload(ctx)
	return ack, nil
}

func (h *Holder[T, F, K, R]) writeFailed(err error) (api.Ack, error) {
	h.fail(err)
	return api.Ack{}, err
}

func (h *Holder[T, F, K, R]) fail(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.snapshot.Error = api.Message(err)
	h.publishLocked()
}

// ClearError drops the current error once it has been shown.
func (h *Holder[T, F, K, R]) ClearError() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed || h.snapshot.Error == "" {
		return
	}
	h.snapshot.Error = ""
	h.publishLocked()
}

// Filter returns the filter of the most recent Load.
func (h *Holder[T, F, K, R]) Filter() F {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.snapshot.Filter
}

// Snapshot returns a copy of the current state.
func (h *Holder[T, F, K, R]) Snapshot() Snapshot[T, F] {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.copyLocked()
}

// Subscribe returns a channel that always holds the latest snapshot,
// starting with the current one. Slow readers skip intermediate states.
// cancel releases the subscription and closes the channel.
func (h *Holder[T, F, K, R]) Subscribe() (<-chan Snapshot[T, F], func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Snapshot[T, F], 1)
	if h.closed {
		close(ch)
		return ch, func() {}
	}
	id := h.nextSub
	h.nextSub++
	h.subs[id] = ch
	ch <- h.copyLocked()

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if sub, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Close tears the holder down. In-flight results are discarded and every
// subscription channel is closed.
func (h *Holder[T, F, K, R]) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}

func (h *Holder[T, F, K, R]) isClosed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

func (h *Holder[T, F, K, R]) copyLocked() Snapshot[T, F] {
	snap := h.snapshot
	if h.ops.Clone != nil && snap.HasData {
		snap.Data = h.ops.Clone(snap.Data)
	}
	return snap
}

func (h *Holder[T, F, K, R]) publishLocked() {
	h.snapshot.Version++
	if len(h.subs) == 0 {
		return
	}
	for _, ch := range h.subs {
		snap := h.copyLocked()
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
}
