package state

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/mycoach/internal/api"
)

type item struct {
	ID   int
	Name string
}

type fakeBackend struct {
	mu      sync.Mutex
	items   []item
	loadErr error
	loads   int
	filters []string
	creates []string
	updates []int
	deletes []int
	writeErr error
}

func (f *fakeBackend) ops() Ops[[]item, string, int, string] {
	return Ops[[]item, string, int, string]{
		Load: func(_ context.Context, filter string) ([]item, error) {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.loads++
			f.filters = append(f.filters, filter)
			if f.loadErr != nil {
				return nil, f.loadErr
			}
			return slices.Clone(f.items), nil
		},
		Create: func(_ context.Context, name string) (api.Ack, error) {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.creates = append(f.creates, name)
			if f.writeErr != nil {
				return api.Ack{}, f.writeErr
			}
			id := 7
			f.items = append(f.items, item{ID: id, Name: name})
			return api.Ack{ID: &id, Message: "ok"}, nil
		},
		Update: func(_ context.Context, id int, name string) (api.Ack, error) {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.updates = append(f.updates, id)
			if f.writeErr != nil {
				return api.Ack{}, f.writeErr
			}
			for i := range f.items {
				if f.items[i].ID == id {
					f.items[i].Name = name
				}
			}
			return api.Ack{ID: &id, Message: "updated"}, nil
		},
		Delete: func(_ context.Context, id int) (api.Ack, error) {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.deletes = append(f.deletes, id)
			if f.writeErr != nil {
				return api.Ack{}, f.writeErr
			}
			f.items = slices.DeleteFunc(f.items, func(it item) bool { return it.ID == id })
			return api.Ack{Message: "deleted"}, nil
		},
		Clone: slices.Clone[[]item],
	}
}

func (f *fakeBackend) loadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loads
}

func newHolder(f *fakeBackend) *Holder[[]item, string, int, string] {
	return New("items", f.ops(), nil)
}

func timeoutErr() error {
	return &url.Error{Op: "Get", URL: "http://coach/api/items", Err: context.DeadlineExceeded}
}

func TestHolder_InitialState(t *testing.T) {
	h := newHolder(&fakeBackend{})
	snap := h.Snapshot()

	assert.False(t, snap.Loading)
	assert.False(t, snap.HasData)
	assert.Empty(t, snap.Data)
	assert.Empty(t, snap.Error)
	assert.False(t, snap.IsOffline())
}

func TestHolder_LoadSuccessReplacesData(t *testing.T) {
	f := &fakeBackend{items: []item{{ID: 1, Name: "Alice"}}}
	h := newHolder(f)

	require.NoError(t, h.Load(context.Background(), ""))
	snap := h.Snapshot()
	assert.Equal(t, []item{{ID: 1, Name: "Alice"}}, snap.Data)
	assert.True(t, snap.HasData)
	assert.Empty(t, snap.Error)
	assert.False(t, snap.Loading)

	// Replaced wholesale, not merged.
	f.items = []item{{ID: 2, Name: "Bob"}}
	require.NoError(t, h.Load(context.Background(), ""))
	assert.Equal(t, []item{{ID: 2, Name: "Bob"}}, h.Snapshot().Data)
}

func TestHolder_LoadFailureKeepsData(t *testing.T) {
	f := &fakeBackend{items: []item{{ID: 1, Name: "Alice"}}}
	h := newHolder(f)
	require.NoError(t, h.Load(context.Background(), ""))
	before := h.Snapshot()

	f.loadErr = timeoutErr()
	err := h.Load(context.Background(), "")
	require.Error(t, err)

	snap := h.Snapshot()
	assert.Equal(t, before.Data, snap.Data)
	assert.Equal(t, "timeout", snap.Error)
	assert.False(t, snap.Loading)
	assert.Equal(t, 1, snap.ConsecutiveFailures)
}

func TestHolder_SuccessClearsError(t *testing.T) {
	f := &fakeBackend{loadErr: errors.New("connection refused")}
	h := newHolder(f)
	require.Error(t, h.Load(context.Background(), ""))
	require.Error(t, h.Load(context.Background(), ""))
	assert.True(t, h.Snapshot().IsOffline())

	f.loadErr = nil
	require.NoError(t, h.Load(context.Background(), ""))
	snap := h.Snapshot()
	assert.Empty(t, snap.Error)
	assert.Zero(t, snap.ConsecutiveFailures)
	assert.False(t, snap.IsOffline())
}

func TestHolder_SaveWithoutIDCreatesAndReloadsOnce(t *testing.T) {
	f := &fakeBackend{}
	h := newHolder(f)
	require.NoError(t, h.Load(context.Background(), "active"))

	ack, err := h.Save(context.Background(), 0, "Bob")
	require.NoError(t, err)
	assert.Equal(t, 7, ack.IDValue())

	assert.Equal(t, []string{"Bob"}, f.creates)
	assert.Empty(t, f.updates)
	assert.Equal(t, 2, f.loadCount())
	assert.Equal(t, []string{"active", "active"}, f.filters)
	assert.Equal(t, []item{{ID: 7, Name: "Bob"}}, h.Snapshot().Data)
}

func TestHolder_SaveWithIDUpdates(t *testing.T) {
	f := &fakeBackend{items: []item{{ID: 5, Name: "Old"}}}
	h := newHolder(f)

	_, err := h.Save(context.Background(), 5, "New")
	require.NoError(t, err)

	assert.Equal(t, []int{5}, f.updates)
	assert.Empty(t, f.creates)
	assert.Equal(t, 1, f.loadCount())
	assert.Equal(t, []item{{ID: 5, Name: "New"}}, h.Snapshot().Data)
}

func TestHolder_SaveFailureDoesNotReload(t *testing.T) {
	f := &fakeBackend{items: []item{{ID: 1, Name: "Alice"}}}
	h := newHolder(f)
	require.NoError(t, h.Load(context.Background(), ""))

	f.writeErr = &api.StatusError{Method: "POST", Path: "/api/items", StatusCode: 422, Detail: "name is required"}
	_, err := h.Create(context.Background(), "")
	require.Error(t, err)

	assert.Equal(t, 1, f.loadCount())
	assert.Len(t, f.creates, 1)
	snap := h.Snapshot()
	assert.Equal(t, []item{{ID: 1, Name: "Alice"}}, snap.Data)
	assert.Equal(t, "Unprocessable Entity (422): name is required", snap.Error)
}

func TestHolder_DeleteReloadsOnce(t *testing.T) {
	f := &fakeBackend{items: []item{{ID: 1}, {ID: 2}}}
	h := newHolder(f)
	require.NoError(t, h.Load(context.Background(), ""))

	_, err := h.Delete(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, []int{1}, f.deletes)
	assert.Equal(t, 2, f.loadCount())
	assert.Equal(t, []item{{ID: 2}}, h.Snapshot().Data)
}

func TestHolder_DeleteFailureKeepsList(t *testing.T) {
	f := &fakeBackend{items: []item{{ID: 1}, {ID: 2}}}
	h := newHolder(f)
	require.NoError(t, h.Load(context.Background(), ""))

	f.writeErr = errors.New("boom")
	_, err := h.Delete(context.Background(), 1)
	require.Error(t, err)

	assert.Equal(t, 1, f.loadCount())
	snap := h.Snapshot()
	assert.Equal(t, []item{{ID: 1}, {ID: 2}}, snap.Data)
	assert.Equal(t, "boom", snap.Error)
}

func TestHolder_MissingOpsAreUnsupported(t *testing.T) {
	h := New("readonly", Ops[[]item, None, int, string]{
		Load: func(context.Context, None) ([]item, error) { return nil, nil },
	}, nil)

	_, err := h.Create(context.Background(), "x")
	assert.ErrorIs(t, err, ErrUnsupported)
	_, err = h.Save(context.Background(), 3, "x")
	assert.ErrorIs(t, err, ErrUnsupported)
	_, err = h.Delete(context.Background(), 3)
	assert.ErrorIs(t, err, ErrUnsupported)
	assert.Equal(t, ErrUnsupported.Error(), h.Snapshot().Error)
}

func TestHolder_LoadingFalseAfterConcurrentLoads(t *testing.T) {
	f := &fakeBackend{items: []item{{ID: 1}}}
	h := newHolder(f)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = h.Load(context.Background(), fmt.Sprint(i))
		}(i)
	}
	wg.Wait()

	snap := h.Snapshot()
	assert.False(t, snap.Loading)
	assert.Equal(t, 20, f.loadCount())
}

func TestHolder_StaleCompletionDiscarded(t *testing.T) {
	release := map[string]chan struct{}{
		"first":  make(chan struct{}),
		"second": make(chan struct{}),
	}
	started := make(chan string, 2)
	h := New("seq", Ops[string, string, int, string]{
		Load: func(_ context.Context, filter string) (string, error) {
			started <- filter
			<-release[filter]
			return filter, nil
		},
	}, nil)

	done := make(chan struct{}, 2)
	go func() { _ = h.Load(context.Background(), "first"); done <- struct{}{} }()
	require.Equal(t, "first", <-started)
	go func() { _ = h.Load(context.Background(), "second"); done <- struct{}{} }()
	require.Equal(t, "second", <-started)

	close(release["second"])
	<-done
	snap := h.Snapshot()
	assert.Equal(t, "second", snap.Data)
	assert.True(t, snap.Loading, "first load is still in flight")

	close(release["first"])
	<-done
	snap = h.Snapshot()
	assert.Equal(t, "second", snap.Data)
	assert.False(t, snap.Loading)
}

func TestHolder_SubscribeDeliversLatest(t *testing.T) {
	f := &fakeBackend{items: []item{{ID: 1, Name: "Alice"}}}
	h := newHolder(f)

	ch, cancel := h.Subscribe()
	defer cancel()

	initial := <-ch
	assert.False(t, initial.HasData)

	require.NoError(t, h.Load(context.Background(), ""))
	latest := <-ch
	assert.Equal(t, []item{{ID: 1, Name: "Alice"}}, latest.Data)
	assert.False(t, latest.Loading)
	assert.Equal(t, h.Snapshot().Version, latest.Version)
}

func TestHolder_SnapshotIsCopy(t *testing.T) {
	f := &fakeBackend{items: []item{{ID: 1, Name: "Alice"}}}
	h := newHolder(f)
	require.NoError(t, h.Load(context.Background(), ""))

	snap := h.Snapshot()
	snap.Data[0].Name = "Mallory"
	assert.Equal(t, "Alice", h.Snapshot().Data[0].Name)
}

func TestHolder_CloseDiscardsInFlight(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	h := New("closing", Ops[string, None, int, string]{
		Load: func(context.Context, None) (string, error) {
			close(started)
			<-release
			return "late", nil
		},
	}, nil)
	ch, _ := h.Subscribe()
	<-ch

	done := make(chan error, 1)
	go func() { done <- h.Load(context.Background(), None{}) }()
	<-started
	h.Close()
	close(release)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("load did not return")
	}
	assert.Empty(t, h.Snapshot().Data)
	assert.ErrorIs(t, h.Load(context.Background(), None{}), ErrClosed)

	for range ch {
	}
}
