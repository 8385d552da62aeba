package autosave

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type saveRecorder struct {
	mu    sync.Mutex
	saved []string
	fail  atomic.Bool
	calls atomic.Int64
}

func (r *saveRecorder) save(ctx context.Context, content string) error {
	r.calls.Add(1)
	if r.fail.Load() {
		return errors.New("backend unavailable")
	}
	r.mu.Lock()
	r.saved = append(r.saved, content)
	r.mu.Unlock()
	return nil
}

func (r *saveRecorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.saved))
	copy(out, r.saved)
	return out
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestCoordinatorDebounceLastWriteWins(t *testing.T) {
	rec := &saveRecorder{}
	co := NewCoordinator(30*time.Millisecond, rec.save, nil)
	defer co.Close()

	co.Submit("v1")
	co.Submit("v2")
	co.Submit("v3")

	waitFor(t, func() bool { return co.State() == StateSaved })

	saved := rec.snapshot()
	require.Len(t, saved, 1, "rapid edits inside the window collapse to one save")
	assert.Equal(t, "v3", saved[0])
}

func TestCoordinatorSeparateWindows(t *testing.T) {
	rec := &saveRecorder{}
	co := NewCoordinator(20*time.Millisecond, rec.save, nil)
	defer co.Close()

	co.Submit("first")
	waitFor(t, func() bool { return co.State() == StateSaved })

	co.Submit("second")
	waitFor(t, func() bool { return len(rec.snapshot()) == 2 })

	assert.Equal(t, []string{"first", "second"}, rec.snapshot())
}

func TestCoordinatorStateTransitions(t *testing.T) {
	rec := &saveRecorder{}
	co := NewCoordinator(30*time.Millisecond, rec.save, nil)
	defer co.Close()

	assert.Equal(t, StateSaved, co.State())

	co.Submit("draft")
	assert.Equal(t, StateUnsaved, co.State())
	assert.True(t, co.HasPending())

	waitFor(t, func() bool { return co.State() == StateSaved })
	assert.False(t, co.HasPending())
}

func TestCoordinatorFailureKeepsUnsaved(t *testing.T) {
	rec := &saveRecorder{}
	rec.fail.Store(true)
	co := NewCoordinator(20*time.Millisecond, rec.save, nil)
	defer co.Close()

	co.Submit("doomed")

	waitFor(t, func() bool { return rec.calls.Load() >= 1 })
	waitFor(t, func() bool { return co.State() == StateUnsaved })

	select {
	case err := <-co.Errors():
		assert.Error(t, err)
	case <-time.After(time.Second):
		t.Fatal("no error reported")
	}

	// A later edit retries against a recovered backend
	// 后续编辑在后端恢复后重试
	rec.fail.Store(false)
	co.Submit("recovered")
	waitFor(t, func() bool { return co.State() == StateSaved })
	assert.Equal(t, []string{"recovered"}, rec.snapshot())
}

func TestCoordinatorSubmitDuringSave(t *testing.T) {
	release := make(chan struct{})
	var saved []string
	var mu sync.Mutex
	save := func(ctx context.Context, content string) error {
		<-release
		mu.Lock()
		saved = append(saved, content)
		mu.Unlock()
		return nil
	}
	co := NewCoordinator(10*time.Millisecond, save, nil)
	defer co.Close()

	co.Submit("a")
	time.Sleep(30 * time.Millisecond) // save for "a" now blocked on release

	co.Submit("b")
	close(release)

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(saved) == 2
	})
	waitFor(t, func() bool { return co.State() == StateSaved })

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"a", "b"}, saved)
}

func TestCoordinatorFlush(t *testing.T) {
	rec := &saveRecorder{}
	co := NewCoordinator(time.Hour, rec.save, nil)
	defer co.Close()

	co.Submit("pending")
	require.Equal(t, StateUnsaved, co.State())

	err := co.Flush(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateSaved, co.State())
	assert.Equal(t, []string{"pending"}, rec.snapshot())
}

func TestCoordinatorFlushNothingPending(t *testing.T) {
	rec := &saveRecorder{}
	co := NewCoordinator(time.Hour, rec.save, nil)
	defer co.Close()

	require.NoError(t, co.Flush(context.Background()))
	assert.Zero(t, rec.calls.Load())
}

func TestCoordinatorCloseDropsPending(t *testing.T) {
	rec := &saveRecorder{}
	co := NewCoordinator(time.Hour, rec.save, nil)

	co.Submit("abandoned")
	co.Close()

	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, rec.calls.Load(), "close cancels without flushing")

	co.Submit("after close")
	assert.Zero(t, rec.calls.Load())
}
