package autosave

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerIsolatesSessions(t *testing.T) {
	m := New(&Config{Delay: 20 * time.Millisecond, IdleTimeout: time.Hour}, nil)
	defer m.Shutdown(context.Background())

	var mu sync.Mutex
	saved := map[string]string{}
	saveFor := func(key string) SaveFunc {
		return func(ctx context.Context, content string) error {
			mu.Lock()
			saved[key] = content
			mu.Unlock()
			return nil
		}
	}

	require.NoError(t, m.Submit("note-a", "alpha", saveFor("note-a")))
	require.NoError(t, m.Submit("note-b", "beta", saveFor("note-b")))

	waitFor(t, func() bool {
		return m.State("note-a") == StateSaved && m.State("note-b") == StateSaved
	})

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "alpha", saved["note-a"])
	assert.Equal(t, "beta", saved["note-b"])
	assert.Equal(t, 2, m.SessionCount())
}

func TestManagerUnknownKeyReportsSaved(t *testing.T) {
	m := New(nil, nil)
	defer m.Shutdown(context.Background())

	assert.Equal(t, StateSaved, m.State("never-seen"))
}

func TestManagerShutdownFlushesPending(t *testing.T) {
	m := New(&Config{Delay: time.Hour, IdleTimeout: time.Hour}, nil)

	rec := &saveRecorder{}
	require.NoError(t, m.Submit("note", "unflushed edit", rec.save))
	require.Equal(t, StateUnsaved, m.State("note"))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, m.Shutdown(ctx))

	assert.Equal(t, []string{"unflushed edit"}, rec.snapshot())
}

func TestManagerSubmitAfterShutdown(t *testing.T) {
	m := New(nil, nil)
	require.NoError(t, m.Shutdown(context.Background()))

	err := m.Submit("note", "late", (&saveRecorder{}).save)
	assert.Error(t, err)
}

func TestManagerShutdownSubmitRace(t *testing.T) {
	for i := 0; i < 50; i++ {
		m := New(&Config{Delay: time.Hour, IdleTimeout: time.Hour}, nil)
		rec := &saveRecorder{}

		done := make(chan error, 1)
		go func() {
			done <- m.Submit("note", "racing edit", rec.save)
		}()
		require.NoError(t, m.Shutdown(context.Background()))
		err := <-done

		// 提交要么被拒绝，要么其快照在关闭时被刷写，不存在
		// 既被接受又永不落盘的会话
		if err == nil {
			assert.Equal(t, []string{"racing edit"}, rec.snapshot())
		} else {
			assert.ErrorIs(t, err, ErrManagerClosed)
		}
		assert.Equal(t, 0, m.SessionCount())
	}
}

func TestManagerConcurrentSubmits(t *testing.T) {
	m := New(&Config{Delay: 10 * time.Millisecond, IdleTimeout: time.Hour}, nil)
	defer m.Shutdown(context.Background())

	rec := &saveRecorder{}
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("note-%d", i%4)
			_ = m.Submit(key, fmt.Sprintf("content-%d", i), rec.save)
		}(i)
	}
	wg.Wait()

	waitFor(t, func() bool {
		for i := 0; i < 4; i++ {
			if m.State(fmt.Sprintf("note-%d", i)) != StateSaved {
				return false
			}
		}
		return true
	})
	assert.Equal(t, 4, m.SessionCount())
}
