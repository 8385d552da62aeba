// Package safe_close coordinates graceful shutdown of background goroutines
// Package safe_close 协调后台协程的优雅关闭
package safe_close

import (
	"sync"
)

// SafeClose fans a single close signal out to every attached goroutine and
// waits until all of them report done
// SafeClose 将一次关闭信号广播给所有已注册的协程，并等待它们全部完成
type SafeClose struct {
	mu          sync.Mutex
	closeSignal chan struct{}
	closed      bool
	closeErr    error
	wg          sync.WaitGroup
}

func NewSafeClose() *SafeClose {
	return &SafeClose{
		closeSignal: make(chan struct{}),
	}
}

// Attach registers a goroutine participating in graceful shutdown.
// f must call done() when it finishes and must return after closeSignal fires.
// Attach 注册一个参与优雅关闭的协程。
// f 完成时必须调用 done()，并且在 closeSignal 触发后必须返回。
func (s *SafeClose) Attach(f func(done func(), closeSignal <-chan struct{})) {
	s.wg.Add(1)
	go f(s.wg.Done, s.closeSignal)
}

// SendCloseSignal triggers shutdown; the first error wins, later calls are no-ops
// SendCloseSignal 触发关闭；保留第一个错误，后续调用为空操作
func (s *SafeClose) SendCloseSignal(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.closeErr = err
	close(s.closeSignal)
}

// WaitClosed blocks until every attached goroutine has completed
// WaitClosed 阻塞直到所有已注册的协程完成
func (s *SafeClose) WaitClosed() error {
	s.wg.Wait()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeErr
}
