// Package autosave provides debounced autosave coordination
// Package autosave 提供防抖自动保存协调
// Collapses a high-frequency stream of content snapshots into a low-frequency
// stream of persistence calls, exposing save state to the caller
// 将高频的内容快照流合并为低频的持久化调用流，并向调用方暴露保存状态
package autosave

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Error definitions
// 错误定义
var (
	// ErrCoordinatorClosed returned when submitting to a closed coordinator
	// ErrCoordinatorClosed 当向已关闭的协调器提交时返回
	ErrCoordinatorClosed = errors.New("autosave coordinator is closed")
)

// State save state visible to the caller
// State 对调用方可见的保存状态
type State string

const (
	// StateSaved everything submitted has been persisted
	// StateSaved 已提交的内容均已持久化
	StateSaved State = "saved"
	// StateUnsaved a snapshot is queued and not yet persisted
	// StateUnsaved 有快照在队列中尚未持久化
	StateUnsaved State = "unsaved"
	// StateSaving a persistence call is in flight
	// StateSaving 持久化调用正在进行中
	StateSaving State = "saving"
)

// SaveFunc persists one content snapshot
// SaveFunc 持久化一份内容快照
type SaveFunc func(ctx context.Context, content string) error

// DefaultDelay default debounce delay
// DefaultDelay 默认防抖延迟
const DefaultDelay = 1000 * time.Millisecond

// Coordinator debounces snapshot submissions for a single editing session.
// It owns its own timer handle and queued-content slot; construct one per
// session and tear it down with Close.
// Coordinator 为单个编辑会话做快照提交防抖。
// 它持有自己的定时器句柄和待保存快照槽；每个会话构造一个，退出时调用 Close。
type Coordinator struct {
	delay  time.Duration
	save   SaveFunc
	logger *zap.Logger

	mu      sync.Mutex
	timer   *time.Timer
	pending *string // Last submitted snapshot, last-write-wins // 最后一次提交的快照，后写覆盖
	state   State
	gen     uint64 // Incremented per submit, detects snapshots arriving mid-save // 每次提交递增，用于识别保存期间到达的新快照
	// inFlight guards against overlapping persistence calls: a timer firing
	// while a save is outstanding re-queues instead of double-firing
	// inFlight 防止持久化调用重叠：保存进行中到期的定时器会重新排队而不是再次触发
	inFlight bool
	rearm    bool
	closed   bool

	errCh chan error
}

// NewCoordinator creates a coordinator with the given debounce delay.
// delay <= 0 falls back to DefaultDelay; a nil logger falls back to nop.
// NewCoordinator 以给定的防抖延迟创建协调器。
// delay <= 0 时使用 DefaultDelay；logger 为 nil 时使用 nop。
func NewCoordinator(delay time.Duration, save SaveFunc, logger *zap.Logger) *Coordinator {
	if delay <= 0 {
		delay = DefaultDelay
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{
		delay:  delay,
		save:   save,
		logger: logger,
		state:  StateSaved,
		errCh:  make(chan error, 1),
	}
}

// Submit queues the latest full snapshot and resets the debounce timer.
// Callable at unbounded frequency; intermediate snapshots are never persisted.
// Submit 将最新的完整快照入队并重置防抖定时器。
// 可以任意频率调用；中间快照永远不会被持久化。
func (c *Coordinator) Submit(content string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrCoordinatorClosed
	}

	c.pending = &content
	c.gen++
	c.state = StateUnsaved

	if c.timer == nil {
		c.timer = time.AfterFunc(c.delay, c.fire)
	} else {
		c.timer.Reset(c.delay)
	}
	return nil
}

// fire runs on timer expiry and performs at most one persistence call
// fire 在定时器到期时运行，最多执行一次持久化调用
func (c *Coordinator) fire() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if c.inFlight {
		// Save still outstanding, re-queue this fire
		// 保存仍在进行中，重新排队本次触发
		c.rearm = true
		c.mu.Unlock()
		return
	}
	if c.pending == nil {
		c.mu.Unlock()
		return
	}
	content := *c.pending
	gen := c.gen
	c.inFlight = true
	c.state = StateSaving
	c.mu.Unlock()

	err := c.save(context.Background(), content)

	c.finish(gen, err)
}

// finish applies the outcome of one persistence call
// finish 应用一次持久化调用的结果
func (c *Coordinator) finish(gen uint64, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.inFlight = false

	switch {
	case err != nil:
		// Snapshot stays queued; no automatic retry
		// 快照保持在队列中；不自动重试
		c.state = StateUnsaved
		c.logger.Warn("autosave failed, snapshot kept queued", zap.Error(err))
		select {
		case c.errCh <- err:
		default:
		}
	case gen == c.gen:
		c.pending = nil
		c.state = StateSaved
	default:
		// A newer snapshot arrived while saving; its own timer is armed
		// 保存期间有更新的快照到达；它自己的定时器已经就绪
		c.state = StateUnsaved
	}

	if c.rearm {
		c.rearm = false
		if c.pending != nil && !c.closed && c.timer != nil {
			c.timer.Reset(c.delay)
		}
	}
}

// Flush synchronously persists a still-queued snapshot, if any.
// Used on session teardown and manager shutdown.
// Flush 同步持久化仍在队列中的快照（如果有）。
// 在会话回收和管理器关闭时使用。
func (c *Coordinator) Flush(ctx context.Context) error {
	c.mu.Lock()
	if c.pending == nil || c.inFlight {
		c.mu.Unlock()
		return nil
	}
	content := *c.pending
	gen := c.gen
	c.inFlight = true
	c.state = StateSaving
	if c.timer != nil {
		c.timer.Stop()
	}
	c.mu.Unlock()

	err := c.save(ctx, content)
	c.finish(gen, err)
	return err
}

// Close cancels any pending timer. An in-flight save is fire-and-forget and
// may still complete after Close returns; callers must tolerate a late write.
// Close 取消未触发的定时器。进行中的保存不等待也不取消，可能在 Close 返回后才
// 完成；调用方需要容忍一次迟到的写入。
func (c *Coordinator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
	}
}

// State returns the current save state
// State 返回当前保存状态
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Errors returns the channel carrying persistence failures.
// The channel has capacity 1; older failures are dropped when unread.
// Errors 返回承载持久化失败的通道。
// 通道容量为 1；未读取时较早的失败会被丢弃。
func (c *Coordinator) Errors() <-chan error {
	return c.errCh
}

// HasPending reports whether a snapshot is still queued
// HasPending 返回是否仍有快照在队列中
func (c *Coordinator) HasPending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending != nil
}
