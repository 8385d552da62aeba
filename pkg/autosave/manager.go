package autosave

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// ErrManagerClosed returned after the manager has been shut down
// ErrManagerClosed 在管理器关闭后返回
var ErrManagerClosed = ErrCoordinatorClosed

// Config manager configuration
// Config 管理器配置
type Config struct {
	// Delay debounce delay per coordinator, default 1000 ms
	// Delay 每个协调器的防抖延迟，默认 1000 毫秒
	Delay time.Duration
	// IdleTimeout idle session eviction timeout, default 10 minutes
	// IdleTimeout 空闲会话回收超时时间，默认 10 分钟
	IdleTimeout time.Duration
}

// DefaultConfig returns default configuration
// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		Delay:       DefaultDelay,
		IdleTimeout: 10 * time.Minute,
	}
}

// session one tracked editing session
// session 一个被跟踪的编辑会话
type session struct {
	coordinator *Coordinator
	lastUsed    atomic.Int64
}

// Manager tracks one coordinator per editing session, creating them lazily
// and evicting idle ones after flushing their queued snapshot
// Manager 为每个编辑会话维护一个协调器，懒加载创建，
// 空闲会话在刷写其排队快照后被回收
type Manager struct {
	config Config
	logger *zap.Logger

	sessions sync.Map // map[string]*session

	mu     sync.RWMutex
	closed bool

	cleanupDone chan struct{}
	cleanupWg   sync.WaitGroup
}

// New creates an autosave session manager
// New 创建自动保存会话管理器
// cfg: configuration, if nil use default configuration
// cfg: 配置，如果为 nil 则使用默认配置
func New(cfg *Config, logger *zap.Logger) *Manager {
	if cfg == nil {
		defaultCfg := DefaultConfig()
		cfg = &defaultCfg
	}
	if cfg.Delay <= 0 {
		cfg.Delay = DefaultDelay
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = 10 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &Manager{
		config:      *cfg,
		logger:      logger,
		cleanupDone: make(chan struct{}),
	}

	m.cleanupWg.Add(1)
	go m.cleanupIdleSessions()

	m.logger.Info("autosave manager started",
		zap.Duration("delay", cfg.Delay),
		zap.Duration("idleTimeout", cfg.IdleTimeout))

	return m
}

// Submit routes a snapshot to the session's coordinator, creating it on first
// use. save is captured on creation and reused for the session's lifetime.
// Submit 将快照路由到该会话的协调器，首次使用时创建。
// save 在创建时捕获，会话整个生命周期内复用。
func (m *Manager) Submit(key string, content string, save SaveFunc) error {
	s, err := m.getOrCreateSession(key, save)
	if err != nil {
		return err
	}
	return s.coordinator.Submit(content)
}

// State returns the save state of a session, or StateSaved for unknown keys
// (nothing submitted means nothing unsaved)
// State 返回会话的保存状态，未知 key 返回 StateSaved
// （没有提交过就没有未保存内容）
func (m *Manager) State(key string) State {
	if v, ok := m.sessions.Load(key); ok {
		return v.(*session).coordinator.State()
	}
	return StateSaved
}

// getOrCreateSession gets or creates a session (lazy loading)
// getOrCreateSession 获取或创建会话（懒加载）
func (m *Manager) getOrCreateSession(key string, save SaveFunc) (*session, error) {
	if v, ok := m.sessions.Load(key); ok {
		s := v.(*session)
		s.lastUsed.Store(time.Now().UnixNano())
		return s, nil
	}

	// Hold the read lock across the store so a concurrent Shutdown cannot
	// set closed and finish its Range between the check and the insert
	// 持有读锁直到写入完成，避免并发 Shutdown 在检查和写入之间
	// 置位 closed 并完成遍历
	m.mu.RLock()
	if m.closed {
		m.mu.RUnlock()
		return nil, ErrManagerClosed
	}

	s := &session{
		coordinator: NewCoordinator(m.config.Delay, save, m.logger),
	}
	s.lastUsed.Store(time.Now().UnixNano())

	// LoadOrStore ensures only one coordinator exists per session
	// LoadOrStore 确保每个会话只存在一个协调器
	actual, loaded := m.sessions.LoadOrStore(key, s)
	m.mu.RUnlock()
	if loaded {
		s.coordinator.Close()
		existing := actual.(*session)
		existing.lastUsed.Store(time.Now().UnixNano())
		return existing, nil
	}

	m.logger.Debug("created autosave session", zap.String("key", key))
	return s, nil
}

// cleanupIdleSessions regularly evicts idle sessions
// cleanupIdleSessions 定期回收空闲会话
func (m *Manager) cleanupIdleSessions() {
	defer m.cleanupWg.Done()

	ticker := time.NewTicker(m.config.IdleTimeout / 2)
	defer ticker.Stop()

	for {
		select {
		case <-m.cleanupDone:
			return
		case <-ticker.C:
			m.doCleanup()
		}
	}
}

// doCleanup performs one eviction pass. A queued snapshot is flushed before
// the session is discarded so committed keystrokes are never dropped.
// doCleanup 执行一次回收。丢弃会话前会先刷写排队中的快照，
// 已提交的按键内容不会丢失。
func (m *Manager) doCleanup() {
	now := time.Now().UnixNano()
	idleThreshold := m.config.IdleTimeout.Nanoseconds()

	m.sessions.Range(func(key, value interface{}) bool {
		s := value.(*session)
		if now-s.lastUsed.Load() <= idleThreshold {
			return true
		}

		if s.coordinator.HasPending() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			if err := s.coordinator.Flush(ctx); err != nil {
				m.logger.Error("flush on eviction failed", zap.String("key", key.(string)), zap.Error(err))
				cancel()
				// Keep the session, the snapshot is still queued
				// 保留会话，快照仍在队列中
				return true
			}
			cancel()
		}

		m.logger.Debug("evicting idle autosave session", zap.String("key", key.(string)))
		s.coordinator.Close()
		// A submit may have landed between the flush above and the close;
		// it was accepted, so it must still reach storage
		// 在上面的刷写和关闭之间可能又有提交进来；
		// 既然已被接受就必须落盘
		if s.coordinator.HasPending() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			if err := s.coordinator.Flush(ctx); err != nil {
				m.logger.Error("final flush on eviction failed", zap.String("key", key.(string)), zap.Error(err))
			}
			cancel()
		}
		m.sessions.Delete(key)
		return true
	})
}

// Shutdown flushes every queued snapshot and closes all coordinators.
// ctx bounds the total flush time.
// Shutdown 刷写所有排队的快照并关闭全部协调器。
// ctx 限制刷写的总时长。
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.mu.Unlock()

	m.logger.Info("autosave manager shutting down")

	close(m.cleanupDone)
	m.cleanupWg.Wait()

	var firstErr error
	m.sessions.Range(func(key, value interface{}) bool {
		select {
		case <-ctx.Done():
			firstErr = ctx.Err()
			return false
		default:
		}

		s := value.(*session)
		// Close first so no submit can slip in after the final flush
		// 先关闭协调器，确保最终刷写之后不会再有提交混入
		s.coordinator.Close()
		if err := s.coordinator.Flush(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
		m.sessions.Delete(key)
		return true
	})

	m.logger.Info("autosave manager shutdown completed")
	return firstErr
}

// SessionCount returns the number of tracked sessions
// SessionCount 返回当前跟踪的会话数量
func (m *Manager) SessionCount() int {
	count := 0
	m.sessions.Range(func(key, value interface{}) bool {
		count++
		return true
	})
	return count
}
