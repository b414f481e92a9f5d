// Package writequeue provides per-key serialized write execution
// Package writequeue 提供按键串行化的写操作执行
//
// Version records for one document must be numbered without gaps, so all
// writes touching one document's history are funneled through that
// document's queue. SQLite additionally benefits from the reduced write
// contention ("database is locked").
// 同一文档的版本记录编号必须连续无空洞，因此涉及该文档历史的写操作统一经过
// 该文档的队列。SQLite 也受益于写竞争的减少（"database is locked"）。
package writequeue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrQueueFull 当写队列已满时返回
	ErrQueueFull = errors.New("write queue is full")
	// ErrQueueClosed 当写队列管理器已关闭时返回
	ErrQueueClosed = errors.New("write queue is closed")
)

// Config 写队列配置
type Config struct {
	// QueueCapacity 每个键的队列容量，默认 100
	QueueCapacity int
	// WriteTimeout 写操作超时时间，默认 30 秒
	WriteTimeout time.Duration
	// IdleTimeout 空闲队列回收时间，默认 10 分钟
	IdleTimeout time.Duration
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		QueueCapacity: 100,
		WriteTimeout:  30 * time.Second,
		IdleTimeout:   10 * time.Minute,
	}
}

type writeOp struct {
	ctx    context.Context
	fn     func() error
	result chan error
}

type keyQueue struct {
	key      int64
	ch       chan writeOp
	lastUsed atomic.Int64
	stopCh   chan struct{}
}

// Manager 管理所有键的写队列
type Manager struct {
	config Config
	logger *zap.Logger

	mu     sync.Mutex
	queues map[int64]*keyQueue

	workerWg sync.WaitGroup
	closed   atomic.Bool
	stopCh   chan struct{}
}

// New 创建写队列管理器
func New(cfg *Config, logger *zap.Logger) *Manager {
	if cfg == nil {
		c := DefaultConfig()
		cfg = &c
	}
	if cfg.QueueCapacity <= 0 {
		cfg.QueueCapacity = 100
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 30 * time.Second
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = 10 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &Manager{
		config: *cfg,
		logger: logger,
		queues: make(map[int64]*keyQueue),
		stopCh: make(chan struct{}),
	}

	m.workerWg.Add(1)
	go m.cleanupIdleQueues()

	return m
}

// Execute 在 key 对应的串行队列上执行 fn 并等待结果
// 同一 key 的操作严格按提交顺序执行；不同 key 相互独立
func (m *Manager) Execute(ctx context.Context, key int64, fn func() error) error {
	if m.closed.Load() {
		return ErrQueueClosed
	}

	q := m.getOrCreateQueue(key)
	q.lastUsed.Store(time.Now().UnixNano())

	op := writeOp{ctx: ctx, fn: fn, result: make(chan error, 1)}

	select {
	case q.ch <- op:
	default:
		return ErrQueueFull
	}

	timer := time.NewTimer(m.config.WriteTimeout)
	defer timer.Stop()

	select {
	case err := <-op.result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return context.DeadlineExceeded
	}
}

func (m *Manager) getOrCreateQueue(key int64) *keyQueue {
	m.mu.Lock()
	defer m.mu.Unlock()

	if q, ok := m.queues[key]; ok {
		return q
	}

	q := &keyQueue{
		key:    key,
		ch:     make(chan writeOp, m.config.QueueCapacity),
		stopCh: make(chan struct{}),
	}
	q.lastUsed.Store(time.Now().UnixNano())
	m.queues[key] = q

	m.workerWg.Add(1)
	go m.worker(q)

	return q
}

func (m *Manager) worker(q *keyQueue) {
	defer m.workerWg.Done()

	for {
		select {
		case <-q.stopCh:
			m.drain(q)
			return
		case op := <-q.ch:
			m.execute(op)
		}
	}
}

func (m *Manager) execute(op writeOp) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("write queue op panic", zap.Any("panic", r))
			op.result <- errors.New("write operation panicked")
		}
	}()

	if op.ctx.Err() != nil {
		op.result <- op.ctx.Err()
		return
	}
	op.result <- op.fn()
}

func (m *Manager) drain(q *keyQueue) {
	for {
		select {
		case op := <-q.ch:
			m.execute(op)
		default:
			return
		}
	}
}

// cleanupIdleQueues 周期性回收空闲队列
func (m *Manager) cleanupIdleQueues() {
	defer m.workerWg.Done()

	ticker := time.NewTicker(m.config.IdleTimeout)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopCh:
			return
		case <-ticker.C:
			m.removeIdle()
		}
	}
}

func (m *Manager) removeIdle() {
	cutoff := time.Now().Add(-m.config.IdleTimeout).UnixNano()

	m.mu.Lock()
	defer m.mu.Unlock()

	for key, q := range m.queues {
		if q.lastUsed.Load() < cutoff && len(q.ch) == 0 {
			close(q.stopCh)
			delete(m.queues, key)
		}
	}
}

// QueueCount 返回当前存活的队列数
func (m *Manager) QueueCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queues)
}

// Shutdown 关闭管理器：拒绝新操作，排空已入队的操作
func (m *Manager) Shutdown(ctx context.Context) error {
	if !m.closed.CompareAndSwap(false, true) {
		return nil
	}
	close(m.stopCh)

	m.mu.Lock()
	for key, q := range m.queues {
		close(q.stopCh)
		delete(m.queues, key)
	}
	m.mu.Unlock()

	done := make(chan struct{})
	go func() {
		m.workerWg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
