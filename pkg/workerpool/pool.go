// Package workerpool 提供有界并发的后台任务池
// 用于限制并发 goroutine 数量，防止资源泄漏
package workerpool

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

var (
	// ErrPoolFull 当任务队列已满时返回
	ErrPoolFull = errors.New("worker pool queue is full")
	// ErrPoolClosed 当任务池已关闭时返回
	ErrPoolClosed = errors.New("worker pool is closed")
)

// Config 任务池配置
type Config struct {
	// MaxWorkers 最大并发 worker 数量，默认 100
	MaxWorkers int
	// QueueSize 任务队列大小，默认 1000
	QueueSize int
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		MaxWorkers: 100,
		QueueSize:  1000,
	}
}

type task struct {
	ctx context.Context
	fn  func(context.Context) error
}

// Pool 有界后台任务池
type Pool struct {
	config Config
	logger *zap.Logger

	taskCh   chan task
	workerWg sync.WaitGroup

	activeCount atomic.Int64
	closed      atomic.Bool
}

// New 创建任务池并启动 worker
// cfg 为 nil 时使用默认配置，logger 为 nil 时使用 nop logger
func New(cfg *Config, logger *zap.Logger) *Pool {
	if cfg == nil {
		c := DefaultConfig()
		cfg = &c
	}
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = 100
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1000
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	p := &Pool{
		config: *cfg,
		logger: logger,
		taskCh: make(chan task, cfg.QueueSize),
	}

	for i := 0; i < cfg.MaxWorkers; i++ {
		p.workerWg.Add(1)
		go p.worker()
	}

	logger.Info("worker pool started",
		zap.Int("maxWorkers", cfg.MaxWorkers),
		zap.Int("queueSize", cfg.QueueSize))

	return p
}

func (p *Pool) worker() {
	defer p.workerWg.Done()

	for t := range p.taskCh {
		if t.ctx.Err() != nil {
			continue
		}
		p.activeCount.Add(1)
		p.run(t)
		p.activeCount.Add(-1)
	}
}

func (p *Pool) run(t task) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("worker pool task panic", zap.Any("panic", r))
		}
	}()
	if err := t.fn(t.ctx); err != nil {
		p.logger.Warn("worker pool task error", zap.Error(err))
	}
}

// SubmitAsync 提交任务到池中，不等待任务完成
// 队列已满或池已关闭时返回错误
func (p *Pool) SubmitAsync(ctx context.Context, fn func(context.Context) error) error {
	if p.closed.Load() {
		return ErrPoolClosed
	}
	select {
	case p.taskCh <- task{ctx: ctx, fn: fn}:
		return nil
	default:
		return ErrPoolFull
	}
}

// ActiveCount 返回当前正在执行的任务数
func (p *Pool) ActiveCount() int64 {
	return p.activeCount.Load()
}

// Shutdown 停止接受新任务并等待已提交任务完成
// ctx 超时后不再等待
func (p *Pool) Shutdown(ctx context.Context) error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	close(p.taskCh)

	done := make(chan struct{})
	go func() {
		p.workerWg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
