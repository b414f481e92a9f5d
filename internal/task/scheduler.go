// Package task 提供基于 cron 的后台任务调度
package task

import (
	"context"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Task 定义任务接口
type Task interface {
	Name() string                  // 任务名称
	Run(ctx context.Context) error // 执行任务
	CronSpec() string              // cron 表达式，空串表示不定时调度
	IsStartupRun() bool            // 是否启动后立即执行一次
}

// Scheduler 任务调度器
type Scheduler struct {
	logger *zap.Logger
	cron   *cron.Cron
	tasks  []Task
}

// NewScheduler 创建任务调度器
func NewScheduler(logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		logger: logger,
		cron:   cron.New(),
		tasks:  make([]Task, 0),
	}
}

// AddTask 添加任务
func (s *Scheduler) AddTask(task Task) {
	s.tasks = append(s.tasks, task)
}

// Start 注册并启动所有任务
func (s *Scheduler) Start() error {
	if len(s.tasks) == 0 {
		s.logger.Info("no tasks to schedule")
		return nil
	}

	s.logger.Info("tasks starting", zap.Int("count", len(s.tasks)))

	for _, task := range s.tasks {
		if task.IsStartupRun() {
			go s.runTask(task, "startupRun")
		}
		if spec := task.CronSpec(); spec != "" {
			t := task
			if _, err := s.cron.AddFunc(spec, func() {
				s.runTask(t, "cronRun")
			}); err != nil {
				s.logger.Error("task schedule failed",
					zap.String("name", task.Name()),
					zap.String("spec", spec),
					zap.Error(err))
				return err
			}
		}
	}

	s.cron.Start()
	return nil
}

// Stop 停止调度并等待正在执行的任务结束
func (s *Scheduler) Stop(ctx context.Context) error {
	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// runTask 执行单个任务，panic 不会影响调度器
func (s *Scheduler) runTask(task Task, runType string) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("task panic",
				zap.String("name", task.Name()),
				zap.String("type", runType),
				zap.Any("panic", r),
				zap.Stack("stack"))
		}
	}()

	s.logger.Info("task running", zap.String("name", task.Name()), zap.String("type", runType))
	if err := task.Run(context.Background()); err != nil {
		s.logger.Error("task running error",
			zap.String("name", task.Name()),
			zap.String("type", runType),
			zap.Error(err))
	}
}
