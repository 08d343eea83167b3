package app

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// SessionGenerator материализует недельное расписание в занятия на несколько недель вперёд
type SessionGenerator interface {
	GenerateUpcoming(ctx context.Context, weeksAhead int) (int64, error)
}

// OutboxDispatcher доставляет накопленные уведомления
type OutboxDispatcher interface {
	DispatchPending(ctx context.Context) (int, error)
}

type SchedulerConfig struct {
	WeeksAhead         int
	GenerationInterval time.Duration
	OutboxInterval     time.Duration
}

// Scheduler управляет фоновыми задачами
type Scheduler struct {
	generator  SessionGenerator
	dispatcher OutboxDispatcher
	cfg        SchedulerConfig
	logger     *zap.Logger
	stopChan   chan struct{}
	stopOnce   sync.Once
	wg         sync.WaitGroup
}

// NewScheduler создаёт новый планировщик
func NewScheduler(generator SessionGenerator, dispatcher OutboxDispatcher, cfg SchedulerConfig, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		generator:  generator,
		dispatcher: dispatcher,
		cfg:        cfg,
		logger:     logger,
		stopChan:   make(chan struct{}),
	}
}

// Start запускает фоновые задачи
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("Starting background scheduler",
		zap.Int("weeks_ahead", s.cfg.WeeksAhead),
		zap.Duration("generation_interval", s.cfg.GenerationInterval),
		zap.Duration("outbox_interval", s.cfg.OutboxInterval),
	)

	s.run(ctx, "session generation", s.cfg.GenerationInterval, s.generateSessions)
	s.run(ctx, "outbox dispatch", s.cfg.OutboxInterval, s.dispatchOutbox)
}

// Stop останавливает фоновые задачи и дожидается их завершения
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.logger.Info("Stopping background scheduler")
		close(s.stopChan)
	})
	s.wg.Wait()
}

// run выполняет задачу сразу при старте и затем по тикеру
func (s *Scheduler) run(ctx context.Context, name string, interval time.Duration, task func(context.Context)) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		task(ctx)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				task(ctx)
			case <-ctx.Done():
				s.logger.Info("Background task stopped", zap.String("task", name))
				return
			case <-s.stopChan:
				s.logger.Info("Background task stopped", zap.String("task", name))
				return
			}
		}
	}()
}

func (s *Scheduler) generateSessions(ctx context.Context) {
	s.logger.Info("Starting automatic class session generation")

	created, err := s.generator.GenerateUpcoming(ctx, s.cfg.WeeksAhead)
	if err != nil {
		s.logger.Error("Failed to generate class sessions", zap.Error(err))
		return
	}

	s.logger.Info("Automatic class session generation completed", zap.Int64("created", created))
}

func (s *Scheduler) dispatchOutbox(ctx context.Context) {
	if _, err := s.dispatcher.DispatchPending(ctx); err != nil {
		s.logger.Error("Failed to dispatch outbox events", zap.Error(err))
	}
}
