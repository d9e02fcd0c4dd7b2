// Package scheduler runs the time-driven side of the service: flushing
// standups whose time is up and delivering "send later" messages.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// StandupFlusher is the slice of the standup service the sweep needs.
type StandupFlusher interface {
	HasExpired() bool
	FlushExpired(ctx context.Context) (int, error)
}

// MessageDeliverer is the slice of the message service the sweep needs.
type MessageDeliverer interface {
	HasDue() bool
	DeliverDue(ctx context.Context) (int, error)
}

type Scheduler struct {
	cron     *cron.Cron
	spec     string
	standups StandupFlusher
	messages MessageDeliverer
	timeout  time.Duration
	logger   *zap.Logger
}

// New builds a scheduler that sweeps on spec, a cron expression or a
// descriptor such as "@every 1s". Overlapping runs are skipped.
func New(spec string, standups StandupFlusher, messages MessageDeliverer, logger *zap.Logger) *Scheduler {
	cl := cronLogger{logger.Sugar()}
	return &Scheduler{
		cron:     cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		spec:     spec,
		standups: standups,
		messages: messages,
		timeout:  10 * time.Second,
		logger:   logger,
	}
}

// Start registers the sweep and starts the cron loop in the background.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		s.Sweep(ctx)
	})
	if err != nil {
		return fmt.Errorf("schedule sweep %q: %w", s.spec, err)
	}
	s.cron.Start()
	s.logger.Info("scheduler started", zap.String("schedule", s.spec))
	return nil
}

// Stop waits for a running sweep to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Info("scheduler stopped")
	case <-ctx.Done():
		s.logger.Warn("scheduler stop timed out", zap.Error(ctx.Err()))
	}
}

// Sweep flushes expired standups and delivers due messages. The cheap Has*
// checks run first so an idle tick never writes the snapshot.
func (s *Scheduler) Sweep(ctx context.Context) {
	if s.standups.HasExpired() {
		n, err := s.standups.FlushExpired(ctx)
		if err != nil {
			s.logger.Error("standup flush failed", zap.Error(err))
		} else if n > 0 {
			s.logger.Info("standups flushed", zap.Int("count", n))
		}
	}

	if s.messages.HasDue() {
		n, err := s.messages.DeliverDue(ctx)
		if err != nil {
			s.logger.Error("deferred delivery failed", zap.Error(err))
		} else if n > 0 {
			s.logger.Info("deferred messages delivered", zap.Int("count", n))
		}
	}
}

// cronLogger routes cron's own logging through zap.
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
