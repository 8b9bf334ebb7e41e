// Package scheduler runs the midnight day close and the first-of-month
// calendar rollup.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Tharindurajasinghe/vision-shop-pos-backend/internal/clock"
	"github.com/Tharindurajasinghe/vision-shop-pos-backend/internal/logger"
	"github.com/Tharindurajasinghe/vision-shop-pos-backend/internal/metrics"
	"github.com/Tharindurajasinghe/vision-shop-pos-backend/internal/modules/summary"
	"github.com/bsm/redislock"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const (
	JobDayClose      = "day-close"
	JobMonthlyRollup = "monthly-rollup"

	lockTTL    = 5 * time.Minute
	jobTimeout = 2 * time.Minute
)

// Locker hands out cluster-wide job locks. *redislock.Client satisfies it.
type Locker interface {
	Obtain(ctx context.Context, key string, ttl time.Duration, opt *redislock.Options) (*redislock.Lock, error)
}

type Scheduler struct {
	cron    *cron.Cron
	summary summary.Service
	cal     *clock.Calendar
	clock   clock.Clock
	locker  Locker
	log     logrus.FieldLogger
}

// New builds a scheduler in the calendar's location. locker may be nil when
// only one replica runs.
func New(svc summary.Service, cal *clock.Calendar, clk clock.Clock, locker Locker, log logrus.FieldLogger) *Scheduler {
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(cal.Location()),
			cron.WithLogger(cron.PrintfLogger(log)),
			cron.WithChain(cron.Recover(cron.PrintfLogger(log))),
		),
		summary: svc,
		cal:     cal,
		clock:   clk,
		locker:  locker,
		log:     log,
	}
}

// Start registers both jobs and starts the cron loop.
func (s *Scheduler) Start(dayCloseSpec, monthlySpec string) error {
	if _, err := s.cron.AddFunc(dayCloseSpec, s.job(JobDayClose, s.RunDayClose)); err != nil {
		return fmt.Errorf("schedule %s: %w", JobDayClose, err)
	}
	if _, err := s.cron.AddFunc(monthlySpec, s.job(JobMonthlyRollup, s.RunMonthlyRollup)); err != nil {
		return fmt.Errorf("schedule %s: %w", JobMonthlyRollup, err)
	}
	s.cron.Start()
	s.log.WithFields(logrus.Fields{
		"dayClose": dayCloseSpec,
		"monthly":  monthlySpec,
		"timezone": s.cal.Location().String(),
	}).Info("scheduler started")
	return nil
}

// Stop halts the cron loop. The returned context is done once running jobs finish.
func (s *Scheduler) Stop() context.Context { return s.cron.Stop() }

// job adapts a run function to a cron entry. Failures are logged and left for
// the next firing.
func (s *Scheduler) job(name string, run func(context.Context, time.Time) error) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		if err := run(ctx, s.clock.Now()); err != nil {
			metrics.JobFailures.WithLabelValues(name).Inc()
			logger.LogError(s.log, "scheduler", name, "scheduled run failed", nil, err)
		}
	}
}

// RunDayClose closes the trading day that ended just before now, if its
// ledger is still open.
func (s *Scheduler) RunDayClose(ctx context.Context, now time.Time) error {
	day := s.cal.DayID(now.Add(-time.Minute))
	return s.withLock(ctx, JobDayClose, day, func() error {
		daily, ran, err := s.summary.CloseDayIfActive(ctx, day)
		if err != nil {
			return err
		}
		if !ran {
			s.log.WithField("day", day).Info("no active day to close")
			return nil
		}
		s.log.WithFields(logrus.Fields{"day": day, "summaryId": daily.ID.String()}).Info("day closed automatically")
		return nil
	})
}

// RunMonthlyRollup summarises the calendar month before the one containing now.
func (s *Scheduler) RunMonthlyRollup(ctx context.Context, now time.Time) error {
	month := s.cal.PreviousMonth(now)
	return s.withLock(ctx, JobMonthlyRollup, month.Key, func() error {
		_, _, err := s.summary.CalendarMonth(ctx, month)
		return err
	})
}

// withLock runs fn at most once per job and period across replicas. The lock
// is left to expire so a replica firing a little later still skips.
func (s *Scheduler) withLock(ctx context.Context, job, period string, fn func() error) error {
	if s.locker == nil {
		return fn()
	}
	key := fmt.Sprintf("lock:job:%s:%s", job, period)
	if _, err := s.locker.Obtain(ctx, key, lockTTL, nil); err != nil {
		if errors.Is(err, redislock.ErrNotObtained) {
			s.log.WithFields(logrus.Fields{"job": job, "period": period}).Info("job owned by another replica, skipping")
			return nil
		}
		return fmt.Errorf("obtain %s: %w", key, err)
	}
	return fn()
}
