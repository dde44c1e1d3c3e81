package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"
)

type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// FuncJob adapts a plain function, such as the outbox batch, to Job.
type FuncJob struct {
	JobName string
	Fn      func(ctx context.Context) error
}

func (f FuncJob) Name() string                  { return f.JobName }
func (f FuncJob) Run(ctx context.Context) error { return f.Fn(ctx) }

// Scheduler runs jobs on fixed intervals. A run that is still going when the
// next tick fires is skipped rather than overlapped.
type Scheduler struct {
	inner gocron.Scheduler
}

func NewScheduler() (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	return &Scheduler{inner: s}, nil
}

// Every registers job. ctx is handed to every run, so cancelling it stops
// in-flight work at the next database call.
func (s *Scheduler) Every(ctx context.Context, interval time.Duration, job Job) error {
	_, err := s.inner.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			start := time.Now()
			if err := job.Run(ctx); err != nil {
				log.Error().Err(err).Str("job", job.Name()).Msg("job failed")
				return
			}
			log.Debug().Str("job", job.Name()).Dur("took", time.Since(start)).Msg("job finished")
		}),
		gocron.WithName(job.Name()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule %s: %w", job.Name(), err)
	}
	return nil
}

func (s *Scheduler) Start() {
	log.Info().Int("jobs", len(s.inner.Jobs())).Msg("scheduler started")
	s.inner.Start()
}

// Shutdown waits for running jobs to return.
func (s *Scheduler) Shutdown() error {
	return s.inner.Shutdown()
}
