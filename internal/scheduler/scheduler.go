// Package scheduler runs housekeeping jobs on a gocron scheduler.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
)

const (
	defaultPruneInterval = time.Hour
	pruneJobName         = "prune-notification-log"
)

// LogPruner deletes delivery log entries older than a cutoff.
type LogPruner interface {
	PruneBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Config holds the scheduler configuration.
type Config struct {
	Store LogPruner
	// Retention is how long delivery log entries are kept. Zero or negative
	// disables pruning.
	Retention time.Duration
	// PruneInterval is how often the pruning job runs. Defaults to one hour.
	PruneInterval time.Duration
	Logger        *slog.Logger
}

// Scheduler manages housekeeping jobs using gocron.
type Scheduler struct {
	cron   gocron.Scheduler
	cfg    Config
	jobs   map[string]uuid.UUID // job name → gocron job UUID
	mu     sync.Mutex
	logger *slog.Logger
	now    func() time.Time
}

// New creates a new Scheduler.
func New(cfg Config) (*Scheduler, error) {
	cron, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("creating gocron scheduler: %w", err)
	}

	if cfg.PruneInterval <= 0 {
		cfg.PruneInterval = defaultPruneInterval
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Scheduler{
		cron:   cron,
		cfg:    cfg,
		jobs:   make(map[string]uuid.UUID),
		logger: logger,
		now:    time.Now,
	}, nil
}

// Start registers the pruning job and starts the gocron scheduler. The job
// also runs once immediately.
func (s *Scheduler) Start(_ context.Context) error {
	if s.cfg.Retention > 0 && s.cfg.Store != nil {
		if err := s.schedule(pruneJobName, gocron.DurationJob(s.cfg.PruneInterval), s.pruneJob,
			gocron.WithStartAt(gocron.WithStartImmediately())); err != nil {
			return err
		}
	} else {
		s.logger.Info("notification log pruning disabled")
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", s.JobCount(),
		"retention", s.cfg.Retention.String(), "interval", s.cfg.PruneInterval.String())
	return nil
}

// Stop shuts down the gocron scheduler.
func (s *Scheduler) Stop() error {
	return s.cron.Shutdown()
}

// JobCount returns the number of registered jobs.
func (s *Scheduler) JobCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// schedule adds or replaces the job called name.
func (s *Scheduler) schedule(name string, def gocron.JobDefinition, fn func(), opts ...gocron.JobOption) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if jobID, ok := s.jobs[name]; ok {
		if err := s.cron.RemoveJob(jobID); err != nil {
			s.logger.Warn("failed to remove existing job", "job", name, "error", err)
		}
		delete(s.jobs, name)
	}

	opts = append(opts, gocron.WithName(name), gocron.WithSingletonMode(gocron.LimitModeReschedule))
	job, err := s.cron.NewJob(def, gocron.NewTask(fn), opts...)
	if err != nil {
		return fmt.Errorf("scheduling job %q: %w", name, err)
	}
	s.jobs[name] = job.ID()
	return nil
}

func (s *Scheduler) pruneJob() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if _, err := s.PruneNow(ctx); err != nil {
		s.logger.Error("pruning notification log failed", "error", err)
	}
}

// PruneNow deletes delivery log entries older than the retention period and
// returns how many were removed.
func (s *Scheduler) PruneNow(ctx context.Context) (int64, error) {
	if s.cfg.Retention <= 0 || s.cfg.Store == nil {
		return 0, nil
	}
	cutoff := s.now().Add(-s.cfg.Retention)
	n, err := s.cfg.Store.PruneBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("pruning entries before %s: %w", cutoff.Format(time.RFC3339), err)
	}
	if n > 0 {
		s.logger.Info("pruned notification log", "removed", n, "cutoff", cutoff)
	}
	return n, nil
}
