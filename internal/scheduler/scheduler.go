// Package scheduler runs the periodic ledger and promotion maintenance jobs.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/robfig/cron/v3"
)

// Config holds the cron expressions. An empty expression disables the job.
type Config struct {
	ReconcileSchedule       string
	PromotionExpirySchedule string
}

// Scheduler manages the cron jobs.
type Scheduler struct {
	cron   *cron.Cron
	jobs   *Jobs
	config Config
}

func NewScheduler(jobs *Jobs, cfg Config) *Scheduler {
	cronLogger := cron.PrintfLogger(log.New(os.Stdout, "component=scheduler ", log.LstdFlags))
	c := cron.New(cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)))

	return &Scheduler{
		cron:   c,
		jobs:   jobs,
		config: cfg,
	}
}

// Start registers the jobs and starts the cron scheduler.
func (s *Scheduler) Start() error {
	if err := s.add("reconcile", s.config.ReconcileSchedule, s.jobs.ReconcileBalances); err != nil {
		return err
	}
	if err := s.add("promotion_expiry", s.config.PromotionExpirySchedule, s.jobs.ExpirePromotions); err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

func (s *Scheduler) add(name, schedule string, fn func()) error {
	if schedule == "" {
		log.Printf("component=scheduler job=%s msg=\"disabled\"", name)
		return nil
	}
	if _, err := s.cron.AddFunc(schedule, fn); err != nil {
		return fmt.Errorf("schedule %s job: %w", name, err)
	}
	log.Printf("component=scheduler job=%s schedule=%q msg=\"scheduled\"", name, schedule)
	return nil
}

// Entries reports how many jobs are registered.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

// Stop stops the scheduler. The returned context is done once running jobs finish.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}
