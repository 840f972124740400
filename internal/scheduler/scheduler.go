// Package scheduler runs periodic jobs on a seconds-resolution cron.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is a named unit of periodic work.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Printer is satisfied by *log.Logger and *applog.Logger.
type Printer interface {
	Printf(format string, args ...any)
}

type Scheduler struct {
	cron       *cron.Cron
	log        Printer
	jobTimeout time.Duration

	mu        sync.Mutex
	jobs      map[string]Job
	isRunning bool
}

func NewScheduler(log Printer, jobTimeout time.Duration) *Scheduler {
	if jobTimeout <= 0 {
		jobTimeout = 30 * time.Minute
	}
	cl := cron.PrintfLogger(log)
	return &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		log:        log,
		jobTimeout: jobTimeout,
		jobs:       make(map[string]Job),
	}
}

// AddJob registers job under a six-field cron spec.
func (s *Scheduler) AddJob(spec string, job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	name := job.Name()
	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job %s already registered", name)
	}
	if _, err := s.cron.AddFunc(spec, func() { s.run(job) }); err != nil {
		return fmt.Errorf("failed to add job %s: %w", name, err)
	}
	s.jobs[name] = job
	return nil
}

func (s *Scheduler) run(job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), s.jobTimeout)
	defer cancel()
	start := time.Now()
	if err := job.Run(ctx); err != nil {
		s.log.Printf("scheduler: job %s failed: %v", job.Name(), err)
		return
	}
	s.log.Printf("scheduler: job %s completed in %s", job.Name(), time.Since(start))
}

func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return
	}
	s.cron.Start()
	s.isRunning = true
	s.log.Printf("scheduler: started with %d job(s)", len(s.jobs))
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	s.mu.Unlock()
	<-s.cron.Stop().Done()
	s.log.Printf("scheduler: stopped")
}

// RunJobNow runs a registered job synchronously, outside its schedule.
func (s *Scheduler) RunJobNow(ctx context.Context, name string) error {
	s.mu.Lock()
	job, exists := s.jobs[name]
	s.mu.Unlock()
	if !exists {
		return fmt.Errorf("job %s not registered", name)
	}
	return job.Run(ctx)
}
