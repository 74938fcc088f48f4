// Package scheduler runs background jobs on a fixed interval.
package scheduler

import (
	"context"
	"log"
	"time"
)

// Task defines background work to execute.
type Task interface {
	Run(ctx context.Context) error
}

// TaskFunc adapts a function to the Task interface.
type TaskFunc func(ctx context.Context) error

func (f TaskFunc) Run(ctx context.Context) error { return f(ctx) }

// Scheduler triggers a task on a fixed interval until its context is
// cancelled.
type Scheduler struct {
	name     string
	interval time.Duration
	task     Task
}

// New creates a scheduler for the named task.
func New(name string, interval time.Duration, task Task) *Scheduler {
	return &Scheduler{name: name, interval: interval, task: task}
}

// Start launches periodic execution until ctx is done. An interval of
// zero disables the job. Task errors are logged, never fatal.
func (s *Scheduler) Start(ctx context.Context) {
	if s.interval <= 0 {
		log.Printf("%s job disabled", s.name)
		return
	}

	log.Printf("%s job running every %s", s.name, s.interval)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.task.Run(ctx); err != nil {
				log.Printf("%s job error: %v", s.name, err)
			}
		}
	}
}
