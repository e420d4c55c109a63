// Package jobs schedules the API's background work with robfig/cron.
package jobs

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/straye-as/salesflow-api/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Scheduler runs named jobs on cron expressions (seconds field supported).
// Overlapping runs of the same job are skipped and panics are recovered.
type Scheduler struct {
	cron   *cron.Cron
	logger *zap.Logger

	mu   sync.Mutex
	jobs map[string]*entry
}

type entry struct {
	id       cron.EntryID
	cronExpr string
	run      func()

	lastStart    time.Time
	lastDuration time.Duration
	runs         int
}

// JobStatus describes a registered job
type JobStatus struct {
	Name         string
	CronExpr     string
	Next         time.Time
	LastStart    time.Time
	LastDuration time.Duration
	Runs         int
}

func NewScheduler(logger *zap.Logger) *Scheduler {
	cl := cronLogger{logger}
	return &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(cl),
			cron.WithChain(cron.SkipIfStillRunning(cl), cron.Recover(cl)),
		),
		logger: logger,
		jobs:   make(map[string]*entry),
	}
}

// cronLogger routes cron's own messages (skips, recovered panics) to zap
type cronLogger struct {
	log *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug(msg, zap.Any("details", keysAndValues))
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error(msg, zap.Error(err), zap.Any("details", keysAndValues))
}

func (s *Scheduler) Start() {
	s.logger.Info("starting job scheduler")
	s.cron.Start()
}

// Stop halts scheduling; the returned context is done once running jobs finish
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("stopping job scheduler")
	return s.cron.Stop()
}

// AddJob registers job under a unique name.
// Examples: "0 */5 * * * *", "@hourly", "@every 10m".
func (s *Scheduler) AddJob(name string, cronExpr string, job func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job %s already exists", name)
	}

	e := &entry{cronExpr: cronExpr}
	e.run = func() { s.execute(name, e, job) }

	id, err := s.cron.AddFunc(cronExpr, e.run)
	if err != nil {
		return fmt.Errorf("failed to add job %s: %w", name, err)
	}
	e.id = id
	s.jobs[name] = e

	s.logger.Info("added scheduled job",
		zap.String("job_name", name),
		zap.String("cron_expr", cronExpr))
	return nil
}

func (s *Scheduler) execute(name string, e *entry, job func()) {
	_, span := telemetry.Tracer().Start(context.Background(), "job."+name)
	defer span.End()

	start := time.Now()
	s.logger.Debug("running scheduled job", zap.String("job_name", name))
	job()
	elapsed := time.Since(start)

	s.mu.Lock()
	e.lastStart = start
	e.lastDuration = elapsed
	e.runs++
	s.mu.Unlock()

	span.SetAttributes(attribute.Int64("job.duration_ms", elapsed.Milliseconds()))
	s.logger.Info("completed scheduled job",
		zap.String("job_name", name),
		zap.Duration("duration", elapsed))
}

// RunNow runs a registered job synchronously, outside its schedule
func (s *Scheduler) RunNow(name string) error {
	s.mu.Lock()
	e, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("job %s not found", name)
	}
	e.run()
	return nil
}

func (s *Scheduler) RemoveJob(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, exists := s.jobs[name]
	if !exists {
		return fmt.Errorf("job %s not found", name)
	}

	s.cron.Remove(e.id)
	delete(s.jobs, name)

	s.logger.Info("removed scheduled job", zap.String("job_name", name))
	return nil
}

// GetJobNames returns the names of all registered jobs, sorted
func (s *Scheduler) GetJobNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Status reports every registered job, sorted by name
func (s *Scheduler) Status() []JobStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]JobStatus, 0, len(s.jobs))
	for name, e := range s.jobs {
		out = append(out, JobStatus{
			Name:         name,
			CronExpr:     e.cronExpr,
			Next:         s.cron.Entry(e.id).Next,
			LastStart:    e.lastStart,
			LastDuration: e.lastDuration,
			Runs:         e.runs,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
