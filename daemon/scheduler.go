package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/quartzlabs/devtools"
	"github.com/quartzlabs/devtools/reflected"
)

const defaultSchedulePollInterval = 5 * time.Second

// Schedule is one recurring action being tracked by the scheduler.
type Schedule struct {
	ID      string
	Cron    string
	Tool    string
	Action  string
	Command string
	Payload json.RawMessage

	schedule cron.Schedule
	nextRun  time.Time
}

// SchedulerConfig configures the background schedule runner.
type SchedulerConfig struct {
	Dispatcher   *devtools.Dispatcher
	Schedules    []ScheduleDeclaration
	PollInterval time.Duration
	Now          func() time.Time
	Logger       *slog.Logger
}

// Scheduler periodically fires due tool schedules against the dispatcher.
type Scheduler struct {
	dispatcher   *devtools.Dispatcher
	pollInterval time.Duration
	now          func() time.Time
	logger       *slog.Logger

	mu        sync.Mutex
	schedules []*Schedule
	cancel    context.CancelFunc
	done      chan struct{}
}

// NewScheduler creates a scheduler from declarative schedule entries.
func NewScheduler(cfg SchedulerConfig) (*Scheduler, error) {
	if cfg.Dispatcher == nil {
		return nil, errors.New("scheduler dispatcher is nil")
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultSchedulePollInterval
	}
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return time.Now().UTC() }
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	s := &Scheduler{
		dispatcher:   cfg.Dispatcher,
		pollInterval: cfg.PollInterval,
		now:          cfg.Now,
		logger:       cfg.Logger,
	}
	for i, decl := range cfg.Schedules {
		if err := s.add(decl); err != nil {
			return nil, fmt.Errorf("schedule %d: %w", i, err)
		}
	}
	return s, nil
}

func (s *Scheduler) add(decl ScheduleDeclaration) error {
	if err := decl.validate(); err != nil {
		return err
	}
	parsed, err := parseCronExpressionUTC(decl.Cron)
	if err != nil {
		return err
	}

	var payload json.RawMessage
	if clean := strings.TrimSpace(decl.Payload); clean != "" {
		if !json.Valid([]byte(clean)) {
			return fmt.Errorf("payload is not valid JSON")
		}
		payload = json.RawMessage(clean)
	}

	entry := &Schedule{
		ID:       uuid.New().String(),
		Cron:     strings.TrimSpace(decl.Cron),
		Tool:     strings.TrimSpace(decl.Tool),
		Action:   strings.TrimSpace(decl.Action),
		Command:  strings.TrimSpace(decl.Command),
		Payload:  payload,
		schedule: parsed,
		nextRun:  parsed.Next(s.now()),
	}

	s.mu.Lock()
	s.schedules = append(s.schedules, entry)
	s.mu.Unlock()
	return nil
}

// Schedules returns a copy of the tracked schedules.
func (s *Scheduler) Schedules() []Schedule {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Schedule, 0, len(s.schedules))
	for _, entry := range s.schedules {
		out = append(out, *entry)
	}
	return out
}

// Start starts background polling. Starting an already running scheduler is
// a no-op.
func (s *Scheduler) Start() {
	s.mu.Lock()
	if s.cancel != nil {
		s.mu.Unlock()
		return
	}
	loopCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done
	s.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(s.pollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-loopCtx.Done():
				return
			case <-ticker.C:
				s.RunOnce()
			}
		}
	}()
}

// Stop stops background polling and waits for the loop to exit.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	done := s.done
	s.cancel = nil
	s.done = nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// RunOnce fires every due schedule and advances its next-run time. It is the
// poll body, exposed for tests and for callers driving their own clock.
func (s *Scheduler) RunOnce() {
	now := s.now().UTC()

	s.mu.Lock()
	due := make([]*Schedule, 0)
	for _, entry := range s.schedules {
		if !entry.nextRun.After(now) {
			due = append(due, entry)
		}
	}
	s.mu.Unlock()

	for _, entry := range due {
		s.fire(entry)

		s.mu.Lock()
		entry.nextRun = entry.schedule.Next(now)
		s.mu.Unlock()
	}
}

func (s *Scheduler) fire(entry *Schedule) {
	var (
		event devtools.Event
		err   error
	)
	switch {
	case entry.Tool != "":
		switch entry.Action {
		case "enable":
			event, err = s.dispatcher.SetToolEnabled(entry.Tool, true)
		case "disable":
			event, err = s.dispatcher.SetToolEnabled(entry.Tool, false)
		case "toggle":
			event, err = s.dispatcher.ToggleTool(entry.Tool)
		}
	default:
		payload := entry.Payload
		if len(payload) == 0 {
			payload = json.RawMessage(`{}`)
		}
		event, err = s.dispatcher.Dispatch(entry.Command, reflected.FromJSON("", payload))
	}

	if err != nil {
		s.logger.Warn("schedule fire failed",
			"schedule", entry.ID,
			"cron", entry.Cron,
			"error", err,
		)
		return
	}
	s.logger.Info("schedule fired",
		"schedule", entry.ID,
		"cron", entry.Cron,
		"command", event.Command,
	)
}
