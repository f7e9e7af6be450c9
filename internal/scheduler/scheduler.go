package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/danpilch/journeypal/internal/config"
	"github.com/danpilch/journeypal/internal/monitor"
)

type Task struct {
	Journey  config.JourneyConfig
	Time     time.Time
	Executed bool
}

type Scheduler struct {
	cfg     *config.Config
	monitor *monitor.JourneyMonitor
	logger  *logrus.Logger
	now     func() time.Time

	mu         sync.Mutex
	tasks      []Task
	currentDay int
	stopCh     chan struct{}
	wg         sync.WaitGroup
}

func NewScheduler(cfg *config.Config, journeyMonitor *monitor.JourneyMonitor, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cfg:     cfg,
		monitor: journeyMonitor,
		logger:  logger,
		now:     time.Now,
		stopCh:  make(chan struct{}),
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	s.wg.Add(1)
	go s.run(ctx)
}

func (s *Scheduler) Stop() {
	close(s.stopCh)
	s.wg.Wait()
}

func (s *Scheduler) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	s.setupDailyTasks()
	s.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped: context cancelled")
			return
		case <-s.stopCh:
			s.logger.Info("scheduler stopped: stop signal received")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	now := s.now()

	if now.Day() != s.currentDay {
		s.logger.Info("day changed, resetting tasks")
		s.monitor.ResetNotificationState()
		s.setupDailyTasks()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.tasks {
		task := &s.tasks[i]
		if task.Executed {
			continue
		}
		if isWithinWindow(task.Time, now, 2*time.Minute) {
			s.executeTask(ctx, task, now)
		}
	}
}

func isWithinWindow(taskTime, now time.Time, window time.Duration) bool {
	diff := now.Sub(taskTime)
	return diff >= 0 && diff < window
}

func (s *Scheduler) setupDailyTasks() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.currentDay = now.Day()
	s.tasks = nil

	for _, j := range s.cfg.Journeys {
		if !j.IsActiveDay(now.Weekday()) {
			continue
		}
		slots, err := j.CheckTimesOn(now)
		if err != nil {
			s.logger.WithFields(logrus.Fields{
				"journey": j.Name,
				"error":   err,
			}).Error("failed to parse check times")
			continue
		}
		for _, at := range slots {
			s.tasks = append(s.tasks, Task{Journey: j, Time: at})
		}
	}

	if len(s.tasks) == 0 {
		s.logger.WithField("weekday", now.Weekday().String()).Info("no journeys scheduled for today")
		return
	}

	s.logger.WithFields(logrus.Fields{
		"weekday":     now.Weekday().String(),
		"total_tasks": len(s.tasks),
	}).Info("daily tasks scheduled")
}

func (s *Scheduler) executeTask(ctx context.Context, task *Task, now time.Time) {
	s.logger.WithFields(logrus.Fields{
		"journey":        task.Journey.Name,
		"scheduled_time": task.Time.Format("15:04"),
	}).Debug("executing task")

	if err := s.monitor.Check(ctx, task.Journey, now); err != nil {
		s.logger.WithFields(logrus.Fields{
			"journey": task.Journey.Name,
			"error":   err,
		}).Error("task execution failed")
	}

	task.Executed = true
}

// Tasks returns a snapshot of today's tasks.
func (s *Scheduler) Tasks() []Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Task(nil), s.tasks...)
}
