package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/danpilch/journeypal/internal/config"
	"github.com/danpilch/journeypal/internal/journey"
)

type Planner interface {
	Plan(ctx context.Context, q journey.Query) (journey.Result, error)
}

type Notifier interface {
	SendItinerary(name, itinerary string, disrupted bool) error
}

// JourneyMonitor plans saved journeys and pushes the result when it differs
// from what was last sent for that journey today.
type JourneyMonitor struct {
	planner  Planner
	notifier Notifier
	logger   *logrus.Logger

	mu       sync.Mutex
	lastSent map[string]string
}

func NewJourneyMonitor(planner Planner, notifier Notifier, logger *logrus.Logger) *JourneyMonitor {
	return &JourneyMonitor{
		planner:  planner,
		notifier: notifier,
		logger:   logger,
		lastSent: make(map[string]string),
	}
}

func (m *JourneyMonitor) ResetNotificationState() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastSent = make(map[string]string)
}

// Check plans j for the day of now and notifies on change.
func (m *JourneyMonitor) Check(ctx context.Context, j config.JourneyConfig, now time.Time) error {
	log := m.logger.WithFields(logrus.Fields{
		"journey": j.Name,
		"from":    j.From,
		"to":      j.To,
	})
	log.Info("checking saved journey")

	res, err := m.planner.Plan(ctx, j.Query(now))
	if err != nil {
		return fmt.Errorf("planning journey %s: %w", j.Name, err)
	}

	itinerary := res.Text

	m.mu.Lock()
	unchanged := m.lastSent[j.Name] == itinerary
	m.mu.Unlock()

	if unchanged {
		log.Debug("itinerary unchanged since last notification")
		return nil
	}

	disrupted := res.Disrupted()
	if disrupted {
		log.Warn("saved journey has disruptions")
	}

	if err := m.notifier.SendItinerary(j.Name, itinerary, disrupted); err != nil {
		return fmt.Errorf("sending itinerary for %s: %w", j.Name, err)
	}

	m.mu.Lock()
	m.lastSent[j.Name] = itinerary
	m.mu.Unlock()

	return nil
}
