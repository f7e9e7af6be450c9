package notify

import (
	"fmt"
	"unicode/utf8"

	"github.com/gregdel/pushover"
	"github.com/sirupsen/logrus"
)

const (
	PriorityNormal = 0
	PriorityHigh   = 1

	// Pushover rejects longer messages and titles.
	maxMessageRunes = 1024
	maxTitleRunes   = 250
)

type Notifier struct {
	app       *pushover.Pushover
	recipient *pushover.Recipient
	logger    *logrus.Logger
}

func NewNotifier(token, userKey string, logger *logrus.Logger) *Notifier {
	return &Notifier{
		app:       pushover.New(token),
		recipient: pushover.NewRecipient(userKey),
		logger:    logger,
	}
}

func (n *Notifier) Send(title, message string) error {
	return n.SendWithPriority(title, message, PriorityNormal)
}

func (n *Notifier) SendWithPriority(title, message string, priority int) error {
	msg := pushover.NewMessageWithTitle(truncate(message, maxMessageRunes), truncate(title, maxTitleRunes))
	msg.Priority = priority

	resp, err := n.app.SendMessage(msg, n.recipient)
	if err != nil {
		return fmt.Errorf("sending pushover notification: %w", err)
	}

	n.logger.WithFields(logrus.Fields{
		"title":      title,
		"status":     resp.Status,
		"request_id": resp.ID,
	}).Debug("notification sent")

	return nil
}

// SendItinerary pushes a rendered journey plan. Plans that mention
// disruptions go out at high priority.
func (n *Notifier) SendItinerary(name, itinerary string, disrupted bool) error {
	title := fmt.Sprintf("Journey: %s", name)
	if disrupted {
		return n.SendWithPriority(title, itinerary, PriorityHigh)
	}
	return n.Send(title, itinerary)
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit-1]) + "…"
}
