package events

import (
	"context"

	"github.com/sirupsen/logrus"
)

// LogPublisher is used when no broker is configured
type LogPublisher struct {
	log *logrus.Logger
}

func NewLogPublisher(log *logrus.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(_ context.Context, ev Envelope) error {
	p.log.WithFields(logrus.Fields{
		"event_id":       ev.EventID,
		"event_type":     ev.EventType,
		"correlation_id": ev.CorrelationID,
	}).Debug("event")
	return nil
}

func (p *LogPublisher) Close() error { return nil }
