// Package mailer is the outbound email boundary.
package mailer

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Mailer sends one HTML message and returns the transport's message id
type Mailer interface {
	Send(ctx context.Context, to, subject, html string) (string, error)
}

// LogMailer writes messages to the log instead of delivering them
type LogMailer struct {
	log *logrus.Logger
}

func NewLogMailer(log *logrus.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) Send(_ context.Context, to, subject, html string) (string, error) {
	id := uuid.NewString()
	m.log.WithFields(logrus.Fields{
		"message_id": id,
		"to":         to,
		"subject":    subject,
	}).Info("email queued")
	m.log.WithField("message_id", id).Debug(html)
	return id, nil
}
