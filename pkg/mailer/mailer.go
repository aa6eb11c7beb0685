package mailer

import (
	"github.com/sirupsen/logrus"
)

// Mailer sends transactional email. Callers treat delivery as
// best-effort and must not fail their operation on a send error.
type Mailer interface {
	Send(to, subject, body string) error
}

// LogMailer writes outgoing mail to the log instead of delivering it.
// Used until a real delivery backend is wired in.
type LogMailer struct {
	logger *logrus.Logger
}

// NewLogMailer creates a mailer that logs instead of sending
func NewLogMailer(logger *logrus.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

// Send logs the message
func (m *LogMailer) Send(to, subject, body string) error {
	m.logger.WithFields(logrus.Fields{
		"to":      to,
		"subject": subject,
	}).Infof("EMAIL: %s", body)
	return nil
}
