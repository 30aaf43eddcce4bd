package testutil

import (
	"context"
	"sync"

	"lsfd202201/internal/model"
)

// SentNotification records one call to SendArticleNotification.
type SentNotification struct {
	Recipients []string
	Subject    string
	Article    *model.Article
}

// RecordingMailSender captures notifications instead of delivering them.
// Safe for concurrent use.
type RecordingMailSender struct {
	mu   sync.Mutex
	sent []SentNotification
	err  error
}

func NewRecordingMailSender() *RecordingMailSender {
	return &RecordingMailSender{}
}

// FailWith makes subsequent sends return err.
func (m *RecordingMailSender) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *RecordingMailSender) SendArticleNotification(_ context.Context, recipients []string, subject string, a *model.Article) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, SentNotification{
		Recipients: append([]string{}, recipients...),
		Subject:    subject,
		Article:    a,
	})
	return nil
}

// Sent returns a copy of the recorded notifications.
func (m *RecordingMailSender) Sent() []SentNotification {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SentNotification{}, m.sent...)
}
