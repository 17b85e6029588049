package mail

import (
	"sync"
	"time"
)

// Mailer is the dispatch boundary for everything the service emails: OTP
// codes, magic links, password reset links. Two implementations exist, SMTP
// and an in-memory outbox; which one runs is decided by configuration at
// startup so development behavior is a swapped strategy, not a runtime check
// buried in business logic.
type Mailer interface {
	SendTemplate(templateName string, to []string, subject string, data map[string]any) error
}

type TemplateData map[string]any

// RecordedMessage is what the memory mailer keeps per dispatch.
type RecordedMessage struct {
	Template string
	To       []string
	Subject  string
	Data     map[string]any
	SentAt   time.Time
}

// MemoryMailer records messages instead of delivering them. Used in
// development and by tests that assert on outbound mail.
type MemoryMailer struct {
	mu       sync.Mutex
	messages []RecordedMessage
}

func NewMemoryMailer() *MemoryMailer {
	return &MemoryMailer{}
}

func (m *MemoryMailer) SendTemplate(templateName string, to []string, subject string, data map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.messages = append(m.messages, RecordedMessage{
		Template: templateName,
		To:       append([]string(nil), to...),
		Subject:  subject,
		Data:     data,
		SentAt:   time.Now(),
	})
	return nil
}

func (m *MemoryMailer) Messages() []RecordedMessage {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]RecordedMessage, len(m.messages))
	copy(out, m.messages)
	return out
}

func (m *MemoryMailer) LastMessage() *RecordedMessage {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.messages) == 0 {
		return nil
	}
	msg := m.messages[len(m.messages)-1]
	return &msg
}

func (m *MemoryMailer) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = nil
}
