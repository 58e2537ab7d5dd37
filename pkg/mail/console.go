package mail

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// ConsoleMailer writes messages to the log instead of delivering them.
type ConsoleMailer struct {
	from   Sender
	logger *zap.Logger

	mu   sync.Mutex
	sent []Message
}

// NewConsoleMailer constructs a ConsoleMailer.
func NewConsoleMailer(from Sender, logger *zap.Logger) *ConsoleMailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConsoleMailer{from: from, logger: logger}
}

// Send logs msg and keeps a copy for inspection.
func (m *ConsoleMailer) Send(_ context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	m.logger.Info("email",
		zap.String("from", m.from.Address),
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("text", msg.Text),
	)
	m.mu.Lock()
	m.sent = append(m.sent, msg)
	m.mu.Unlock()
	return nil
}

// Sent returns a snapshot of delivered messages.
func (m *ConsoleMailer) Sent() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Message, len(m.sent))
	copy(out, m.sent)
	return out
}
