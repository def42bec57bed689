package messaging

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// Publisher sends JSON events to a NATS subject. Per-recipient subjects are
// derived as "<subject>.<recipient>".
type Publisher struct {
	conn    *nats.Conn
	subject string
	logger  *zap.Logger
}

// NewPublisher connects to NATS at url.
func NewPublisher(url, subject string, logger *zap.Logger) (*Publisher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	nc, err := nats.Connect(url,
		nats.Name("resultify-api"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("nats reconnected", zap.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	logger.Info("nats publisher initialised", zap.String("url", url), zap.String("subject", subject))
	return &Publisher{conn: nc, subject: subject, logger: logger}, nil
}

// Subject returns the subject a recipient's events are published on.
func (p *Publisher) Subject(recipient string) string {
	if recipient == "" {
		return p.subject
	}
	return p.subject + "." + recipient
}

// Publish marshals value and publishes it for recipient.
func (p *Publisher) Publish(recipient string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	subject := p.Subject(recipient)
	if err := p.conn.Publish(subject, payload); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	p.logger.Debug("event published", zap.String("subject", subject))
	return nil
}

// Close drains pending messages and closes the connection.
func (p *Publisher) Close() error {
	if p == nil || p.conn == nil {
		return nil
	}
	return p.conn.Drain()
}
