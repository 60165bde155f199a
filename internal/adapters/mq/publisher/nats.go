package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/okian/meetglobe/internal/domain/model"
	"github.com/okian/meetglobe/pkg/logger"
	"github.com/okian/meetglobe/pkg/metrics"

	"github.com/nats-io/nats.go"
)

const (
	connectTimeout = 5 * time.Second
	reconnectWait  = 2 * time.Second
)

// Conn is the subset of *nats.Conn used for publishing.
type Conn interface {
	Publish(subject string, data []byte) error
	Drain() error
}

// NATS publishes JSON-encoded events on core NATS subjects.
type NATS struct {
	conn   Conn
	prefix string
	logger logger.Logger
}

// NewNATS wraps an established connection.
func NewNATS(conn Conn, prefix string, log logger.Logger) *NATS {
	if log == nil {
		log = logger.NewNop()
	}
	return &NATS{conn: conn, prefix: prefix, logger: log}
}

// DialNATS connects to url with reconnect handling that logs state changes.
func DialNATS(url, prefix string, log logger.Logger) (*NATS, error) {
	if log == nil {
		log = logger.NewNop()
	}
	ctx := context.Background()
	nc, err := nats.Connect(url,
		nats.Name("meetglobe"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(reconnectWait),
		nats.Timeout(connectTimeout),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn(ctx, "nats disconnected", logger.Error(err))
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info(ctx, "nats reconnected", logger.String("url", c.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(*nats.Conn) {
			log.Info(ctx, "nats connection closed")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return NewNATS(nc, prefix, log), nil
}

// Publish implements Publisher.
func (p *NATS) Publish(ctx context.Context, e model.Event) error {
	subject := Subject(p.prefix, e.Type)
	data, err := json.Marshal(e)
	if err != nil {
		metrics.RecordEventPublished(subject, err)
		return fmt.Errorf("encode event: %w", err)
	}
	err = p.conn.Publish(subject, data)
	metrics.RecordEventPublished(subject, err)
	if err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	p.logger.Debug(ctx, "event published",
		logger.String("subject", subject),
		logger.String("meeting", e.MeetingID))
	return nil
}

// Close drains pending messages and closes the connection.
func (p *NATS) Close() error {
	return p.conn.Drain()
}
