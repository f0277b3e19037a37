package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"

	"assetfeed/internal/aggregate"
	"assetfeed/internal/refresh"
)

// Conn is the subset of *nats.Conn used for publishing.
type Conn interface {
	Publish(subject string, data []byte) error
	Flush() error
}

// NATS publishes each snapshot on Subject and every asset on
// Subject.<SYMBOL>.
type NATS struct {
	conn    Conn
	subject string
	log     *logrus.Entry
}

func NewNATS(conn Conn, subject string, log *logrus.Entry) *NATS {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &NATS{conn: conn, subject: subject, log: log}
}

// Connect dials url with reconnect handlers that log state changes.
func Connect(url string, log *logrus.Entry) (*nats.Conn, error) {
	opts := []nats.Option{
		nats.Name("assetfeed"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.WithError(err).Warn("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected")
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			log.Info("NATS connection closed")
		}),
	}
	conn, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return conn, nil
}

// Publish implements refresh.Sink.
func (n *NATS) Publish(_ context.Context, s refresh.Snapshot) error {
	b, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := n.conn.Publish(n.subject, b); err != nil {
		return fmt.Errorf("publish %s: %w", n.subject, err)
	}

	for _, a := range s.Assets {
		subject := n.subject + "." + aggregate.NormalizeTicker(a.Symbol)
		b, err := json.Marshal(a)
		if err != nil {
			return fmt.Errorf("encode %s: %w", a.Symbol, err)
		}
		if err := n.conn.Publish(subject, b); err != nil {
			return fmt.Errorf("publish %s: %w", subject, err)
		}
	}

	if err := n.conn.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	n.log.WithFields(logrus.Fields{"subject": n.subject, "assets": len(s.Assets)}).Debug("snapshot published")
	return nil
}
