package events

import (
	"bytes"
	"context"
	"encoding/gob"
	"time"

	"github.com/streadway/amqp"
	"go.uber.org/zap"

	"scrimbot/errs"
	"scrimbot/log"
)

const AuditExchange = "scrim_audit"

// AuditEvent is one audit-trail entry fanned out to external consumers
// (dashboards, archival). The Discord public log is independent of this
// stream; both are fire-and-forget.
type AuditEvent struct {
	Kind   string
	UserID string
	Team   string
	Detail string
	At     time.Time
}

// Event kinds.
const (
	KindEnrollStart     = "enroll_start"
	KindEnrollFinish    = "enroll_finish"
	KindEnrollCancel    = "enroll_cancel"
	KindEnrollTimeout   = "enroll_timeout"
	KindTeamDeleted     = "team_deleted"
	KindTransfer        = "leadership_transfer"
	KindScrimRegister   = "scrim_register"
	KindScrimUnregister = "scrim_unregister"
)

// Bus publishes audit events over a fanout exchange. A nil Bus is valid
// and drops everything, so callers never need to care whether a broker is
// configured.
type Bus struct {
	conn *amqp.Connection
}

// Dial connects to the broker, retrying with exponential backoff, and
// declares the exchange.
func Dial(connString string) (*Bus, error) {
	log.Logger.Info("Trying to connect to rabbitmq...")

	var conn *amqp.Connection
	t := time.Second
	for i := 0; i < 6; i++ {
		var err error
		conn, err = amqp.Dial(connString)
		if err != nil {
			if i == 5 {
				log.Logger.Error("rabbitmq unreachable", zap.Error(err))
				return nil, errs.ErrQueue
			}
			time.Sleep(t)
			t *= 2

			continue
		}

		break
	}
	log.Logger.Info("Connected to rabbitmq")

	ch, err := conn.Channel()
	if err != nil {
		return nil, errs.ErrQueue
	}
	defer ch.Close()

	err = ch.ExchangeDeclare(
		AuditExchange,
		"fanout",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, errs.ErrQueue
	}

	return &Bus{conn: conn}, nil
}

// Publish fans the event out. Failures are logged and swallowed; audit
// fan-out must never fail a user operation.
func (b *Bus) Publish(event *AuditEvent) {
	if b == nil {
		return
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(event); err != nil {
		log.Logger.Error("unable to encode event", zap.Error(err))
		return
	}

	ch, err := b.conn.Channel()
	if err != nil {
		log.Logger.Error("unable to open channel", zap.Error(err))
		return
	}
	defer ch.Close()

	err = ch.Publish(AuditExchange, "", false, false, amqp.Publishing{
		ContentType: "application/octet-stream",
		Body:        buf.Bytes(),
	})
	if err != nil {
		log.Logger.Error("unable to publish event", zap.Error(err))
	}
}

// Consume subscribes to the audit stream until ctx is cancelled.
func (b *Bus) Consume(ctx context.Context) (<-chan *AuditEvent, error) {
	if b == nil {
		return nil, errs.ErrQueue
	}

	out := make(chan *AuditEvent)

	ch, err := b.conn.Channel()
	if err != nil {
		return nil, errs.ErrQueue
	}
	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		return nil, errs.ErrQueue
	}

	if err := ch.QueueBind(q.Name, "", AuditExchange, false, nil); err != nil {
		return nil, errs.ErrQueue
	}

	msgs, err := ch.Consume(q.Name, "", true, false, false, false, nil)
	if err != nil {
		return nil, errs.ErrQueue
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				if err := ch.Close(); err != nil {
					log.Logger.Error("unable to close channel", zap.Error(err))
				}
				return
			case d, ok := <-msgs:
				if !ok {
					return
				}
				var e *AuditEvent
				if err := gob.NewDecoder(bytes.NewReader(d.Body)).Decode(&e); err != nil {
					log.Logger.Error("unable to decode event", zap.Error(err))
					continue
				}

				out <- e
			}
		}
	}()

	return out, nil
}

// Close tears down the broker connection.
func (b *Bus) Close() {
	if b == nil || b.conn == nil {
		return
	}

	if err := b.conn.Close(); err != nil {
		log.Logger.Error("unable to close rabbitmq connection", zap.Error(err))
	}
}
