package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/application/account"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/metrics"
)

const (
	DefaultExchange = "account.events"

	RoutingKeyInviteRequested = "account.invite.requested"

	// Minimum window to wait for Return / Confirm.
	publishWait = 2 * time.Second

	// Return frames may land just after the ack on a separate channel.
	returnGrace = 50 * time.Millisecond

	transportName = "rabbitmq"
)

// InviteRequestedEvent is the wire payload consumed by the mail worker.
type InviteRequestedEvent struct {
	To            string            `json:"to"`
	Template      string            `json:"template"`
	Substitutions map[string]string `json:"substitutions"`
	RequestedAt   time.Time         `json:"requested_at"`
}

// Publisher hands notifications to a broker-side mail worker.
// Publishes are confirmed and mandatory, so an unbound routing key surfaces
// as an error instead of a silently dropped invite.
type Publisher struct {
	url      string
	exchange string
	lg       zerolog.Logger

	mu sync.Mutex

	conn *amqp.Connection
	ch   *amqp.Channel

	confirmCh <-chan amqp.Confirmation
	returnCh  <-chan amqp.Return
}

func NewPublisher(url, exchange string, lg zerolog.Logger) (*Publisher, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}
	p := &Publisher{
		url:      url,
		exchange: exchange,
		lg:       lg.With().Str("component", "rabbitmq_publisher").Logger(),
	}
	if err := p.connect(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.resetConn()
	return nil
}

// ---- account.Notifier ----

func (p *Publisher) Send(ctx context.Context, n account.Notification) (err error) {
	defer func() { metrics.ObserveNotification(transportName, err) }()
	metrics.NotificationAttemptsTotal.WithLabelValues(transportName).Inc()

	return p.publishJSON(ctx, RoutingKeyInviteRequested, newInviteEvent(n, time.Now().UTC()))
}

func newInviteEvent(n account.Notification, at time.Time) InviteRequestedEvent {
	subst := n.Substitutions
	if subst == nil {
		subst = map[string]string{}
	}
	return InviteRequestedEvent{
		To:            n.To,
		Template:      n.Template,
		Substitutions: subst,
		RequestedAt:   at,
	}
}

// ---- internal ----

func (p *Publisher) connect() error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("rabbitmq channel: %w", err)
	}

	// Declare topic exchange (idempotent).
	if err := ch.ExchangeDeclare(
		p.exchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false,
		false,
		nil,
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("exchange declare: %w", err)
	}

	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("confirm mode: %w", err)
	}

	p.confirmCh = ch.NotifyPublish(make(chan amqp.Confirmation, 1))
	p.returnCh = ch.NotifyReturn(make(chan amqp.Return, 1))

	p.conn = conn
	p.ch = ch
	return nil
}

func (p *Publisher) ensureConnected() error {
	if p.conn != nil && !p.conn.IsClosed() && p.ch != nil {
		return nil
	}
	return p.connect()
}

func (p *Publisher) publishJSON(ctx context.Context, routingKey string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensureConnected(); err != nil {
		return err
	}

	drain(p.confirmCh, p.returnCh)

	if err := p.ch.PublishWithContext(
		ctx,
		p.exchange,
		routingKey,
		true,  // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	); err != nil {
		p.resetConn()
		return fmt.Errorf("publish failed: %w", err)
	}

	err = waitConfirm(ctx, p.confirmCh, p.returnCh, routingKey, publishWait, returnGrace)
	if err != nil {
		p.lg.Warn().Err(err).Str("routing_key", routingKey).Msg("publish not confirmed")
	}
	return err
}

// drain discards stale confirm / return messages to avoid mixing results.
func drain(confirmCh <-chan amqp.Confirmation, returnCh <-chan amqp.Return) {
	for {
		select {
		case <-confirmCh:
		case <-returnCh:
		default:
			return
		}
	}
}

// waitConfirm blocks until the broker acks, nacks or returns the message.
func waitConfirm(
	ctx context.Context,
	confirmCh <-chan amqp.Confirmation,
	returnCh <-chan amqp.Return,
	routingKey string,
	wait, grace time.Duration,
) error {
	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case ret := <-returnCh:
		return unroutable(routingKey, ret)

	case conf := <-confirmCh:
		g := time.NewTimer(grace)
		defer g.Stop()
		select {
		case ret := <-returnCh:
			return unroutable(routingKey, ret)
		case <-g.C:
		}

		if !conf.Ack {
			return fmt.Errorf("rabbitmq nack: key=%s deliveryTag=%d", routingKey, conf.DeliveryTag)
		}
		return nil

	case <-timer.C:
		return fmt.Errorf("rabbitmq publish timeout: key=%s", routingKey)

	case <-ctx.Done():
		return ctx.Err()
	}
}

func unroutable(routingKey string, ret amqp.Return) error {
	return fmt.Errorf(
		"rabbitmq unroutable: key=%s code=%d text=%s",
		routingKey, ret.ReplyCode, ret.ReplyText,
	)
}

func (p *Publisher) resetConn() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}
