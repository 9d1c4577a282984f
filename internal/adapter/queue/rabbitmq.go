package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// reconnectDelay is the pause between redial attempts after a broker drop.
const reconnectDelay = 5 * time.Second

var errChannelClosed = errors.New("rabbitmq: channel not available")

// RabbitMQQueue maps each subject onto a durable fanout exchange. Every
// subscriber gets its own exclusive queue bound to that exchange, and
// subscriptions are replayed after a reconnect.
type RabbitMQQueue struct {
	url string
	log *zap.Logger

	mu       sync.RWMutex
	conn     *amqp.Connection
	channel  *amqp.Channel
	declared map[string]bool
	subs     []subscription
	closing  bool
}

type subscription struct {
	subject string
	handler func(data []byte) error
}

// link is one connection and its channel, with close notifications
// registered before either is handed out.
type link struct {
	conn       *amqp.Connection
	channel    *amqp.Channel
	connClosed chan *amqp.Error
	chanClosed chan *amqp.Error
}

func NewRabbitMQQueue(url string, log *zap.Logger) (MessageQueue, error) {
	l, err := dialRabbitMQ(url)
	if err != nil {
		return nil, err
	}

	q := &RabbitMQQueue{
		url:      url,
		log:      log,
		conn:     l.conn,
		channel:  l.channel,
		declared: make(map[string]bool),
	}
	go q.watch(l)

	log.Info("Connected to RabbitMQ")
	return q, nil
}

func dialRabbitMQ(url string) (*link, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	l := &link{
		conn:       conn,
		connClosed: conn.NotifyClose(make(chan *amqp.Error, 1)),
	}
	if err := l.openChannel(); err != nil {
		conn.Close()
		return nil, err
	}
	return l, nil
}

func (l *link) openChannel() error {
	ch, err := l.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open RabbitMQ channel: %w", err)
	}
	l.channel = ch
	l.chanClosed = ch.NotifyClose(make(chan *amqp.Error, 1))
	return nil
}

func (q *RabbitMQQueue) Publish(ctx context.Context, subject string, data []byte) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if err := q.declareLocked(subject); err != nil {
		return err
	}

	err := q.channel.PublishWithContext(ctx, subject, "", false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         data,
	})
	if err != nil {
		return fmt.Errorf("rabbitmq: publish to %s: %w", subject, err)
	}
	return nil
}

func (q *RabbitMQQueue) Subscribe(subject string, handler func(data []byte) error) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	sub := subscription{subject: subject, handler: handler}
	if err := q.consumeLocked(sub); err != nil {
		return err
	}
	q.subs = append(q.subs, sub)

	q.log.Info("Subscribed to RabbitMQ exchange", zap.String("exchange", subject))
	return nil
}

func (q *RabbitMQQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.closing = true
	if q.channel != nil {
		q.channel.Close()
	}
	if q.conn != nil {
		return q.conn.Close()
	}
	return nil
}

func (q *RabbitMQQueue) isClosing() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closing
}

// declareLocked creates the exchange for subject once per channel.
func (q *RabbitMQQueue) declareLocked(subject string) error {
	if q.channel == nil || q.channel.IsClosed() {
		return errChannelClosed
	}
	if q.declared[subject] {
		return nil
	}
	if err := q.channel.ExchangeDeclare(subject, "fanout", true, false, false, false, nil); err != nil {
		return fmt.Errorf("rabbitmq: declare exchange %s: %w", subject, err)
	}
	q.declared[subject] = true
	return nil
}

func (q *RabbitMQQueue) consumeLocked(sub subscription) error {
	if err := q.declareLocked(sub.subject); err != nil {
		return err
	}

	queue, err := q.channel.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		return fmt.Errorf("rabbitmq: declare queue: %w", err)
	}
	if err := q.channel.QueueBind(queue.Name, "", sub.subject, false, nil); err != nil {
		return fmt.Errorf("rabbitmq: bind queue: %w", err)
	}
	deliveries, err := q.channel.Consume(queue.Name, "", true, true, false, false, nil)
	if err != nil {
		return fmt.Errorf("rabbitmq: consume: %w", err)
	}

	go func() {
		for d := range deliveries {
			if err := sub.handler(d.Body); err != nil {
				q.log.Error("Error processing RabbitMQ message",
					zap.String("exchange", sub.subject),
					zap.Error(err),
				)
			}
		}
	}()
	return nil
}

// watch reopens the channel when only the channel fails and redials when the
// connection drops. It returns once Close was called.
func (q *RabbitMQQueue) watch(l *link) {
	for {
		select {
		case reason := <-l.connClosed:
			if q.isClosing() {
				return
			}
			q.log.Warn("RabbitMQ connection lost, reconnecting", zap.String("reason", closeReason(reason)))

		case reason := <-l.chanClosed:
			if q.isClosing() {
				return
			}
			if !l.conn.IsClosed() {
				q.log.Warn("RabbitMQ channel closed, reopening", zap.String("reason", closeReason(reason)))
				err := l.openChannel()
				if err == nil {
					if !q.install(l) {
						return
					}
					continue
				}
				q.log.Error("Failed to reopen RabbitMQ channel", zap.Error(err))
				l.conn.Close()
			}
		}

		next, ok := q.reconnect()
		if !ok {
			return
		}
		l = next
	}
}

func (q *RabbitMQQueue) reconnect() (*link, bool) {
	for {
		time.Sleep(reconnectDelay)
		if q.isClosing() {
			return nil, false
		}

		l, err := dialRabbitMQ(q.url)
		if err != nil {
			q.log.Error("Failed to reconnect to RabbitMQ", zap.Error(err))
			continue
		}
		if !q.install(l) {
			return nil, false
		}

		q.log.Info("Reconnected to RabbitMQ")
		return l, true
	}
}

// install swaps l in and replays subscriptions. It reports false, closing l,
// when Close won the race.
func (q *RabbitMQQueue) install(l *link) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closing {
		l.channel.Close()
		l.conn.Close()
		return false
	}

	q.conn = l.conn
	q.channel = l.channel
	q.declared = make(map[string]bool)
	for _, sub := range q.subs {
		if err := q.consumeLocked(sub); err != nil {
			q.log.Error("Failed to restore subscription", zap.String("exchange", sub.subject), zap.Error(err))
		}
	}
	return true
}

func closeReason(err *amqp.Error) string {
	if err == nil {
		return "closed"
	}
	return err.Reason
}
