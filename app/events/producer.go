package events

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
)

type Publisher interface {
	Publish(ctx context.Context, env Envelope) error
}

type Producer struct {
	w       *kafka.Writer
	inbox   chan kafka.Message
	closeCh chan struct{}
}

func NewProducer(brokers []string, topic string, buf int) *Producer {
	return &Producer{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
		},
		inbox:   make(chan kafka.Message, buf),
		closeCh: make(chan struct{}),
	}
}

// Start drains the inbox until ctx is cancelled, then flushes what is left.
func (p *Producer) Start(ctx context.Context) {
	go func() {
		defer close(p.closeCh)
		for {
			select {
			case <-ctx.Done():
				for {
					select {
					case m := <-p.inbox:
						p.write(m)
					default:
						if err := p.w.Close(); err != nil {
							log.Printf("Producer.Start: close writer: %v", err)
						}
						return
					}
				}
			case m := <-p.inbox:
				p.write(m)
			}
		}
	}()
}

func (p *Producer) write(m kafka.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := p.w.WriteMessages(ctx, m); err != nil {
		log.Printf("❌ Producer.write: key=%s: %v", m.Key, err)
	}
}

// Publish enqueues env keyed by its correlation id so events of one order
// stay on one partition. It does not block when the inbox is full.
func (p *Producer) Publish(ctx context.Context, env Envelope) error {
	b, err := json.Marshal(env)
	if err != nil {
		return err
	}
	msg := kafka.Message{
		Key:   []byte(env.CorrelationID),
		Value: b,
		Time:  env.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(env.EventType)},
		},
	}
	select {
	case p.inbox <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		log.Printf("Producer.Publish: inbox full, dropping %s for %s", env.EventType, env.CorrelationID)
		return nil
	}
}

// WaitClosed blocks until the writer goroutine has flushed and exited.
func (p *Producer) WaitClosed() { <-p.closeCh }

type localPublisher struct {
	handler Handler
}

// NewLocalPublisher hands events straight to handler in a goroutine. It is
// used when no brokers are configured.
func NewLocalPublisher(handler Handler) Publisher {
	return &localPublisher{handler: handler}
}

func (p *localPublisher) Publish(_ context.Context, env Envelope) error {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := p.handler(ctx, env); err != nil {
			log.Printf("❌ Events.local: %s for %s: %v", env.EventType, env.CorrelationID, err)
		}
	}()
	return nil
}
