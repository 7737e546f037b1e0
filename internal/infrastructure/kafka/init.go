package kafka

import (
	"TripleDES/algorithm/tripledes"
	myErrors "TripleDES/internal/errors"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

type Client struct {
	Producer *kafka.Writer
	Consumer *kafka.Reader

	mu      sync.Mutex
	reader  messageReader
	pending *kafka.Message
}

// messageReader is the part of *kafka.Reader that Receive uses.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

func NewKafkaClient(brokerAddress, topic, groupID string) *Client {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokerAddress),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     []string{brokerAddress},
		GroupID:     groupID,
		Topic:       topic,
		MinBytes:    1,    // 1B
		MaxBytes:    10e6, // 10MB
		StartOffset: kafka.FirstOffset,
		MaxWait:     1 * time.Second,
	})

	return &Client{
		Producer: writer,
		Consumer: reader,
		reader:   reader,
	}
}

// Send writes env keyed by its id, so every copy of one envelope lands in the same
// partition.
func (c *Client) Send(ctx context.Context, env *tripledes.Envelope) error {
	msg, err := envelopeMessage(env)
	if err != nil {
		return err
	}
	if err := c.Producer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka write: %w", err)
	}
	return nil
}

// Receive reads the group's next envelope. With a non-empty id the next envelope
// must be that one: otherwise Receive fails with ErrEnvelopeNotFound and leaves it
// uncommitted at the head, so the same client and later sessions see it again.
// Undecodable messages are committed and skipped.
func (c *Client) Receive(ctx context.Context, id string) (*tripledes.Envelope, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for {
		m, err := c.next(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, fmt.Errorf("%w: %s", myErrors.ErrEnvelopeNotFound, err)
			}
			return nil, fmt.Errorf("kafka read: %w", err)
		}

		env, err := decodeEnvelope(m)
		if err != nil {
			slog.Warn("skipping undecodable kafka message", slog.Int64("offset", m.Offset), slog.String("error", err.Error()))
			if err := c.commit(ctx, m); err != nil {
				return nil, err
			}
			continue
		}

		if id != "" && env.ID != id {
			c.pending = &m
			return nil, fmt.Errorf("%w: next envelope is %s, not %s", myErrors.ErrEnvelopeNotFound, env.ID, id)
		}

		if err := c.commit(ctx, m); err != nil {
			return nil, err
		}
		return env, nil
	}
}

// next returns the message a previous Receive left uncommitted, or fetches one.
func (c *Client) next(ctx context.Context) (kafka.Message, error) {
	if c.pending != nil {
		return *c.pending, nil
	}
	return c.reader.FetchMessage(ctx)
}

func (c *Client) commit(ctx context.Context, m kafka.Message) error {
	if err := c.reader.CommitMessages(ctx, m); err != nil {
		c.pending = &m
		return fmt.Errorf("kafka commit: %w", err)
	}
	c.pending = nil
	return nil
}

func (c *Client) Close() error {
	return errors.Join(c.Producer.Close(), c.Consumer.Close())
}

func envelopeMessage(env *tripledes.Envelope) (kafka.Message, error) {
	if env == nil || env.ID == "" {
		return kafka.Message{}, myErrors.ErrInvalidEnvelope
	}

	data, err := json.Marshal(env)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to marshal envelope: %w", err)
	}
	return kafka.Message{
		Key:   []byte(env.ID),
		Value: data,
	}, nil
}

func decodeEnvelope(m kafka.Message) (*tripledes.Envelope, error) {
	var env tripledes.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return nil, fmt.Errorf("%w: %s", myErrors.ErrInvalidEnvelope, err)
	}
	if len(m.Key) > 0 && string(m.Key) != env.ID {
		return nil, fmt.Errorf("%w: key %s does not match body id %s", myErrors.ErrInvalidEnvelope, m.Key, env.ID)
	}
	return &env, nil
}
