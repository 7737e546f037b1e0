package natsjs

import (
	"TripleDES/algorithm/tripledes"
	myErrors "TripleDES/internal/errors"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
)

const (
	StreamName       = "TDES"
	StreamSubjects   = "tdes.>"
	ConsumerName     = "envelope_consumer_%s"
	MessageIDHeader  = "Message-ID"
	LengthHeader     = "Envelope-Length"
	defaultFetchWait = 2 * time.Second
)

type JSClient struct {
	Conn    *nats.Conn
	JS      nats.JetStreamContext
	subject string
}

// NewJSClient connects to url and makes sure the envelope stream exists. Subject must
// fall under StreamSubjects.
func NewJSClient(url, subject string) (*JSClient, error) {
	if !strings.HasPrefix(subject, strings.TrimSuffix(StreamSubjects, ">")) {
		return nil, fmt.Errorf("subject %s is outside stream %s", subject, StreamSubjects)
	}

	nc, err := nats.Connect(url,
		nats.MaxReconnects(10),
		nats.ReconnectWait(2*time.Second),
		nats.ErrorHandler(func(_ *nats.Conn, _ *nats.Subscription, err error) {
			slog.Error("NATS error", slog.String("error", err.Error()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("nats jetstream: %w", err)
	}

	_, err = js.AddStream(&nats.StreamConfig{
		Name:      StreamName,
		Subjects:  []string{StreamSubjects},
		Retention: nats.WorkQueuePolicy,
		MaxAge:    24 * time.Hour,
	})
	if err != nil && !errors.Is(err, nats.ErrStreamNameAlreadyInUse) {
		nc.Close()
		return nil, fmt.Errorf("stream creation failed: %w", err)
	}

	return &JSClient{Conn: nc, JS: js, subject: subject}, nil
}

func (c *JSClient) Send(ctx context.Context, env *tripledes.Envelope) error {
	msg, err := newEnvelopeMsg(c.subject, env)
	if err != nil {
		return err
	}

	if _, err := c.JS.PublishMsg(msg, nats.MsgId(env.ID), nats.Context(ctx)); err != nil {
		return fmt.Errorf("publish failed: %w", err)
	}
	return nil
}

// Receive pulls the next envelope off the subject. With a non-empty id, an envelope
// with another id is handed back to the stream and ErrEnvelopeNotFound is returned.
func (c *JSClient) Receive(ctx context.Context, id string) (*tripledes.Envelope, error) {
	consumer := fmt.Sprintf(ConsumerName, strings.ReplaceAll(c.subject, ".", "_"))

	sub, err := c.JS.PullSubscribe(c.subject, consumer)
	if err != nil {
		return nil, fmt.Errorf("pull subscribe: %w", err)
	}
	defer sub.Unsubscribe()

	fetchCtx, cancel := fetchContext(ctx)
	defer cancel()

	msgs, err := sub.Fetch(1, nats.Context(fetchCtx))
	if err != nil && !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, nats.ErrTimeout) {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	if len(msgs) == 0 {
		return nil, myErrors.ErrEnvelopeNotFound
	}

	msg := msgs[0]
	env, err := decodeEnvelopeMsg(msg)
	if err != nil {
		msg.Term()
		return nil, err
	}
	if id != "" && env.ID != id {
		msg.Nak()
		return nil, fmt.Errorf("%w: next envelope is %s, not %s", myErrors.ErrEnvelopeNotFound, env.ID, id)
	}

	if err := msg.Ack(); err != nil {
		return nil, fmt.Errorf("ack: %w", err)
	}
	return env, nil
}

func (c *JSClient) Close() error {
	return c.Conn.Drain()
}

// fetchContext bounds a pull when the caller set no deadline of its own.
func fetchContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, defaultFetchWait)
}

func newEnvelopeMsg(subject string, env *tripledes.Envelope) (*nats.Msg, error) {
	if env == nil || env.ID == "" {
		return nil, myErrors.ErrInvalidEnvelope
	}

	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal envelope: %w", err)
	}

	msg := nats.NewMsg(subject)
	msg.Header.Set(MessageIDHeader, env.ID)
	msg.Header.Set(LengthHeader, fmt.Sprint(env.Length))
	msg.Data = data
	return msg, nil
}

func decodeEnvelopeMsg(msg *nats.Msg) (*tripledes.Envelope, error) {
	var env tripledes.Envelope
	if err := json.Unmarshal(msg.Data, &env); err != nil {
		return nil, fmt.Errorf("%w: %s", myErrors.ErrInvalidEnvelope, err)
	}
	if id := msg.Header.Get(MessageIDHeader); id != "" && id != env.ID {
		return nil, fmt.Errorf("%w: header id %s does not match body id %s", myErrors.ErrInvalidEnvelope, id, env.ID)
	}
	return &env, nil
}
