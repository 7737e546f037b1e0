package service

import (
	"TripleDES/algorithm/tripledes"
	myErrors "TripleDES/internal/errors"
	"TripleDES/internal/repository"
	"context"
	"fmt"
	"log/slog"
)

type EnvelopeService struct {
	transport Transport
}

func NewEnvelopeService(transport Transport) *EnvelopeService {
	return &EnvelopeService{transport: transport}
}

// Send seals data with t and hands the envelope to the transport, returning its id.
func (s *EnvelopeService) Send(ctx context.Context, t *tripledes.TripleDES, data []byte, concurrent bool) (string, error) {
	env, err := t.Seal(ctx, data, concurrent)
	if err != nil {
		return "", fmt.Errorf("failed to seal data: %w", err)
	}

	if err := s.transport.Send(ctx, env); err != nil {
		return "", fmt.Errorf("failed to send envelope %s: %w", env.ID, err)
	}

	slog.Debug("envelope sent", slog.String("envelope_id", env.ID), slog.Int("length", env.Length))
	return env.ID, nil
}

// Receive takes the envelope with the given id, or the next one when id is empty, and
// opens it with t.
func (s *EnvelopeService) Receive(ctx context.Context, t *tripledes.TripleDES, id string, concurrent bool) ([]byte, error) {
	env, err := s.transport.Receive(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to receive envelope: %w", err)
	}

	data, err := t.Open(ctx, env, concurrent)
	if err != nil {
		return nil, fmt.Errorf("failed to open envelope %s: %w", env.ID, err)
	}

	slog.Debug("envelope received", slog.String("envelope_id", env.ID), slog.Int("length", env.Length))
	return data, nil
}

type repositoryTransport struct {
	repo repository.EnvelopeRepo
}

func (r *repositoryTransport) Send(ctx context.Context, env *tripledes.Envelope) error {
	return r.repo.Store(ctx, env)
}

// Receive takes the stored envelope out of the repository, so each one is read once
// like a broker message.
func (r *repositoryTransport) Receive(ctx context.Context, id string) (*tripledes.Envelope, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: the database transport needs an envelope id", myErrors.ErrEnvelopeNotFound)
	}
	return r.repo.Take(ctx, id)
}

func (r *repositoryTransport) Close() error {
	return nil
}
