package service

import (
	"TripleDES/algorithm/tripledes"
	"TripleDES/internal/repository"
	"context"
)

// Transport moves sealed envelopes. Receive with an empty id takes the next envelope
// in delivery order where the transport has one.
type Transport interface {
	Send(ctx context.Context, env *tripledes.Envelope) error
	Receive(ctx context.Context, id string) (*tripledes.Envelope, error)
	Close() error
}

type Envelopes interface {
	Send(ctx context.Context, t *tripledes.TripleDES, data []byte, concurrent bool) (string, error)
	Receive(ctx context.Context, t *tripledes.TripleDES, id string, concurrent bool) ([]byte, error)
}

type Service struct {
	Envelopes
}

func NewService(transport Transport) *Service {
	return &Service{
		Envelopes: NewEnvelopeService(transport),
	}
}

// NewRepositoryTransport stores envelopes in the database instead of a broker.
func NewRepositoryTransport(repositories *repository.Repository) Transport {
	return &repositoryTransport{repo: repositories.EnvelopeRepo}
}
