package repository

import (
	"TripleDES/algorithm/tripledes"
	"context"
	"database/sql"
)

type EnvelopeRepo interface {
	Store(ctx context.Context, env *tripledes.Envelope) error
	// Take removes the envelope with the given id and returns it. Of several
	// concurrent callers at most one gets the envelope.
	Take(ctx context.Context, id string) (*tripledes.Envelope, error)
}

type Repository struct {
	EnvelopeRepo
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		EnvelopeRepo: NewEnvelopeRepository(db),
	}
}
