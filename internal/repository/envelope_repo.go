package repository

import (
	"TripleDES/algorithm/tripledes"
	myErrors "TripleDES/internal/errors"
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type EnvelopeRepository struct {
	db *sql.DB
}

// envelopeRow is the column layout of the envelopes table.
type envelopeRow struct {
	ID     string
	Length int
	IV1    string
	IV2    string
	IV3    string
	Data   []byte
}

func toRow(env *tripledes.Envelope) (envelopeRow, error) {
	if env == nil || len(env.IVs) != 3 {
		return envelopeRow{}, myErrors.ErrInvalidEnvelope
	}
	return envelopeRow{
		ID:     env.ID,
		Length: env.Length,
		IV1:    env.IVs[0],
		IV2:    env.IVs[1],
		IV3:    env.IVs[2],
		Data:   env.Data,
	}, nil
}

func (r envelopeRow) envelope() *tripledes.Envelope {
	return &tripledes.Envelope{
		ID:     r.ID,
		Length: r.Length,
		IVs:    []string{r.IV1, r.IV2, r.IV3},
		Data:   r.Data,
	}
}

func (e *EnvelopeRepository) Store(ctx context.Context, env *tripledes.Envelope) error {
	row, err := toRow(env)
	if err != nil {
		return err
	}

	query := "INSERT INTO envelopes (envelope_id, length, iv1, iv2, iv3, data) VALUES ($1, $2, $3, $4, $5, $6)"
	_, err = e.db.ExecContext(ctx, query, row.ID, row.Length, row.IV1, row.IV2, row.IV3, row.Data)
	if err != nil {
		return fmt.Errorf("error while inserting envelope: %w", err)
	}
	return nil
}

const takeEnvelopeQuery = `DELETE FROM envelopes WHERE envelope_id = $1
RETURNING envelope_id, length, iv1, iv2, iv3, data`

// Take deletes and returns the envelope in one statement, so two receivers racing
// for the same id cannot both read it.
func (e *EnvelopeRepository) Take(ctx context.Context, id string) (*tripledes.Envelope, error) {
	var row envelopeRow
	err := e.db.QueryRowContext(ctx, takeEnvelopeQuery, id).Scan(&row.ID, &row.Length, &row.IV1, &row.IV2, &row.IV3, &row.Data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", myErrors.ErrEnvelopeNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("error taking envelope by id: %w", err)
	}
	return row.envelope(), nil
}

func NewEnvelopeRepository(db *sql.DB) *EnvelopeRepository {
	return &EnvelopeRepository{
		db: db,
	}
}
