package repository

import (
	"TripleDES/algorithm/tripledes"
	myErrors "TripleDES/internal/errors"
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeRowMapping(t *testing.T) {
	env := &tripledes.Envelope{
		ID:     "5f1c4a3e-8d2b-4f7a-9c61-0e3b2a1d4c5f",
		Length: 17,
		IVs:    []string{"0102030405060708", "1112131415161718", "2122232425262728"},
		Data:   make([]byte, 24),
	}

	row, err := toRow(env)
	require.NoError(t, err)
	assert.Equal(t, "1112131415161718", row.IV2)
	assert.Equal(t, env, row.envelope())
}

func TestEnvelopeRowRejectsIncompleteEnvelope(t *testing.T) {
	_, err := toRow(nil)
	assert.ErrorIs(t, err, myErrors.ErrInvalidEnvelope)

	_, err = toRow(&tripledes.Envelope{IVs: []string{"00"}})
	assert.ErrorIs(t, err, myErrors.ErrInvalidEnvelope)
}

// envelopeTable is a database/sql driver over a map that understands the two
// statements EnvelopeRepository issues.
type envelopeTable struct {
	mu      sync.Mutex
	rows    map[string][]driver.Value
	queries []string
}

func (tb *envelopeTable) Open(string) (driver.Conn, error)             { return &tableConn{tb}, nil }
func (tb *envelopeTable) Connect(context.Context) (driver.Conn, error) { return &tableConn{tb}, nil }
func (tb *envelopeTable) Driver() driver.Driver                        { return tb }

type tableConn struct{ tb *envelopeTable }

func (c *tableConn) Prepare(query string) (driver.Stmt, error) {
	return &tableStmt{tb: c.tb, query: query}, nil
}
func (c *tableConn) Close() error              { return nil }
func (c *tableConn) Begin() (driver.Tx, error) { return nil, errors.New("transactions are not supported") }

type tableStmt struct {
	tb    *envelopeTable
	query string
}

func (s *tableStmt) Close() error  { return nil }
func (s *tableStmt) NumInput() int { return -1 }

func (s *tableStmt) Exec(args []driver.Value) (driver.Result, error) {
	s.tb.mu.Lock()
	defer s.tb.mu.Unlock()
	s.tb.queries = append(s.tb.queries, s.query)

	if !strings.HasPrefix(s.query, "INSERT") {
		return nil, fmt.Errorf("unexpected exec %q", s.query)
	}
	id := args[0].(string)
	if _, ok := s.tb.rows[id]; ok {
		return nil, fmt.Errorf("duplicate key %s", id)
	}
	s.tb.rows[id] = args
	return driver.RowsAffected(1), nil
}

func (s *tableStmt) Query(args []driver.Value) (driver.Rows, error) {
	s.tb.mu.Lock()
	defer s.tb.mu.Unlock()
	s.tb.queries = append(s.tb.queries, s.query)

	if !strings.HasPrefix(s.query, "DELETE") || !strings.Contains(s.query, "RETURNING") {
		return nil, fmt.Errorf("unexpected query %q", s.query)
	}
	id := args[0].(string)
	row, ok := s.tb.rows[id]
	delete(s.tb.rows, id)
	if !ok {
		return &tableRows{}, nil
	}
	return &tableRows{values: [][]driver.Value{row}}, nil
}

type tableRows struct {
	values [][]driver.Value
}

func (r *tableRows) Columns() []string {
	return []string{"envelope_id", "length", "iv1", "iv2", "iv3", "data"}
}
func (r *tableRows) Close() error { return nil }

func (r *tableRows) Next(dest []driver.Value) error {
	if len(r.values) == 0 {
		return io.EOF
	}
	copy(dest, r.values[0])
	r.values = r.values[1:]
	return nil
}

func newTableRepository(t *testing.T) (*EnvelopeRepository, *envelopeTable) {
	t.Helper()
	tb := &envelopeTable{rows: map[string][]driver.Value{}}
	db := sql.OpenDB(tb)
	t.Cleanup(func() { _ = db.Close() })
	return NewEnvelopeRepository(db), tb
}

func TestStoreTake(t *testing.T) {
	ctx := context.Background()
	repo, tb := newTableRepository(t)

	env := &tripledes.Envelope{
		ID:     "0b6f1f7e-2a4c-4d8e-b5a9-7c3d2e1f0a9b",
		Length: 5,
		IVs:    []string{"0102030405060708", "1112131415161718", "2122232425262728"},
		Data:   []byte{1, 2, 3, 4, 5, 6, 7, 8},
	}
	require.NoError(t, repo.Store(ctx, env))

	got, err := repo.Take(ctx, env.ID)
	require.NoError(t, err)
	assert.Equal(t, env, got)

	_, err = repo.Take(ctx, env.ID)
	assert.ErrorIs(t, err, myErrors.ErrEnvelopeNotFound)

	// one insert, then a single statement per take
	require.Len(t, tb.queries, 3)
	assert.Equal(t, takeEnvelopeQuery, tb.queries[1])
	assert.Equal(t, takeEnvelopeQuery, tb.queries[2])
}

func TestTakeRacingReceivers(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTableRepository(t)

	env := &tripledes.Envelope{
		ID:     "9a8b7c6d-5e4f-4a3b-8c2d-1e0f9a8b7c6d",
		Length: 8,
		IVs:    []string{"0000000000000000", "0000000000000000", "0000000000000000"},
		Data:   make([]byte, 8),
	}
	require.NoError(t, repo.Store(ctx, env))

	const receivers = 10
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		taken int
	)
	for i := 0; i < receivers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.Take(ctx, env.ID); err == nil {
				mu.Lock()
				taken++
				mu.Unlock()
			} else {
				assert.ErrorIs(t, err, myErrors.ErrEnvelopeNotFound)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, taken)
}
