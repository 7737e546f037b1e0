package tripledes

import (
	"TripleDES/algorithm/symmetric"
	myErrors "TripleDES/internal/errors"
	"context"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"

	"github.com/google/uuid"
)

// Envelope carries what the ciphertext itself does not: the original length and the
// three per-pass IVs.
type Envelope struct {
	ID     string   `json:"id"`
	Length int      `json:"length"`
	IVs    []string `json:"ivs"`
	Data   []byte   `json:"data"`
}

func (t *TripleDES) Seal(ctx context.Context, data []byte, concurrent bool) (*Envelope, error) {
	encrypted, err := t.Encrypt(ctx, data, concurrent)
	if err != nil {
		return nil, err
	}

	ivs := make([]string, len(t.ivs))
	for i, iv := range t.ivs {
		ivs[i] = hex.EncodeToString(symmetric.BlockToBytes(iv))
	}

	return &Envelope{
		ID:     uuid.NewString(),
		Length: len(data),
		IVs:    ivs,
		Data:   encrypted,
	}, nil
}

// Open decrypts env with the envelope's IVs, whatever IVs t was created with, and
// returns exactly env.Length bytes.
func (t *TripleDES) Open(ctx context.Context, env *Envelope, concurrent bool) ([]byte, error) {
	ivs, err := env.parseIVs()
	if err != nil {
		return nil, err
	}
	if len(env.Data)%symmetric.BlockSize != 0 {
		return nil, myErrors.ErrBlockAlignment
	}
	if env.Length < 0 || symmetric.BlockCount(env.Length) != len(env.Data)/symmetric.BlockSize {
		return nil, fmt.Errorf("%w: length %d does not match %d data bytes", myErrors.ErrInvalidEnvelope, env.Length, len(env.Data))
	}

	opened := *t
	opened.ivs = ivs

	decrypted, err := opened.Decrypt(ctx, env.Data, concurrent)
	if err != nil {
		return nil, err
	}
	return decrypted[:env.Length], nil
}

func (env *Envelope) parseIVs() ([3]uint64, error) {
	var ivs [3]uint64
	if env == nil {
		return ivs, myErrors.ErrInvalidEnvelope
	}
	if len(env.IVs) != len(ivs) {
		return ivs, fmt.Errorf("%w: want %d ivs, got %d", myErrors.ErrInvalidEnvelope, len(ivs), len(env.IVs))
	}

	for i, s := range env.IVs {
		raw, err := hex.DecodeString(s)
		if err != nil {
			return ivs, fmt.Errorf("%w: iv %d: %s", myErrors.ErrInvalidEnvelope, i+1, err)
		}
		if len(raw) != symmetric.BlockSize {
			return ivs, fmt.Errorf("%w: iv %d has %d bytes", myErrors.ErrIVSize, i+1, len(raw))
		}
		ivs[i] = binary.BigEndian.Uint64(raw)
	}
	return ivs, nil
}

func WriteEnvelope(w io.Writer, env *Envelope) error {
	if err := json.NewEncoder(w).Encode(env); err != nil {
		return fmt.Errorf("failed to marshal envelope: %w", err)
	}
	return nil
}

func ReadEnvelope(r io.Reader) (*Envelope, error) {
	var env Envelope
	if err := json.NewDecoder(r).Decode(&env); err != nil {
		return nil, fmt.Errorf("%w: %s", myErrors.ErrInvalidEnvelope, err)
	}
	return &env, nil
}
