// Package tripledes composes three CBC passes of the DES core into two-key EDE
// Triple-DES, run either one pass after another or as a three-stage pipeline.
package tripledes

import (
	"TripleDES/algorithm/des"
	"TripleDES/algorithm/symmetric"
	myErrors "TripleDES/internal/errors"
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

const KeySize = 2 * symmetric.BlockSize

type TripleDES struct {
	cipher  *des.Cipher
	key1    uint64
	key2    uint64
	ivs     [3]uint64
	stagger time.Duration
	depth   int
	log     *slog.Logger
}

type Option func(*TripleDES)

// WithIVs fixes the three per-pass initialization vectors instead of drawing them
// from crypto/rand. Decryption must use the IVs encryption used.
func WithIVs(ivs [3]uint64) Option {
	return func(t *TripleDES) {
		t.ivs = ivs
	}
}

// WithStagger delays the launch of each pipeline stage after the first.
func WithStagger(d time.Duration) Option {
	return func(t *TripleDES) {
		t.stagger = d
	}
}

// WithPipelineDepth bounds how many blocks may wait between two stages. Zero or
// less lets a stage run arbitrarily far ahead of the next one.
func WithPipelineDepth(depth int) Option {
	return func(t *TripleDES) {
		t.depth = depth
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(t *TripleDES) {
		if logger != nil {
			t.log = logger
		}
	}
}

// New splits the 16-byte key into K1 (left half) and K2 (right half).
func New(cipher *des.Cipher, key []byte, opts ...Option) (*TripleDES, error) {
	if cipher == nil {
		return nil, myErrors.ErrTablesUnavailable
	}

	key1, key2, err := SplitKey(key)
	if err != nil {
		return nil, err
	}

	ivs, err := RandomIVs()
	if err != nil {
		return nil, err
	}

	t := &TripleDES{
		cipher: cipher,
		key1:   key1,
		key2:   key2,
		ivs:    ivs,
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

func SplitKey(key []byte) (uint64, uint64, error) {
	if len(key) != KeySize {
		return 0, 0, fmt.Errorf("%w: want %d bytes, got %d", myErrors.ErrKeySize, KeySize, len(key))
	}
	return binary.BigEndian.Uint64(key[:symmetric.BlockSize]), binary.BigEndian.Uint64(key[symmetric.BlockSize:]), nil
}

func RandomIVs() ([3]uint64, error) {
	var ivs [3]uint64
	buf := make([]byte, len(ivs)*symmetric.BlockSize)
	if _, err := rand.Read(buf); err != nil {
		return ivs, fmt.Errorf("failed to generate random bytes: %w", err)
	}
	for i := range ivs {
		ivs[i] = binary.BigEndian.Uint64(buf[i*symmetric.BlockSize:])
	}
	return ivs, nil
}

func (t *TripleDES) IVs() [3]uint64 {
	return t.ivs
}

// encryptPasses is E(K1, IV1), D(K2, IV2), E(K1, IV3).
func (t *TripleDES) encryptPasses(concurrent bool) []symmetric.PassParams {
	return []symmetric.PassParams{
		{Key: t.key1, IV: t.ivs[0], Direction: symmetric.Encrypt, Concurrent: concurrent},
		{Key: t.key2, IV: t.ivs[1], Direction: symmetric.Decrypt, Concurrent: concurrent},
		{Key: t.key1, IV: t.ivs[2], Direction: symmetric.Encrypt, Concurrent: concurrent},
	}
}

// decryptPasses mirrors encryptPasses: reversed order, flipped directions.
func (t *TripleDES) decryptPasses(concurrent bool) []symmetric.PassParams {
	return lo.Map(lo.Reverse(t.encryptPasses(concurrent)), func(p symmetric.PassParams, _ int) symmetric.PassParams {
		p.Direction = p.Direction.Reverse()
		return p
	})
}

func (t *TripleDES) EncryptBlocks(ctx context.Context, blocks []uint64, concurrent bool) error {
	return t.run(ctx, blocks, t.encryptPasses(concurrent), "encrypt")
}

func (t *TripleDES) DecryptBlocks(ctx context.Context, blocks []uint64, concurrent bool) error {
	return t.run(ctx, blocks, t.decryptPasses(concurrent), "decrypt")
}

// Encrypt returns ciphertext padded up to a whole number of blocks. Empty data
// encrypts to one block.
func (t *TripleDES) Encrypt(ctx context.Context, data []byte, concurrent bool) ([]byte, error) {
	blocks := symmetric.SplitBlocks(data)

	if err := t.EncryptBlocks(ctx, blocks, concurrent); err != nil {
		return nil, fmt.Errorf("failed to encrypt data: %w", err)
	}
	return symmetric.JoinBlocks(blocks, -1), nil
}

// Decrypt expects block-aligned ciphertext and returns block-aligned plaintext. The
// caller truncates it to the original length.
func (t *TripleDES) Decrypt(ctx context.Context, data []byte, concurrent bool) ([]byte, error) {
	if len(data) == 0 {
		return nil, myErrors.ErrEmptyData
	}
	if len(data)%symmetric.BlockSize != 0 {
		return nil, myErrors.ErrBlockAlignment
	}
	blocks := symmetric.SplitBlocks(data)

	if err := t.DecryptBlocks(ctx, blocks, concurrent); err != nil {
		return nil, fmt.Errorf("failed to decrypt data: %w", err)
	}
	return symmetric.JoinBlocks(blocks, -1), nil
}

func (t *TripleDES) EncryptAsync(ctx context.Context, data []byte, concurrent bool) (<-chan []byte, <-chan error) {
	resultChan := make(chan []byte, 1)
	errorChan := make(chan error, 1)

	go func() {
		defer close(resultChan)
		defer close(errorChan)

		encrypted, err := t.Encrypt(ctx, data, concurrent)
		if err != nil {
			errorChan <- err
			return
		}
		resultChan <- encrypted
	}()

	return resultChan, errorChan
}

func (t *TripleDES) DecryptAsync(ctx context.Context, data []byte, concurrent bool) (<-chan []byte, <-chan error) {
	resultChan := make(chan []byte, 1)
	errorChan := make(chan error, 1)

	go func() {
		defer close(resultChan)
		defer close(errorChan)

		decrypted, err := t.Decrypt(ctx, data, concurrent)
		if err != nil {
			errorChan <- err
			return
		}
		resultChan <- decrypted
	}()

	return resultChan, errorChan
}

func (t *TripleDES) run(ctx context.Context, blocks []uint64, passes []symmetric.PassParams, op string) error {
	if len(blocks) == 0 {
		return myErrors.ErrEmptyData
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	runID := uuid.NewString()
	log := t.log.With(slog.String("run_id", runID), slog.String("op", op), slog.Int("blocks", len(blocks)))

	concurrent := len(passes) > 0 && passes[0].Concurrent
	started := time.Now()
	log.Debug("triple des run started", slog.Bool("concurrent", concurrent))

	var err error
	if concurrent {
		err = t.runPipelined(ctx, log, blocks, passes)
	} else {
		err = t.runSequential(ctx, log, blocks, passes)
	}
	if err != nil {
		log.Debug("triple des run failed", slog.String("error", err.Error()))
		return err
	}

	log.Debug("triple des run finished", slog.Duration("elapsed", time.Since(started)))
	return nil
}

func (t *TripleDES) runSequential(ctx context.Context, log *slog.Logger, blocks []uint64, passes []symmetric.PassParams) error {
	for i, params := range passes {
		if err := ctx.Err(); err != nil {
			return err
		}
		log.Debug("pass started", slog.Int("pass", i+1), slog.String("direction", params.Direction.String()))

		if err := symmetric.NewChain(t.cipher, params).Run(blocks); err != nil {
			return fmt.Errorf("pass %d: %w", i+1, err)
		}
	}
	return nil
}
