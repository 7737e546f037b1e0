package tripledes

import (
	"TripleDES/algorithm/symmetric"
	myErrors "TripleDES/internal/errors"
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// block is the token handed from one stage to the next. Whoever holds it owns the
// value; nothing else reads or writes it meanwhile.
type block struct {
	index int
	value uint64
}

// runPipelined runs every pass as its own goroutine. The feeder hands block j to the
// first stage, each stage hands it on once its step is done, and the collector writes
// the final value back. Stage k may be on block j+1 while stage k+1 is on block j.
func (t *TripleDES) runPipelined(ctx context.Context, log *slog.Logger, blocks []uint64, passes []symmetric.PassParams) error {
	depth := t.depth
	if depth <= 0 {
		depth = len(blocks)
	}

	links := make([]chan block, len(passes)+1)
	for i := range links {
		links[i] = make(chan block, depth)
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return feed(ctx, blocks, links[0])
	})

	for i, params := range passes {
		if i > 0 && t.stagger > 0 {
			select {
			case <-time.After(t.stagger):
			case <-ctx.Done():
			}
		}

		s := &stage{
			number: i + 1,
			chain:  symmetric.NewChain(t.cipher, params),
			in:     links[i],
			out:    links[i+1],
			log:    log.With(slog.Int("stage", i+1), slog.String("direction", params.Direction.String())),
		}
		g.Go(func() error {
			return s.run(ctx)
		})
	}

	results := make([]uint64, len(blocks))
	received := 0
	g.Go(func() error {
		for b := range links[len(passes)] {
			results[b.index] = b.value
			received++
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	if received != len(blocks) {
		return fmt.Errorf("%w: collected %d of %d blocks", myErrors.ErrStageAborted, received, len(blocks))
	}

	copy(blocks, results)
	return nil
}

func feed(ctx context.Context, blocks []uint64, out chan<- block) error {
	defer close(out)
	for i, v := range blocks {
		select {
		case out <- block{index: i, value: v}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

type stage struct {
	number int
	chain  *symmetric.Chain
	in     <-chan block
	out    chan<- block
	log    *slog.Logger
}

// run steps the stage's chain over every block it is handed, strictly in index order,
// since the chaining vector of block j depends on block j-1.
func (s *stage) run(ctx context.Context) error {
	defer close(s.out)

	s.log.Debug("stage started")
	next := 0
	for {
		var (
			b  block
			ok bool
		)
		select {
		case b, ok = <-s.in:
		case <-ctx.Done():
			return ctx.Err()
		}
		if !ok {
			break
		}

		if b.index != next {
			return fmt.Errorf("stage %d: %w: got block %d, want %d", s.number, myErrors.ErrOutOfOrder, b.index, next)
		}
		next++

		v, err := s.chain.Step(b.value)
		if err != nil {
			return fmt.Errorf("stage %d failed at block %d: %w", s.number, b.index, err)
		}

		select {
		case s.out <- block{index: b.index, value: v}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	s.log.Debug("stage finished", slog.Int("processed", next))
	return nil
}
