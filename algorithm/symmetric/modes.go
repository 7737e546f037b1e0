package symmetric

import (
	"fmt"
)

// Chain threads the CBC vector through one pass. It is not safe for concurrent use;
// each pipeline stage owns its own Chain.
type Chain struct {
	cipher BlockTransformer
	params PassParams
	vector uint64
}

func NewChain(cipher BlockTransformer, params PassParams) *Chain {
	return &Chain{
		cipher: cipher,
		params: params,
		vector: params.IV,
	}
}

func (c *Chain) Params() PassParams {
	return c.params
}

// Step processes the next block of the pass and returns its new value.
func (c *Chain) Step(block uint64) (uint64, error) {
	if c.cipher == nil {
		return 0, fmt.Errorf("cipher is not initialized")
	}

	switch c.params.Direction {
	case Encrypt:
		encrypted, err := c.cipher.Transform(block^c.vector, c.params.Key, false)
		if err != nil {
			return 0, err
		}
		c.vector = encrypted
		return encrypted, nil

	case Decrypt:
		// the ciphertext must be saved before the block is overwritten, it is the
		// vector for the next block
		saved := block
		decrypted, err := c.cipher.Transform(block, c.params.Key, true)
		if err != nil {
			return 0, err
		}
		out := decrypted ^ c.vector
		c.vector = saved
		return out, nil

	default:
		return 0, fmt.Errorf("unsupported direction: %d", c.params.Direction)
	}
}

// Run applies the pass to blocks in place, in order.
func (c *Chain) Run(blocks []uint64) error {
	for i, block := range blocks {
		out, err := c.Step(block)
		if err != nil {
			return fmt.Errorf("%s failed at block %d: %w", c.params.Direction, i, err)
		}
		blocks[i] = out
	}
	return nil
}
