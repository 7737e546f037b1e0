package symmetric

import (
	myErrors "TripleDES/internal/errors"
	"fmt"
)

// CipherContext runs a single CBC pass over whole byte buffers with one key and one
// IV. Output keeps the zero padding of the final block.
type CipherContext struct {
	cipher BlockTransformer
	key    uint64
	iv     uint64
}

func NewCipherContext(cipher BlockTransformer, key []byte, iv []byte) (*CipherContext, error) {
	if cipher == nil {
		return nil, myErrors.ErrTablesUnavailable
	}

	cryptoContext := &CipherContext{cipher: cipher}

	if err := cryptoContext.SetKey(key); err != nil {
		return nil, fmt.Errorf("failed to set key: %w", err)
	}

	v, err := IVFromBytes(iv)
	if err != nil {
		return nil, fmt.Errorf("failed to set iv: %w", err)
	}
	cryptoContext.iv = v

	return cryptoContext, nil
}

func (c *CipherContext) SetKey(key []byte) error {
	k, err := KeyFromBytes(key)
	if err != nil {
		return err
	}
	c.key = k
	return nil
}

func (c *CipherContext) Encrypt(data []byte) ([]byte, error) {
	blocks := SplitBlocks(data)

	chain := NewChain(c.cipher, PassParams{Key: c.key, IV: c.iv, Direction: Encrypt})
	if err := chain.Run(blocks); err != nil {
		return nil, fmt.Errorf("failed to encrypt data: %w", err)
	}

	return JoinBlocks(blocks, -1), nil
}

func (c *CipherContext) Decrypt(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, myErrors.ErrEmptyData
	}
	if len(data)%BlockSize != 0 {
		return nil, myErrors.ErrBlockAlignment
	}

	blocks := SplitBlocks(data)

	chain := NewChain(c.cipher, PassParams{Key: c.key, IV: c.iv, Direction: Decrypt})
	if err := chain.Run(blocks); err != nil {
		return nil, fmt.Errorf("failed to decrypt data: %w", err)
	}

	return JoinBlocks(blocks, -1), nil
}

func (c *CipherContext) EncryptAsync(data []byte) (<-chan []byte, <-chan error) {
	resultChan := make(chan []byte, 1)
	errorChan := make(chan error, 1)

	go func() {
		defer close(resultChan)
		defer close(errorChan)

		encrypted, err := c.Encrypt(data)
		if err != nil {
			errorChan <- err
			return
		}
		resultChan <- encrypted
	}()

	return resultChan, errorChan
}

func (c *CipherContext) DecryptAsync(data []byte) (<-chan []byte, <-chan error) {
	resultChan := make(chan []byte, 1)
	errorChan := make(chan error, 1)

	go func() {
		defer close(resultChan)
		defer close(errorChan)

		decrypted, err := c.Decrypt(data)
		if err != nil {
			errorChan <- err
			return
		}
		resultChan <- decrypted
	}()

	return resultChan, errorChan
}
