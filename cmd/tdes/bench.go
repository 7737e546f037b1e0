package main

import (
	"TripleDES/algorithm/des"
	"TripleDES/internal/config/cipherConfig"
	"bytes"
	"context"
	"fmt"
	"os"
	"time"
)

type benchResult struct {
	mode    string
	encrypt time.Duration
	decrypt time.Duration
}

// runBench encrypts and decrypts the input once single-threaded and once pipelined
// with the same key, checks both round trips and prints the timings.
func runBench(ctx context.Context, cipher *des.Cipher, config *cipherConfig.Config) error {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("cannot read input file: %w", err)
	}

	key, err := parseKey(true)
	if err != nil {
		return err
	}

	var results []benchResult
	for _, concurrent := range []bool{false, true} {
		t, err := newTripleDES(cipher, key, config)
		if err != nil {
			return err
		}

		result := benchResult{mode: "single-threaded"}
		if concurrent {
			result.mode = "multi-threaded"
		}

		started := time.Now()
		env, err := t.Seal(ctx, data, concurrent)
		if err != nil {
			return fmt.Errorf("%s encryption: %w", result.mode, err)
		}
		result.encrypt = time.Since(started)

		started = time.Now()
		decrypted, err := t.Open(ctx, env, concurrent)
		if err != nil {
			return fmt.Errorf("%s decryption: %w", result.mode, err)
		}
		result.decrypt = time.Since(started)

		if !bytes.Equal(decrypted, data) {
			return fmt.Errorf("%s round trip does not reproduce the input", result.mode)
		}
		results = append(results, result)
	}

	fmt.Printf("%d bytes, %d blocks\n", len(data), (len(data)+des.BlockSize-1)/des.BlockSize)
	for _, r := range results {
		fmt.Printf("%-16s encryption: %d ms elapsed.\n", r.mode, r.encrypt.Milliseconds())
		fmt.Printf("%-16s decryption: %d ms elapsed.\n", r.mode, r.decrypt.Milliseconds())
	}
	return nil
}
