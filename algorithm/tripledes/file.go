package tripledes

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// EncryptFile seals the whole input file into an envelope written to outputPath.
func (t *TripleDES) EncryptFile(ctx context.Context, inputPath, outputPath string, concurrent bool) error {
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return fmt.Errorf("inputPath %s does not exist", inputPath)
	}

	outputDir := filepath.Dir(outputPath)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}

	data, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("cannot read input file: %w", err)
	}

	env, err := t.Seal(ctx, data, concurrent)
	if err != nil {
		return err
	}

	outputFile, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("cannot open output file: %w", err)
	}
	defer outputFile.Close()

	return WriteEnvelope(outputFile, env)
}

// DecryptFile opens an envelope written by EncryptFile and writes the original bytes.
func (t *TripleDES) DecryptFile(ctx context.Context, inputPath, outputPath string, concurrent bool) error {
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return fmt.Errorf("inputPath %s does not exist", inputPath)
	}

	outputDir := filepath.Dir(outputPath)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}

	inputFile, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("cannot open input file: %w", err)
	}
	defer inputFile.Close()

	env, err := ReadEnvelope(inputFile)
	if err != nil {
		return err
	}

	decrypted, err := t.Open(ctx, env, concurrent)
	if err != nil {
		return err
	}

	if err := os.WriteFile(outputPath, decrypted, 0644); err != nil {
		return fmt.Errorf("cannot write output file: %w", err)
	}
	return nil
}

func (t *TripleDES) EncryptFileAsync(ctx context.Context, inputPath, outputPath string, concurrent bool) (<-chan struct{}, <-chan error) {
	successChan := make(chan struct{}, 1)
	errorChan := make(chan error, 1)

	go func() {
		defer close(successChan)
		defer close(errorChan)

		if err := t.EncryptFile(ctx, inputPath, outputPath, concurrent); err != nil {
			errorChan <- err
			return
		}
		successChan <- struct{}{}
	}()

	return successChan, errorChan
}

func (t *TripleDES) DecryptFileAsync(ctx context.Context, inputPath, outputPath string, concurrent bool) (<-chan struct{}, <-chan error) {
	successChan := make(chan struct{}, 1)
	errorChan := make(chan error, 1)

	go func() {
		defer close(successChan)
		defer close(errorChan)

		if err := t.DecryptFile(ctx, inputPath, outputPath, concurrent); err != nil {
			errorChan <- err
			return
		}
		successChan <- struct{}{}
	}()

	return successChan, errorChan
}
