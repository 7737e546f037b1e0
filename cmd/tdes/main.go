package main

import (
	"TripleDES/algorithm/des"
	"TripleDES/algorithm/tripledes"
	"TripleDES/internal/config/cipherConfig"
	"TripleDES/internal/logger"
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"os"
	"os/signal"

	"github.com/integrii/flaggy"
	"github.com/joho/godotenv"
)

var (
	inputPath  string
	outputPath string
	keyHex     string
	envelopeID string
)

func init() {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Error("Error loading .env file", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func main() {
	flaggy.SetName("tdes")
	flaggy.SetDescription("Two-key Triple-DES (EDE, CBC) over files and brokers, sequential or pipelined")

	encryptCmd := flaggy.NewSubcommand("encrypt")
	encryptCmd.Description = "Encrypt a file into an envelope"
	encryptCmd.String(&inputPath, "i", "in", "File to encrypt")
	encryptCmd.String(&outputPath, "o", "out", "Envelope to write")
	encryptCmd.String(&keyHex, "k", "key", "16-byte key in hex; generated when empty")

	decryptCmd := flaggy.NewSubcommand("decrypt")
	decryptCmd.Description = "Decrypt an envelope back into the original file"
	decryptCmd.String(&inputPath, "i", "in", "Envelope to decrypt")
	decryptCmd.String(&outputPath, "o", "out", "File to write")
	decryptCmd.String(&keyHex, "k", "key", "16-byte key in hex")

	benchCmd := flaggy.NewSubcommand("bench")
	benchCmd.Description = "Time sequential and pipelined encryption and decryption of a file"
	benchCmd.String(&inputPath, "i", "in", "File to encrypt")

	sendCmd := flaggy.NewSubcommand("send")
	sendCmd.Description = "Seal a file and send the envelope over the configured transport"
	sendCmd.String(&inputPath, "i", "in", "File to send")
	sendCmd.String(&keyHex, "k", "key", "16-byte key in hex; generated when empty")

	receiveCmd := flaggy.NewSubcommand("receive")
	receiveCmd.Description = "Receive an envelope from the configured transport and open it"
	receiveCmd.String(&outputPath, "o", "out", "File to write")
	receiveCmd.String(&keyHex, "k", "key", "16-byte key in hex")
	receiveCmd.String(&envelopeID, "e", "id", "Envelope id; the next envelope when empty. On nats and kafka it must be the next envelope, which is otherwise left queued")

	flaggy.AttachSubcommand(encryptCmd, 1)
	flaggy.AttachSubcommand(decryptCmd, 1)
	flaggy.AttachSubcommand(benchCmd, 1)
	flaggy.AttachSubcommand(sendCmd, 1)
	flaggy.AttachSubcommand(receiveCmd, 1)
	flaggy.Parse()

	config, err := cipherConfig.MustLoadCipherConfig()
	if err != nil {
		log.Fatal(err)
	}

	appLog, err := logger.New(config.Log.Level, os.Stderr)
	if err != nil {
		log.Fatal(err)
	}
	slog.SetDefault(appLog)

	cipher, err := loadCipher(config.Tables)
	if err != nil {
		slog.Error("cannot load des tables", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch {
	case encryptCmd.Used:
		err = runEncrypt(ctx, cipher, config)
	case decryptCmd.Used:
		err = runDecrypt(ctx, cipher, config)
	case benchCmd.Used:
		err = runBench(ctx, cipher, config)
	case sendCmd.Used:
		err = runSend(ctx, cipher, config)
	case receiveCmd.Used:
		err = runReceive(ctx, cipher, config)
	default:
		flaggy.ShowHelpAndExit("a subcommand is required")
	}

	if err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

func loadCipher(cfg cipherConfig.TablesConfig) (*des.Cipher, error) {
	indexing, err := des.ParseSBoxIndexing(cfg.SBoxIndexing)
	if err != nil {
		return nil, err
	}

	var tables *des.Tables
	if cfg.Dir == "" {
		tables, err = des.StandardTables(indexing)
	} else {
		tables, err = des.LoadTables(os.DirFS(cfg.Dir), indexing)
	}
	if err != nil {
		return nil, err
	}

	return des.New(tables)
}

func newTripleDES(cipher *des.Cipher, key []byte, config *cipherConfig.Config) (*tripledes.TripleDES, error) {
	return tripledes.New(cipher, key,
		tripledes.WithStagger(config.Pipeline.Stagger),
		tripledes.WithPipelineDepth(config.Pipeline.Depth),
		tripledes.WithLogger(slog.Default()),
	)
}

func parseKey(generate bool) ([]byte, error) {
	if keyHex == "" {
		if !generate {
			return nil, fmt.Errorf("a key is required")
		}
		key := make([]byte, tripledes.KeySize)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("failed to generate random bytes: %w", err)
		}
		fmt.Printf("generated key: %s\n", hex.EncodeToString(key))
		return key, nil
	}

	key, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, fmt.Errorf("key is not valid hex: %w", err)
	}
	return key, nil
}

func runEncrypt(ctx context.Context, cipher *des.Cipher, config *cipherConfig.Config) error {
	key, err := parseKey(true)
	if err != nil {
		return err
	}
	t, err := newTripleDES(cipher, key, config)
	if err != nil {
		return err
	}

	if err := t.EncryptFile(ctx, inputPath, outputPath, config.Pipeline.Concurrent); err != nil {
		return fmt.Errorf("failed to encrypt file: %w", err)
	}
	slog.Info("file encrypted", slog.String("in", inputPath), slog.String("out", outputPath))
	return nil
}

func runDecrypt(ctx context.Context, cipher *des.Cipher, config *cipherConfig.Config) error {
	key, err := parseKey(false)
	if err != nil {
		return err
	}
	t, err := newTripleDES(cipher, key, config)
	if err != nil {
		return err
	}

	if err := t.DecryptFile(ctx, inputPath, outputPath, config.Pipeline.Concurrent); err != nil {
		return fmt.Errorf("failed to decrypt file: %w", err)
	}
	slog.Info("file decrypted", slog.String("in", inputPath), slog.String("out", outputPath))
	return nil
}
