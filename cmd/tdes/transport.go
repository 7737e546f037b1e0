package main

import (
	"TripleDES/algorithm/des"
	"TripleDES/internal/config/cipherConfig"
	"TripleDES/internal/config/storageConfig"
	myErrors "TripleDES/internal/errors"
	"TripleDES/internal/infrastructure/kafka"
	natsjs "TripleDES/internal/infrastructure/nats"
	"TripleDES/internal/infrastructure/postgres"
	"TripleDES/internal/repository"
	"TripleDES/internal/service"
	"context"
	"fmt"
	"log/slog"
	"os"
)

func newTransport(cfg cipherConfig.TransportConfig) (service.Transport, error) {
	switch cfg.Kind {
	case "nats":
		return natsjs.NewJSClient(cfg.NATS.URL, cfg.NATS.Subject)
	case "kafka":
		return kafka.NewKafkaClient(cfg.Kafka.Broker, cfg.Kafka.Topic, cfg.Kafka.GroupID), nil
	case "postgres":
		dbConfig, err := storageConfig.MustLoadStorageConfig()
		if err != nil {
			return nil, err
		}
		db, err := postgres.NewStorage(dbConfig)
		if err != nil {
			return nil, fmt.Errorf("cannot connect to database: %w", err)
		}
		if err := postgres.Migrate(db); err != nil {
			db.Close()
			return nil, err
		}
		return &dbTransport{Transport: service.NewRepositoryTransport(repository.NewRepository(db)), close: db.Close}, nil
	default:
		return nil, fmt.Errorf("%w: %q", myErrors.ErrUnknownTransport, cfg.Kind)
	}
}

// dbTransport closes the database pool along with the transport.
type dbTransport struct {
	service.Transport
	close func() error
}

func (d *dbTransport) Close() error {
	return d.close()
}

func runSend(ctx context.Context, cipher *des.Cipher, config *cipherConfig.Config) error {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("cannot read input file: %w", err)
	}
	key, err := parseKey(true)
	if err != nil {
		return err
	}
	t, err := newTripleDES(cipher, key, config)
	if err != nil {
		return err
	}

	transport, err := newTransport(config.Transport)
	if err != nil {
		return err
	}
	defer transport.Close()

	id, err := service.NewService(transport).Send(ctx, t, data, config.Pipeline.Concurrent)
	if err != nil {
		return err
	}
	fmt.Printf("envelope id: %s\n", id)
	slog.Info("envelope sent", slog.String("transport", config.Transport.Kind), slog.String("envelope_id", id))
	return nil
}

func runReceive(ctx context.Context, cipher *des.Cipher, config *cipherConfig.Config) error {
	key, err := parseKey(false)
	if err != nil {
		return err
	}
	t, err := newTripleDES(cipher, key, config)
	if err != nil {
		return err
	}

	transport, err := newTransport(config.Transport)
	if err != nil {
		return err
	}
	defer transport.Close()

	data, err := service.NewService(transport).Receive(ctx, t, envelopeID, config.Pipeline.Concurrent)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return fmt.Errorf("cannot write output file: %w", err)
	}
	slog.Info("envelope received", slog.String("transport", config.Transport.Kind), slog.String("out", outputPath))
	return nil
}
