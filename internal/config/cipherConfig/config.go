package cipherConfig

import (
	"fmt"
	"github.com/ilyakaznacheev/cleanenv"
	"log/slog"
	"os"
	"time"
)

const (
	CONFIG_CIPHER_PATH = "CONFIG_CIPHER_PATH"
)

type Config struct {
	Tables    TablesConfig    `yaml:"tables"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	Log       LogConfig       `yaml:"log"`
	Transport TransportConfig `yaml:"transport"`
}

type TablesConfig struct {
	// Dir holds the table files; empty means the embedded standard tables.
	Dir          string `yaml:"dir" env:"TDES_TABLES_DIR"`
	SBoxIndexing string `yaml:"sbox_indexing" env:"TDES_SBOX_INDEXING" env-default:"lsb"`
}

type PipelineConfig struct {
	Concurrent bool          `yaml:"concurrent" env:"TDES_CONCURRENT" env-default:"true"`
	Stagger    time.Duration `yaml:"stagger" env:"TDES_STAGGER" env-default:"0s"`
	Depth      int           `yaml:"depth" env:"TDES_PIPELINE_DEPTH" env-default:"0"`
}

type LogConfig struct {
	Level string `yaml:"level" env:"TDES_LOG_LEVEL" env-default:"info"`
}

// TransportConfig picks where send and receive move sealed envelopes: nats, kafka
// or postgres. Postgres connection settings live in storageConfig.
type TransportConfig struct {
	Kind  string      `yaml:"kind" env:"TDES_TRANSPORT" env-default:"nats"`
	NATS  NATSConfig  `yaml:"nats"`
	Kafka KafkaConfig `yaml:"kafka"`
}

type NATSConfig struct {
	URL     string `yaml:"url" env:"TDES_NATS_URL" env-default:"nats://localhost:4222"`
	Subject string `yaml:"subject" env:"TDES_NATS_SUBJECT" env-default:"tdes.envelopes"`
}

type KafkaConfig struct {
	Broker  string `yaml:"broker" env:"TDES_KAFKA_BROKER" env-default:"localhost:9092"`
	Topic   string `yaml:"topic" env:"TDES_KAFKA_TOPIC" env-default:"tdes_envelopes"`
	GroupID string `yaml:"group_id" env:"TDES_KAFKA_GROUP" env-default:"tdes"`
}

// MustLoadCipherConfig reads the YAML file named by CONFIG_CIPHER_PATH, or only the
// environment when the variable is unset.
func MustLoadCipherConfig() (*Config, error) {

	slog.Debug("Loading cipher config")

	var config Config

	configPath := os.Getenv(CONFIG_CIPHER_PATH)
	if configPath == "" {
		if err := cleanenv.ReadEnv(&config); err != nil {
			return nil, fmt.Errorf("cannot load config from environment: %w", err)
		}
		return &config, nil
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s does not exist %s", CONFIG_CIPHER_PATH, configPath)
	}

	if err := cleanenv.ReadConfig(configPath, &config); err != nil {
		return nil, fmt.Errorf("cannot load config file: %w", err)
	}

	return &config, nil
}
