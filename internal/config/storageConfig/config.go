package storageConfig

import (
	"fmt"
	"github.com/ilyakaznacheev/cleanenv"
	"net"
	"net/url"
	"os"
)

const (
	CONFIG_STORAGE_PATH = "CONFIG_STORAGE_PATH"
)

type Config struct {
	Host     string `yaml:"host" env:"TDES_DB_HOST" env-default:"localhost"`
	Port     string `yaml:"port" env:"TDES_DB_PORT" env-default:"5432"`
	Username string `yaml:"username" env:"TDES_DB_USER" env-default:"postgres"`
	Password string `yaml:"password" env:"TDES_DB_PASSWORD"`
	DBName   string `yaml:"db_name" env:"TDES_DB_NAME" env-default:"tdes"`
	SSLMode  string `yaml:"ssl_mode" env:"TDES_DB_SSLMODE" env-default:"disable"`
}

// DSN is the connection URL for the pgx driver.
func (c *Config) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Username, c.Password),
		Host:     net.JoinHostPort(c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: url.Values{"sslmode": []string{c.SSLMode}}.Encode(),
	}
	return u.String()
}

// MustLoadStorageConfig reads the YAML file named by CONFIG_STORAGE_PATH, or only the
// environment when the variable is unset.
func MustLoadStorageConfig() (*Config, error) {

	var config Config

	configPath := os.Getenv(CONFIG_STORAGE_PATH)
	if configPath == "" {
		if err := cleanenv.ReadEnv(&config); err != nil {
			return nil, fmt.Errorf("cannot load database config from environment: %w", err)
		}
		return &config, nil
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s does not exist %s", CONFIG_STORAGE_PATH, configPath)
	}

	if err := cleanenv.ReadConfig(configPath, &config); err != nil {
		return nil, fmt.Errorf("cannot load database config file: %w", err)
	}

	return &config, nil
}
