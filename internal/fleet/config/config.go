// Package config loads the fleet service settings from YAML with a few
// environment overrides for secrets.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gartstein/fleet/internal/fleet/db"
	"gopkg.in/yaml.v3"
)

// PathEnv names the variable overriding the config file location.
const PathEnv = "FLEET_CONFIG"

// DefaultPath is used when PathEnv is unset.
var DefaultPath = filepath.Join("internal", "fleet", "config", "config.yaml")

// Config struct for YAML configuration
type Config struct {
	GRPCPort      int      `yaml:"GRPC_PORT"`
	HTTPPort      int      `yaml:"HTTP_PORT"`
	DBHost        string   `yaml:"DB_HOST"`
	DBPort        int      `yaml:"DB_PORT"`
	DBUser        string   `yaml:"DB_USER"`
	DBPassword    string   `yaml:"DB_PASSWORD"`
	DBName        string   `yaml:"DB_NAME"`
	DBSSLMode     string   `yaml:"DB_SSLMODE"`
	KafkaBrokers  []string `yaml:"KAFKA_BROKERS"`
	KafkaGroupID  string   `yaml:"KAFKA_GROUP_ID"`
	Topic         string   `yaml:"TOPIC"`
	JWTSecret     string   `yaml:"JWT_SECRET"`
	RedisAddr     string   `yaml:"REDIS_ADDR"`
	RedisPassword string   `yaml:"REDIS_PASSWORD"`
	RedisDB       int      `yaml:"REDIS_DB"`
	RateLimitRPS  int      `yaml:"RATE_LIMIT_RPS"`
	// TrustedProxies lists the CIDRs whose X-Real-IP header the rate limiter honours.
	TrustedProxies []string `yaml:"TRUSTED_PROXIES"`
}

// Load reads the file named by FLEET_CONFIG, or DefaultPath, and applies
// environment overrides.
func Load() (*Config, error) {
	path := os.Getenv(PathEnv)
	if path == "" {
		path = DefaultPath
	}
	return LoadFile(path)
}

// LoadFile reads and validates the config at path.
func LoadFile(path string) (*Config, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return Parse(file)
}

// Parse decodes YAML, applies environment overrides and validates the result.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		c.DBPassword = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.JWTSecret = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.RedisPassword = v
	}
	if v := os.Getenv("DB_HOST"); v != "" {
		c.DBHost = v
	}
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("RATE_LIMIT_RPS must be an integer: %w", err)
		}
		c.RateLimitRPS = n
	}
	return nil
}

// Validate reports every missing or out-of-range setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.GRPCPort <= 0 || c.GRPCPort > 65535 {
		errs = append(errs, fmt.Errorf("GRPC_PORT %d is out of range", c.GRPCPort))
	}
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		errs = append(errs, fmt.Errorf("HTTP_PORT %d is out of range", c.HTTPPort))
	}
	if c.GRPCPort == c.HTTPPort {
		errs = append(errs, errors.New("GRPC_PORT and HTTP_PORT must differ"))
	}
	if c.DBHost == "" || c.DBName == "" || c.DBUser == "" {
		errs = append(errs, errors.New("DB_HOST, DB_NAME and DB_USER are required"))
	}
	if len(c.KafkaBrokers) == 0 {
		errs = append(errs, errors.New("KAFKA_BROKERS is required"))
	}
	if c.Topic == "" {
		errs = append(errs, errors.New("TOPIC is required"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.RedisAddr != "" && c.RateLimitRPS <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_RPS must be positive when REDIS_ADDR is set"))
	}
	for _, cidr := range c.TrustedProxies {
		if _, _, err := net.ParseCIDR(cidr); err != nil {
			errs = append(errs, fmt.Errorf("TRUSTED_PROXIES entry %q is not a CIDR", cidr))
		}
	}
	return errors.Join(errs...)
}

// Database returns the repository connection settings.
func (c *Config) Database() *db.Config {
	sslMode := c.DBSSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return &db.Config{
		Host:     c.DBHost,
		Port:     c.DBPort,
		User:     c.DBUser,
		Password: c.DBPassword,
		DBName:   c.DBName,
		SSLMode:  sslMode,
	}
}

// GroupID returns the consumer group of the audit consumer.
func (c *Config) GroupID() string {
	if c.KafkaGroupID == "" {
		return "fleet-audit"
	}
	return c.KafkaGroupID
}
