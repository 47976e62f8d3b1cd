package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validYAML = `
GRPC_PORT: 50051
HTTP_PORT: 8080
DB_HOST: db
DB_PORT: 5432
DB_USER: fleet
DB_PASSWORD: from-file
DB_NAME: fleet
KAFKA_BROKERS: ["kafka:9092"]
TOPIC: fleet-events
JWT_SECRET: file-secret
`

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(validYAML))
	require.NoError(t, err)

	assert.Equal(t, 50051, cfg.GRPCPort)
	assert.Equal(t, []string{"kafka:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "fleet-audit", cfg.GroupID())
	assert.Empty(t, cfg.TrustedProxies)

	dbCfg := cfg.Database()
	assert.Equal(t, "disable", dbCfg.SSLMode, "sslmode defaults to disable")
	assert.Equal(t, "from-file", dbCfg.Password)
}

func TestParseEnvOverrides(t *testing.T) {
	t.Setenv("DB_PASSWORD", "from-env")
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("RATE_LIMIT_RPS", "7")

	cfg, err := Parse([]byte(validYAML))
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.DBPassword)
	assert.Equal(t, "env-secret", cfg.JWTSecret)
	assert.Equal(t, 7, cfg.RateLimitRPS)
}

func TestParseValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"missing topic", "GRPC_PORT: 1\nHTTP_PORT: 2\nDB_HOST: h\nDB_NAME: n\nDB_USER: u\nKAFKA_BROKERS: [k]\nJWT_SECRET: s\n", "TOPIC is required"},
		{"same ports", "GRPC_PORT: 1\nHTTP_PORT: 1\nDB_HOST: h\nDB_NAME: n\nDB_USER: u\nKAFKA_BROKERS: [k]\nTOPIC: t\nJWT_SECRET: s\n", "must differ"},
		{"redis without limit", "GRPC_PORT: 1\nHTTP_PORT: 2\nDB_HOST: h\nDB_NAME: n\nDB_USER: u\nKAFKA_BROKERS: [k]\nTOPIC: t\nJWT_SECRET: s\nREDIS_ADDR: r:6379\n", "RATE_LIMIT_RPS"},
		{"bad trusted proxy", "GRPC_PORT: 1\nHTTP_PORT: 2\nDB_HOST: h\nDB_NAME: n\nDB_USER: u\nKAFKA_BROKERS: [k]\nTOPIC: t\nJWT_SECRET: s\nTRUSTED_PROXIES: [10.0.0.1]\n", "TRUSTED_PROXIES"},
		{"empty", "", "KAFKA_BROKERS is required"},
		{"malformed", "GRPC_PORT: [", "failed to parse config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET", "")
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadUsesPathEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fleet.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validYAML), 0o600))
	t.Setenv(PathEnv, path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "db", cfg.DBHost)

	t.Setenv(PathEnv, filepath.Join(t.TempDir(), "missing.yaml"))
	_, err = Load()
	assert.Error(t, err)
}

func TestShippedConfigIsValid(t *testing.T) {
	_, err := LoadFile("config.yaml")
	assert.NoError(t, err)
}
