package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("ETHEREUM_RPC_URL", "https://rpc.example")

	err := Load(filepath.Join(dir, "missing"))
	assert.ErrorIs(t, err, ErrConfigFileNotFound)

	cfg := GetConfig()
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 9090, cfg.Server.MetricsPort)
	assert.Equal(t, "https://rpc.example", cfg.Ethereum.RPCURL)
	assert.Equal(t, 10*time.Second, cfg.Ethereum.Timeout)
	assert.Equal(t, "1", cfg.Etherscan.ChainID)
	assert.Equal(t, 5*time.Minute, cfg.Cache.FactsTTL)
	assert.False(t, cfg.Redis.Enabled)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	yaml := `
server:
  port: 8181
  metrics_port: 9191
ethereum:
  rpc_url: https://file.example
  timeout: 3s
etherscan:
  api_key: from-file
redis:
  enabled: true
  host: redis
cache:
  facts_ttl: 1m
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0600))
	t.Setenv("ETHERSCAN_API_KEY", "from-env")

	require.NoError(t, Load(dir))

	cfg := GetConfig()
	assert.Equal(t, 8181, cfg.Server.Port)
	assert.Equal(t, 9191, cfg.Server.MetricsPort)
	assert.Equal(t, "https://file.example", cfg.Ethereum.RPCURL)
	assert.Equal(t, 3*time.Second, cfg.Ethereum.Timeout)
	assert.Equal(t, "from-env", cfg.Etherscan.APIKey)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "redis", cfg.Redis.Host)
	assert.Equal(t, 6379, cfg.Redis.Port)
	assert.Equal(t, time.Minute, cfg.Cache.FactsTTL)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name: "valid",
			cfg: Config{
				Server:   ServerConfig{Port: 8080, MetricsPort: 9090},
				Ethereum: EthereumConfig{RPCURL: "http://localhost:8545"},
			},
		},
		{
			name:    "missing rpc",
			cfg:     Config{Server: ServerConfig{Port: 8080}},
			wantErr: "rpc_url",
		},
		{
			name: "bad port",
			cfg: Config{
				Server:   ServerConfig{Port: 0},
				Ethereum: EthereumConfig{RPCURL: "http://localhost:8545"},
			},
			wantErr: "server.port",
		},
		{
			name: "port clash",
			cfg: Config{
				Server:   ServerConfig{Port: 8080, MetricsPort: 8080},
				Metrics:  MetricsConfig{Enabled: true},
				Ethereum: EthereumConfig{RPCURL: "http://localhost:8545"},
			},
			wantErr: "metrics_port",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir, Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatalf("restore working directory: %v", err)
		}
	})
}
