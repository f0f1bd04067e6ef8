package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ErrConfigFileNotFound is returned by Load when no config.yaml exists. The
// loaded configuration is still usable: defaults plus environment.
var ErrConfigFileNotFound = errors.New("config file not found, using defaults and environment variables")

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Ethereum  EthereumConfig  `mapstructure:"ethereum"`
	Etherscan EtherscanConfig `mapstructure:"etherscan"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	MetricsPort     int           `mapstructure:"metrics_port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type MetricsConfig struct {
	Enabled        bool `mapstructure:"enabled"`
	EnableLatency  bool `mapstructure:"enable_latency"`
	EnableUpstream bool `mapstructure:"enable_upstream"`
}

type EthereumConfig struct {
	RPCURL      string        `mapstructure:"rpc_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
	ENSRegistry string        `mapstructure:"ens_registry"`
	MaxFailures uint32        `mapstructure:"max_failures"`
	OpenTimeout time.Duration `mapstructure:"open_timeout"`
}

type EtherscanConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	APIKey      string        `mapstructure:"api_key"`
	ChainID     string        `mapstructure:"chain_id"`
	Timeout     time.Duration `mapstructure:"timeout"`
	PageSize    int           `mapstructure:"page_size"`
	MaxPages    int           `mapstructure:"max_pages"`
	MaxFailures uint32        `mapstructure:"max_failures"`
	OpenTimeout time.Duration `mapstructure:"open_timeout"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	TLS      bool   `mapstructure:"tls"`
}

type CacheConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	FactsTTL time.Duration `mapstructure:"facts_ttl"`
	ENSTTL   time.Duration `mapstructure:"ens_ttl"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

var globalConfig Config

// Load reads config.yaml from configPath, ./config or the working directory
// and overlays environment variables (server.port -> SERVER_PORT).
func Load(configPath string) error {
	v := viper.New()
	setDefaultValues(v)

	fileErr := loadConfigFile(v, configPath, "config")
	if fileErr != nil && !errors.Is(fileErr, ErrConfigFileNotFound) {
		return fileErr
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	globalConfig = cfg
	return fileErr
}

func loadConfigFile(v *viper.Viper, configPath, fileName string) error {
	v.SetConfigName(fileName)
	v.SetConfigType("yaml")
	if configPath != "" {
		v.AddConfigPath(configPath)
	}
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			return ErrConfigFileNotFound
		}
		return fmt.Errorf("error reading config file %s.yaml: %w", fileName, err)
	}
	return nil
}

// setDefaultValues registers every key so AutomaticEnv can override keys
// that are absent from the file.
func setDefaultValues(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.metrics_port", 9090)
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.enable_latency", true)
	v.SetDefault("metrics.enable_upstream", true)

	v.SetDefault("ethereum.rpc_url", "")
	v.SetDefault("ethereum.timeout", 10*time.Second)
	v.SetDefault("ethereum.ens_registry", "")
	v.SetDefault("ethereum.max_failures", 5)
	v.SetDefault("ethereum.open_timeout", 30*time.Second)

	v.SetDefault("etherscan.base_url", "https://api.etherscan.io/v2/api")
	v.SetDefault("etherscan.api_key", "")
	v.SetDefault("etherscan.chain_id", "1")
	v.SetDefault("etherscan.timeout", 10*time.Second)
	v.SetDefault("etherscan.page_size", 100)
	v.SetDefault("etherscan.max_pages", 5)
	v.SetDefault("etherscan.max_failures", 5)
	v.SetDefault("etherscan.open_timeout", 30*time.Second)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.tls", false)

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.facts_ttl", 5*time.Minute)
	v.SetDefault("cache.ens_ttl", time.Hour)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
}

func GetConfig() *Config {
	return &globalConfig
}

// Validate reports settings that make the service unable to resolve facts.
func (c *Config) Validate() error {
	if c.Ethereum.RPCURL == "" {
		return errors.New("ethereum.rpc_url (ETHEREUM_RPC_URL) is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d", c.Server.Port)
	}
	if c.Metrics.Enabled && c.Server.MetricsPort == c.Server.Port {
		return errors.New("server.metrics_port must differ from server.port")
	}
	return nil
}
