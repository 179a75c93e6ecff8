// Package config enables config file parsing.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"

	"github.com/superbridgeapp/superchain-token-list/common"
	"github.com/superbridgeapp/superchain-token-list/log"
	"github.com/superbridgeapp/superchain-token-list/tokenlist"
)

// EnvPrefix prefixes every environment variable that is merged into the
// config, e.g. SUPERCHAIN_CHAINS__ENDPOINTS__10=https://... .
const EnvPrefix = "SUPERCHAIN_"

// Config contains the CLI configuration.
type Config struct {
	Paths     PathsConfig     `koanf:"paths"`
	Chains    ChainsConfig    `koanf:"chains"`
	RPC       RPCConfig       `koanf:"rpc"`
	Generate  GenerateConfig  `koanf:"generate"`
	TokenList TokenListConfig `koanf:"token_list"`

	Cache   *CacheConfig   `koanf:"cache"`
	Server  *ServerConfig  `koanf:"server"`
	Log     *LogConfig     `koanf:"log"`
	Metrics *MetricsConfig `koanf:"metrics"`
}

// Validate performs config validation.
func (cfg *Config) Validate() error {
	if err := cfg.Paths.Validate(); err != nil {
		return fmt.Errorf("paths: %w", err)
	}
	if err := cfg.Chains.Validate(); err != nil {
		return fmt.Errorf("chains: %w", err)
	}
	if err := cfg.RPC.Validate(); err != nil {
		return fmt.Errorf("rpc: %w", err)
	}
	if err := cfg.Generate.Validate(); err != nil {
		return fmt.Errorf("generate: %w", err)
	}
	if err := cfg.TokenList.Validate(); err != nil {
		return fmt.Errorf("token_list: %w", err)
	}
	if cfg.Cache != nil {
		if err := cfg.Cache.Validate(); err != nil {
			return fmt.Errorf("cache: %w", err)
		}
	}
	if cfg.Server != nil {
		if err := cfg.Server.Validate(); err != nil {
			return fmt.Errorf("server: %w", err)
		}
	}
	if cfg.Log != nil {
		if err := cfg.Log.Validate(); err != nil {
			return fmt.Errorf("log: %w", err)
		}
	}
	if cfg.Metrics != nil {
		if err := cfg.Metrics.Validate(); err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
	}
	return nil
}

// applyDefaults fills in every setting left empty by the file and environment.
func (cfg *Config) applyDefaults() {
	cfg.Paths.applyDefaults()
	cfg.RPC.applyDefaults()
	cfg.Generate.applyDefaults()
	cfg.TokenList.applyDefaults()
}

// PathsConfig locates the artifacts in the repository checkout.
type PathsConfig struct {
	// TokenList is the canonical token list file.
	TokenList string `koanf:"token_list"`
	// DataDir holds one folder per token, each with a data.json.
	DataDir string `koanf:"data_dir"`
}

const (
	DefaultTokenListPath = "superchain.tokenlist.json"
	DefaultDataDir       = "data"
)

func (cfg *PathsConfig) applyDefaults() {
	if cfg.TokenList == "" {
		cfg.TokenList = DefaultTokenListPath
	}
	if cfg.DataDir == "" {
		cfg.DataDir = DefaultDataDir
	}
}

// Validate validates the paths configuration.
func (cfg *PathsConfig) Validate() error {
	if cfg.TokenList == cfg.DataDir {
		return fmt.Errorf("token_list and data_dir must differ")
	}
	return nil
}

// ChainsConfig customizes the chain registry.
type ChainsConfig struct {
	// RegistryFile is an optional TOML file merged over the built-in chains.
	RegistryFile string `koanf:"registry_file"`
	// Endpoints override the preferred RPC of a chain, keyed by chain id.
	Endpoints map[string]string `koanf:"endpoints"`
}

// Validate validates the chains configuration.
func (cfg *ChainsConfig) Validate() error {
	for key, url := range cfg.Endpoints {
		if _, err := common.ParseChainID(key); err != nil {
			return fmt.Errorf("endpoints: %w", err)
		}
		if url == "" {
			return fmt.Errorf("endpoints[%s]: empty rpc url", key)
		}
	}
	return nil
}

// RPCConfig controls how contracts are queried.
type RPCConfig struct {
	// Timeout bounds a single eth_call attempt.
	Timeout time.Duration `koanf:"timeout"`
	// MaxAttempts is the number of tries for a call that fails transiently.
	MaxAttempts uint `koanf:"max_attempts"`
	// RetryDelay is the initial backoff between attempts.
	RetryDelay time.Duration `koanf:"retry_delay"`
	// RequestsPerSecond caps calls per chain. Zero disables the limit.
	RequestsPerSecond float64 `koanf:"requests_per_second"`
	Burst             int     `koanf:"burst"`
	// If set, the endpoint's eth_chainId is not checked against the chain it
	// is configured for. NOT RECOMMENDED; a wrong endpoint silently yields
	// "not mintable" for every token.
	SkipChainIDCheck bool `koanf:"skip_chain_id_check"`
}

const (
	DefaultRPCTimeout     = 15 * time.Second
	DefaultRPCMaxAttempts = 4
	DefaultRPCRetryDelay  = 500 * time.Millisecond
	DefaultRPCBurst       = 4
)

func (cfg *RPCConfig) applyDefaults() {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultRPCTimeout
	}
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = DefaultRPCMaxAttempts
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = DefaultRPCRetryDelay
	}
	if cfg.Burst == 0 {
		cfg.Burst = DefaultRPCBurst
	}
}

// Validate validates the rpc configuration.
func (cfg *RPCConfig) Validate() error {
	if cfg.Timeout < 0 || cfg.RetryDelay < 0 {
		return fmt.Errorf("negative duration")
	}
	if cfg.RequestsPerSecond < 0 {
		return fmt.Errorf("negative requests_per_second %f", cfg.RequestsPerSecond)
	}
	if cfg.Burst < 0 {
		return fmt.Errorf("negative burst %d", cfg.Burst)
	}
	return nil
}

// GenerateConfig tunes token list generation.
type GenerateConfig struct {
	// Concurrency is the number of tokens probed in parallel.
	Concurrency int `koanf:"concurrency"`
}

const DefaultGenerateConcurrency = 4

func (cfg *GenerateConfig) applyDefaults() {
	if cfg.Concurrency == 0 {
		cfg.Concurrency = DefaultGenerateConcurrency
	}
}

// Validate validates the generate configuration.
func (cfg *GenerateConfig) Validate() error {
	if cfg.Concurrency < 1 {
		return fmt.Errorf("concurrency must be positive, got %d", cfg.Concurrency)
	}
	return nil
}

// TokenListConfig is the metadata of the generated token list.
type TokenListConfig struct {
	Name     string            `koanf:"name"`
	LogoURI  string            `koanf:"logo_uri"`
	Keywords []string          `koanf:"keywords"`
	Version  tokenlist.Version `koanf:"version"`
}

const (
	DefaultTokenListName    = "Superbridge Superchain Token List"
	DefaultTokenListLogoURI = "https://ethereum-optimism.github.io/optimism.svg"
)

// DefaultTokenListKeywords are the keywords of the published list.
var DefaultTokenListKeywords = []string{"scaling", "layer2", "infrastructure"}

func (cfg *TokenListConfig) applyDefaults() {
	if cfg.Name == "" {
		cfg.Name = DefaultTokenListName
	}
	if cfg.LogoURI == "" {
		cfg.LogoURI = DefaultTokenListLogoURI
	}
	if cfg.Keywords == nil {
		cfg.Keywords = append([]string(nil), DefaultTokenListKeywords...)
	}
	if cfg.Version == (tokenlist.Version{}) {
		cfg.Version = tokenlist.Version{Major: 1}
	}
}

// Validate validates the token list configuration.
func (cfg *TokenListConfig) Validate() error {
	if strings.TrimSpace(cfg.Name) == "" {
		return fmt.Errorf("empty name")
	}
	return nil
}

// CacheConfig holds the configuration for the on-disk contract call cache.
type CacheConfig struct {
	// CacheDir is the directory where the cache data is stored.
	CacheDir string `koanf:"cache_dir"`
}

// Validate validates the cache configuration.
func (cfg *CacheConfig) Validate() error {
	if cfg.CacheDir == "" {
		return fmt.Errorf("invalid cache filepath")
	}
	return nil
}

// ServerConfig contains the preview server configuration.
type ServerConfig struct {
	// Endpoint is the address the server listens on.
	Endpoint string `koanf:"endpoint"`
}

// DefaultServerEndpoint is used when no server section is configured.
const DefaultServerEndpoint = "127.0.0.1:8080"

// Validate validates the server configuration.
func (cfg *ServerConfig) Validate() error {
	if cfg.Endpoint == "" {
		return fmt.Errorf("malformed server endpoint '%s'", cfg.Endpoint)
	}
	return nil
}

// LogConfig contains the logging configuration.
type LogConfig struct {
	Format string `koanf:"format"`
	Level  string `koanf:"level"`
	File   string `koanf:"file"`
}

// Validate validates the logging configuration. Empty fields keep the
// defaults (JSON, INFO).
func (cfg *LogConfig) Validate() error {
	if cfg.Format != "" {
		var format log.Format
		if err := format.Set(cfg.Format); err != nil {
			return err
		}
	}
	if cfg.Level != "" {
		var level log.Level
		return level.Set(cfg.Level)
	}
	return nil
}

// MetricsConfig contains the metrics configuration.
type MetricsConfig struct {
	PullEndpoint string `koanf:"pull_endpoint"`
}

// Validate validates the metrics configuration.
func (cfg *MetricsConfig) Validate() error {
	if cfg.PullEndpoint == "" {
		return fmt.Errorf("malformed Prometheus pull endpoint '%s'", cfg.PullEndpoint)
	}
	return nil
}

// InitConfig initializes configuration from the yaml file at f, if given,
// and the SUPERCHAIN_ environment variables.
func InitConfig(f string) (*Config, error) {
	var p koanf.Provider
	if f != "" {
		p = file.Provider(f)
	}
	return initConfig(p)
}

func initConfig(p koanf.Provider) (*Config, error) {
	var config Config
	k := koanf.New(".")

	// Load configuration from the yaml config.
	if p != nil {
		if err := k.Load(p, yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// Load environment variables and merge into the loaded config.
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		// `__` is used as a hierarchy delimiter.
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
	}), nil); err != nil {
		return nil, err
	}

	// Unmarshal into config.
	if err := k.Unmarshal("", &config); err != nil {
		return nil, err
	}
	config.applyDefaults()

	// Validate config.
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}
