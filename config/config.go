package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jonafarm/market/logx"
	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

// Default returns the configuration used when no market.yml exists.
func Default() *MarketConfig {
	cfg := &MarketConfig{}
	cfg.Server.MetricsEnabled = true
	cfg.Server.RPCEnabled = true
	cfg.Session.EnforceRoles = true
	cfg.applyDefaults()
	return cfg
}

func (c *MarketConfig) applyDefaults() {
	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = DefaultListenAddr
	}
	if c.Server.PublicDir == "" {
		c.Server.PublicDir = DefaultPublicDir
	}
	if c.Data.Dir == "" {
		c.Data.Dir = DefaultDataDir
	}
	if c.Chain.Backend == "" {
		c.Chain.Backend = ChainBackendFile
	}
	if c.Chain.File == "" {
		c.Chain.File = filepath.Join(c.Data.Dir, DefaultChainFile)
	}
	if c.Chain.LevelDBPath == "" {
		c.Chain.LevelDBPath = DefaultLevelDBPath
	}
	if c.Chain.RedisAddr == "" {
		c.Chain.RedisAddr = DefaultRedisAddr
	}
	if c.Session.CookieName == "" {
		c.Session.CookieName = DefaultCookieName
	}
	if c.Session.TTLMinutes <= 0 {
		c.Session.TTLMinutes = DefaultTTLMinutes
	}
}

// Validate rejects configurations the server cannot start with.
func (c *MarketConfig) Validate() error {
	switch c.Chain.Backend {
	case ChainBackendFile, ChainBackendLevelDB, ChainBackendRedis:
	default:
		return fmt.Errorf("unsupported chain backend %q", c.Chain.Backend)
	}
	if c.Chain.RedisDB < 0 {
		return fmt.Errorf("redis_db must not be negative")
	}
	return nil
}

// LoadMarketConfig reads and parses market.yml
func LoadMarketConfig(path string) (*MarketConfig, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var cfgFile ConfigFile
	cfgFile.Config.Server.MetricsEnabled = true
	cfgFile.Config.Server.RPCEnabled = true
	cfgFile.Config.Session.EnforceRoles = true
	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(&cfgFile); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	cfg := &cfgFile.Config
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	logx.Info("CONFIG", fmt.Sprintf("Loaded %s | listen=%s | data=%s | chain=%s", path, cfg.Server.ListenAddr, cfg.Data.Dir, cfg.Chain.Backend))
	return cfg, nil
}

// LoadMarketConfigOrDefault falls back to Default when path does not exist.
func LoadMarketConfigOrDefault(path string) (*MarketConfig, error) {
	cfg, err := LoadMarketConfig(path)
	if err != nil {
		if os.IsNotExist(err) {
			logx.Warn("CONFIG", fmt.Sprintf("%s not found, using defaults", path))
			return Default(), nil
		}
		return nil, err
	}
	return cfg, nil
}

// WriteMarketConfig stores cfg as market.yml
func WriteMarketConfig(path string, cfg *MarketConfig) error {
	data, err := yaml.Marshal(ConfigFile{Config: *cfg})
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

type RateLimitConfig struct {
	MaxRequests   int `ini:"max_requests"`
	WindowSeconds int `ini:"window_seconds"`
	// IPs or CIDR ranges of reverse proxies allowed to set X-Forwarded-For.
	TrustedProxies []string `ini:"trusted_proxies" delim:","`
}

type UploadConfig struct {
	MaxBodyBytes int64 `ini:"max_body_bytes"`
}

// LoadRateLimitConfig reads the [ratelimit] section of an .ini file. A
// missing file yields the defaults.
func LoadRateLimitConfig(path string) (*RateLimitConfig, error) {
	rlCfg := &RateLimitConfig{
		MaxRequests:   DefaultRateLimitMaxRequests,
		WindowSeconds: DefaultRateLimitWindowSeconds,
	}
	cfg, err := loadINI(path)
	if err != nil || cfg == nil {
		return rlCfg, err
	}
	if err := cfg.Section("ratelimit").MapTo(rlCfg); err != nil {
		return nil, err
	}
	if rlCfg.MaxRequests <= 0 || rlCfg.WindowSeconds <= 0 {
		return nil, fmt.Errorf("ratelimit values must be positive")
	}
	return rlCfg, nil
}

// LoadUploadConfig reads the [upload] section of an .ini file.
func LoadUploadConfig(path string) (*UploadConfig, error) {
	upCfg := &UploadConfig{MaxBodyBytes: DefaultMaxBodyBytes}
	cfg, err := loadINI(path)
	if err != nil || cfg == nil {
		return upCfg, err
	}
	if err := cfg.Section("upload").MapTo(upCfg); err != nil {
		return nil, err
	}
	if upCfg.MaxBodyBytes <= 0 {
		upCfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	return upCfg, nil
}

func loadINI(path string) (*ini.File, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}
	return ini.Load(path)
}

// DefaultINI is written by `market init`.
const DefaultINI = `[ratelimit]
max_requests = 10
window_seconds = 60
; comma separated IPs or CIDRs; empty means X-Forwarded-For is ignored
trusted_proxies =

[upload]
max_body_bytes = 10485760
`
