package config

// ServerConfig configures the HTTP surface
type ServerConfig struct {
	ListenAddr     string `yaml:"listen_addr"`
	PublicDir      string `yaml:"public_dir"`
	MetricsEnabled bool   `yaml:"metrics_enabled"`
	RPCEnabled     bool   `yaml:"rpc_enabled"`
}

// DataConfig locates the JSON data files
type DataConfig struct {
	Dir string `yaml:"dir"`
}

// ChainConfig selects and locates the audit chain backend
type ChainConfig struct {
	Backend       string `yaml:"backend"` // file, leveldb or redis
	File          string `yaml:"file"`
	LevelDBPath   string `yaml:"leveldb_path"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisDB       int    `yaml:"redis_db"`
	VerifyOnStart bool   `yaml:"verify_on_start"`
}

// SessionConfig configures login sessions
type SessionConfig struct {
	CookieName   string `yaml:"cookie_name"`
	TTLMinutes   int    `yaml:"ttl_minutes"`
	EnforceRoles bool   `yaml:"enforce_roles"`
}

// MarketConfig holds the configuration from market.yml
type MarketConfig struct {
	Server  ServerConfig  `yaml:"server"`
	Data    DataConfig    `yaml:"data"`
	Chain   ChainConfig   `yaml:"chain"`
	Session SessionConfig `yaml:"session"`
}

// ConfigFile is the top-level structure for market.yml
type ConfigFile struct {
	Config MarketConfig `yaml:"config"`
}
