package config

const (
	DefaultConfigPath = "config/market.yml"
	DefaultINIPath    = "config/config.ini"

	DefaultListenAddr = ":3000"
	DefaultPublicDir  = "public"
	DefaultDataDir    = "data"

	ChainBackendFile    = "file"
	ChainBackendLevelDB = "leveldb"
	ChainBackendRedis   = "redis"

	DefaultChainFile   = "productBlockchain.json"
	DefaultLevelDBPath = "data/chaindb"
	DefaultRedisAddr   = "localhost:6379"

	DefaultCookieName = "market.sid"
	DefaultTTLMinutes = 24 * 60

	DefaultRateLimitMaxRequests   = 10
	DefaultRateLimitWindowSeconds = 60
	DefaultMaxBodyBytes           = 10 << 20 // 10 MiB request body cap
)
