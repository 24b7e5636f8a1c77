package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/jonafarm/market/api"
	"github.com/jonafarm/market/chain"
	"github.com/jonafarm/market/config"
	"github.com/jonafarm/market/db"
	"github.com/jonafarm/market/jsonrpc"
	"github.com/jonafarm/market/ratelimit"
	"github.com/jonafarm/market/service"
	"github.com/jonafarm/market/session"
	"github.com/jonafarm/market/store"
	"github.com/jonafarm/market/types"
)

// Data files kept under the data directory
const (
	productsFile     = "products.json"
	farmersFile      = "farmers.json"
	adminsFile       = "admins.json"
	distributorsFile = "distributors.json"
	usersFile        = "users.json"
	ordersFile       = "orders.json"
)

// seedFiles are created empty by `market init`.
var seedFiles = []string{productsFile, farmersFile, adminsFile, distributorsFile, usersFile, ordersFile}

// openChainStore returns the chain store selected by cfg.Chain.Backend.
func openChainStore(cfg *config.MarketConfig) (chain.Store, error) {
	switch cfg.Chain.Backend {
	case config.ChainBackendFile:
		return chain.NewFileStore(cfg.Chain.File), nil

	case config.ChainBackendLevelDB:
		provider, err := db.CreateDBProvider(db.LevelDB, db.DBOptions{Directory: cfg.Chain.LevelDBPath})
		if err != nil {
			return nil, fmt.Errorf("open leveldb chain store: %w", err)
		}
		return newProviderStore(provider, cfg.Chain.LevelDBPath)

	case config.ChainBackendRedis:
		provider, err := db.CreateDBProvider(db.Redis, db.DBOptions{RedisAddress: cfg.Chain.RedisAddr, RedisDB: cfg.Chain.RedisDB})
		if err != nil {
			return nil, fmt.Errorf("open redis chain store: %w", err)
		}
		return newProviderStore(provider, cfg.Chain.RedisAddr)

	default:
		return nil, fmt.Errorf("unsupported chain backend %q", cfg.Chain.Backend)
	}
}

func newProviderStore(provider db.DatabaseProvider, source string) (chain.Store, error) {
	s, err := chain.NewProviderStore(provider, source)
	if err != nil {
		return nil, err
	}
	return s, nil
}

type application struct {
	api      *api.MarketAPI
	builder  *chain.Builder
	store    chain.Store
	limiter  *ratelimit.RateLimiter
	sessions *session.Manager
}

func (a *application) Close() error {
	a.limiter.Stop()
	return a.store.Close()
}

// buildApplication wires stores, services and the HTTP API.
func buildApplication(cfg *config.MarketConfig, rl *config.RateLimitConfig, upload *config.UploadConfig) (*application, error) {
	trusted, err := ratelimit.ParseTrustedProxies(rl.TrustedProxies)
	if err != nil {
		return nil, fmt.Errorf("ratelimit: %w", err)
	}
	chainStore, err := openChainStore(cfg)
	if err != nil {
		return nil, err
	}
	builder := chain.NewBuilder(chainStore)

	dataFile := func(name string) string { return filepath.Join(cfg.Data.Dir, name) }
	products := service.NewProductService(store.NewJSONFile[types.Product](dataFile(productsFile)), builder)
	accounts := service.NewAccountService(
		store.NewJSONFile[types.Account](dataFile(farmersFile)),
		store.NewJSONFile[types.Account](dataFile(adminsFile)),
		store.NewJSONFile[types.Account](dataFile(distributorsFile)),
		store.NewJSONFile[types.User](dataFile(usersFile)),
	)
	orders := service.NewOrderService(store.NewJSONFile[types.Order](dataFile(ordersFile)))
	chainSvc := service.NewChainService(builder)

	limiter := ratelimit.NewRateLimiter(&ratelimit.RateLimiterConfig{
		MaxRequests:    rl.MaxRequests,
		WindowSize:     time.Duration(rl.WindowSeconds) * time.Second,
		TrustedProxies: trusted,
	})
	sessions := session.NewManager(cfg.Session.CookieName, time.Duration(cfg.Session.TTLMinutes)*time.Minute)

	opts := api.Options{
		PublicDir:      cfg.Server.PublicDir,
		MaxBodyBytes:   upload.MaxBodyBytes,
		EnforceRoles:   cfg.Session.EnforceRoles,
		MetricsEnabled: cfg.Server.MetricsEnabled,
	}
	if cfg.Server.RPCEnabled {
		rpc := jsonrpc.NewServer(chainSvc)
		if cors, ok := jsonrpc.CORSFromEnv(); ok {
			rpc.SetCORSConfig(cors)
		}
		opts.RPC = rpc.Handler()
	}

	marketAPI := api.NewMarketAPI(api.Deps{
		Products:     products,
		Accounts:     accounts,
		Orders:       orders,
		Chain:        chainSvc,
		Sessions:     sessions,
		LoginLimiter: limiter,
	}, opts)

	return &application{
		api:      marketAPI,
		builder:  builder,
		store:    chainStore,
		limiter:  limiter,
		sessions: sessions,
	}, nil
}
