package db

import "fmt"

type DBVendor string

const (
	LevelDB DBVendor = "leveldb"
	Redis   DBVendor = "redis"
)

type DBOptions struct {
	Directory    string
	RedisAddress string
	RedisDB      int
}

// CreateDBProvider opens the provider for vendor.
func CreateDBProvider(vendor DBVendor, options DBOptions) (DatabaseProvider, error) {
	switch vendor {
	case LevelDB:
		p, err := NewLevelDBProvider(options.Directory)
		if err != nil {
			return nil, err
		}
		return p, nil

	case Redis:
		p, err := NewRedisProvider(options.RedisAddress, options.RedisDB)
		if err != nil {
			return nil, err
		}
		return p, nil

	default:
		return nil, fmt.Errorf("unsupported db provider: %s", vendor)
	}
}
