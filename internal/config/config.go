package config

import (
	"os"

	"github.com/go-yaml/yaml"
	"github.com/pkg/errors"
)

type Config struct {
	Database Database `yaml:"database"`
	Cache    Cache    `yaml:"cache"`
	Feed     Feed     `yaml:"feed"`
	Events   Events   `yaml:"events"`
	Trace    Trace    `yaml:"trace"`
}

type Database struct {
	PostgresDsn string `yaml:"postgresDsn"`
	SqlitePath  string `yaml:"sqlitePath"`
}

type Cache struct {
	Backend        string `yaml:"backend"` // memory, redis, memcached
	RedisAddr      string `yaml:"redisAddr"`
	RedisPassword  string `yaml:"redisPassword"`
	RedisDB        int    `yaml:"redisDB"`
	MemcachedAddr  string `yaml:"memcachedAddr"`
	TTLSeconds     int    `yaml:"ttlSeconds"`
	CleanupSeconds int    `yaml:"cleanupSeconds"`
}

type Feed struct {
	PublicLimit       int `yaml:"publicLimit"`
	PageSize          int `yaml:"pageSize"`
	RankLimit         int `yaml:"rankLimit"`
	ActiveWindowHours int `yaml:"activeWindowHours"`
}

type Events struct {
	RedisChannel string `yaml:"redisChannel"`
}

type Trace struct {
	Enable   bool   `yaml:"enable"`
	Endpoint string `yaml:"endpoint"`
}

func Load(path string) (Config, error) {

	file, err := os.Open(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "failed to open config")
	}
	defer file.Close()

	config := defaults()
	err = yaml.NewDecoder(file).Decode(&config)
	if err != nil {
		return Config{}, errors.Wrap(err, "failed to parse config")
	}

	return config, nil
}

func defaults() Config {
	return Config{
		Cache: Cache{
			Backend:        "memory",
			TTLSeconds:     300,
			CleanupSeconds: 600,
		},
		Feed: Feed{
			PublicLimit:       10,
			PageSize:          25,
			RankLimit:         20,
			ActiveWindowHours: 168,
		},
		Events: Events{
			RedisChannel: "stream.events",
		},
	}
}
