package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	keyPort           = "port"
	keyDatabaseURI    = "database_uri"
	keyDatabaseName   = "database_name"
	keyCollection     = "collection"
	keyStore          = "store"
	keySQLitePath     = "sqlite_path"
	keyLocalClient    = "local_client"
	keyClient         = "client"
	keyRequestTimeout = "request_timeout"
)

// Store backends.
const (
	StoreMongo  = "mongo"
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

var (
	ErrPortEmpty    = errors.New("port must not be empty")
	ErrStoreUnknown = errors.New("unknown store backend")
)

type Config struct {
	Port           string
	DatabaseURI    string
	DatabaseName   string
	Collection     string
	Store          string
	SQLitePath     string
	LocalClient    string
	Client         string
	RequestTimeout time.Duration
}

// Load reads .env, then the optional config file, then the environment.
// An empty configFile means taskly.yaml in the working directory, if present.
func Load(configFile string) (Config, error) {
	godotenv.Load()

	v := viper.New()
	v.SetDefault(keyPort, "3000")
	v.SetDefault(keyDatabaseURI, "mongodb://localhost:27017")
	v.SetDefault(keyDatabaseName, "tasklyDB")
	v.SetDefault(keyCollection, "tasks")
	v.SetDefault(keyStore, StoreMongo)
	v.SetDefault(keySQLitePath, "taskly.db")
	v.SetDefault(keyLocalClient, "")
	v.SetDefault(keyClient, "")
	v.SetDefault(keyRequestTimeout, 5*time.Second)
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("taskly")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := Config{
		Port:           v.GetString(keyPort),
		DatabaseURI:    v.GetString(keyDatabaseURI),
		DatabaseName:   v.GetString(keyDatabaseName),
		Collection:     v.GetString(keyCollection),
		Store:          v.GetString(keyStore),
		SQLitePath:     v.GetString(keySQLitePath),
		LocalClient:    v.GetString(keyLocalClient),
		Client:         v.GetString(keyClient),
		RequestTimeout: v.GetDuration(keyRequestTimeout),
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.Port == "" {
		return ErrPortEmpty
	}
	switch c.Store {
	case StoreMongo, StoreSQLite, StoreMemory:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrStoreUnknown, c.Store)
}

// AllowedOrigins returns the configured client origins, skipping unset ones.
func (c Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range []string{c.LocalClient, c.Client} {
		if o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
