package config

import (
	"reflect"
	"strings"

	"food-index/core/cache"
	"food-index/core/database"
	"food-index/core/logger"
	"food-index/core/pubsub"
	"food-index/core/server"
	"food-index/core/storage"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Server holds configuration for the HTTP server.
	Server server.Config `mapstructure:"server"`
	// Storage holds configuration for the object storage holding food thumbnails.
	Storage storage.Config `mapstructure:"storage"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Database holds configuration for the database connection.
	Database database.Config `mapstructure:"database"`
	// Cache holds configuration for the shared batch cache.
	Cache cache.Config `mapstructure:"cache"`
	// PubSub holds configuration for the invalidation transport.
	PubSub pubsub.Config `mapstructure:"pubsub"`
	// Index holds configuration for the search index gateway and worker.
	Index IndexConfig `mapstructure:"index"`
	// Reconcile holds configuration for the periodic pending-rebuild drain.
	Reconcile ReconcileConfig `mapstructure:"reconcile"`
}

// IndexConfig holds configuration for the search index.
type IndexConfig struct {
	// Mode selects where the worker runs: "inprocess" (goroutine) or "process" (child process).
	Mode string `mapstructure:"mode" default:"inprocess"`
	// CallTimeoutSeconds bounds a single search call.
	CallTimeoutSeconds int `mapstructure:"call_timeout_seconds" default:"10"`
	// RebuildTimeoutSeconds bounds a rebuild call and the start-up build.
	RebuildTimeoutSeconds int `mapstructure:"rebuild_timeout_seconds" default:"300"`
	// WorkerBinary overrides the executable started in process mode. Defaults to the running binary.
	WorkerBinary string `mapstructure:"worker_binary" default:""`
}

// ReconcileConfig holds configuration for the reconciliation job.
type ReconcileConfig struct {
	// IntervalSeconds is the period of the drain loop. Zero disables the loop.
	IntervalSeconds int `mapstructure:"interval_seconds" default:"60"`
}

// LoadConfig loads configuration from environment variables and .env file.
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env file if it exists
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}

	// Ignore error if file doesn't exist (e.g. production)
	_ = godotenv.Overload(envPath)

	v := viper.New()

	// Recursively parse struct tags to set default values
	bindValues(v, Config{}, "")

	// Map environment variables to nested keys (e.g. INDEX_MODE -> index.mode)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")

		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		defaultValue := field.Tag.Get("default")
		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, defaultValue)
	}
}
