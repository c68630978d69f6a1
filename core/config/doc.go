// Package config provides configuration management for the food index service.
//
// It utilizes Viper for loading configuration from environment variables
// and an optional .env file. Defaults come from the `default` struct tags of each
// section and every key is reachable as SECTION_KEY in the environment.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Server: HTTP port, admin API key, replica id, search limits
//   - Database: MySQL (or sqlite) connection details
//   - Storage: MinIO credentials and thumbnail location
//   - Log: Logging level and format
//   - Cache: batch cache backend and TTLs
//   - PubSub: invalidation transport (memory or NATS)
//   - Index: worker mode and call timeouts
//   - Reconcile: pending-rebuild drain interval
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Index.Mode)
package config
