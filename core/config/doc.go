// Package config provides configuration management for inventory-sync.
//
// It uses Viper to read environment variables, optionally seeded from a .env
// file by godotenv. Defaults come from `default` struct tags, registered by
// walking the Config struct with reflection, which also makes every key
// visible to AutomaticEnv.
//
// # Configuration Structure
//
// The Config struct is divided into subsections:
//   - Server: HTTP port, API key, body limit, view cache TTL
//   - Database: MySQL or SQLite connection for the sql backend
//   - Storage: S3/MinIO credentials and bucket for the object backend
//   - Log: Logging level and format
//   - Sync: key field, backend, sheet name, schema policy, write pacing, header style
//
// Environment variables map to nested keys by replacing dots with
// underscores, e.g. SYNC_BACKEND sets sync.backend.
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Sync.Backend)
package config
