// Package config provides configuration management for the catalog sync
// service.
//
// It utilizes Viper for loading configuration from environment variables
// and a .env file.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application
// settings, divided into subsections:
//   - Server: HTTP server settings (port, API key)
//   - Database: PostgreSQL connection details
//   - Log: Logging level and format
//   - OneC: 1C API source (base URL, token, pagination, rate limit)
//   - Sheets: Google Sheets source (spreadsheet id, tab, key column)
//   - Sync: orchestration schedule, retries, and conflict policy
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Server.Port)
package config
