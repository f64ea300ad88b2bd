// Package config provides configuration management for the compliance engine.
//
// It loads an optional .env file with godotenv and then reads environment
// variables through Viper. Defaults come from `default` struct tags.
//
// # Configuration Structure
//
//   - Server: HTTP port, API key and body limit
//   - Database: ledger driver (mysql, sqlite) and connection details
//   - Storage: S3/MinIO credentials and the bucket holding remote rule sets
//   - Log: logging level and format
//   - Engine: worker count, audit timeout, rules prefix, remote rules toggle
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Engine.Workers)
package config
