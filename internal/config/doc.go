// Package config provides configuration management for the transform CLI and
// the transform worker.
//
// Configuration is loaded from environment variables and validated on startup.
// All configuration options have sensible defaults for development; the CLI
// overrides the transform settings per run from its flags.
//
// Example usage:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg)
package config
