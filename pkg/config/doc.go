// Package config loads typed configuration structs from environment
// variables, optionally seeded from a .env file.
//
// Configuration structs declare their environment bindings with `env` tags:
//
//	type Config struct {
//	    Interval time.Duration `env:"POLLER_INTERVAL" envDefault:"200ms"`
//	    Tags     []string      `env:"POLLER_TAGS" envSeparator:","`
//	}
//
//	var cfg poller.Config
//	if err := config.Load(&cfg); err != nil {
//	    // handle error
//	}
//
// Each configuration type is parsed once per process and cached, so every
// component loading the same Config sees identical settings. MustLoad
// panics instead of returning an error, for configuration the process
// cannot start without.
package config
