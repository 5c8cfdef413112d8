// Package config loads chapterdeck settings from flags, a YAML file and the environment.
package config

// Config holds all application configuration.
type Config struct {
	Storage StorageConfig `koanf:"storage"`
	Server  ServerConfig  `koanf:"server"`
	Log     LogConfig     `koanf:"log"`
	Digest  DigestConfig  `koanf:"digest"`
}

// StorageConfig selects the store backing decks and study records.
type StorageConfig struct {
	Driver string `koanf:"driver" validate:"required,oneof=sqlite bolt"`
	Path   string `koanf:"path" validate:"required"`
}

type ServerConfig struct {
	Addr string `koanf:"addr" validate:"required,hostname_port"`
}

type LogConfig struct {
	Level  string `koanf:"level" validate:"required,oneof=debug info warn error"`
	Format string `koanf:"format" validate:"required,oneof=json text"`
}

// DigestConfig controls the daily due-card summary written to the log.
type DigestConfig struct {
	Enabled bool   `koanf:"enabled"`
	At      string `koanf:"at" validate:"required,datetime=15:04"`
}
