package config

import "time"

// Config represents the complete configuration structure
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Options OptionsConfig `mapstructure:"options"`
	Vault   VaultConfig   `mapstructure:"vault"`
	Session SessionConfig `mapstructure:"session"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig holds qBittorrent connection details. Username here is a
// fallback for setups without stored credentials; the password never
// lives in the config file.
type ServerConfig struct {
	URL        string        `mapstructure:"url"`
	Username   string        `mapstructure:"username"`
	UseHTTPS   bool          `mapstructure:"use_https"`
	CustomPort int           `mapstructure:"custom_port"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// OptionsConfig contains the default torrent submission options.
type OptionsConfig struct {
	Category      string `mapstructure:"category"`
	SavePath      string `mapstructure:"save_path"`
	Paused        bool   `mapstructure:"paused"`
	SkipHashCheck bool   `mapstructure:"skip_hash_check"`
}

// VaultConfig controls where and how credentials are stored.
type VaultConfig struct {
	Dir       string `mapstructure:"dir"`
	Plaintext bool   `mapstructure:"plaintext"`
}

// SessionConfig contains session cache settings.
type SessionConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}
