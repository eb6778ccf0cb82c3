package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration. Runtime-mutable sync settings
// (sync frequency) live in the settings document, not here.
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Data   DataConfig   `mapstructure:"data"`
	Sheets SheetsConfig `mapstructure:"sheets"`
	Log    LogConfig    `mapstructure:"log"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release, test
}

// DataConfig locates the local snapshot documents.
type DataConfig struct {
	Dir string `mapstructure:"dir"`
}

// SheetsConfig identifies the remote spreadsheet store.
type SheetsConfig struct {
	CredentialsFile string `mapstructure:"credentials_file"` // service-account JSON
	SpreadsheetID   string `mapstructure:"spreadsheet_id"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`  // debug, info, warn, error
	Pretty     bool   `mapstructure:"pretty"` // human-readable output (dev only)
	File       string `mapstructure:"file"`   // empty = stdout only
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}

// CredentialsPath resolves the credentials file against the data directory
// when a bare filename is configured.
func (c Config) CredentialsPath() string {
	if c.Sheets.CredentialsFile == "" || filepath.IsAbs(c.Sheets.CredentialsFile) {
		return c.Sheets.CredentialsFile
	}
	if strings.ContainsRune(c.Sheets.CredentialsFile, filepath.Separator) {
		return c.Sheets.CredentialsFile
	}
	return filepath.Join(c.Data.Dir, c.Sheets.CredentialsFile)
}

// Load reads configuration from file and environment variables.
// Environment variables override file values. Prefix: VLG_ (Vendor Ledger).
// Nested keys use underscore: VLG_SERVER_PORT, VLG_SHEETS_SPREADSHEET_ID, etc.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("data.dir", "./data")
	v.SetDefault("sheets.credentials_file", "credentials.json")
	v.SetDefault("sheets.spreadsheet_id", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)

	// File config
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables: VLG_SHEETS_SPREADSHEET_ID -> sheets.spreadsheet_id
	v.SetEnvPrefix("VLG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required — env vars can suffice)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}
