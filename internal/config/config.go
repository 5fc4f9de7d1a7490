// Package config handles loading of application settings and of the
// mapping and target-schema files.
package config

import (
	"errors"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application,
// typically loaded from environment variables.
type Config struct {
	SQLConnString   string
	MongoConnString string
	MongoDatabase   string
	MappingTable    string
	MappingDir      string
	LogLevel        string
	LogFile         string
}

// LoadConfig loads application settings from environment variables
// (which should be populated by the .env file in main.go).
// Connection strings are only checked by RequireSQL and RequireMongo,
// since most commands never touch a database.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("MONGO_DATABASE", "tourmap")
	v.SetDefault("MAPPING_TABLE", "wholesaler_field_mappings")
	v.SetDefault("MAPPING_DIR", "mappings")
	v.SetDefault("LOG_LEVEL", "info")

	for _, key := range []string{"SQL_CONNECTION_STRING", "MONGO_CONNECTION_STRING", "LOG_FILE"} {
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}

	return &Config{
		SQLConnString:   v.GetString("SQL_CONNECTION_STRING"),
		MongoConnString: v.GetString("MONGO_CONNECTION_STRING"),
		MongoDatabase:   v.GetString("MONGO_DATABASE"),
		MappingTable:    v.GetString("MAPPING_TABLE"),
		MappingDir:      v.GetString("MAPPING_DIR"),
		LogLevel:        v.GetString("LOG_LEVEL"),
		LogFile:         v.GetString("LOG_FILE"),
	}, nil
}

func (c *Config) RequireSQL() error {
	if c.SQLConnString == "" {
		return errors.New("SQL_CONNECTION_STRING environment variable not set")
	}
	return nil
}

func (c *Config) RequireMongo() error {
	if c.MongoConnString == "" {
		return errors.New("MONGO_CONNECTION_STRING environment variable not set")
	}
	return nil
}
