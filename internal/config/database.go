package config

import (
	"strings"

	"github.com/spf13/viper"
)

const (
	databaseDriverEnv      = "DATABASE_DRIVER"
	databaseURLEnv         = "DATABASE_URL"
	databaseAutoMigrateEnv = "DATABASE_AUTO_MIGRATE"

	DatabaseDriverPostgres = "postgres"
	DatabaseDriverSQLite   = "sqlite"

	defaultDatabaseDriver = DatabaseDriverPostgres
	defaultSQLitePath     = "freelance.db"
)

type DatabaseConfig struct {
	Driver      string
	URL         string
	AutoMigrate bool
}

func LoadDatabaseConfig(v *viper.Viper) *DatabaseConfig {
	driver := strings.ToLower(stringOr(v, databaseDriverEnv, defaultDatabaseDriver))

	url := v.GetString(databaseURLEnv)
	if url == "" && driver == DatabaseDriverSQLite {
		url = defaultSQLitePath
	}

	return &DatabaseConfig{
		Driver:      driver,
		URL:         url,
		AutoMigrate: boolOr(v, databaseAutoMigrateEnv, false),
	}
}

func (c *DatabaseConfig) Validate() error {
	if c == nil {
		return ErrDatabaseURLMissing
	}
	switch c.Driver {
	case DatabaseDriverPostgres, DatabaseDriverSQLite:
	default:
		return ErrUnsupportedDatabaseDriver
	}
	if c.URL == "" {
		return ErrDatabaseURLMissing
	}
	return nil
}
