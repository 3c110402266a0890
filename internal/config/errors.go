package config

import "errors"

var (
	ErrRedisAddrMissing          = errors.New("REDIS_ADDR is required")
	ErrInvalidRedisDB            = errors.New("REDIS_DB must be a valid integer")
	ErrDatabaseURLMissing        = errors.New("DATABASE_URL is required")
	ErrUnsupportedDatabaseDriver = errors.New("DATABASE_DRIVER must be postgres or sqlite")
	ErrInvalidAlertStatus        = errors.New("ALERT_STATUSES contains an unknown project status")
)
