package config

import (
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

const (
	redisAddrEnv     = "REDIS_ADDR"
	redisPasswordEnv = "REDIS_PASSWORD"
	redisDBEnv       = "REDIS_DB"
	redisTLSEnv      = "REDIS_TLS"
	redisEnabledEnv  = "REDIS_ENABLED"

	defaultRedisAddr = "localhost:6379"
	defaultRedisDB   = 0
)

type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
	TLS      bool
}

func LoadRedisConfig(v *viper.Viper) (*RedisConfig, error) {
	db := defaultRedisDB
	if raw := strings.TrimSpace(v.GetString(redisDBEnv)); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return nil, ErrInvalidRedisDB
		}
		db = parsed
	}

	return &RedisConfig{
		Enabled:  boolOr(v, redisEnabledEnv, true),
		Addr:     stringOr(v, redisAddrEnv, defaultRedisAddr),
		Password: v.GetString(redisPasswordEnv),
		DB:       db,
		TLS:      v.GetString(redisTLSEnv) == "true",
	}, nil
}

func (c *RedisConfig) Validate() error {
	if c == nil || !c.Enabled {
		return nil
	}
	if c.Addr == "" {
		return ErrRedisAddrMissing
	}
	return nil
}
