package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port            string
	Env             string
	DatabaseDriver  string
	DatabaseDSN     string
	SessionSecret   string
	SessionTTLHours int
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

// Load 从环境变量加载配置，缺省值面向本地开发。
func Load() Config {
	port := getenv("APP_PORT", "3000")
	env := getenv("APP_ENV", "dev")
	driver := getenv("DB_DRIVER", "sqlite")
	dsn := getenv("DATABASE_DSN", "fate.db")
	secret := getenv("SESSION_SECRET", "fate-pbc-rpg-secret-key-2024")
	ttlStr := getenv("SESSION_TTL_HOURS", "168")
	ttl, _ := strconv.Atoi(ttlStr)
	if ttl <= 0 {
		ttl = 168
	}
	return Config{
		Port:            port,
		Env:             env,
		DatabaseDriver:  driver,
		DatabaseDSN:     dsn,
		SessionSecret:   secret,
		SessionTTLHours: ttl,
	}
}
