package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv       string
	AdminAddr    string
	MySQLDSN     string
	RedisAddr    string
	RedisDB      int
	RedisPass    string
	TelegramBase string
	BotToken     string
	HotelsBase   string
	HotelsKey    string
	HotelsRPS    int
	MaxSessions  int
	SessionTTL   time.Duration
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:       env("APP_ENV", "prod"),
		AdminAddr:    env("ADMIN_ADDR", ":8080"),
		MySQLDSN:     env("MYSQL_DSN", "root:root@tcp(localhost:3306)/tourbot?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:    env("REDIS_ADDR", "localhost:6379"),
		RedisPass:    env("REDIS_PASSWORD", ""),
		RedisDB:      atoi("REDIS_DB", 0),
		TelegramBase: env("TELEGRAM_BASE_URL", "https://api.telegram.org"),
		BotToken:     env("BOT_TOKEN", ""),
		HotelsBase:   env("HOTELS_BASE_URL", "https://hotels4.p.rapidapi.com"),
		HotelsKey:    env("HOTELS_API_KEY", ""),
		HotelsRPS:    atoi("HOTELS_RPS", 5),
		MaxSessions:  atoi("MAX_SESSIONS", 64),
		// 0 = sessions never expire; there is no dialogue timeout.
		SessionTTL: time.Duration(atoi("SESSION_TTL_SECONDS", 0)) * time.Second,
	}
	if c.BotToken == "" {
		log.Warn().Msg("BOT_TOKEN is empty")
	}
	if c.HotelsKey == "" {
		log.Warn().Msg("HOTELS_API_KEY is empty")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
