package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port         string
	DatabaseURL  string
	DataFile     string
	Users        []string // exactly two participants
	BreakSecs    int
	DailyLimit   int
	DuelWindowMS int
}

func Load() Config {
	cfg := Config{
		Port:         getEnv("PORT", "8080"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		DataFile:     getEnv("DATA_FILE", "data/chicfocus.json"),
		Users:        getEnvList("USERS", "luu,4keni"),
		BreakSecs:    getEnvInt("BREAK_SECONDS", 300),
		DailyLimit:   getEnvInt("DAILY_LIMIT", 5),
		DuelWindowMS: getEnvInt("DUEL_WINDOW_MS", 120000),
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvList(key, fallback string) []string {
	raw := getEnv(key, fallback)
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
