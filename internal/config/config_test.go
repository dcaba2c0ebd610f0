package config

import "testing"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DATA_FILE", "")
	t.Setenv("USERS", "")
	t.Setenv("BREAK_SECONDS", "")
	t.Setenv("DAILY_LIMIT", "")
	t.Setenv("DUEL_WINDOW_MS", "")

	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want %q", cfg.Port, "8080")
	}
	if cfg.DatabaseURL != "" {
		t.Errorf("DatabaseURL = %q, want %q", cfg.DatabaseURL, "")
	}
	if cfg.DataFile != "data/chicfocus.json" {
		t.Errorf("DataFile = %q, want %q", cfg.DataFile, "data/chicfocus.json")
	}
	if len(cfg.Users) != 2 || cfg.Users[0] != "luu" || cfg.Users[1] != "4keni" {
		t.Errorf("Users = %v, want [luu 4keni]", cfg.Users)
	}
	if cfg.BreakSecs != 300 {
		t.Errorf("BreakSecs = %d, want %d", cfg.BreakSecs, 300)
	}
	if cfg.DailyLimit != 5 {
		t.Errorf("DailyLimit = %d, want %d", cfg.DailyLimit, 5)
	}
	if cfg.DuelWindowMS != 120000 {
		t.Errorf("DuelWindowMS = %d, want %d", cfg.DuelWindowMS, 120000)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	t.Setenv("PORT", "3000")
	t.Setenv("DATABASE_URL", "postgres://localhost/chicfocus")
	t.Setenv("USERS", "alice, bob")
	t.Setenv("BREAK_SECONDS", "60")

	cfg := Load()

	if cfg.Port != "3000" {
		t.Errorf("Port = %q, want %q", cfg.Port, "3000")
	}
	if cfg.DatabaseURL != "postgres://localhost/chicfocus" {
		t.Errorf("DatabaseURL = %q, want %q", cfg.DatabaseURL, "postgres://localhost/chicfocus")
	}
	if len(cfg.Users) != 2 || cfg.Users[0] != "alice" || cfg.Users[1] != "bob" {
		t.Errorf("Users = %v, want [alice bob]", cfg.Users)
	}
	if cfg.BreakSecs != 60 {
		t.Errorf("BreakSecs = %d, want %d", cfg.BreakSecs, 60)
	}
}

func TestLoad_InvalidInt(t *testing.T) {
	t.Setenv("DAILY_LIMIT", "abc")

	cfg := Load()

	if cfg.DailyLimit != 5 {
		t.Errorf("DailyLimit = %d, want %d (fallback)", cfg.DailyLimit, 5)
	}
}
