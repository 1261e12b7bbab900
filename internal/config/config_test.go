package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_DefaultsInDevelopment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DATABASE_URL", "postgres://localhost/scas")
	t.Setenv("ENV", "development")
	t.Setenv("JWT_SECRET", "")

	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.JWTSecret == "" {
		t.Error("development must get a fallback secret")
	}
	if c.TokenTTL != 2*time.Hour || c.DuplicateWindow != 5*time.Second || c.ModelMinSamples != 30 {
		t.Errorf("defaults: ttl=%v window=%v min=%d", c.TokenTTL, c.DuplicateWindow, c.ModelMinSamples)
	}
	if c.AlertsEnabled() {
		t.Error("alerts must be off without RESEND_API_KEY and ALERT_EMAIL")
	}
}

func TestLoad_ProductionRequiresStrongSecret(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DATABASE_URL", "postgres://localhost/scas")
	t.Setenv("ENV", "production")
	t.Setenv("JWT_SECRET", "short")

	if _, err := Load(); err == nil {
		t.Error("expected error for weak production secret")
	}
}

func TestLoad_MissingDatabaseURL(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DATABASE_URL", "")
	if _, err := Load(); err == nil {
		t.Error("expected error without DATABASE_URL")
	}
}

func TestLoad_ParsesListsAndDurations(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DATABASE_URL", "postgres://localhost/scas")
	t.Setenv("KAFKA_BROKERS", " kafka-1:9092, ,kafka-2:9092 ")
	t.Setenv("DUPLICATE_WINDOW", "0")
	t.Setenv("RETRAIN_INTERVAL", "15m")

	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(c.KafkaBrokers) != 2 || c.KafkaBrokers[0] != "kafka-1:9092" || c.KafkaBrokers[1] != "kafka-2:9092" {
		t.Errorf("brokers: %q", c.KafkaBrokers)
	}
	if c.DuplicateWindow != 0 {
		t.Errorf("window: got %v, want 0", c.DuplicateWindow)
	}
	if c.RetrainInterval != 15*time.Minute {
		t.Errorf("interval: got %v", c.RetrainInterval)
	}
}

func TestLoadDotEnv_RealEnvWins(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	body := "# comment\nSCAS_TEST_A=\"from-file\"\nSCAS_TEST_B='file-b'\nnot a pair\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SCAS_TEST_A", "from-env")
	t.Setenv("SCAS_TEST_B", "")

	loadDotEnv(path)

	if got := os.Getenv("SCAS_TEST_A"); got != "from-env" {
		t.Errorf("A: got %q", got)
	}
	if got := os.Getenv("SCAS_TEST_B"); got != "file-b" {
		t.Errorf("B: got %q", got)
	}
}
