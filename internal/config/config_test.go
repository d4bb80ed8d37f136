package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "ENV", "REDIS_ADDR", "QUESTION_COUNT", "SESSION_TTL", "LLM_PROVIDER"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.Server.Port != "3000" || !cfg.IsDevelopment() {
		t.Fatalf("unexpected server defaults: %+v", cfg.Server)
	}
	if cfg.Redis.Addr != "" || cfg.Redis.SessionTTL != 24*time.Hour {
		t.Fatalf("unexpected redis defaults: %+v", cfg.Redis)
	}
	if cfg.Interview.QuestionCount != 5 || !cfg.Interview.RetainQuestionsOnRetry {
		t.Fatalf("unexpected interview defaults: %+v", cfg.Interview)
	}
	if cfg.LLM.Provider != "gemini" {
		t.Fatalf("provider = %q", cfg.LLM.Provider)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("LLM_PROVIDER", "OpenAI")
	t.Setenv("QUESTION_COUNT", "8")
	t.Setenv("GENERATION_TIMEOUT", "15s")
	t.Setenv("RETAIN_QUESTIONS_ON_RETRY", "false")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("WORKER_CONCURRENCY", "not-a-number")
	t.Setenv("SCORING_TIMEOUT", "soon")

	cfg := Load()
	if cfg.IsDevelopment() {
		t.Fatalf("ENV=production should not be development")
	}
	if cfg.LLM.Provider != "openai" {
		t.Fatalf("provider = %q", cfg.LLM.Provider)
	}
	if cfg.Interview.QuestionCount != 8 || cfg.Interview.GenerationTimeout != 15*time.Second {
		t.Fatalf("unexpected interview config: %+v", cfg.Interview)
	}
	if cfg.Interview.RetainQuestionsOnRetry || !cfg.Minio.UseSSL {
		t.Fatalf("boolean overrides not applied")
	}
	if cfg.Worker.Concurrency != 3 || cfg.Interview.ScoringTimeout != 60*time.Second {
		t.Fatalf("invalid values should fall back to defaults")
	}
}

func TestGetDatabaseDSN(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{Host: "db", Port: "5432", User: "u", Password: "p", DBName: "n", SSLMode: "disable"}}
	want := "host=db port=5432 user=u password=p dbname=n sslmode=disable"
	if got := cfg.GetDatabaseDSN(); got != want {
		t.Fatalf("dsn = %q", got)
	}
}
