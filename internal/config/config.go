package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DBPath       string
	OutputDir    string
	VoiceDropDir string

	CatalogBaseURL      string
	CatalogAPIToken     string
	CatalogTimeoutMs    int
	CatalogRateLimitRPS int
	CatalogTTLSec       int

	OpenAIAPIKey    string
	ExtractModel    string
	TranscribeModel string
	LLMTimeoutMs    int

	// Similarity thresholds. The defaults are the values the matching
	// behaviour was tuned against; treat overrides as experimental.
	VocabThreshold  float64
	MatchThreshold  float64
	MatchTieWindow  float64
	MatchTieMinGap  float64
	ExactNoSpaceSim float64

	ListenerRole        string
	ListenerIntervalSec int
	ListenerAutoExport  bool
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		DBPath:       getEnv("DB_PATH", filepath.Join(cwd, "data", "app.db")),
		OutputDir:    getEnv("OUTPUT_DIR", filepath.Join(cwd, "out")),
		VoiceDropDir: getEnv("VOICE_DROP_DIR", filepath.Join(cwd, "data", "voice")),

		CatalogBaseURL:      getEnv("CATALOG_API_BASE_URL", "https://api.recyvoice.app/api/v1"),
		CatalogAPIToken:     getEnv("CATALOG_API_TOKEN", ""),
		CatalogTimeoutMs:    getEnvInt("CATALOG_TIMEOUT_MS", 30000),
		CatalogRateLimitRPS: getEnvInt("CATALOG_RATE_LIMIT_RPS", 5),
		CatalogTTLSec:       getEnvInt("CATALOG_TTL_SEC", 300),

		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		ExtractModel:    getEnv("EXTRACT_MODEL", "gpt-4o-mini"),
		TranscribeModel: getEnv("TRANSCRIBE_MODEL", "whisper-1"),
		LLMTimeoutMs:    getEnvInt("LLM_TIMEOUT_MS", 30000),

		VocabThreshold:  getEnvFloat("VOCAB_MATCH_THRESHOLD", 80),
		MatchThreshold:  getEnvFloat("MATCH_ACCEPT_THRESHOLD", 65),
		MatchTieWindow:  getEnvFloat("MATCH_TIE_WINDOW", 8),
		MatchTieMinGap:  getEnvFloat("MATCH_TIE_MIN_GAP", 3),
		ExactNoSpaceSim: getEnvFloat("MATCH_NOSPACE_SIMILARITY", 95),

		ListenerRole:        getEnv("VOICE_LISTENER_ROLE", "customer"),
		ListenerIntervalSec: getEnvInt("VOICE_LISTENER_INTERVAL_SEC", 10),
		ListenerAutoExport:  getEnvBool("VOICE_LISTENER_AUTO_EXPORT", true),
	}

	return cfg, nil
}

func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required env var: %s", name)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(key, "")))
	if value == "" {
		return fallback
	}
	if value == "1" || value == "true" || value == "yes" || value == "on" {
		return true
	}
	if value == "0" || value == "false" || value == "no" || value == "off" {
		return false
	}
	return fallback
}
