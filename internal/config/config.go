package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/DouglasAltwig/AWSomeBuilder3/internal/core/domain"
)

type Config struct {
	LogLevel string
	OpsPort  string

	CatalogURL  string
	PostgresDSN string

	NATSURL     string
	NATSSubject string

	RedisAddr      string
	ResultCacheTTL int // seconds, 0 means adapter default

	S3Endpoint  string
	S3Region    string
	S3AccessKey string
	S3SecretKey string

	ModerationBucket string
	ResultsBucket    string

	DetectionTopicARN string
	DetectionRoleARN  string
	DetectionPageSize int
	DetectionRPS      float64

	ImageExtensions []string
	VideoExtensions []string
	CategoryRules   domain.RuleSets

	SweepSchedule string
}

// Load reads configuration from the environment. Category rules, bucket
// names and service addresses are required; a missing value is a startup
// error, never a per-request one.
func Load() (Config, error) {
	cfg := Config{
		LogLevel: env("LOG_LEVEL", "info"),
		OpsPort:  env("OPS_PORT", "9090"),

		NATSSubject: env("NATS_SUBJECT", "moderation.triggers"),

		RedisAddr:      env("REDIS_ADDR", "localhost:6379"),
		ResultCacheTTL: envInt("RESULT_CACHE_TTL_SECONDS", 0),

		S3Endpoint:  env("S3_ENDPOINT", ""),
		S3Region:    env("S3_REGION", "us-east-1"),
		S3AccessKey: env("S3_ACCESS_KEY", ""),
		S3SecretKey: env("S3_SECRET_KEY", ""),

		DetectionPageSize: envInt("DETECTION_PAGE_SIZE", 1000),
		DetectionRPS:      envFloat("DETECTION_RPS", 5),

		ImageExtensions: envList("IMAGE_EXTENSIONS", ".jpg,.jpeg,.png,.gif"),
		VideoExtensions: envList("VIDEO_EXTENSIONS", ".mp4,.mov,.avi"),

		SweepSchedule: env("SWEEP_SCHEDULE", "@every 5m"),
	}

	var missing []string
	require := func(key string) string {
		v := os.Getenv(key)
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}

	cfg.CatalogURL = require("CATALOG_URL")
	cfg.PostgresDSN = require("POSTGRES_DSN")
	cfg.NATSURL = require("NATS_URL")
	cfg.ModerationBucket = require("MODERATION_BUCKET")
	cfg.ResultsBucket = require("RESULTS_BUCKET")
	cfg.DetectionTopicARN = require("DETECTION_TOPIC_ARN")
	cfg.DetectionRoleARN = require("DETECTION_ROLE_ARN")

	rules, err := loadRules()
	if err != nil {
		return Config{}, err
	}
	cfg.CategoryRules = rules

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return cfg, nil
}

// loadRules reads the category rule-sets from CATEGORY_RULES (inline JSON)
// or CATEGORY_RULES_FILE (YAML). One of the two must be set.
func loadRules() (domain.RuleSets, error) {
	if raw := os.Getenv("CATEGORY_RULES"); raw != "" {
		var rules domain.RuleSets
		if err := json.Unmarshal([]byte(raw), &rules); err != nil {
			return nil, fmt.Errorf("parse CATEGORY_RULES: %w", err)
		}
		return validateRules(rules)
	}

	if path := os.Getenv("CATEGORY_RULES_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read CATEGORY_RULES_FILE: %w", err)
		}
		var rules domain.RuleSets
		if err := yaml.Unmarshal(data, &rules); err != nil {
			return nil, fmt.Errorf("parse CATEGORY_RULES_FILE: %w", err)
		}
		return validateRules(rules)
	}

	return nil, fmt.Errorf("missing required environment variables: CATEGORY_RULES or CATEGORY_RULES_FILE")
}

func validateRules(rules domain.RuleSets) (domain.RuleSets, error) {
	if len(rules) == 0 {
		return nil, fmt.Errorf("category rules are empty")
	}
	for category, ruleSet := range rules {
		if len(ruleSet) == 0 {
			return nil, fmt.Errorf("category %q has no labels", category)
		}
	}
	return rules, nil
}

func env(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func envList(key, fallback string) []string {
	raw := env(key, fallback)
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
