package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// Load reads configuration from a YAML file and environment variables.
// Priority: ENV > YAML > defaults (env-default tags and Defaults).
// The YAML file path is determined by CONFIG_PATH env (fallback "./config.yaml").
// If the file does not exist and CONFIG_PATH was not set explicitly,
// configuration is loaded from ENV + defaults only.
func Load() (*Config, error) {
	cfg := Defaults()

	path := os.Getenv("CONFIG_PATH")
	explicitPath := path != ""
	if !explicitPath {
		path = "./config.yaml"
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if explicitPath {
		return nil, fmt.Errorf("config: file %s: %w", path, err)
	} else {
		// No file, load from ENV + defaults only.
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config: read env: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}

	return &cfg, nil
}

// Defaults returns a Config holding the defaults of fields that cleanenv
// cannot default, because their zero value is valid.
func Defaults() Config {
	return Config{
		Server:     ServerConfig{WarmUp: true},
		Vocabulary: VocabularyConfig{MinZipf: 2.5},
		Generator: GeneratorConfig{
			OutK:      16,
			TauFloor:  0.30,
			TauAssoc:  0.35,
			MMRLambda: 0.7,
			WCos:      1.0,
			WSyn:      0.6,
			WAnt:      0.5,
			WLLM:      0.2,
		},
		LLM:       LLMConfig{WordPairs: true},
		Validator: ValidatorConfig{Semantic: true, LocalObfuscate: true},
		Database:  DatabaseConfig{Migrate: true},
		Cache:     CacheConfig{ForbiddenListSize: 1024},
		RateLimit: RateLimitConfig{PerMinute: 600},
	}
}
