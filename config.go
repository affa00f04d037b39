package lexicon

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds resolver configuration for environment-based setup.
// Designed for environment-based configuration using popular env parsing
// libraries; pass it to New through WithConfig.
type Config struct {
	Locale        string   `env:"LEXICON_LOCALE" envDefault:"en"`
	DefaultLocale string   `env:"LEXICON_DEFAULT_LOCALE"`
	Locales       []string `env:"LEXICON_LOCALES" envSeparator:","`
	CacheCapacity int      `env:"LEXICON_CACHE_CAPACITY" envDefault:"0"`
}

// DefaultConfig returns the configuration used when no environment is set.
func DefaultConfig() Config {
	return Config{
		Locale: DefaultLocale,
	}
}

// LoadConfig reads Config from the environment. A .env file in the working
// directory is loaded first when present; a missing file is not an error.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// MustLoadConfig is LoadConfig panicking on failure, useful at startup.
func MustLoadConfig() Config {
	cfg, err := LoadConfig()
	if err != nil {
		panic(err)
	}
	return cfg
}
