package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yml
var embeddedConfig []byte

// PlaceholderSessionSecret is the secretKey shipped in config.yml. It only
// signs tokens in development mode.
const PlaceholderSessionSecret = "replace-with-secure-env-var"

const ModeDevelopment = "development"

type Config struct {
	Mode     string `mapstructure:"mode"`
	Dotenv   string `mapstructure:"dotenv"`
	Handlers struct {
		Prometheus struct {
			Port    string `mapstructure:"port"`
			Enabled bool   `mapstructure:"enabled"`
		} `mapstructure:"prometheus"`
	} `mapstructure:"handlers"`
	Repositories struct {
		Postgres PostgresConfig `mapstructure:"postgres"`
	} `mapstructure:"repositories"`
	Server struct {
		HTTPPort       string        `mapstructure:"HTTPPort"`
		Timeout        time.Duration `mapstructure:"HTTPTimeout"`
		AllowedOrigins []string      `mapstructure:"allowedOrigins"`
		RateLimit      int           `mapstructure:"rateLimit"`
	} `mapstructure:"server"`
	Session  SessionConfig  `mapstructure:"session"`
	Places   PlacesConfig   `mapstructure:"places"`
	Weather  WeatherConfig  `mapstructure:"weather"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
}

type PostgresConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	Host              string `mapstructure:"host"`
	Password          string `mapstructure:"password"`
	Port              string `mapstructure:"port"`
	Username          string `mapstructure:"username"`
	DB                string `mapstructure:"db"`
	SSLMODE           string `mapstructure:"SSLMODE"`
	MAXCONWAITINGTIME int    `mapstructure:"MAXCONWAITINGTIME"`
}

// SessionConfig controls the lifetime and signing of browser sessions.
type SessionConfig struct {
	SecretKey string        `mapstructure:"secretKey"`
	Issuer    string        `mapstructure:"issuer"`
	Audience  string        `mapstructure:"audience"`
	TTL       time.Duration `mapstructure:"ttl"`
}

type PlacesConfig struct {
	BaseURL           string        `mapstructure:"baseURL"`
	PhotoURL          string        `mapstructure:"photoURL"`
	MapsURL           string        `mapstructure:"mapsURL"`
	APIKey            string        `mapstructure:"apiKey"`
	PhotoMaxWidth     int           `mapstructure:"photoMaxWidth"`
	DefaultMinRating  float64       `mapstructure:"defaultMinRating"`
	DefaultMaxResults int           `mapstructure:"defaultMaxResults"`
	Timeout           time.Duration `mapstructure:"timeout"`
}

type WeatherConfig struct {
	BaseURL string        `mapstructure:"baseURL"`
	APIKey  string        `mapstructure:"apiKey"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type LLMConfig struct {
	APIKey            string  `mapstructure:"apiKey"`
	Model             string  `mapstructure:"model"`
	Temperature       float32 `mapstructure:"temperature"`
	SystemInstruction string  `mapstructure:"systemInstruction"`
}

// PipelineConfig toggles the optional stages of the assistant pipeline.
type PipelineConfig struct {
	ChatRouting     bool `mapstructure:"chatRouting"`
	Weather         bool `mapstructure:"weather"`
	Itinerary       bool `mapstructure:"itinerary"`
	Recommendations bool `mapstructure:"recommendations"`
}

func InitConfig() (Config, error) {
	var config Config
	v := viper.New()

	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")
	v.AddConfigPath("/usr/local/bin")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	err := v.ReadInConfig()
	if err != nil {
		fmt.Printf("Warning: Failed to find file-based config: %s. Falling back to embedded config.\n", err)
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("failed to read embedded config: %w", err)
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	applyEnvOverrides(&config)
	if err = config.Validate(); err != nil {
		return Config{}, err
	}
	fmt.Println("Successfully loaded app configs...")
	return config, nil
}

// applyEnvOverrides lets secrets live outside config.yml.
func applyEnvOverrides(cfg *Config) {
	overrides := []struct {
		env string
		dst *string
	}{
		{"GOOGLE_GEMINI_API_KEY", &cfg.LLM.APIKey},
		{"GOOGLE_PLACES_API_KEY", &cfg.Places.APIKey},
		{"OPENWEATHER_API_KEY", &cfg.Weather.APIKey},
		{"SESSION_SECRET_KEY", &cfg.Session.SecretKey},
		{"POSTGRES_PASSWORD", &cfg.Repositories.Postgres.Password},
		{"APP_ENV", &cfg.Mode},
	}
	for _, o := range overrides {
		if val := os.Getenv(o.env); val != "" {
			*o.dst = val
		}
	}
}

// Validate rejects settings that must not reach a non-development deployment.
func (c Config) Validate() error {
	if c.Mode != ModeDevelopment && c.Session.SecretKey == PlaceholderSessionSecret {
		return errors.New("session.secretKey is the shipped placeholder; set SESSION_SECRET_KEY")
	}
	return nil
}
