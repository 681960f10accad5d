package config

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port               string `envconfig:"PORT" default:"8080"`
	Environment        string `envconfig:"ENV" default:"development"`
	DBConnectionString string `envconfig:"DB_CONNECTION_STRING" required:"true"`
	JWTSecret          string `envconfig:"JWT_SECRET" required:"true"`

	// GCP settings (Secret Manager credential store, Pub/Sub events)
	GCPProjectID      string `envconfig:"GCP_PROJECT_ID"`
	GCPProjectIDLocal string `envconfig:"GCP_PROJECT_ID_LOCAL"`
	ContentTopic      string `envconfig:"CONTENT_GENERATED_TOPIC" default:"content_generated"`

	// AI provider settings
	GeminiBaseURL       string  `envconfig:"GEMINI_BASE_URL" default:"https://generativelanguage.googleapis.com/v1beta"`
	GeminiModel         string  `envconfig:"GEMINI_MODEL" default:"gemini-2.0-flash"`
	GroqBaseURL         string  `envconfig:"GROQ_BASE_URL" default:"https://api.groq.com/openai/v1"`
	GroqModel           string  `envconfig:"GROQ_MODEL" default:"llama-3.3-70b-versatile"`
	ProviderTimeoutSec  int     `envconfig:"PROVIDER_TIMEOUT_SEC" default:"60"`
	GenerationTemp      float64 `envconfig:"GENERATION_TEMPERATURE" default:"0.7"`
	GenerationMaxTokens int     `envconfig:"GENERATION_MAX_TOKENS" default:"4096"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// GetGCPProjectID returns the project ID for the current environment.
// Local development uses a separate project so user secrets never mix.
func (c *Config) GetGCPProjectID() string {
	if c.Environment == "development" && c.GCPProjectIDLocal != "" {
		return c.GCPProjectIDLocal
	}
	return c.GCPProjectID
}
