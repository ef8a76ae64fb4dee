package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv string `env:"APP_ENV" envDefault:"local"`

	YouTubeAPIKey string `env:"YOUTUBE_API_KEY,required"`
	LLMAPIKey     string `env:"LLM_API_KEY,required"`

	LLMModel       string `env:"LLM_MODEL" envDefault:"gpt-4o-mini"`
	EmbeddingModel string `env:"EMBEDDING_MODEL" envDefault:"text-embedding-3-small"`
	RateLimitRPS   int    `env:"RATE_LIMIT_RPS" envDefault:"1"`

	APIPort    int `env:"API_PORT" envDefault:"8000"`
	HealthPort int `env:"HEALTH_PORT" envDefault:"8080"`

	CommentMaxPerRequest   int `env:"COMMENT_MAX_PER_REQUEST" envDefault:"100"`
	CommentChunkSize       int `env:"COMMENT_CHUNK_SIZE" envDefault:"20"`
	TranscriptChunkWords   int `env:"TRANSCRIPT_CHUNK_WORDS" envDefault:"1000"`
	TranscriptChunkOverlap int `env:"TRANSCRIPT_CHUNK_OVERLAP" envDefault:"200"`
	RetrievalTopK          int `env:"RETRIEVAL_TOP_K" envDefault:"4"`

	PreferredCaptionLangs []string `env:"PREFERRED_CAPTION_LANGS" envSeparator:"," envDefault:"en-orig,en"`

	HTTPTimeout          time.Duration `env:"HTTP_TIMEOUT" envDefault:"30s"`
	SentimentAPIURL      string        `env:"SENTIMENT_API_URL"`
	StatsPublishInterval time.Duration `env:"STATS_PUBLISH_INTERVAL" envDefault:"30s"`
}

func Load() (*Config, error) {
	_ = godotenv.Load() //nolint:errcheck // .env file is optional, error is expected when not present

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment config: %w", err)
	}

	return cfg, nil
}
