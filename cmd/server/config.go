package main

import "time"

type Config struct {
	Host           string        `env:"HOST,default=localhost"`
	Port           int           `env:"PORT,default=8000"`
	LogLevel       string        `env:"LOG_LEVEL,default=info"`
	GeminiAPIKey   string        `env:"GEMINI_API_KEY"`
	GeminiModel    string        `env:"GEMINI_MODEL,default=gemini-1.5-flash"`
	MaxTokens      int           `env:"MAX_TOKENS,default=150"`
	Temperature    float64       `env:"TEMPERATURE,default=0.8"`
	MessagePacing  time.Duration `env:"MESSAGE_PACING,default=1s"`
	StreamBuffer   int           `env:"STREAM_BUFFER,default=32"`
	CannedSeed     *int64        `env:"CANNED_SEED"`
	ShutdownGrace  time.Duration `env:"SHUTDOWN_GRACE,default=10s"`
}
