package common

import "time"

const (
	ModerationCacheTTL = 15 * time.Minute
	RephraseCacheTTL   = 1 * time.Hour

	RequestIDHeader = "X-Request-Id"

	DefaultRephraseProvider = "huggingface"
)

type CacheConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	TLS      bool
}
