package model

import "time"

// Config holds all runtime configuration for nearfac
type Config struct {
	APIKey string `yaml:"api_key,omitempty" json:"api_key,omitempty" mapstructure:"api_key"`

	HTTP      HTTPConfig      `yaml:"http" json:"http" mapstructure:"http"`
	Resolver  ResolverConfig  `yaml:"resolver" json:"resolver" mapstructure:"resolver"`
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit" mapstructure:"rate_limit"`
	Cache     CacheConfig     `yaml:"cache" json:"cache" mapstructure:"cache"`
	Output    OutputConfig    `yaml:"output" json:"output" mapstructure:"output"`
}

// HTTPConfig controls the Distance Matrix HTTP client
type HTTPConfig struct {
	Timeout   time.Duration `yaml:"timeout" json:"timeout" mapstructure:"timeout"`
	UserAgent string        `yaml:"user_agent" json:"user_agent" mapstructure:"user_agent"`
}

// ResolverConfig controls batching and retry behavior
type ResolverConfig struct {
	BatchSize  int `yaml:"batch_size" json:"batch_size" mapstructure:"batch_size"`    // Destinations per query, service ceiling is 25
	Workers    int `yaml:"workers" json:"workers" mapstructure:"workers"`             // Concurrent in-flight queries
	MaxRetries int `yaml:"max_retries" json:"max_retries" mapstructure:"max_retries"` // Attempts per batch before degrading
}

// RateLimitConfig bounds the query rate against the external service
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" json:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int     `yaml:"burst" json:"burst" mapstructure:"burst"`
}

// CacheConfig controls the in-run query memo
type CacheConfig struct {
	Enabled bool          `yaml:"enabled" json:"enabled" mapstructure:"enabled"`
	TTL     time.Duration `yaml:"ttl" json:"ttl" mapstructure:"ttl"`
}

// OutputConfig controls report rendering
type OutputConfig struct {
	Sheet   string `yaml:"sheet" json:"sheet" mapstructure:"sheet"`
	Verbose bool   `yaml:"verbose" json:"verbose" mapstructure:"verbose"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:   30 * time.Second,
			UserAgent: "nearfac/0.1",
		},
		Resolver: ResolverConfig{
			BatchSize:  25,
			Workers:    4,
			MaxRetries: 3,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 10,
			Burst:             5,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     10 * time.Minute,
		},
		Output: OutputConfig{
			Sheet: "Results",
		},
	}
}
