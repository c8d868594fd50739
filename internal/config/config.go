package config

import (
	"time"
)

type Config struct {
	Zipper  ZipperConfig  `mapstructure:"zipper"`
	Input   InputConfig   `mapstructure:"input"`
	Output  OutputConfig  `mapstructure:"output"`
	Filter  FilterConfig  `mapstructure:"filter"`
	Broker  BrokerConfig  `mapstructure:"broker"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

type ZipperConfig struct {
	// BaseRate is the base observation rate in Hz the output is thinned to.
	BaseRate float64 `mapstructure:"base_rate"`
	// BaseRateLimitMs, when set, is the separation itself and overrides
	// BaseRate; an explicit 0 disables the gate. The loader fills it from
	// zipper.base_rate_limit_ms only when that key was given.
	BaseRateLimitMs *float64 `mapstructure:"-"`
}

// MinSeparation is the minimum time-of-week distance between two accepted
// base messages. Zero disables the gate.
func (c ZipperConfig) MinSeparation() float64 {
	if c.BaseRateLimitMs != nil {
		return *c.BaseRateLimitMs
	}
	if c.BaseRate > 0 {
		return 1000 / c.BaseRate
	}
	return 0
}

type InputConfig struct {
	// Rover is the rover log, or the combined log when Base is empty.
	Rover string `mapstructure:"rover"`
	Base  string `mapstructure:"base"`
}

// Combined reports whether the single Rover path holds both streams.
func (c InputConfig) Combined() bool {
	return c.Base == ""
}

type OutputConfig struct {
	Mode string `mapstructure:"mode"` // "console", "file" or "kafka"
	Path string `mapstructure:"path"`
}

type FilterConfig struct {
	Expression string `mapstructure:"expression"`
	OnError    string `mapstructure:"on_error"` // "allow", "deny", "error" (default: "error")
}

type BrokerConfig struct {
	Kafka KafkaConfig `mapstructure:"kafka"`
}

type KafkaConfig struct {
	Brokers        []string             `mapstructure:"brokers"`
	Topic          string               `mapstructure:"topic"`
	Retry          RetryConfig          `mapstructure:"retry"`
	RateLimit      RateLimitConfig      `mapstructure:"rate_limit"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
}

// RateLimitConfig paces publishing; RPS 0 publishes as fast as the broker accepts.
type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

type CircuitBreakerConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	MaxRequests  uint32        `mapstructure:"max_requests"`
	Interval     time.Duration `mapstructure:"interval"`
	Timeout      time.Duration `mapstructure:"timeout"`
	FailureRatio float64       `mapstructure:"failure_ratio"`
	MinRequests  uint32        `mapstructure:"min_requests"`
}

type RetryConfig struct {
	MaxAttempts     int           `mapstructure:"max_attempts"`
	InitialInterval time.Duration `mapstructure:"initial_interval"`
	MaxInterval     time.Duration `mapstructure:"max_interval"`
	Multiplier      float64       `mapstructure:"multiplier"`
	MaxElapsedTime  time.Duration `mapstructure:"max_elapsed_time"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type MetricsConfig struct {
	Textfile string `mapstructure:"textfile"`
}
