package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"sbpzip/internal/constants"
)

// LoadOptions gathers every source a configuration is assembled from, in
// increasing precedence: defaults, file, environment, flags, overrides.
type LoadOptions struct {
	ConfigFile string
	Flags      *pflag.FlagSet
	Overrides  map[string]interface{}
}

// flagKeys maps CLI flag names onto configuration keys.
var flagKeys = map[string]string{
	"base":               "input.base",
	"base-rate":          "zipper.base_rate",
	"base-rate-limit-ms": "zipper.base_rate_limit_ms",
	"output-mode":        "output.mode",
	"filter":             "filter.expression",
	"log-level":          "logging.level",
	"log-format":         "logging.format",
	"metrics-textfile":   "metrics.textfile",
	"kafka-brokers":      "broker.kafka.brokers",
	"kafka-topic":        "broker.kafka.topic",
	"kafka-rps":          "broker.kafka.rate_limit.rps",
}

func Load(opts LoadOptions) (*Config, error) {
	viper.Reset()

	setDefaults()

	if opts.ConfigFile != "" {
		viper.SetConfigType("yaml")
		viper.SetConfigFile(opts.ConfigFile)
		if err := viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", opts.ConfigFile, err)
		}
	}

	viper.SetEnvPrefix(constants.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if opts.Flags != nil {
		if err := bindFlags(opts.Flags); err != nil {
			return nil, err
		}
	}

	for key, value := range opts.Overrides {
		viper.Set(key, value)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyEnvOverrides(&cfg)
	applyRateLimit(&cfg)

	if err := ValidateStatic(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("zipper.base_rate", constants.DefaultBaseRate)

	viper.SetDefault("input.rover", "")
	viper.SetDefault("input.base", "")

	viper.SetDefault("output.mode", constants.OutputModeConsole)
	viper.SetDefault("output.path", "")

	viper.SetDefault("filter.expression", "")
	viper.SetDefault("filter.on_error", constants.FallbackError)

	viper.SetDefault("broker.kafka.brokers", []string{})
	viper.SetDefault("broker.kafka.topic", "")
	viper.SetDefault("broker.kafka.retry.max_attempts", 5)
	viper.SetDefault("broker.kafka.retry.initial_interval", "200ms")
	viper.SetDefault("broker.kafka.retry.max_interval", "5s")
	viper.SetDefault("broker.kafka.retry.multiplier", 2.0)
	viper.SetDefault("broker.kafka.retry.max_elapsed_time", "1m")
	viper.SetDefault("broker.kafka.rate_limit.rps", 0.0)
	viper.SetDefault("broker.kafka.rate_limit.burst", 1)
	viper.SetDefault("broker.kafka.circuit_breaker.enabled", false)
	viper.SetDefault("broker.kafka.circuit_breaker.max_requests", 3)
	viper.SetDefault("broker.kafka.circuit_breaker.interval", "60s")
	viper.SetDefault("broker.kafka.circuit_breaker.timeout", "30s")
	viper.SetDefault("broker.kafka.circuit_breaker.failure_ratio", 0.5)
	viper.SetDefault("broker.kafka.circuit_breaker.min_requests", 3)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")

	viper.SetDefault("metrics.textfile", "")
}

func bindFlags(flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		flag := flags.Lookup(name)
		if flag == nil {
			continue
		}
		if err := viper.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("failed to bind flag --%s: %w", name, err)
		}
	}
	return nil
}

// applyEnvOverrides normalizes the broker list, which arrives as one comma
// separated string when it comes from the environment.
func applyEnvOverrides(cfg *Config) {
	var brokers []string
	for _, b := range cfg.Broker.Kafka.Brokers {
		brokers = append(brokers, splitList(b)...)
	}
	cfg.Broker.Kafka.Brokers = brokers
}

// applyRateLimit sets the explicit base separation. The key has no default
// so that an unset limit and a limit of 0 stay distinguishable.
func applyRateLimit(cfg *Config) {
	const key = "zipper.base_rate_limit_ms"
	if !viper.IsSet(key) {
		return
	}
	limit := viper.GetFloat64(key)
	cfg.Zipper.BaseRateLimitMs = &limit
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
