package config

import (
	"fmt"

	"sbpzip/internal/constants"
	"sbpzip/pkg/cel"
	pkgerrors "sbpzip/pkg/errors"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// ValidateStatic checks everything that can be checked without opening files.
func ValidateStatic(cfg *Config) error {
	var errs []error

	if err := validateZipper(cfg.Zipper); err != nil {
		errs = append(errs, err)
	}

	if err := validateInput(cfg.Input); err != nil {
		errs = append(errs, err)
	}

	if err := validateOutput(cfg.Output, cfg.Broker); err != nil {
		errs = append(errs, err)
	}

	if err := validateFilter(cfg.Filter); err != nil {
		errs = append(errs, err)
	}

	if err := validateLogging(cfg.Logging); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return pkgerrors.ErrValidation.
			WithCause(fmt.Errorf("configuration validation failed: %v", errs)).
			WithDetail("errors", len(errs))
	}

	return nil
}

func validateZipper(cfg ZipperConfig) error {
	if cfg.BaseRate < 0 {
		return &ValidationError{
			Field:   "zipper.base_rate",
			Message: fmt.Sprintf("base rate must be non-negative, got %g", cfg.BaseRate),
		}
	}

	if cfg.BaseRateLimitMs != nil && *cfg.BaseRateLimitMs < 0 {
		return &ValidationError{
			Field:   "zipper.base_rate_limit_ms",
			Message: fmt.Sprintf("base rate limit must be non-negative, got %g", *cfg.BaseRateLimitMs),
		}
	}

	return nil
}

func validateInput(cfg InputConfig) error {
	if cfg.Rover == "" {
		return &ValidationError{
			Field:   "input.rover",
			Message: "a rover or combined log path is required",
		}
	}

	if cfg.Base != "" && cfg.Base == cfg.Rover {
		return &ValidationError{
			Field:   "input.base",
			Message: "base and rover logs must be different files",
		}
	}

	return nil
}

func validateOutput(cfg OutputConfig, broker BrokerConfig) error {
	switch cfg.Mode {
	case constants.OutputModeConsole, constants.OutputModeFile:
		return nil
	case constants.OutputModeKafka:
		return validateKafka(broker.Kafka)
	default:
		return &ValidationError{
			Field:   "output.mode",
			Message: fmt.Sprintf("unknown output mode: %s (supported: console, file, kafka)", cfg.Mode),
		}
	}
}

func validateKafka(cfg KafkaConfig) error {
	if len(cfg.Brokers) == 0 {
		return &ValidationError{
			Field:   "broker.kafka.brokers",
			Message: "at least one Kafka broker is required",
		}
	}

	for i, broker := range cfg.Brokers {
		if broker == "" {
			return &ValidationError{
				Field:   fmt.Sprintf("broker.kafka.brokers[%d]", i),
				Message: "broker address cannot be empty",
			}
		}
	}

	if cfg.Topic == "" {
		return &ValidationError{
			Field:   "broker.kafka.topic",
			Message: "Kafka topic is required",
		}
	}

	if cfg.Retry.MaxAttempts < 0 {
		return &ValidationError{
			Field:   "broker.kafka.retry.max_attempts",
			Message: "max_attempts must be non-negative",
		}
	}

	if cfg.Retry.MaxInterval > 0 && cfg.Retry.InitialInterval > 0 && cfg.Retry.MaxInterval < cfg.Retry.InitialInterval {
		return &ValidationError{
			Field:   "broker.kafka.retry.max_interval",
			Message: "max_interval must be greater than or equal to initial_interval",
		}
	}

	if cfg.Retry.Multiplier <= 0 {
		return &ValidationError{
			Field:   "broker.kafka.retry.multiplier",
			Message: "multiplier must be positive",
		}
	}

	if cfg.RateLimit.RPS < 0 {
		return &ValidationError{
			Field:   "broker.kafka.rate_limit.rps",
			Message: "rps must be non-negative",
		}
	}

	if cb := cfg.CircuitBreaker; cb.Enabled && (cb.FailureRatio <= 0 || cb.FailureRatio > 1) {
		return &ValidationError{
			Field:   "broker.kafka.circuit_breaker.failure_ratio",
			Message: "failure_ratio must be in (0, 1]",
		}
	}

	return nil
}

func validateFilter(cfg FilterConfig) error {
	switch cfg.OnError {
	case constants.FallbackAllow, constants.FallbackDeny, constants.FallbackError:
	default:
		return &ValidationError{
			Field:   "filter.on_error",
			Message: fmt.Sprintf("invalid on_error value: %s (valid: allow, deny, error)", cfg.OnError),
		}
	}

	if cfg.Expression == "" {
		return nil
	}

	evaluator, err := cel.NewEvaluator()
	if err != nil {
		return &ValidationError{Field: "filter.expression", Message: err.Error()}
	}
	if err := evaluator.ValidateFilterExpression(cfg.Expression); err != nil {
		return &ValidationError{Field: "filter.expression", Message: err.Error()}
	}

	return nil
}

func validateLogging(cfg LoggingConfig) error {
	switch cfg.Level {
	case "debug", "info", "warn", "error":
	default:
		return &ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("invalid log level: %s (valid: debug, info, warn, error)", cfg.Level),
		}
	}

	switch cfg.Format {
	case "json", "console":
	default:
		return &ValidationError{
			Field:   "logging.format",
			Message: fmt.Sprintf("invalid log format: %s (valid: json, console)", cfg.Format),
		}
	}

	return nil
}
