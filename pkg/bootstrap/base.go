package bootstrap

import (
	"context"
	"fmt"

	"sbpzip/internal/broker"
	"sbpzip/internal/config"
	"sbpzip/internal/constants"
	"sbpzip/internal/logger"
)

// Base holds what every command shares: configuration, logger and, when the
// output goes to Kafka, the publisher.
type Base struct {
	Config    *config.Config
	Logger    logger.Logger
	Publisher broker.Publisher
}

func NewBase(cfg *config.Config, log logger.Logger) *Base {
	return &Base{
		Config: cfg,
		Logger: log,
	}
}

// InitPublisher connects the Kafka publisher. It is a no-op for the other
// output modes.
func (b *Base) InitPublisher() error {
	if b.Config.Output.Mode != constants.OutputModeKafka {
		return nil
	}

	b.Publisher = broker.NewKafkaPublisher(b.Config.Broker.Kafka, b.Logger)
	b.Logger.Infow("Kafka publisher ready",
		"brokers", b.Config.Broker.Kafka.Brokers,
		"topic", b.Config.Broker.Kafka.Topic,
	)
	return nil
}

func (b *Base) ShutdownPublisher() []error {
	var errs []error

	if b.Publisher != nil {
		if err := b.Publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("publisher close error: %w", err))
		}
		b.Publisher = nil
	}

	return errs
}

func (b *Base) Shutdown(ctx context.Context, additionalShutdown func(ctx context.Context) []error) error {
	var errs []error

	if additionalShutdown != nil {
		errs = append(errs, additionalShutdown(ctx)...)
	}

	errs = append(errs, b.ShutdownPublisher()...)

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}

	b.Logger.Debug("Shutdown complete")
	return nil
}
