package broker

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"sbpzip/internal/config"
	"sbpzip/internal/constants"
	"sbpzip/internal/logger"
	"sbpzip/pkg/circuitbreaker"
	"sbpzip/pkg/errors"
	"sbpzip/pkg/metrics"
	"sbpzip/pkg/ratelimit"
	"sbpzip/pkg/retry"
	"sbpzip/pkg/sbp"
)

const sideHeader = "sbp-side"

// KafkaPublisher writes one Kafka record per message. Records are keyed by
// msg_type and carry the originating side in a header. Writes are
// synchronous so the topic sees messages in zipped order.
type KafkaPublisher struct {
	writer  messageWriter
	topic   string
	policy  retry.Policy
	limiter *ratelimit.Limiter
	breaker *circuitbreaker.Wrapper
	logger  logger.Logger
}

func NewKafkaPublisher(cfg config.KafkaConfig, log logger.Logger) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.LeastBytes{},
		BatchSize:    constants.KafkaBatchSize,
		BatchTimeout: constants.KafkaBatchTimeout,
		WriteTimeout: constants.KafkaWriteTimeout,
		Async:        false,
	}
	return newKafkaPublisher(w, cfg, log)
}

func newKafkaPublisher(w messageWriter, cfg config.KafkaConfig, log logger.Logger) *KafkaPublisher {
	limiter := ratelimit.New(ratelimit.Config{
		RPS:   cfg.RateLimit.RPS,
		Burst: cfg.RateLimit.Burst,
	})

	p := &KafkaPublisher{
		writer:  w,
		topic:   cfg.Topic,
		policy:  RetryPolicy(cfg.Retry),
		limiter: limiter,
		logger:  log,
	}

	if cfg.CircuitBreaker.Enabled {
		p.breaker = circuitbreaker.NewWrapper(circuitbreaker.Config{
			Name:         "kafka:" + cfg.Topic,
			MaxRequests:  cfg.CircuitBreaker.MaxRequests,
			Interval:     cfg.CircuitBreaker.Interval,
			Timeout:      cfg.CircuitBreaker.Timeout,
			FailureRatio: cfg.CircuitBreaker.FailureRatio,
			MinRequests:  cfg.CircuitBreaker.MinRequests,
		})
	}

	return p
}

func (p *KafkaPublisher) Publish(ctx context.Context, side string, msg *sbp.Message) error {
	body, err := msg.MarshalJSON()
	if err != nil {
		return errors.ErrMalformedRecord.WithCause(fmt.Errorf("failed to marshal message: %w", err)).
			WithDetail("msg_type", msg.Type.String())
	}

	record := kafka.Message{
		Key:   []byte(strconv.Itoa(int(msg.Type))),
		Value: body,
		Headers: []kafka.Header{
			{Key: sideHeader, Value: []byte(side)},
		},
		Time: time.Now(),
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return err
	}

	err = retry.Retry(ctx, p.policy, func() error {
		return p.write(ctx, record)
	}, func(attempt int, err error, nextDelay time.Duration) {
		metrics.PublishRetriesTotal.Inc()
		p.logger.WarnwCtx(ctx, "Retrying kafka publish",
			"attempt", attempt,
			"max_attempts", p.policy.MaxAttempts,
			"next_delay", nextDelay,
			"error", err,
			"topic", p.topic,
		)
	})
	if err != nil {
		return errors.ErrPublish.WithCause(fmt.Errorf("failed to write kafka message: %w", err)).
			WithDetail("topic", p.topic).
			WithDetail("msg_type", msg.Type.String())
	}

	return nil
}

// write sends one record. Once the breaker is open further attempts stop
// without touching the broker.
func (p *KafkaPublisher) write(ctx context.Context, record kafka.Message) error {
	if p.breaker == nil {
		return p.writer.WriteMessages(ctx, record)
	}
	err := p.breaker.Execute(ctx, func() error {
		return p.writer.WriteMessages(ctx, record)
	})
	if circuitbreaker.IsRejection(err) {
		return retry.NewFatalError(err)
	}
	return err
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// RetryPolicy fills the unset fields of cfg from retry.DefaultPolicy.
func RetryPolicy(cfg config.RetryConfig) retry.Policy {
	policy := retry.DefaultPolicy()

	if cfg.MaxAttempts > 0 {
		policy.MaxAttempts = cfg.MaxAttempts
	}
	if cfg.InitialInterval > 0 {
		policy.InitialInterval = cfg.InitialInterval
	}
	if cfg.MaxInterval > 0 {
		policy.MaxInterval = cfg.MaxInterval
	}
	if cfg.Multiplier > 0 {
		policy.Multiplier = cfg.Multiplier
	}
	if cfg.MaxElapsedTime > 0 {
		policy.MaxElapsedTime = cfg.MaxElapsedTime
	}

	return policy
}
