package broker

import (
	"context"

	"github.com/segmentio/kafka-go"

	"sbpzip/pkg/sbp"
)

// Publisher ships zipped messages to a message broker.
type Publisher interface {
	Publish(ctx context.Context, side string, msg *sbp.Message) error
	Close() error
}

// messageWriter is the part of *kafka.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}
