package zipper

import (
	"context"
	"errors"
	"fmt"
	"io"

	"sbpzip/internal/constants"
	"sbpzip/internal/logger"
	"sbpzip/pkg/metrics"
)

// Splitter separates a combined log into its base and rover halves.
type Splitter struct {
	logger logger.Logger
}

func NewSplitter(log logger.Logger) *Splitter {
	return &Splitter{logger: log}
}

// Split routes every message with sender 0 to base and every other message
// to rover, preserving order within each half. Nothing is filtered or rewritten.
func (s *Splitter) Split(ctx context.Context, src Source, base, rover Sink) (SplitStats, error) {
	var stats SplitStats

	for {
		msg, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			s.logger.InfowCtx(ctx, "Split complete",
				"base", stats.Base,
				"rover", stats.Rover,
			)
			return stats, nil
		}
		if err != nil {
			return stats, fmt.Errorf("read combined log: %w", err)
		}

		if msg.Sender == 0 {
			if err := base.Write(ctx, msg); err != nil {
				return stats, fmt.Errorf("write base log: %w", err)
			}
			stats.Base++
			metrics.SplitMessagesTotal.WithLabelValues(constants.SideBase).Inc()
			continue
		}

		if err := rover.Write(ctx, msg); err != nil {
			return stats, fmt.Errorf("write rover log: %w", err)
		}
		stats.Rover++
		metrics.SplitMessagesTotal.WithLabelValues(constants.SideRover).Inc()
	}
}
