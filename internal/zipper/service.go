package zipper

import (
	"context"
	"errors"
	"fmt"
	"io"

	"sbpzip/internal/constants"
	"sbpzip/internal/logger"
	"sbpzip/pkg/logging"
	"sbpzip/pkg/metrics"
	"sbpzip/pkg/sbp"
)

// Options tune the merge.
type Options struct {
	// MinSeparation is the smallest tow distance between two accepted base
	// messages. Zero lets every base message through.
	MinSeparation float64
	// Predicate, when set, must accept a message for it to be forwarded.
	Predicate Predicate
	// OnPredicateError is one of constants.FallbackAllow, FallbackDeny or
	// FallbackError (the default).
	OnPredicateError string
}

// Zipper merges a base and a rover log into one stream ordered by GPS time.
// It keeps at most one pending message per side, so memory use does not
// depend on log length. Both inputs must already be time ordered.
type Zipper struct {
	opts   Options
	logger logger.Logger
}

func New(opts Options, log logger.Logger) *Zipper {
	if opts.OnPredicateError == "" {
		opts.OnPredicateError = constants.FallbackError
	}
	return &Zipper{opts: opts, logger: log}
}

// mergeClock is the time state threaded through every merge step.
type mergeClock struct {
	// last is the time of the last message emitted by comparison. Kinds
	// without their own epoch take this value.
	last sbp.GpsTime
	// lastBase is the time of the last base message that passed the rate gate.
	lastBase sbp.GpsTime
}

// Zip pulls from base and rover until both are exhausted, handing every
// forwarded message to emit. Base messages leave with sender 0. On equal
// times the base message goes first.
func (z *Zipper) Zip(ctx context.Context, base, rover Source, emit EmitFunc) (Stats, error) {
	var (
		clock               mergeClock
		baseMsg, roverMsg   *sbp.Message
		baseDone, roverDone bool
		err                 error
	)
	stats := newStats()

	baseCtx := logging.WithSide(ctx, constants.SideBase)
	roverCtx := logging.WithSide(ctx, constants.SideRover)

	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		if baseMsg == nil && !baseDone {
			var accepted sbp.GpsTime
			baseMsg, accepted, err = z.nextBase(baseCtx, base, clock, &stats.Base)
			switch {
			case errors.Is(err, io.EOF):
				baseDone = true
			case err != nil:
				return stats, err
			default:
				clock.lastBase = accepted
			}
		}

		if roverMsg == nil && !roverDone {
			roverMsg, err = z.nextRover(roverCtx, rover, &stats.Rover)
			switch {
			case errors.Is(err, io.EOF):
				roverDone = true
			case err != nil:
				return stats, err
			}
		}

		switch {
		case baseMsg == nil && roverMsg == nil:
			stats.LastGpsTime = clock.last
			z.logger.InfowCtx(ctx, "Zip complete",
				"base_read", stats.Base.Read,
				"base_emitted", stats.Base.Emitted,
				"base_dropped", stats.Base.DroppedTotal(),
				"rover_read", stats.Rover.Read,
				"rover_emitted", stats.Rover.Emitted,
				"rover_dropped", stats.Rover.DroppedTotal(),
				"last_gps_time", clock.last.String(),
			)
			return stats, nil

		case baseMsg == nil:
			if err := z.emit(roverCtx, emit, constants.SideRover, roverMsg, &stats.Rover); err != nil {
				return stats, err
			}
			roverMsg = nil

		case roverMsg == nil:
			if err := z.emit(baseCtx, emit, constants.SideBase, baseMsg, &stats.Base); err != nil {
				return stats, err
			}
			baseMsg = nil

		default:
			baseTime, err := sbp.ExtractGpsTime(baseMsg, clock.last)
			if err != nil {
				return stats, err
			}
			roverTime, err := sbp.ExtractGpsTime(roverMsg, clock.last)
			if err != nil {
				return stats, err
			}

			if sbp.EarlierIndex(roverTime, baseTime) == 1 {
				if err := z.emit(baseCtx, emit, constants.SideBase, baseMsg, &stats.Base); err != nil {
					return stats, err
				}
				baseMsg = nil
				clock.last = baseTime
			} else {
				if err := z.emit(roverCtx, emit, constants.SideRover, roverMsg, &stats.Rover); err != nil {
					return stats, err
				}
				roverMsg = nil
				clock.last = roverTime
			}
			metrics.LastGpsWeek.Set(float64(clock.last.WN))
			metrics.LastGpsTimeOfWeek.Set(float64(clock.last.TOW))
		}
	}
}

// nextBase pulls base messages until one is forwarded and passes the rate
// gate. It returns the message, already rewritten to sender 0, and the time
// it was accepted at.
func (z *Zipper) nextBase(ctx context.Context, src Source, clock mergeClock, stats *SideStats) (*sbp.Message, sbp.GpsTime, error) {
	for {
		msg, err := z.read(ctx, src, constants.SideBase, stats)
		if err != nil {
			return nil, sbp.GpsTime{}, err
		}

		if !msg.Type.Forwarded() {
			z.drop(ctx, constants.SideBase, metrics.ReasonKind, msg, stats)
			continue
		}

		ok, err := z.matches(ctx, constants.SideBase, msg)
		if err != nil {
			return nil, sbp.GpsTime{}, err
		}
		if !ok {
			z.drop(ctx, constants.SideBase, metrics.ReasonPredicate, msg, stats)
			continue
		}

		t, err := sbp.ExtractGpsTime(msg, clock.last)
		if err != nil {
			return nil, sbp.GpsTime{}, err
		}
		if !sbp.AtOrPastThreshold(t, clock.lastBase, z.opts.MinSeparation) {
			z.drop(ctx, constants.SideBase, metrics.ReasonRateLimit, msg, stats)
			continue
		}

		msg.Sender = 0
		return msg, t, nil
	}
}

// nextRover pulls rover messages until one with a non-zero sender is forwarded.
func (z *Zipper) nextRover(ctx context.Context, src Source, stats *SideStats) (*sbp.Message, error) {
	for {
		msg, err := z.read(ctx, src, constants.SideRover, stats)
		if err != nil {
			return nil, err
		}

		if msg.Sender == 0 {
			z.drop(ctx, constants.SideRover, metrics.ReasonSender, msg, stats)
			continue
		}

		if !msg.Type.Forwarded() {
			z.drop(ctx, constants.SideRover, metrics.ReasonKind, msg, stats)
			continue
		}

		ok, err := z.matches(ctx, constants.SideRover, msg)
		if err != nil {
			return nil, err
		}
		if !ok {
			z.drop(ctx, constants.SideRover, metrics.ReasonPredicate, msg, stats)
			continue
		}

		return msg, nil
	}
}

func (z *Zipper) read(ctx context.Context, src Source, side string, stats *SideStats) (*sbp.Message, error) {
	msg, err := src.Next(ctx)
	if err != nil {
		if errors.Is(err, io.EOF) {
			z.logger.DebugwCtx(ctx, "Source exhausted", "read", stats.Read)
			return nil, io.EOF
		}
		return nil, fmt.Errorf("read %s log: %w", side, err)
	}
	stats.Read++
	metrics.MessagesReadTotal.WithLabelValues(side).Inc()
	return msg, nil
}

func (z *Zipper) matches(ctx context.Context, side string, msg *sbp.Message) (bool, error) {
	if z.opts.Predicate == nil {
		return true, nil
	}

	ok, err := z.opts.Predicate.Match(ctx, side, msg)
	if err == nil {
		return ok, nil
	}

	switch z.opts.OnPredicateError {
	case constants.FallbackAllow:
		z.logger.WarnwCtx(ctx, "Predicate evaluation error, forwarding message (fallback: allow)",
			"msg_type", msg.Type.String(),
			"error", err,
		)
		return true, nil
	case constants.FallbackDeny:
		z.logger.WarnwCtx(ctx, "Predicate evaluation error, dropping message (fallback: deny)",
			"msg_type", msg.Type.String(),
			"error", err,
		)
		return false, nil
	default:
		return false, fmt.Errorf("evaluate predicate on %s %s: %w", side, msg.Type, err)
	}
}

func (z *Zipper) drop(ctx context.Context, side, reason string, msg *sbp.Message, stats *SideStats) {
	stats.Dropped[reason]++
	metrics.MessagesDroppedTotal.WithLabelValues(side, reason).Inc()
	z.logger.DebugwCtx(ctx, "Message dropped",
		"reason", reason,
		"msg_type", msg.Type.String(),
		"sender", msg.Sender,
	)
}

func (z *Zipper) emit(ctx context.Context, emit EmitFunc, side string, msg *sbp.Message, stats *SideStats) error {
	if err := emit(ctx, side, msg); err != nil {
		return fmt.Errorf("emit %s %s: %w", side, msg.Type, err)
	}
	stats.Emitted++
	metrics.MessagesEmittedTotal.WithLabelValues(side).Inc()
	return nil
}
