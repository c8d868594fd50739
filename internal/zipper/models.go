package zipper

import (
	"context"

	"sbpzip/pkg/sbp"
)

// Source yields messages in log order and returns io.EOF once exhausted.
type Source interface {
	Next(ctx context.Context) (*sbp.Message, error)
}

// Sink accepts messages in emission order.
type Sink interface {
	Write(ctx context.Context, msg *sbp.Message) error
}

// EmitFunc receives each zipped message together with the side it came from.
type EmitFunc func(ctx context.Context, side string, msg *sbp.Message) error

// ToSink adapts a Sink into an EmitFunc.
func ToSink(s Sink) EmitFunc {
	return func(ctx context.Context, _ string, msg *sbp.Message) error {
		return s.Write(ctx, msg)
	}
}

// Predicate is an extra content filter applied after the kind filter.
type Predicate interface {
	Match(ctx context.Context, side string, msg *sbp.Message) (bool, error)
}

type SideStats struct {
	Read    int
	Emitted int
	Dropped map[string]int
}

func newSideStats() SideStats {
	return SideStats{Dropped: make(map[string]int)}
}

// DroppedTotal sums drops over every reason.
func (s SideStats) DroppedTotal() int {
	total := 0
	for _, n := range s.Dropped {
		total += n
	}
	return total
}

type Stats struct {
	Base        SideStats
	Rover       SideStats
	LastGpsTime sbp.GpsTime
}

func newStats() Stats {
	return Stats{Base: newSideStats(), Rover: newSideStats()}
}

type SplitStats struct {
	Base  int
	Rover int
}
