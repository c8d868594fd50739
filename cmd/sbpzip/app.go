package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"sbpzip/internal/config"
	"sbpzip/internal/constants"
	"sbpzip/internal/logger"
	"sbpzip/internal/sbplog"
	"sbpzip/internal/zipper"
	"sbpzip/pkg/bootstrap"
	"sbpzip/pkg/cel"
	"sbpzip/pkg/errors"
	"sbpzip/pkg/logging"
	"sbpzip/pkg/metrics"
)

type App struct {
	*bootstrap.Base
	stdout   io.Writer
	zipper   *zipper.Zipper
	splitter *zipper.Splitter
}

func NewApp(cfg *config.Config, log logger.Logger) *App {
	return &App{
		Base:   bootstrap.NewBase(cfg, log),
		stdout: os.Stdout,
	}
}

func (a *App) Initialize(ctx context.Context) error {
	opts := zipper.Options{
		MinSeparation:    a.Config.Zipper.MinSeparation(),
		OnPredicateError: a.Config.Filter.OnError,
	}

	if a.Config.Filter.Expression != "" {
		predicate, err := compilePredicate(a.Config.Filter.Expression)
		if err != nil {
			return err
		}
		opts.Predicate = predicate
		a.Logger.InfowCtx(ctx, "Filter expression compiled",
			"expression", predicate.String(),
			"on_error", a.Config.Filter.OnError,
		)
	}

	a.zipper = zipper.New(opts, a.Logger)
	a.splitter = zipper.NewSplitter(a.Logger)

	if err := a.InitPublisher(); err != nil {
		return fmt.Errorf("failed to initialize publisher: %w", err)
	}

	return nil
}

func compilePredicate(expression string) (*cel.Predicate, error) {
	evaluator, err := cel.NewEvaluator()
	if err != nil {
		return nil, errors.ErrInternal.WithCause(err)
	}
	predicate, err := evaluator.CompilePredicate(expression)
	if err != nil {
		return nil, errors.ErrValidation.WithCause(err).WithDetail("field", "filter.expression")
	}
	return predicate, nil
}

// RunZip merges the configured inputs into the configured output. A single
// input is treated as a combined log and split next to itself first.
func (a *App) RunZip(ctx context.Context) (stats zipper.Stats, err error) {
	started := time.Now()
	defer func() {
		metrics.ObserveRunDuration("zip", time.Since(started), err)
	}()

	roverPath, basePath := a.Config.Input.Rover, a.Config.Input.Base
	if a.Config.Input.Combined() {
		basePath, roverPath = sbplog.BasePath(roverPath), sbplog.RoverPath(roverPath)
		if _, err := a.split(ctx, a.Config.Input.Rover, basePath, roverPath); err != nil {
			return stats, err
		}
	}

	base, err := sbplog.Open(basePath)
	if err != nil {
		return stats, err
	}
	defer base.Close()

	rover, err := sbplog.Open(roverPath)
	if err != nil {
		return stats, err
	}
	defer rover.Close()

	emit, closeOutput, err := a.openOutput(ctx)
	if err != nil {
		return stats, err
	}
	defer func() {
		if closeErr := closeOutput(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	a.Logger.InfowCtx(ctx, "Zipping logs",
		"base", basePath,
		"rover", roverPath,
		"output_mode", a.Config.Output.Mode,
		"min_separation", a.Config.Zipper.MinSeparation(),
	)

	return a.zipper.Zip(ctx, base, rover, emit)
}

// RunSplit writes the base and rover halves of combined next to it.
func (a *App) RunSplit(ctx context.Context, combined string) (stats zipper.SplitStats, err error) {
	started := time.Now()
	defer func() {
		metrics.ObserveRunDuration("split", time.Since(started), err)
	}()

	return a.split(ctx, combined, sbplog.BasePath(combined), sbplog.RoverPath(combined))
}

func (a *App) split(ctx context.Context, combined, basePath, roverPath string) (stats zipper.SplitStats, err error) {
	ctx = logging.WithInput(ctx, combined)

	src, err := sbplog.Open(combined)
	if err != nil {
		return stats, err
	}
	defer src.Close()

	base, err := sbplog.Create(basePath)
	if err != nil {
		return stats, err
	}
	defer closeInto(base, &err)

	rover, err := sbplog.Create(roverPath)
	if err != nil {
		return stats, err
	}
	defer closeInto(rover, &err)

	a.Logger.InfowCtx(ctx, "Splitting combined log",
		"base", basePath,
		"rover", roverPath,
	)

	return a.splitter.Split(ctx, src, base, rover)
}

// openOutput resolves the sink for zipped records. The returned close
// function flushes it.
func (a *App) openOutput(ctx context.Context) (zipper.EmitFunc, func() error, error) {
	switch a.Config.Output.Mode {
	case constants.OutputModeKafka:
		return a.Publisher.Publish, func() error { return nil }, nil

	case constants.OutputModeFile:
		path := a.Config.Output.Path
		if path == "" {
			path = sbplog.ZipPath(a.Config.Input.Rover)
		}
		w, err := sbplog.Create(path)
		if err != nil {
			return nil, nil, err
		}
		a.Logger.InfowCtx(ctx, "Writing zipped log", "path", path)
		return zipper.ToSink(w), w.Close, nil

	default:
		w := sbplog.NewWriter(a.stdout, "stdout")
		return zipper.ToSink(w), w.Close, nil
	}
}

func closeInto(c io.Closer, err *error) {
	if closeErr := c.Close(); closeErr != nil && *err == nil {
		*err = closeErr
	}
}

// Shutdown closes the publisher and exports metrics when asked to.
func (a *App) Shutdown(ctx context.Context) error {
	return a.Base.Shutdown(ctx, func(ctx context.Context) []error {
		if a.Config.Metrics.Textfile == "" {
			return nil
		}
		if err := metrics.WriteTextfile(a.Config.Metrics.Textfile); err != nil {
			return []error{err}
		}
		a.Logger.DebugwCtx(ctx, "Metrics written", "path", a.Config.Metrics.Textfile)
		return nil
	})
}

