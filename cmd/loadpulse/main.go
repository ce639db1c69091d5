package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/loadpulse/loadpulse/internal/config"
	"github.com/loadpulse/loadpulse/internal/httpclient"
	"github.com/loadpulse/loadpulse/internal/metrics"
	"github.com/loadpulse/loadpulse/internal/output"
	"github.com/loadpulse/loadpulse/internal/runner"
	"github.com/loadpulse/loadpulse/internal/tracing"
)

const progressInterval = time.Second

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	loader := config.NewLoader()
	cfg, err := loader.Load(args)
	if err != nil {
		if errors.Is(err, config.ErrHelpRequested) {
			return nil
		}
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	provider, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = provider.Shutdown(shutdownCtx)
	}()

	builder, err := httpclient.NewRequestBuilder(cfg)
	if err != nil {
		return err
	}
	client := httpclient.NewClient(cfg.Timeout)

	requester := newHTTPRequester(client, builder)
	if provider.Active() || provider.ShouldPropagate() {
		requester.withTracing(provider.Tracer(), provider.ShouldPropagate())
	}

	r := runner.New(runner.Options{
		Rate:        cfg.Rate,
		Concurrency: cfg.Concurrency,
		Duration:    cfg.Duration,
		Pattern:     toRunnerPattern(cfg.Pattern),
		Requester:   requester,
	})

	rec := r.Recorder()
	if !cfg.Quiet && !cfg.JSONOutput {
		progress := output.NewProgressReporter(rec, progressInterval, os.Stdout)
		progress.Start()
		defer func() {
			progress.Stop()
			fmt.Fprintln(os.Stdout)
		}()
	}

	r.Run(ctx)
	summary := rec.Summary(cfg.Duration)

	if cfg.JSONOutput {
		if err := output.PrintJSONReport(os.Stdout, summary); err != nil {
			return err
		}
	} else {
		output.PrintReport(os.Stdout, summary)
	}

	if cfg.OutputDir != "" {
		dir, err := output.NewArtifactWriter(cfg.OutputDir).Write(rec, summary)
		if err != nil {
			return err
		}
		if !cfg.JSONOutput {
			fmt.Fprintf(os.Stdout, "\nArtifacts written to %s\n", dir)
		}
	}

	if cfg.HTMLOutput != "" {
		if err := writeHTMLReport(cfg, rec, summary); err != nil {
			return err
		}
		if !cfg.JSONOutput {
			fmt.Fprintf(os.Stdout, "HTML report written to %s\n", cfg.HTMLOutput)
		}
	}

	if summary.Errors > 0 {
		return fmt.Errorf("%d requests failed", summary.Errors)
	}
	return nil
}

func toRunnerPattern(p config.Pattern) runner.Pattern {
	switch p {
	case config.PatternSpike:
		return runner.PatternSpike
	case config.PatternRamp:
		return runner.PatternRamp
	default:
		return runner.PatternConstant
	}
}

func writeHTMLReport(cfg *config.Config, rec *metrics.Recorder, summary metrics.Summary) error {
	f, err := os.Create(cfg.HTMLOutput)
	if err != nil {
		return fmt.Errorf("create HTML report: %w", err)
	}
	defer f.Close()

	if err := output.GenerateHTMLReport(f, summary, rec.LatencySeries(), rec.DispatchTimes(), cfg.Target, string(cfg.Pattern)); err != nil {
		return err
	}
	return f.Close()
}
