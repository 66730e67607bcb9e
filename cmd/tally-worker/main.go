package main

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"tally/internal/cli"
	"tally/internal/events"
	applog "tally/internal/log"
	"tally/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the tally worker")
		return
	}

	client, err := events.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
		return
	}
	defer client.Close()

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	tallies := worker.New(logger)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return client.Consume(ctx, tallies.Handle)
	})
	g.Go(func() error {
		return tallies.Report(ctx, cfg.ReportInterval)
	})

	logger.Info("Tally worker started",
		"queue", cfg.AMQPQueue,
		"report_interval", cfg.ReportInterval.String())

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Tally worker stopped", applog.FieldError, err)
		return
	}
	logger.Info("Tally worker stopped")
}
