package main

import (
	"context"
	"math/rand"
	"sort"

	"tally/internal/cli"
	"tally/internal/events"
	"tally/internal/guard"
	"tally/internal/ledger"
	applog "tally/internal/log"
	"tally/internal/session"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	store := cli.InitStore(ctx, logger, cfg)
	if store.Cleanup != nil {
		defer store.Cleanup()
	}

	// Ledger event feed is optional; without a broker the shell runs
	// standalone.
	var publisher events.Publisher
	if cfg.AMQPURL != "" {
		client, err := events.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize event feed, continuing without it", applog.FieldError, err)
		} else {
			defer client.Close()
			publisher = client
			logger.Info("Initialized ledger event feed",
				"exchange", cfg.AMQPExchange,
				"queue", cfg.AMQPQueue)
		}
	}

	sess := session.New(session.Config{
		Store:  store.Store,
		Logger: logger,
		Delay:  cfg.LoginDelay,
	})

	var rng *rand.Rand
	if cfg.MockSeed != 0 {
		rng = rand.New(rand.NewSource(cfg.MockSeed))
	}
	book := ledger.New(ledger.Config{
		Session:          sess,
		Publisher:        publisher,
		Logger:           logger,
		MockExpenseCount: cfg.MockExpenseCount,
		Rand:             rng,
	})

	table, err := guard.NewTable([]guard.Route{
		{Name: "login", Path: "/login"},
		{Name: "dashboard", Path: "/", RequiresAuth: true},
		{Name: "expenses", Path: "/expenses", RequiresAuth: true},
		{Name: "budget", Path: "/budget", RequiresAuth: true},
		{Name: "analytics", Path: "/analytics", RequiresAuth: true},
	}, "login", "dashboard")
	if err != nil {
		logger.Error("Invalid routing table", applog.FieldError, err)
		return
	}
	nav := guard.NewNavigator(table, sess, logger)

	// Boot sequence of the shell: try to pick up a persisted session,
	// otherwise go through the login flow.
	sess.Restore(ctx)

	reached, err := nav.Navigate("dashboard")
	if err != nil {
		logger.Error("Navigation failed", applog.FieldError, err)
		return
	}
	if reached.Name == "login" {
		if err := sess.Login(ctx, cfg.DemoEmail, "demo-password"); err != nil {
			logger.Error("Sign in failed", applog.FieldError, err)
			return
		}
		if reached, err = nav.Navigate("dashboard"); err != nil {
			logger.Error("Navigation failed", applog.FieldError, err)
			return
		}
	}
	logger.Info("Shell ready", applog.FieldRoute, reached.Path)

	if len(book.ListExpenses()) == 0 {
		book.GenerateMockData(ctx)
	}

	reportAggregates(logger, book)

	<-ctx.Done()
	sess.Logout(context.Background())
	logger.Info("Shell stopped")
}

func reportAggregates(logger *applog.Logger, book *ledger.Ledger) {
	byCategory := book.TotalsByCategory()
	categories := make([]string, 0, len(byCategory))
	for category := range byCategory {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	for _, category := range categories {
		logger.Info("Category total",
			applog.FieldCategory, category,
			applog.FieldAmountCents, byCategory[category].Cents)
	}

	byMonth := book.TotalsByMonth()
	months := make([]string, 0, len(byMonth))
	for month := range byMonth {
		months = append(months, month)
	}
	sort.Strings(months)
	for _, month := range months {
		logger.Info("Month total",
			applog.FieldMonth, month,
			applog.FieldAmountCents, byMonth[month].Cents)
	}

	logger.Info("Grand total",
		applog.FieldAmountCents, book.GrandTotal().Cents,
		"expenses", len(book.ListExpenses()),
		"budgets", len(book.ListBudgets()))
}
