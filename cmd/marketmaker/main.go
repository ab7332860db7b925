package main

import (
	"context"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alejandrodnm/devnetmm/config"
	"github.com/alejandrodnm/devnetmm/internal/adapters/dydx"
	"github.com/alejandrodnm/devnetmm/internal/adapters/notify"
	"github.com/alejandrodnm/devnetmm/internal/adapters/storage"
	"github.com/alejandrodnm/devnetmm/internal/application/lifecycle"
	"github.com/alejandrodnm/devnetmm/internal/application/provision"
	"github.com/alejandrodnm/devnetmm/internal/application/scheduler"
	"github.com/alejandrodnm/devnetmm/internal/domain"
	"github.com/alejandrodnm/devnetmm/internal/ports"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	once := flag.Bool("once", false, "run one full pass over all markets and exit")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	table := flag.Bool("table", false, "print a per-market table after each cycle (default: compact 1-line)")
	skipProvision := flag.Bool("skip-provision", false, "skip key recovery, deposits and margin (chain already funded)")
	journalTail := flag.Int("journal-tail", 0, "print the last N journaled cycles and exit (requires journal.dsn)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	closeLog := setupLogger(cfg.Log)
	defer closeLog()

	if *journalTail > 0 {
		if cfg.Journal.DSN == "" {
			slog.Error("journal-tail needs journal.dsn in the config")
			closeLog()
			os.Exit(1)
		}
		j, err := storage.NewSQLiteJournal(cfg.Journal.DSN)
		if err == nil {
			err = runJournalReport(context.Background(), os.Stdout, j, *journalTail)
			j.Close()
		}
		if err != nil {
			slog.Error("journal report failed", "err", err, "dsn", cfg.Journal.DSN)
			closeLog()
			os.Exit(1)
		}
		return
	}

	maker, taker := cfg.Maker.Identity(), cfg.Taker.Identity()
	policy := cfg.PacingPolicy()

	slog.Info("marketmaker starting",
		"config", *configPath,
		"chain", cfg.Chain.ChainID,
		"binary", cfg.Chain.Binary,
		"markets", cfg.Trading.Markets,
		"maker", maker.String(),
		"taker", taker.String(),
		"once", *once,
		"skip_provision", *skipProvision,
	)

	runner := dydx.NewRunner(dydx.RunnerConfig{
		Binary:     cfg.Chain.Binary,
		RatePerSec: cfg.Gateway.RatePerSec,
		Burst:      cfg.Gateway.Burst,
		Timeout:    cfg.GatewayTimeout(),
	})
	client := dydx.NewClient(runner, dydx.NewCommands(dydx.ChainConfig{
		ChainID:        cfg.Chain.ChainID,
		KeyringBackend: cfg.Chain.KeyringBackend,
		Fees:           cfg.Chain.Fees,
		Node:           cfg.Chain.Node,
	}), cfg.PriceTable(), policy.SettleWindow)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if !*skipProvision {
		p := provision.New(client, client, client, policy)
		err := p.Bootstrap(ctx, []provision.Account{
			{Identity: maker, Mnemonic: cfg.Maker.Mnemonic, Deposit: cfg.Maker.DepositQuantum},
			{Identity: taker, Mnemonic: cfg.Taker.Mnemonic, Deposit: cfg.Taker.DepositQuantum},
		})
		if err != nil {
			slog.Error("provisioning failed, cannot trade", "err", err)
			closeLog()
			os.Exit(1)
		}
	}

	var journal ports.Journal
	if cfg.Journal.DSN != "" {
		j, err := storage.NewSQLiteJournal(cfg.Journal.DSN)
		if err != nil {
			slog.Error("failed to open journal", "err", err, "dsn", cfg.Journal.DSN)
			closeLog()
			os.Exit(1)
		}
		defer j.Close()
		journal = j
	}

	manager := lifecycle.New(client, client, maker, taker, lifecycle.Config{
		TickSize:        domain.Price(cfg.Trading.TickSize),
		BaseSize:        cfg.Trading.BaseSize,
		LookaheadBlocks: cfg.Trading.LookaheadBlocks,
	}, policy)

	s := scheduler.New(cfg.Trading.Markets, manager, notify.NewConsole(*table), journal, policy)
	if *once {
		s.MaxCycles = 1
	}

	if err := s.Run(ctx); err != nil {
		slog.Error("scheduler exited with error", "err", err)
		os.Exit(1)
	}

	slog.Info("marketmaker stopped cleanly")
}

// setupLogger configura slog. Con log.file, la salida va también a un archivo
// rotado por lumberjack. La función devuelta cierra ese archivo.
func setupLogger(cfg config.LogConfig) func() {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var out io.Writer = os.Stdout
	closeFn := func() {}
	if cfg.File != "" {
		fileLogger := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		}
		out = io.MultiWriter(os.Stdout, fileLogger)
		closeFn = func() { _ = fileLogger.Close() }
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}
	slog.SetDefault(slog.New(handler))
	return closeFn
}
