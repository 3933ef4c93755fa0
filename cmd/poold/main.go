package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	root := &cobra.Command{
		Use:          "poold",
		Short:        "Constant-product liquidity pool daemon",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a pool over HTTP",
		RunE:  runServe,
	}

	serveCmd.Flags().String("listen", ":8080", "HTTP listen address")
	serveCmd.Flags().String("asset-a", "", "asset A address")
	serveCmd.Flags().String("asset-b", "", "asset B address")
	serveCmd.Flags().String("pool-address", "0x0000000000000000000000000000000000000a11", "pool transfer identity")
	serveCmd.Flags().String("event-out", "./data/events.jsonl", "event JSONL path (used when pg-dsn is empty)")
	serveCmd.Flags().String("pg-dsn", "", "Postgres DSN for the event log")
	serveCmd.Flags().Bool("metrics-enabled", true, "expose Prometheus /metrics")
	serveCmd.Flags().Duration("shutdown-timeout", 10*time.Second, "graceful shutdown timeout")
	serveCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(serveCmd)

	quoteCmd := &cobra.Command{
		Use:   "quote",
		Short: "Price a swap against given reserves",
		RunE:  runQuote,
	}

	quoteCmd.Flags().String("reserve-in", "", "reserve on the input side")
	quoteCmd.Flags().String("reserve-out", "", "reserve on the output side")
	quoteCmd.Flags().String("amount-in", "", "swap input amount")

	root.AddCommand(quoteCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
