package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"swapPool/internal/amm"
	"swapPool/internal/config"
	"swapPool/internal/eventlog"
	"swapPool/internal/eventlog/postgres"
	"swapPool/internal/ledger"
	"swapPool/internal/server"
)

func runServe(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if !common.IsHexAddress(cfg.AssetA) || !common.IsHexAddress(cfg.AssetB) {
		return fmt.Errorf("asset-a and asset-b must be hex addresses")
	}
	if !common.IsHexAddress(cfg.PoolAddress) {
		return fmt.Errorf("pool-address must be a hex address")
	}

	assetA := common.HexToAddress(cfg.AssetA)
	assetB := common.HexToAddress(cfg.AssetB)
	poolAddr := common.HexToAddress(cfg.PoolAddress)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var events eventlog.Sink
	if cfg.PGDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()
		if err := store.EnsureSchema(ctx); err != nil {
			return err
		}
		events = store
	} else {
		events = eventlog.NewJsonl(cfg.EventOut)
	}

	ledgerA := ledger.NewMemory(poolAddr)
	ledgerB := ledger.NewMemory(poolAddr)

	pool, err := amm.New(amm.Config{
		AssetA:  assetA,
		AssetB:  assetB,
		Address: poolAddr,
		LedgerA: ledgerA,
		LedgerB: ledgerB,
		Events:  events,
		Logger:  logger,
		Metrics: amm.NewMetrics(),
	})
	if err != nil {
		return err
	}

	srv, err := server.New(server.Config{
		Pool: pool,
		Faucets: map[common.Address]*ledger.Memory{
			assetA: ledgerA,
			assetB: ledgerB,
		},
		Logger:         logger,
		MetricsEnabled: cfg.MetricsEnabled,
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:    cfg.Listen,
		Handler: srv.Handler(),
	}

	logger.Info("poold start",
		zap.String("listen", cfg.Listen),
		zap.String("asset_a", assetA.Hex()),
		zap.String("asset_b", assetB.Hex()),
		zap.String("pool_address", poolAddr.Hex()),
		zap.Bool("postgres", cfg.PGDSN != ""),
		zap.Bool("metrics", cfg.MetricsEnabled),
	)

	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
