package main

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"swapPool/internal/amm"
	"swapPool/internal/ledger"
)

// runQuote prices a single A->B swap against a throwaway pool seeded
// with the given reserves.
func runQuote(cmd *cobra.Command, _ []string) error {
	reserveIn, err := flagAmount(cmd, "reserve-in")
	if err != nil {
		return err
	}
	reserveOut, err := flagAmount(cmd, "reserve-out")
	if err != nil {
		return err
	}
	amountIn, err := flagAmount(cmd, "amount-in")
	if err != nil {
		return err
	}

	poolAddr := common.HexToAddress("0x0000000000000000000000000000000000000a11")
	seeder := common.HexToAddress("0x0000000000000000000000000000000000000001")

	ledgerA := ledger.NewMemory(poolAddr)
	ledgerB := ledger.NewMemory(poolAddr)
	ledgerA.Mint(seeder, reserveIn)
	ledgerB.Mint(seeder, reserveOut)

	pool, err := amm.New(amm.Config{
		AssetA:  common.HexToAddress("0x0000000000000000000000000000000000000aaa"),
		AssetB:  common.HexToAddress("0x0000000000000000000000000000000000000bbb"),
		Address: poolAddr,
		LedgerA: ledgerA,
		LedgerB: ledgerB,
	})
	if err != nil {
		return err
	}
	if _, err := pool.AddLiquidity(context.Background(), seeder, reserveIn, reserveOut); err != nil {
		return fmt.Errorf("seed reserves: %w", err)
	}

	amountOut, err := pool.CalculateToken1Swap(amountIn)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "amount_out=%s\n", amountOut)
	return nil
}

func flagAmount(cmd *cobra.Command, name string) (*big.Int, error) {
	raw, err := cmd.Flags().GetString(name)
	if err != nil {
		return nil, err
	}
	amount, ok := new(big.Int).SetString(raw, 10)
	if !ok || amount.Sign() <= 0 {
		return nil, fmt.Errorf("%s must be a positive integer, got %q", name, raw)
	}
	return amount, nil
}
