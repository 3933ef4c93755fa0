package amm

import (
	"context"
	"errors"
	"math/big"
	"testing"
)

func TestSwapPricingDeterminism(t *testing.T) {
	env := newTestEnv(t)
	env.fund(alice, 150000, 150000)
	env.mustAdd(t, alice, 150000, 150000)
	env.ledgerA.Mint(bob, big.NewInt(1))

	quote, err := env.pool.CalculateToken1Swap(big.NewInt(1))
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if quote.Int64() != 1 {
		t.Fatalf("quote = %s, want 1", quote)
	}

	received, err := env.pool.SwapToken1(context.Background(), bob, big.NewInt(1))
	if err != nil {
		t.Fatalf("swap: %v", err)
	}
	if received.Cmp(quote) != 0 {
		t.Fatalf("received %s, quoted %s", received, quote)
	}
	if env.pool.ReserveA().Int64() != 150001 || env.pool.ReserveB().Int64() != 149999 {
		t.Fatalf("reserves %s / %s, want 150001 / 149999", env.pool.ReserveA(), env.pool.ReserveB())
	}
	env.assertInvariants(t)

	bal, err := env.ledgerB.BalanceOf(context.Background(), bob)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if bal.Int64() != 1 {
		t.Fatalf("bob received %s of asset B, want 1", bal)
	}
}

func TestSwapEmitsRecord(t *testing.T) {
	env := newTestEnv(t)
	env.fund(alice, 150000, 150000)
	env.mustAdd(t, alice, 150000, 150000)
	env.ledgerB.Mint(bob, big.NewInt(5000))

	out, err := env.pool.SwapToken2(context.Background(), bob, big.NewInt(5000))
	if err != nil {
		t.Fatalf("swap: %v", err)
	}

	if len(env.events.Swaps) != 1 {
		t.Fatalf("expected one swap record, got %d", len(env.events.Swaps))
	}
	rec := env.events.Swaps[0]
	if rec.Trader != bob.Hex() {
		t.Fatalf("record trader = %s", rec.Trader)
	}
	if rec.AssetGiven != testAssetB.Hex() || rec.AssetReceived != testAssetA.Hex() {
		t.Fatalf("record assets = %s -> %s", rec.AssetGiven, rec.AssetReceived)
	}
	if rec.AmountGiven != "5000" || rec.AmountReceived != out.String() {
		t.Fatalf("record amounts = %s / %s", rec.AmountGiven, rec.AmountReceived)
	}
	if rec.ReserveGivenAfter != env.pool.ReserveB().String() {
		t.Fatalf("record reserve given after = %s, pool has %s", rec.ReserveGivenAfter, env.pool.ReserveB())
	}
	if rec.ReserveReceivedAfter != env.pool.ReserveA().String() {
		t.Fatalf("record reserve received after = %s, pool has %s", rec.ReserveReceivedAfter, env.pool.ReserveA())
	}
	if rec.Timestamp == 0 {
		t.Fatal("record timestamp not set")
	}
}

func TestSwapZeroAmount(t *testing.T) {
	env := newTestEnv(t)
	env.fund(alice, 1000, 1000)
	env.mustAdd(t, alice, 1000, 1000)

	if _, err := env.pool.SwapToken1(context.Background(), bob, big.NewInt(0)); !errors.Is(err, ErrZeroAmount) {
		t.Fatalf("expected ErrZeroAmount, got %v", err)
	}
	if _, err := env.pool.CalculateToken2Swap(big.NewInt(0)); !errors.Is(err, ErrZeroAmount) {
		t.Fatalf("quote: expected ErrZeroAmount, got %v", err)
	}
}

func TestSwapEmptyPool(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.pool.CalculateToken1Swap(big.NewInt(10)); !errors.Is(err, ErrEmptyPool) {
		t.Fatalf("expected ErrEmptyPool, got %v", err)
	}
	if _, err := env.pool.SwapToken2(context.Background(), bob, big.NewInt(10)); !errors.Is(err, ErrEmptyPool) {
		t.Fatalf("swap: expected ErrEmptyPool, got %v", err)
	}
}

func TestSwapInsufficientLiquidity(t *testing.T) {
	env := newTestEnv(t)
	env.fund(alice, 10, 10)
	env.mustAdd(t, alice, 10, 10)

	// Input large enough that the opposing reserve would be emptied.
	_, err := env.pool.CalculateToken1Swap(big.NewInt(200))
	if !errors.Is(err, ErrInsufficientLiquidity) {
		t.Fatalf("expected ErrInsufficientLiquidity, got %v", err)
	}

	env.ledgerA.Mint(bob, big.NewInt(200))
	_, err = env.pool.SwapToken1(context.Background(), bob, big.NewInt(200))
	if !errors.Is(err, ErrInsufficientLiquidity) {
		t.Fatalf("swap: expected ErrInsufficientLiquidity, got %v", err)
	}
	if env.pool.ReserveA().Int64() != 10 || env.pool.ReserveB().Int64() != 10 {
		t.Fatalf("failed swap mutated reserves: %s / %s", env.pool.ReserveA(), env.pool.ReserveB())
	}
	env.assertInvariants(t)
}

func TestSwapBothDirections(t *testing.T) {
	env := newTestEnv(t)
	env.fund(alice, 100000, 100000)
	env.mustAdd(t, alice, 100000, 100000)
	env.ledgerA.Mint(bob, big.NewInt(10000))

	outB, err := env.pool.SwapToken1(context.Background(), bob, big.NewInt(10000))
	if err != nil {
		t.Fatalf("swap A->B: %v", err)
	}

	// Trade the proceeds back; slippage means bob never profits.
	outA, err := env.pool.SwapToken2(context.Background(), bob, outB)
	if err != nil {
		t.Fatalf("swap B->A: %v", err)
	}
	if outA.Int64() > 10000 {
		t.Fatalf("round trip paid out %s for 10000 in", outA)
	}
	env.assertInvariants(t)
}

// The output-side reserve is floored, so the reserve product may dip
// below its pre-trade value by strictly less than one unit of the
// post-trade input reserve.
func TestSwapProductBound(t *testing.T) {
	env := newTestEnv(t)
	env.fund(alice, 150000, 150000)
	env.mustAdd(t, alice, 150000, 150000)
	env.ledgerA.Mint(bob, big.NewInt(1000000))

	for _, in := range []int64{1, 7, 999, 15013, 140000} {
		before := new(big.Int).Mul(env.pool.ReserveA(), env.pool.ReserveB())
		if _, err := env.pool.SwapToken1(context.Background(), bob, big.NewInt(in)); err != nil {
			t.Fatalf("swap %d: %v", in, err)
		}
		after := new(big.Int).Mul(env.pool.ReserveA(), env.pool.ReserveB())

		diff := new(big.Int).Sub(before, after)
		if diff.Sign() < 0 {
			continue // product grew, rounding favored the pool
		}
		if diff.Cmp(env.pool.ReserveA()) >= 0 {
			t.Fatalf("swap %d: product deficit %s exceeds bound %s", in, diff, env.pool.ReserveA())
		}
		env.assertInvariants(t)
	}
}

func TestSwapRollsBackWhenPushFails(t *testing.T) {
	env := newTestEnv(t)
	flaky := &failingToken{inner: env.ledgerB}
	pool, err := New(Config{
		AssetA:  testAssetA,
		AssetB:  testAssetB,
		Address: testPool,
		LedgerA: env.ledgerA,
		LedgerB: flaky,
	})
	if err != nil {
		t.Fatalf("new pool: %v", err)
	}
	env.fund(alice, 100000, 100000)
	if _, err := pool.AddLiquidity(context.Background(), alice, big.NewInt(100000), big.NewInt(100000)); err != nil {
		t.Fatalf("seed: %v", err)
	}
	env.ledgerA.Mint(bob, big.NewInt(500))

	flaky.failPush = true
	_, err = pool.SwapToken1(context.Background(), bob, big.NewInt(500))
	if !errors.Is(err, ErrTransferFailed) {
		t.Fatalf("expected ErrTransferFailed, got %v", err)
	}

	if pool.ReserveA().Int64() != 100000 || pool.ReserveB().Int64() != 100000 {
		t.Fatalf("failed swap mutated reserves: %s / %s", pool.ReserveA(), pool.ReserveB())
	}
	// Compensating refund returned bob's input.
	bal, err := env.ledgerA.BalanceOf(context.Background(), bob)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if bal.Int64() != 500 {
		t.Fatalf("bob's balance %s after refund, want 500", bal)
	}
	if err := pool.CheckInvariants(); err != nil {
		t.Fatalf("invariant violated: %v", err)
	}
}

func TestSwapPullFailureLeavesStateUntouched(t *testing.T) {
	env := newTestEnv(t)
	env.fund(alice, 100000, 100000)
	env.mustAdd(t, alice, 100000, 100000)

	// Bob holds nothing, so the pull fails at the ledger.
	_, err := env.pool.SwapToken1(context.Background(), bob, big.NewInt(500))
	if !errors.Is(err, ErrTransferFailed) {
		t.Fatalf("expected ErrTransferFailed, got %v", err)
	}
	if env.pool.ReserveA().Int64() != 100000 || env.pool.ReserveB().Int64() != 100000 {
		t.Fatalf("failed swap mutated reserves: %s / %s", env.pool.ReserveA(), env.pool.ReserveB())
	}
	env.assertInvariants(t)
}
