package amm

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"swapPool/internal/model"
)

// swapOutput prices amountIn against the given reserve snapshot:
// the reserve product is held constant and the output is what the
// opposing reserve sheds. Caller holds at least the read lock.
func (p *Pool) swapOutput(reserveIn, reserveOut, amountIn *big.Int) (*big.Int, error) {
	if p.totalShares.Sign() == 0 {
		return nil, ErrEmptyPool.Wrap("no liquidity to price against")
	}
	if amountIn == nil || amountIn.Sign() == 0 {
		return nil, ErrZeroAmount.Wrap("swap input must be positive")
	}

	afterIn := new(big.Int).Add(reserveIn, amountIn)
	afterOut := mulDiv(reserveIn, reserveOut, afterIn)
	amountOut := new(big.Int).Sub(reserveOut, afterOut)

	// A swap may never fully drain a reserve; an empty side makes the
	// pool unpriceable while shares are still outstanding.
	if amountOut.Cmp(reserveOut) >= 0 {
		return nil, ErrInsufficientLiquidity.Wrapf("output %s would drain reserve %s", amountOut, reserveOut)
	}
	return amountOut, nil
}

// CalculateToken1Swap quotes the asset B output for an asset A input.
func (p *Pool) CalculateToken1Swap(amountIn *big.Int) (*big.Int, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.swapOutput(p.reserveA, p.reserveB, amountIn)
}

// CalculateToken2Swap quotes the asset A output for an asset B input.
func (p *Pool) CalculateToken2Swap(amountIn *big.Int) (*big.Int, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.swapOutput(p.reserveB, p.reserveA, amountIn)
}

// SwapToken1 trades amountIn of asset A for asset B. The output equals
// what CalculateToken1Swap quotes against the same pre-trade state.
func (p *Pool) SwapToken1(ctx context.Context, trader common.Address, amountIn *big.Int) (*big.Int, error) {
	return p.swap(ctx, trader, amountIn, true)
}

// SwapToken2 trades amountIn of asset B for asset A.
func (p *Pool) SwapToken2(ctx context.Context, trader common.Address, amountIn *big.Int) (*big.Int, error) {
	return p.swap(ctx, trader, amountIn, false)
}

func (p *Pool) swap(ctx context.Context, trader common.Address, amountIn *big.Int, aToB bool) (*big.Int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	direction := "ab"
	reserveIn, reserveOut := p.reserveA, p.reserveB
	ledgerIn, ledgerOut := p.ledgerA, p.ledgerB
	assetIn, assetOut := p.assetA, p.assetB
	if !aToB {
		direction = "ba"
		reserveIn, reserveOut = p.reserveB, p.reserveA
		ledgerIn, ledgerOut = p.ledgerB, p.ledgerA
		assetIn, assetOut = p.assetB, p.assetA
	}

	// Priced against the pre-trade snapshot, before any reserve moves.
	amountOut, err := p.swapOutput(reserveIn, reserveOut, amountIn)
	if err != nil {
		return nil, err
	}

	reserveIn.Add(reserveIn, amountIn)
	reserveOut.Sub(reserveOut, amountOut)

	revert := func() {
		reserveIn.Sub(reserveIn, amountIn)
		reserveOut.Add(reserveOut, amountOut)
	}

	if err := ledgerIn.TransferFrom(ctx, trader, p.addr, amountIn); err != nil {
		revert()
		p.countSwap(direction, "failed")
		return nil, ErrTransferFailed.Wrapf("pull %s of %s: %v", amountIn, assetIn.Hex(), err)
	}
	if err := ledgerOut.Transfer(ctx, trader, amountOut); err != nil {
		if cerr := ledgerIn.Transfer(ctx, trader, amountIn); cerr != nil {
			p.logger.Error("compensating refund of swap input failed",
				zap.String("trader", trader.Hex()),
				zap.String("amount", amountIn.String()),
				zap.Error(cerr),
			)
		}
		revert()
		p.countSwap(direction, "failed")
		return nil, ErrTransferFailed.Wrapf("push %s of %s: %v", amountOut, assetOut.Hex(), err)
	}

	rec := model.SwapRecord{
		Trader:               trader.Hex(),
		AssetGiven:           assetIn.Hex(),
		AmountGiven:          amountIn.String(),
		AssetReceived:        assetOut.Hex(),
		AmountReceived:       amountOut.String(),
		ReserveGivenAfter:    reserveIn.String(),
		ReserveReceivedAfter: reserveOut.String(),
		Timestamp:            p.timestamp(),
	}
	if err := p.events.AppendSwap(ctx, rec); err != nil {
		p.logger.Warn("swap record not appended", zap.Error(err))
	}

	p.logger.Info("swap executed",
		zap.String("trader", trader.Hex()),
		zap.String("direction", direction),
		zap.String("amount_in", amountIn.String()),
		zap.String("amount_out", amountOut.String()),
	)
	p.countSwap(direction, "ok")
	p.observeReserves()
	return amountOut, nil
}

func (p *Pool) countSwap(direction, status string) {
	if p.metrics == nil {
		return
	}
	p.metrics.SwapsTotal.WithLabelValues(direction, status).Inc()
}
