package amm

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"swapPool/internal/model"
)

// AddLiquidity deposits amountA and amountB from provider and mints
// shares in return. The first deposit into an empty pool fixes the
// price ratio and mints the initial share constant; later deposits must
// match the current reserve ratio exactly and mint proportionally.
// Returns the minted share amount.
func (p *Pool) AddLiquidity(ctx context.Context, provider common.Address, amountA, amountB *big.Int) (*big.Int, error) {
	if amountA == nil || amountA.Sign() == 0 || amountB == nil || amountB.Sign() == 0 {
		return nil, ErrZeroAmount.Wrap("both deposit amounts must be positive")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	var minted *big.Int
	if p.totalShares.Sign() == 0 {
		minted = new(big.Int).Set(initialShares)
	} else {
		requiredB := mulDiv(p.reserveB, amountA, p.reserveA)
		if amountB.Cmp(requiredB) != 0 {
			return nil, ErrRatioMismatch.Wrapf("amountB %s does not match required %s", amountB, requiredB)
		}
		minted = mulDiv(p.totalShares, amountA, p.reserveA)
	}

	// Effects before interactions: reserves and shares are updated,
	// then the pulls run; a failed pull unwinds everything under the
	// same lock.
	p.reserveA.Add(p.reserveA, amountA)
	p.reserveB.Add(p.reserveB, amountB)
	p.totalShares.Add(p.totalShares, minted)
	p.creditShares(provider, minted)

	if err := p.ledgerA.TransferFrom(ctx, provider, p.addr, amountA); err != nil {
		p.revertDeposit(provider, amountA, amountB, minted)
		p.countLiquidity("add", "failed")
		return nil, ErrTransferFailed.Wrapf("pull %s of asset A: %v", amountA, err)
	}
	if err := p.ledgerB.TransferFrom(ctx, provider, p.addr, amountB); err != nil {
		if cerr := p.ledgerA.Transfer(ctx, provider, amountA); cerr != nil {
			p.logger.Error("compensating refund of asset A failed",
				zap.String("provider", provider.Hex()),
				zap.String("amount", amountA.String()),
				zap.Error(cerr),
			)
		}
		p.revertDeposit(provider, amountA, amountB, minted)
		p.countLiquidity("add", "failed")
		return nil, ErrTransferFailed.Wrapf("pull %s of asset B: %v", amountB, err)
	}

	rec := model.MintRecord{
		Provider:     provider.Hex(),
		AmountA:      amountA.String(),
		AmountB:      amountB.String(),
		SharesMinted: minted.String(),
		Timestamp:    p.timestamp(),
	}
	if err := p.events.AppendMint(ctx, rec); err != nil {
		p.logger.Warn("mint record not appended", zap.Error(err))
	}

	p.logger.Info("liquidity added",
		zap.String("provider", provider.Hex()),
		zap.String("amount_a", amountA.String()),
		zap.String("amount_b", amountB.String()),
		zap.String("shares_minted", minted.String()),
	)
	p.countLiquidity("add", "ok")
	p.observeReserves()
	return new(big.Int).Set(minted), nil
}

func (p *Pool) revertDeposit(provider common.Address, amountA, amountB, minted *big.Int) {
	p.reserveA.Sub(p.reserveA, amountA)
	p.reserveB.Sub(p.reserveB, amountB)
	p.totalShares.Sub(p.totalShares, minted)
	p.debitShares(provider, minted)
}

// CalculateToken2Deposit returns the asset B amount a deposit of
// amountA must be paired with to keep the reserve ratio.
func (p *Pool) CalculateToken2Deposit(amountA *big.Int) (*big.Int, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.reserveA.Sign() == 0 {
		return nil, ErrEmptyPool.Wrap("no reserve to derive a ratio from")
	}
	if amountA == nil {
		amountA = big.NewInt(0)
	}
	return mulDiv(p.reserveB, amountA, p.reserveA), nil
}

// RemoveLiquidity burns shareAmount of the provider's shares and pays
// out the proportional slice of both reserves. Burning the last share
// empties the pool. Returns the paid-out amounts of asset A and B.
func (p *Pool) RemoveLiquidity(ctx context.Context, provider common.Address, shareAmount *big.Int) (*big.Int, *big.Int, error) {
	if shareAmount == nil || shareAmount.Sign() == 0 {
		return nil, nil, ErrZeroAmount.Wrap("share amount must be positive")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	held := p.shares[provider]
	if held == nil || held.Cmp(shareAmount) < 0 {
		return nil, nil, ErrInsufficientShares.Wrapf("owner holds %s, burn of %s requested", balanceOrZero(held), shareAmount)
	}

	outA := mulDiv(p.reserveA, shareAmount, p.totalShares)
	outB := mulDiv(p.reserveB, shareAmount, p.totalShares)

	p.reserveA.Sub(p.reserveA, outA)
	p.reserveB.Sub(p.reserveB, outB)
	p.totalShares.Sub(p.totalShares, shareAmount)
	p.debitShares(provider, shareAmount)

	if err := p.ledgerA.Transfer(ctx, provider, outA); err != nil {
		p.revertWithdrawal(provider, outA, outB, shareAmount)
		p.countLiquidity("remove", "failed")
		return nil, nil, ErrTransferFailed.Wrapf("push %s of asset A: %v", outA, err)
	}
	if err := p.ledgerB.Transfer(ctx, provider, outB); err != nil {
		if cerr := p.ledgerA.TransferFrom(ctx, provider, p.addr, outA); cerr != nil {
			p.logger.Error("compensating pull of asset A failed",
				zap.String("provider", provider.Hex()),
				zap.String("amount", outA.String()),
				zap.Error(cerr),
			)
		}
		p.revertWithdrawal(provider, outA, outB, shareAmount)
		p.countLiquidity("remove", "failed")
		return nil, nil, ErrTransferFailed.Wrapf("push %s of asset B: %v", outB, err)
	}

	rec := model.BurnRecord{
		Provider:     provider.Hex(),
		AmountA:      outA.String(),
		AmountB:      outB.String(),
		SharesBurned: shareAmount.String(),
		Timestamp:    p.timestamp(),
	}
	if err := p.events.AppendBurn(ctx, rec); err != nil {
		p.logger.Warn("burn record not appended", zap.Error(err))
	}

	p.logger.Info("liquidity removed",
		zap.String("provider", provider.Hex()),
		zap.String("out_a", outA.String()),
		zap.String("out_b", outB.String()),
		zap.String("shares_burned", shareAmount.String()),
	)
	p.countLiquidity("remove", "ok")
	p.observeReserves()
	return outA, outB, nil
}

func (p *Pool) revertWithdrawal(provider common.Address, outA, outB, burned *big.Int) {
	p.reserveA.Add(p.reserveA, outA)
	p.reserveB.Add(p.reserveB, outB)
	p.totalShares.Add(p.totalShares, burned)
	p.creditShares(provider, burned)
}

func (p *Pool) countLiquidity(op, status string) {
	if p.metrics == nil {
		return
	}
	p.metrics.LiquidityOps.WithLabelValues(op, status).Inc()
}

func balanceOrZero(bal *big.Int) *big.Int {
	if bal == nil {
		return big.NewInt(0)
	}
	return bal
}
