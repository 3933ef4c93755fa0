// Package amm implements a two-asset constant-product liquidity pool:
// reserves, proportional ownership shares, and swap pricing, all on
// integer arithmetic with floor division.
package amm

import (
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"swapPool/internal/eventlog"
	"swapPool/internal/ledger"
)

// shareScale is the number of fractional digits carried by share
// quantities. One displayed share is 10^shareScale base units.
const shareScale = 18

var (
	sharePrecision = new(big.Int).Exp(big.NewInt(10), big.NewInt(shareScale), nil)

	// initialShares is minted to the first provider regardless of the
	// deposited amounts: 100 shares at full scale.
	initialShares = new(big.Int).Mul(big.NewInt(100), sharePrecision)
)

// Pool owns the reserves, the share ledger, and the two transfer
// capabilities. All mutation goes through AddLiquidity, RemoveLiquidity
// and the swap methods; the zero field values are never exposed.
type Pool struct {
	mu sync.RWMutex

	assetA common.Address
	assetB common.Address
	addr   common.Address

	ledgerA ledger.Token
	ledgerB ledger.Token

	reserveA    *big.Int
	reserveB    *big.Int
	totalShares *big.Int
	shares      map[common.Address]*big.Int

	events  eventlog.Sink
	logger  *zap.Logger
	metrics *Metrics

	now func() time.Time
}

// Config carries the immutable identities and collaborators of a pool.
type Config struct {
	AssetA  common.Address
	AssetB  common.Address
	Address common.Address

	LedgerA ledger.Token
	LedgerB ledger.Token

	Events  eventlog.Sink
	Logger  *zap.Logger
	Metrics *Metrics
}

// New builds an empty pool. The asset pair and the pool's own transfer
// identity are fixed for the pool's lifetime.
func New(cfg Config) (*Pool, error) {
	if cfg.LedgerA == nil || cfg.LedgerB == nil {
		return nil, fmt.Errorf("both asset ledgers are required")
	}
	if cfg.AssetA == cfg.AssetB {
		return nil, fmt.Errorf("pool assets must differ")
	}
	if cfg.Events == nil {
		cfg.Events = eventlog.Nop{}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Pool{
		assetA:      cfg.AssetA,
		assetB:      cfg.AssetB,
		addr:        cfg.Address,
		ledgerA:     cfg.LedgerA,
		ledgerB:     cfg.LedgerB,
		reserveA:    big.NewInt(0),
		reserveB:    big.NewInt(0),
		totalShares: big.NewInt(0),
		shares:      make(map[common.Address]*big.Int),
		events:      cfg.Events,
		logger:      cfg.Logger,
		metrics:     cfg.Metrics,
		now:         time.Now,
	}, nil
}

// AssetA returns the identity of the first pool asset.
func (p *Pool) AssetA() common.Address { return p.assetA }

// AssetB returns the identity of the second pool asset.
func (p *Pool) AssetB() common.Address { return p.assetB }

// ReserveA returns the current reserve of asset A.
func (p *Pool) ReserveA() *big.Int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return new(big.Int).Set(p.reserveA)
}

// ReserveB returns the current reserve of asset B.
func (p *Pool) ReserveB() *big.Int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return new(big.Int).Set(p.reserveB)
}

// TotalShares returns the total ownership units issued.
func (p *Pool) TotalShares() *big.Int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return new(big.Int).Set(p.totalShares)
}

// ShareOf returns the owner's share balance, zero if none.
func (p *Pool) ShareOf(owner common.Address) *big.Int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if bal, ok := p.shares[owner]; ok {
		return new(big.Int).Set(bal)
	}
	return big.NewInt(0)
}

// creditShares adds minted to the owner's balance. Caller holds the
// write lock.
func (p *Pool) creditShares(owner common.Address, minted *big.Int) {
	if minted.Sign() == 0 {
		return
	}
	if bal, ok := p.shares[owner]; ok {
		bal.Add(bal, minted)
		return
	}
	p.shares[owner] = new(big.Int).Set(minted)
}

// debitShares removes burned from the owner's balance, dropping the
// entry at zero so the map only holds live positions. Caller holds the
// write lock.
func (p *Pool) debitShares(owner common.Address, burned *big.Int) {
	if burned.Sign() == 0 {
		return
	}
	bal := p.shares[owner]
	bal.Sub(bal, burned)
	if bal.Sign() == 0 {
		delete(p.shares, owner)
	}
}

// CheckInvariants verifies the structural invariants of the pool state
// and returns the first violation found. Mutators maintain these by
// construction; tests call this after every operation.
func (p *Pool) CheckInvariants() error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	sum := big.NewInt(0)
	for owner, bal := range p.shares {
		if bal.Sign() <= 0 {
			return fmt.Errorf("share balance of %s is not positive: %s", owner.Hex(), bal)
		}
		sum.Add(sum, bal)
	}
	if sum.Cmp(p.totalShares) != 0 {
		return fmt.Errorf("share ledger sums to %s, total is %s", sum, p.totalShares)
	}

	if p.reserveA.Sign() < 0 || p.reserveB.Sign() < 0 || p.totalShares.Sign() < 0 {
		return fmt.Errorf("negative quantity: reserveA=%s reserveB=%s shares=%s", p.reserveA, p.reserveB, p.totalShares)
	}

	empty := p.totalShares.Sign() == 0
	if empty != (p.reserveA.Sign() == 0 && p.reserveB.Sign() == 0) {
		return fmt.Errorf("emptiness mismatch: reserveA=%s reserveB=%s shares=%s", p.reserveA, p.reserveB, p.totalShares)
	}
	if !empty && (p.reserveA.Sign() == 0 || p.reserveB.Sign() == 0) {
		return fmt.Errorf("seeded pool with drained reserve: reserveA=%s reserveB=%s", p.reserveA, p.reserveB)
	}
	return nil
}

// mulDiv returns floor(a * b / d). Floor keeps every rounding remainder
// inside the pool.
func mulDiv(a, b, d *big.Int) *big.Int {
	out := new(big.Int).Mul(a, b)
	return out.Quo(out, d)
}

func (p *Pool) timestamp() uint64 {
	return uint64(p.now().Unix())
}

func (p *Pool) observeReserves() {
	if p.metrics == nil {
		return
	}
	p.metrics.setReserves(p.assetA, p.reserveA, p.assetB, p.reserveB, p.totalShares)
}
