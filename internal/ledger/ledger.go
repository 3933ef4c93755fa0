// Package ledger defines the asset-transfer capability the pool core
// depends on. One Token per asset; the pool never moves funds itself.
package ledger

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Token moves amounts of a single asset between owners.
type Token interface {
	// TransferFrom pulls amount from owner into to.
	TransferFrom(ctx context.Context, owner, to common.Address, amount *big.Int) error

	// Transfer pushes amount from the pool's own balance to to.
	Transfer(ctx context.Context, to common.Address, amount *big.Int) error

	// BalanceOf reports the owner's current balance.
	BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error)
}
