package amm

import (
	"cosmossdk.io/errors"
)

const codespace = "amm"

// Pool sentinel errors. Every failure is terminal for the invoking
// call; the pool state is unchanged when one of these is returned.
var (
	ErrZeroAmount            = errors.Register(codespace, 1, "amount cannot be zero")
	ErrEmptyPool             = errors.Register(codespace, 2, "pool holds no liquidity")
	ErrRatioMismatch         = errors.Register(codespace, 3, "deposit does not match reserve ratio")
	ErrInsufficientShares    = errors.Register(codespace, 4, "insufficient liquidity shares")
	ErrInsufficientLiquidity = errors.Register(codespace, 5, "swap would drain a reserve")
	ErrTransferFailed        = errors.Register(codespace, 6, "external transfer failed")
)
