package ledger

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// Memory is an in-process Token backed by a balance map. The holder
// address is the identity debited by Transfer, normally the pool itself.
type Memory struct {
	mu       sync.Mutex
	holder   common.Address
	balances map[common.Address]*big.Int
}

// NewMemory builds an empty in-memory ledger with the given holder.
func NewMemory(holder common.Address) *Memory {
	return &Memory{
		holder:   holder,
		balances: make(map[common.Address]*big.Int),
	}
}

// Mint credits amount to owner. Not part of the Token capability; used
// by tests and the faucet endpoint to fund accounts.
func (m *Memory) Mint(owner common.Address, amount *big.Int) {
	if amount == nil || amount.Sign() <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.credit(owner, amount)
}

// TransferFrom moves amount from owner to to.
func (m *Memory) TransferFrom(_ context.Context, owner, to common.Address, amount *big.Int) error {
	return m.move(owner, to, amount)
}

// Transfer moves amount from the holder to to.
func (m *Memory) Transfer(_ context.Context, to common.Address, amount *big.Int) error {
	return m.move(m.holder, to, amount)
}

// BalanceOf reports the owner's balance.
func (m *Memory) BalanceOf(_ context.Context, owner common.Address) (*big.Int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if bal, ok := m.balances[owner]; ok {
		return new(big.Int).Set(bal), nil
	}
	return big.NewInt(0), nil
}

func (m *Memory) move(from, to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return fmt.Errorf("invalid transfer amount")
	}
	if amount.Sign() == 0 {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	bal, ok := m.balances[from]
	if !ok || bal.Cmp(amount) < 0 {
		return fmt.Errorf("insufficient balance: %s has %s, needs %s", from.Hex(), balString(bal), amount)
	}

	bal.Sub(bal, amount)
	if bal.Sign() == 0 {
		delete(m.balances, from)
	}
	m.credit(to, amount)
	return nil
}

func (m *Memory) credit(owner common.Address, amount *big.Int) {
	if bal, ok := m.balances[owner]; ok {
		bal.Add(bal, amount)
		return
	}
	m.balances[owner] = new(big.Int).Set(amount)
}

func balString(bal *big.Int) string {
	if bal == nil {
		return "0"
	}
	return bal.String()
}
