// Package eventlog defines the sink the pool appends structured
// mint/burn/swap records to, plus the shipped implementations.
package eventlog

import (
	"context"
	"sync"

	"swapPool/internal/model"
)

// Sink receives pool records for downstream consumption.
type Sink interface {
	AppendMint(ctx context.Context, rec model.MintRecord) error
	AppendBurn(ctx context.Context, rec model.BurnRecord) error
	AppendSwap(ctx context.Context, rec model.SwapRecord) error
}

// Nop discards all records.
type Nop struct{}

func (Nop) AppendMint(context.Context, model.MintRecord) error { return nil }
func (Nop) AppendBurn(context.Context, model.BurnRecord) error { return nil }
func (Nop) AppendSwap(context.Context, model.SwapRecord) error { return nil }

// Memory keeps records in slices for inspection by tests.
type Memory struct {
	mu    sync.Mutex
	Mints []model.MintRecord
	Burns []model.BurnRecord
	Swaps []model.SwapRecord
}

func (m *Memory) AppendMint(_ context.Context, rec model.MintRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Mints = append(m.Mints, rec)
	return nil
}

func (m *Memory) AppendBurn(_ context.Context, rec model.BurnRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Burns = append(m.Burns, rec)
	return nil
}

func (m *Memory) AppendSwap(_ context.Context, rec model.SwapRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Swaps = append(m.Swaps, rec)
	return nil
}
