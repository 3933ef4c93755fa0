package amm

import (
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments for pool activity. A nil
// *Metrics disables recording.
type Metrics struct {
	SwapsTotal   *prometheus.CounterVec
	LiquidityOps *prometheus.CounterVec
	PoolReserves *prometheus.GaugeVec
	ShareSupply  prometheus.Gauge
}

var (
	metricsOnce sync.Once
	metrics     *Metrics
)

// NewMetrics creates and registers the pool metrics on the default
// registry. Registration is once per process.
func NewMetrics() *Metrics {
	metricsOnce.Do(func() {
		metrics = &Metrics{
			SwapsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "swappool",
					Name:      "swaps_total",
					Help:      "Swaps executed, by direction and status",
				},
				[]string{"direction", "status"},
			),
			LiquidityOps: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "swappool",
					Name:      "liquidity_ops_total",
					Help:      "Liquidity operations, by kind and status",
				},
				[]string{"op", "status"},
			),
			PoolReserves: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Namespace: "swappool",
					Name:      "pool_reserve",
					Help:      "Current reserve per asset, in base units",
				},
				[]string{"asset"},
			),
			ShareSupply: promauto.NewGauge(
				prometheus.GaugeOpts{
					Namespace: "swappool",
					Name:      "share_supply",
					Help:      "Total ownership shares outstanding, in base units",
				},
			),
		}
	})
	return metrics
}

func (m *Metrics) setReserves(assetA common.Address, reserveA *big.Int, assetB common.Address, reserveB *big.Int, shares *big.Int) {
	m.PoolReserves.WithLabelValues(assetA.Hex()).Set(bigFloat(reserveA))
	m.PoolReserves.WithLabelValues(assetB.Hex()).Set(bigFloat(reserveB))
	m.ShareSupply.Set(bigFloat(shares))
}

// bigFloat down-converts for gauge export; precision loss only affects
// the exported metric, never pool arithmetic.
func bigFloat(v *big.Int) float64 {
	f, _ := new(big.Float).SetInt(v).Float64()
	return f
}
