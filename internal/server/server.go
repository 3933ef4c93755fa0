// Package server exposes the pool's queries and mutators over HTTP.
// Caller identity is request-supplied; authentication is the hosting
// environment's concern.
package server

import (
	"errors"
	"fmt"
	"math/big"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"swapPool/internal/amm"
	"swapPool/internal/ledger"
)

// Server routes HTTP requests to a single pool.
type Server struct {
	pool    *amm.Pool
	faucets map[common.Address]*ledger.Memory
	logger  *zap.Logger
	router  *gin.Engine
}

// Config carries the server's collaborators.
type Config struct {
	Pool *amm.Pool

	// Faucets maps asset identity to its in-memory ledger, when the
	// deployment runs on in-memory ledgers. Nil disables /v1/faucet.
	Faucets map[common.Address]*ledger.Memory

	Logger         *zap.Logger
	MetricsEnabled bool
}

// New builds the server and its routes.
func New(cfg Config) (*Server, error) {
	if cfg.Pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		pool:    cfg.Pool,
		faucets: cfg.Faucets,
		logger:  cfg.Logger,
		router:  router,
	}

	router.GET("/healthz", s.handleHealth)
	if cfg.MetricsEnabled {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	v1 := router.Group("/v1")
	v1.GET("/pool", s.handlePool)
	v1.GET("/pool/shares/:owner", s.handleShares)
	v1.GET("/quote/deposit", s.handleQuoteDeposit)
	v1.GET("/quote/swap", s.handleQuoteSwap)
	v1.POST("/liquidity/add", s.handleAddLiquidity)
	v1.POST("/liquidity/remove", s.handleRemoveLiquidity)
	v1.POST("/swap", s.handleSwap)
	if s.faucets != nil {
		v1.POST("/faucet", s.handleFaucet)
	}

	return s, nil
}

// Handler returns the HTTP handler for mounting.
func (s *Server) Handler() http.Handler { return s.router }

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) poolError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, amm.ErrZeroAmount), errors.Is(err, amm.ErrRatioMismatch):
		status = http.StatusBadRequest
	case errors.Is(err, amm.ErrEmptyPool),
		errors.Is(err, amm.ErrInsufficientShares),
		errors.Is(err, amm.ErrInsufficientLiquidity):
		status = http.StatusConflict
	case errors.Is(err, amm.ErrTransferFailed):
		status = http.StatusBadGateway
	}
	c.JSON(status, ErrorResponse{Error: err.Error()})
}

func parseAddress(raw string) (common.Address, error) {
	if !common.IsHexAddress(raw) {
		return common.Address{}, fmt.Errorf("invalid address: %q", raw)
	}
	return common.HexToAddress(raw), nil
}

func parseAmount(raw string) (*big.Int, error) {
	amount, ok := new(big.Int).SetString(raw, 10)
	if !ok || amount.Sign() < 0 {
		return nil, fmt.Errorf("invalid amount: %q", raw)
	}
	return amount, nil
}
