package server

import (
	"math/big"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type quoteFunc func(amountIn *big.Int) (*big.Int, error)

// PoolResponse describes the pool's current state.
type PoolResponse struct {
	AssetA      string `json:"asset_a"`
	AssetB      string `json:"asset_b"`
	ReserveA    string `json:"reserve_a"`
	ReserveB    string `json:"reserve_b"`
	TotalShares string `json:"total_shares"`
}

func (s *Server) handlePool(c *gin.Context) {
	c.JSON(http.StatusOK, PoolResponse{
		AssetA:      s.pool.AssetA().Hex(),
		AssetB:      s.pool.AssetB().Hex(),
		ReserveA:    s.pool.ReserveA().String(),
		ReserveB:    s.pool.ReserveB().String(),
		TotalShares: s.pool.TotalShares().String(),
	})
}

func (s *Server) handleShares(c *gin.Context) {
	owner, err := parseAddress(c.Param("owner"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid owner", Details: err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"owner":  owner.Hex(),
		"shares": s.pool.ShareOf(owner).String(),
	})
}

func (s *Server) handleQuoteDeposit(c *gin.Context) {
	amountA, err := parseAmount(c.Query("amount_a"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid amount_a", Details: err.Error()})
		return
	}
	amountB, err := s.pool.CalculateToken2Deposit(amountA)
	if err != nil {
		s.poolError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"amount_a": amountA.String(),
		"amount_b": amountB.String(),
	})
}

func (s *Server) handleQuoteSwap(c *gin.Context) {
	amountIn, err := parseAmount(c.Query("amount_in"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid amount_in", Details: err.Error()})
		return
	}

	direction := c.Query("direction")
	var quote quoteFunc
	switch direction {
	case "ab":
		quote = s.pool.CalculateToken1Swap
	case "ba":
		quote = s.pool.CalculateToken2Swap
	default:
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "direction must be ab or ba"})
		return
	}

	amountOut, err := quote(amountIn)
	if err != nil {
		s.poolError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"direction":  direction,
		"amount_in":  amountIn.String(),
		"amount_out": amountOut.String(),
	})
}

// AddLiquidityRequest is the deposit payload.
type AddLiquidityRequest struct {
	Provider string `json:"provider" binding:"required"`
	AmountA  string `json:"amount_a" binding:"required"`
	AmountB  string `json:"amount_b" binding:"required"`
}

func (s *Server) handleAddLiquidity(c *gin.Context) {
	var req AddLiquidityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request", Details: err.Error()})
		return
	}

	provider, err := parseAddress(req.Provider)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid provider", Details: err.Error()})
		return
	}
	amountA, err := parseAmount(req.AmountA)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid amount_a", Details: err.Error()})
		return
	}
	amountB, err := parseAmount(req.AmountB)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid amount_b", Details: err.Error()})
		return
	}

	minted, err := s.pool.AddLiquidity(c.Request.Context(), provider, amountA, amountB)
	if err != nil {
		s.poolError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"provider":      provider.Hex(),
		"shares_minted": minted.String(),
		"total_shares":  s.pool.TotalShares().String(),
	})
}

// RemoveLiquidityRequest is the withdrawal payload.
type RemoveLiquidityRequest struct {
	Provider string `json:"provider" binding:"required"`
	Shares   string `json:"shares" binding:"required"`
}

func (s *Server) handleRemoveLiquidity(c *gin.Context) {
	var req RemoveLiquidityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request", Details: err.Error()})
		return
	}

	provider, err := parseAddress(req.Provider)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid provider", Details: err.Error()})
		return
	}
	shares, err := parseAmount(req.Shares)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid shares", Details: err.Error()})
		return
	}

	outA, outB, err := s.pool.RemoveLiquidity(c.Request.Context(), provider, shares)
	if err != nil {
		s.poolError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"provider": provider.Hex(),
		"out_a":    outA.String(),
		"out_b":    outB.String(),
	})
}

// SwapRequest is the trade payload.
type SwapRequest struct {
	Trader    string `json:"trader" binding:"required"`
	Direction string `json:"direction" binding:"required"`
	AmountIn  string `json:"amount_in" binding:"required"`
}

func (s *Server) handleSwap(c *gin.Context) {
	var req SwapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request", Details: err.Error()})
		return
	}

	trader, err := parseAddress(req.Trader)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid trader", Details: err.Error()})
		return
	}
	amountIn, err := parseAmount(req.AmountIn)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid amount_in", Details: err.Error()})
		return
	}

	var amountOut *big.Int
	switch req.Direction {
	case "ab":
		amountOut, err = s.pool.SwapToken1(c.Request.Context(), trader, amountIn)
	case "ba":
		amountOut, err = s.pool.SwapToken2(c.Request.Context(), trader, amountIn)
	default:
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "direction must be ab or ba"})
		return
	}
	if err != nil {
		s.poolError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"trader":     trader.Hex(),
		"direction":  req.Direction,
		"amount_in":  amountIn.String(),
		"amount_out": amountOut.String(),
	})
}

// FaucetRequest credits an account on an in-memory asset ledger.
type FaucetRequest struct {
	Owner  string `json:"owner" binding:"required"`
	Asset  string `json:"asset" binding:"required"`
	Amount string `json:"amount" binding:"required"`
}

func (s *Server) handleFaucet(c *gin.Context) {
	var req FaucetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request", Details: err.Error()})
		return
	}

	owner, err := parseAddress(req.Owner)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid owner", Details: err.Error()})
		return
	}
	asset, err := parseAddress(req.Asset)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid asset", Details: err.Error()})
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid amount", Details: err.Error()})
		return
	}

	faucet, ok := s.faucets[asset]
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "unknown asset", Details: asset.Hex()})
		return
	}
	faucet.Mint(owner, amount)

	s.logger.Info("faucet mint",
		zap.String("owner", owner.Hex()),
		zap.String("asset", asset.Hex()),
		zap.String("amount", amount.String()),
	)
	c.JSON(http.StatusOK, gin.H{
		"owner":  owner.Hex(),
		"asset":  asset.Hex(),
		"amount": amount.String(),
	})
}
