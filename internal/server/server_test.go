package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"swapPool/internal/amm"
	"swapPool/internal/eventlog"
	"swapPool/internal/ledger"
)

var (
	assetA   = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	assetB   = common.HexToAddress("0x00000000000000000000000000000000000000bb")
	poolAddr = common.HexToAddress("0x0000000000000000000000000000000000000a11")
	provider = common.HexToAddress("0x0000000000000000000000000000000000000001")
	trader   = common.HexToAddress("0x0000000000000000000000000000000000000002")
)

func newTestServer(t *testing.T) (*httptest.Server, *amm.Pool) {
	t.Helper()

	ledgerA := ledger.NewMemory(poolAddr)
	ledgerB := ledger.NewMemory(poolAddr)

	pool, err := amm.New(amm.Config{
		AssetA:  assetA,
		AssetB:  assetB,
		Address: poolAddr,
		LedgerA: ledgerA,
		LedgerB: ledgerB,
		Events:  &eventlog.Memory{},
	})
	require.NoError(t, err)

	srv, err := New(Config{
		Pool: pool,
		Faucets: map[common.Address]*ledger.Memory{
			assetA: ledgerA,
			assetB: ledgerB,
		},
	})
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, pool
}

func postJSON(t *testing.T, url string, payload interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func getJSON(t *testing.T, url string) (*http.Response, map[string]interface{}) {
	t.Helper()

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func faucet(t *testing.T, ts *httptest.Server, owner, asset common.Address, amount int64) {
	t.Helper()
	resp, _ := postJSON(t, ts.URL+"/v1/faucet", map[string]string{
		"owner":  owner.Hex(),
		"asset":  asset.Hex(),
		"amount": fmt.Sprintf("%d", amount),
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHealthz(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, body := getJSON(t, ts.URL+"/healthz")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "ok", body["status"])
}

func TestPoolLifecycleOverHTTP(t *testing.T) {
	ts, pool := newTestServer(t)

	faucet(t, ts, provider, assetA, 100000)
	faucet(t, ts, provider, assetB, 100000)
	faucet(t, ts, trader, assetA, 1000)

	// Seed the pool.
	resp, body := postJSON(t, ts.URL+"/v1/liquidity/add", map[string]string{
		"provider": provider.Hex(),
		"amount_a": "100000",
		"amount_b": "100000",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, new(big.Int).Mul(big.NewInt(100), big.NewInt(1e18)).String(), body["shares_minted"])

	// State query.
	resp, body = getJSON(t, ts.URL+"/v1/pool")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "100000", body["reserve_a"])
	require.Equal(t, "100000", body["reserve_b"])
	require.Equal(t, assetA.Hex(), body["asset_a"])

	// Quote then trade; the executed amount matches the quote.
	resp, body = getJSON(t, ts.URL+"/v1/quote/swap?direction=ab&amount_in=1000")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	quoted := body["amount_out"].(string)

	resp, body = postJSON(t, ts.URL+"/v1/swap", map[string]string{
		"trader":    trader.Hex(),
		"direction": "ab",
		"amount_in": "1000",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, quoted, body["amount_out"])

	// Shares query.
	resp, body = getJSON(t, ts.URL+"/v1/pool/shares/"+provider.Hex())
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, pool.ShareOf(provider).String(), body["shares"])

	// Withdraw half the position.
	resp, body = postJSON(t, ts.URL+"/v1/liquidity/remove", map[string]string{
		"provider": provider.Hex(),
		"shares":   new(big.Int).Mul(big.NewInt(50), big.NewInt(1e18)).String(),
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, body["out_a"])
	require.NoError(t, pool.CheckInvariants())
}

func TestQuoteDeposit(t *testing.T) {
	ts, _ := newTestServer(t)

	// Empty pool has no ratio to quote against.
	resp, _ := getJSON(t, ts.URL+"/v1/quote/deposit?amount_a=100")
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	faucet(t, ts, provider, assetA, 40000)
	faucet(t, ts, provider, assetB, 20000)
	resp, _ = postJSON(t, ts.URL+"/v1/liquidity/add", map[string]string{
		"provider": provider.Hex(),
		"amount_a": "40000",
		"amount_b": "20000",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := getJSON(t, ts.URL+"/v1/quote/deposit?amount_a=1000")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "500", body["amount_b"])
}

func TestErrorStatusMapping(t *testing.T) {
	ts, _ := newTestServer(t)

	// Zero amount -> 400.
	faucet(t, ts, provider, assetA, 10)
	resp, _ := postJSON(t, ts.URL+"/v1/liquidity/add", map[string]string{
		"provider": provider.Hex(),
		"amount_a": "0",
		"amount_b": "10",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Empty pool -> 409.
	resp, _ = getJSON(t, ts.URL+"/v1/quote/swap?direction=ab&amount_in=5")
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	// Unfunded trader -> transfer failure -> 502.
	faucet(t, ts, provider, assetA, 1000)
	faucet(t, ts, provider, assetB, 1000)
	resp, _ = postJSON(t, ts.URL+"/v1/liquidity/add", map[string]string{
		"provider": provider.Hex(),
		"amount_a": "1000",
		"amount_b": "1000",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = postJSON(t, ts.URL+"/v1/swap", map[string]string{
		"trader":    trader.Hex(),
		"direction": "ab",
		"amount_in": "50",
	})
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)

	// Malformed address -> 400.
	resp, _ = getJSON(t, ts.URL+"/v1/pool/shares/not-an-address")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Unknown direction -> 400.
	resp, _ = getJSON(t, ts.URL+"/v1/quote/swap?direction=xy&amount_in=5")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
