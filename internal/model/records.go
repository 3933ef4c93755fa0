package model

// MintRecord is emitted after a successful liquidity deposit.
type MintRecord struct {
	Provider     string `json:"provider"`
	AmountA      string `json:"amount_a"`
	AmountB      string `json:"amount_b"`
	SharesMinted string `json:"shares_minted"`
	Timestamp    uint64 `json:"timestamp"`
}

// BurnRecord is emitted after a successful liquidity withdrawal.
type BurnRecord struct {
	Provider     string `json:"provider"`
	AmountA      string `json:"amount_a"`
	AmountB      string `json:"amount_b"`
	SharesBurned string `json:"shares_burned"`
	Timestamp    uint64 `json:"timestamp"`
}

// SwapRecord is emitted after a successful swap. Reserves are the
// post-trade values on the side the trader gave and received.
type SwapRecord struct {
	Trader               string `json:"trader"`
	AssetGiven           string `json:"asset_given"`
	AmountGiven          string `json:"amount_given"`
	AssetReceived        string `json:"asset_received"`
	AmountReceived       string `json:"amount_received"`
	ReserveGivenAfter    string `json:"reserve_given_after"`
	ReserveReceivedAfter string `json:"reserve_received_after"`
	Timestamp            uint64 `json:"timestamp"`
}
