package txapi

import (
	"github.com/LavonTMCQ/M-I-S-T-E-R-sub009/submitter"
)

// ServerInfo server info
type ServerInfo struct {
	Identifier    string `json:"identifier"`
	Version       string `json:"version"`
	Network       string `json:"network"`
	Confirmations uint64 `json:"confirmations"`
	OwnerAddress  string `json:"ownerAddress"`
}

// SubmitResult reports a submitted transaction.
type SubmitResult struct {
	TxID     string              `json:"txid"`
	Attempts []submitter.Attempt `json:"attempts,omitempty"`
}

// TxStatusInfo tx status info
type TxStatusInfo struct {
	TxID          string `json:"txid"`
	BlockHeight   uint64 `json:"blockHeight"`
	Confirmations uint64 `json:"confirmations"`
	Confirmed     bool   `json:"confirmed"`
}

// PoolInfo utxo reservation info
type PoolInfo struct {
	ReservedInputs int `json:"reservedInputs"`
	PendingTxs     int `json:"pendingTxs"`
}

// TxSummary decoded transaction summary
type TxSummary struct {
	TxID       string   `json:"txid"`
	Fee        uint64   `json:"fee"`
	Inputs     []string `json:"inputs"`
	Signed     bool     `json:"signed"`
	VKeyCount  int      `json:"vkeyWitnesses"`
	HasScripts bool     `json:"hasScripts"`
}
