// Package indexer talks to the ledger indexer: UTXO queries, chain tip,
// protocol parameters and raw transaction submission.
package indexer

import (
	"context"
	"errors"

	"github.com/LavonTMCQ/M-I-S-T-E-R-sub009/utxo"
)

// indexer errors
var (
	ErrNoBackend  = errors.New("no indexer backend configured")
	ErrNotFound   = errors.New("not found")
	ErrOutputType = errors.New("unexpected output format from indexer")
)

// Tip is the current chain tip.
type Tip struct {
	Block uint64 `json:"block"`
	Epoch uint64 `json:"epoch"`
	Slot  uint64 `json:"slot"`
}

// ProtocolParams are the fee and deposit parameters this process needs.
type ProtocolParams struct {
	MinFeeA          uint64 `json:"minFeeA"`
	MinFeeB          uint64 `json:"minFeeB"`
	CoinsPerUTXOWord uint64 `json:"coinsPerUtxoWord"`
	KeyDeposit       uint64 `json:"keyDeposit"`
	MaxTxSize        uint64 `json:"maxTxSize"`
	MinUTXOValue     uint64 `json:"minUtxoValue"`
}

// LinearFee computes the fee for a transaction of the given byte size.
func (p *ProtocolParams) LinearFee(txSize uint64) uint64 {
	return p.MinFeeA*txSize + p.MinFeeB
}

// TxStatus describes a submitted transaction as the indexer sees it.
type TxStatus struct {
	BlockHeight   uint64 `json:"blockHeight"`
	Confirmations uint64 `json:"confirmations"`
}

// Indexer is the ledger indexer interface the assembler depends on.
type Indexer interface {
	QueryUTXOs(ctx context.Context, address string) ([]utxo.UTXO, error)
	Tip(ctx context.Context) (*Tip, error)
	ProtocolParams(ctx context.Context) (*ProtocolParams, error)
	SubmitTx(ctx context.Context, txCBOR []byte) (string, error)
	TxStatus(ctx context.Context, txID string) (*TxStatus, error)
}
