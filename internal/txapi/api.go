// Package txapi is the shared service layer behind the REST and
// JSON-RPC surfaces.
package txapi

import (
	"context"
	"errors"
	"fmt"

	"github.com/LavonTMCQ/M-I-S-T-E-R-sub009/assembler"
	"github.com/LavonTMCQ/M-I-S-T-E-R-sub009/cardano"
	"github.com/LavonTMCQ/M-I-S-T-E-R-sub009/cmd/utils"
	"github.com/LavonTMCQ/M-I-S-T-E-R-sub009/common"
	"github.com/LavonTMCQ/M-I-S-T-E-R-sub009/indexer"
	"github.com/LavonTMCQ/M-I-S-T-E-R-sub009/log"
	"github.com/LavonTMCQ/M-I-S-T-E-R-sub009/params"
	"github.com/LavonTMCQ/M-I-S-T-E-R-sub009/trade"
	"github.com/LavonTMCQ/M-I-S-T-E-R-sub009/worker"
)

var (
	asm     *assembler.Assembler
	idx     indexer.Indexer
	watcher *worker.ConfirmWatcher
)

// errNotInitialized service used before Init
var errNotInitialized = errors.New("tx service not initialized")

// Init wires the service layer to the running assembler.
func Init(a *assembler.Assembler, i indexer.Indexer, w *worker.ConfirmWatcher) {
	asm = a
	idx = i
	watcher = w
}

// GetServerInfo server info
func GetServerInfo() *ServerInfo {
	cfg := params.GetConfig()
	info := &ServerInfo{
		Identifier: params.GetIdentifier(),
		Version:    utils.Version,
	}
	if cfg != nil {
		info.Network = cfg.Network
		info.Confirmations = cfg.Confirmations
	}
	if asm != nil {
		info.OwnerAddress = asm.OwnerAddress
	}
	return info
}

// OpenPosition open a leveraged position
func OpenPosition(ctx context.Context, req *trade.OpenRequest) (*SubmitResult, error) {
	if asm == nil {
		return nil, errNotInitialized
	}
	if req.Address == "" {
		req.Address = asm.OwnerAddress
	}
	txID, err := asm.OpenPosition(ctx, req)
	if err != nil {
		return nil, err
	}
	return &SubmitResult{TxID: txID.String()}, nil
}

// ClosePosition close a leveraged position
func ClosePosition(ctx context.Context, req *trade.CloseRequest, spend *assembler.ScriptSpend) (*SubmitResult, error) {
	if asm == nil {
		return nil, errNotInitialized
	}
	if req.Address == "" {
		req.Address = asm.OwnerAddress
	}
	txID, err := asm.ClosePosition(ctx, req, spend)
	if err != nil {
		return nil, err
	}
	return &SubmitResult{TxID: txID.String()}, nil
}

// Withdraw withdraw a contract-held balance
func Withdraw(ctx context.Context, req *assembler.WithdrawRequest) (*SubmitResult, error) {
	if asm == nil {
		return nil, errNotInitialized
	}
	if req == nil || req.Spend == nil {
		return nil, fmt.Errorf("missing script spend")
	}
	txID, err := asm.Withdraw(ctx, req)
	if err != nil {
		return nil, err
	}
	return &SubmitResult{TxID: txID.String()}, nil
}

// GetTxStatus query a submitted transaction
func GetTxStatus(ctx context.Context, txID string) (*TxStatusInfo, error) {
	if idx == nil {
		return nil, errNotInitialized
	}
	if !common.IsHexHash(txID) {
		return nil, fmt.Errorf("invalid txid %q", txID)
	}
	status, err := idx.TxStatus(ctx, txID)
	if err != nil {
		return nil, err
	}
	confirmations := params.GetConfig().Confirmations
	return &TxStatusInfo{
		TxID:          txID,
		BlockHeight:   status.BlockHeight,
		Confirmations: status.Confirmations,
		Confirmed:     status.Confirmations >= confirmations,
	}, nil
}

// GetPoolInfo reservation snapshot
func GetPoolInfo() *PoolInfo {
	info := &PoolInfo{}
	if asm != nil && asm.Pool != nil {
		info.ReservedInputs = asm.Pool.ReservedCount()
	}
	if watcher != nil {
		info.PendingTxs = watcher.PendingCount()
	}
	return info
}

// DecodeTxSummary decode a serialized transaction
func DecodeTxSummary(txHex string) (*TxSummary, error) {
	tx, err := cardano.DecodeTxHex(txHex)
	if err != nil {
		return nil, err
	}
	inputs, err := tx.Inputs()
	if err != nil {
		log.Warn("decode tx inputs failed", "err", err)
	}
	fee, err := tx.Fee()
	if err != nil {
		log.Warn("decode tx fee failed", "err", err)
	}
	summary := &TxSummary{
		TxID:   tx.ID().String(),
		Fee:    fee,
		Signed: tx.Signed(),
	}
	for _, in := range inputs {
		summary.Inputs = append(summary.Inputs, fmt.Sprintf("%s#%d", common.Bytes2Hex(in.TxID), in.Index))
	}
	if tx.Witnesses != nil {
		summary.VKeyCount = len(tx.Witnesses.VKeyWitnesses)
		summary.HasScripts = len(tx.Witnesses.PlutusV1Scripts) > 0 ||
			len(tx.Witnesses.PlutusV2Scripts) > 0 ||
			len(tx.Witnesses.NativeScripts) > 0
	}
	return summary, nil
}
