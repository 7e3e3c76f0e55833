// Package rpcapi provides the JSON-RPC service methods.
package rpcapi

import (
	"net/http"

	"github.com/LavonTMCQ/M-I-S-T-E-R-sub009/assembler"
	"github.com/LavonTMCQ/M-I-S-T-E-R-sub009/cmd/utils"
	"github.com/LavonTMCQ/M-I-S-T-E-R-sub009/internal/txapi"
	"github.com/LavonTMCQ/M-I-S-T-E-R-sub009/trade"
)

// AssembleAPI rpc api handler
type AssembleAPI struct{}

// RPCNullArgs null args
type RPCNullArgs struct{}

// GetVersionInfo api
func (s *AssembleAPI) GetVersionInfo(r *http.Request, args *RPCNullArgs, result *string) error {
	*result = utils.Version
	return nil
}

// GetServerInfo api
func (s *AssembleAPI) GetServerInfo(r *http.Request, args *RPCNullArgs, result *txapi.ServerInfo) error {
	*result = *txapi.GetServerInfo()
	return nil
}

// GetPoolInfo api
func (s *AssembleAPI) GetPoolInfo(r *http.Request, args *RPCNullArgs, result *txapi.PoolInfo) error {
	*result = *txapi.GetPoolInfo()
	return nil
}

// OpenPosition api
func (s *AssembleAPI) OpenPosition(r *http.Request, args *trade.OpenRequest, result *txapi.SubmitResult) error {
	res, err := txapi.OpenPosition(r.Context(), args)
	if err == nil && res != nil {
		*result = *res
	}
	return err
}

// ClosePositionArgs args
type ClosePositionArgs struct {
	Close trade.CloseRequest     `json:"close"`
	Spend *txapi.ScriptSpendArgs `json:"spend,omitempty"`
}

// ClosePosition api
func (s *AssembleAPI) ClosePosition(r *http.Request, args *ClosePositionArgs, result *txapi.SubmitResult) error {
	spend, err := args.Spend.ToScriptSpend()
	if err != nil {
		return err
	}
	res, err := txapi.ClosePosition(r.Context(), &args.Close, spend)
	if err == nil && res != nil {
		*result = *res
	}
	return err
}

// WithdrawArgs args
type WithdrawArgs struct {
	Spend   *txapi.ScriptSpendArgs `json:"spend"`
	Balance uint64                 `json:"balance"`
}

// Withdraw api
func (s *AssembleAPI) Withdraw(r *http.Request, args *WithdrawArgs, result *txapi.SubmitResult) error {
	spend, err := args.Spend.ToScriptSpend()
	if err != nil {
		return err
	}
	res, err := txapi.Withdraw(r.Context(), &assembler.WithdrawRequest{
		Spend:   spend,
		Balance: args.Balance,
	})
	if err == nil && res != nil {
		*result = *res
	}
	return err
}

// TxStatusArgs args
type TxStatusArgs struct {
	TxID string `json:"txid"`
}

// GetTxStatus api
func (s *AssembleAPI) GetTxStatus(r *http.Request, args *TxStatusArgs, result *txapi.TxStatusInfo) error {
	res, err := txapi.GetTxStatus(r.Context(), args.TxID)
	if err == nil && res != nil {
		*result = *res
	}
	return err
}

// DecodeTxArgs args
type DecodeTxArgs struct {
	CBORHex string `json:"cbor"`
}

// DecodeTx api
func (s *AssembleAPI) DecodeTx(r *http.Request, args *DecodeTxArgs, result *txapi.TxSummary) error {
	res, err := txapi.DecodeTxSummary(args.CBORHex)
	if err == nil && res != nil {
		*result = *res
	}
	return err
}
