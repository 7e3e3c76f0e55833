package signer

import (
	"context"
	"fmt"

	pkgerrors "github.com/pkg/errors"

	"github.com/LavonTMCQ/M-I-S-T-E-R-sub009/common"
	"github.com/LavonTMCQ/M-I-S-T-E-R-sub009/log"
	"github.com/LavonTMCQ/M-I-S-T-E-R-sub009/rpc/client"
)

// WalletBridge is an HTTP wallet signing endpoint speaking the usual
// signTx/submitTx wallet semantics over hex encoded CBOR.
type WalletBridge struct {
	URL     string
	Timeout int // seconds
}

var (
	_ Signer = (*WalletBridge)(nil)
	_ Relay  = (*WalletBridge)(nil)
)

// NewWalletBridge new wallet bridge signer
func NewWalletBridge(url string, timeout int) *WalletBridge {
	if timeout <= 0 {
		timeout = 120
	}
	return &WalletBridge{URL: url, Timeout: timeout}
}

type signRequest struct {
	Tx      string `json:"tx"`
	Partial bool   `json:"partial"`
}

type signResponse struct {
	Witness string `json:"witness,omitempty"`
	Tx      string `json:"tx,omitempty"`
	Error   string `json:"error,omitempty"`
}

type submitRequest struct {
	Tx string `json:"tx"`
}

type submitResponse struct {
	Hash  string `json:"hash"`
	Error string `json:"error,omitempty"`
}

// Sign impl Signer
func (w *WalletBridge) Sign(ctx context.Context, txCBOR []byte, partial bool) ([]byte, error) {
	req := &signRequest{Tx: common.Bytes2Hex(txCBOR), Partial: partial}
	resp, err := client.HTTPPostWithContext(ctx, w.URL+"/sign", req, nil, w.Timeout)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSignerUnavailable, err)
	}
	var result signResponse
	if err := client.GetResultFromJSONResponse(&result, resp); err != nil {
		return nil, pkgerrors.Wrap(err, "wallet sign response")
	}
	if result.Error != "" {
		return nil, fmt.Errorf("wallet sign rejected: %v", result.Error)
	}
	payload := result.Witness
	if !partial {
		payload = result.Tx
	}
	if payload == "" {
		return nil, ErrEmptyWitness
	}
	data, err := common.HexToBytes(payload)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "wallet sign payload")
	}
	log.Trace("wallet sign success", "partial", partial, "bytes", len(data))
	return data, nil
}

// SubmitTx impl Relay
func (w *WalletBridge) SubmitTx(ctx context.Context, txCBOR []byte) (string, error) {
	req := &submitRequest{Tx: common.Bytes2Hex(txCBOR)}
	resp, err := client.HTTPPostWithContext(ctx, w.URL+"/submit", req, nil, w.Timeout)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSignerUnavailable, err)
	}
	var result submitResponse
	if err := client.GetResultFromJSONResponse(&result, resp); err != nil {
		return "", pkgerrors.Wrap(err, "wallet submit response")
	}
	if result.Error != "" {
		return "", fmt.Errorf("wallet submit rejected: %v", result.Error)
	}
	if !common.IsHexHash(result.Hash) {
		return "", fmt.Errorf("wallet submit returned invalid hash '%v'", result.Hash)
	}
	return result.Hash, nil
}
