// Package trade fetches unsigned leveraged-position transactions from
// the external trading service. The service's output is an opaque hex
// CBOR blob; this package validates plausibility only, never structure.
package trade

import (
	"context"
	"errors"
	"fmt"

	pkgerrors "github.com/pkg/errors"

	"github.com/LavonTMCQ/M-I-S-T-E-R-sub009/log"
	"github.com/LavonTMCQ/M-I-S-T-E-R-sub009/rpc/client"
)

// any valid transaction carries a body map, a witness map and an
// auxiliary element; shorter blobs cannot decode and are rejected
// before the decoder sees them
const minPlausibleTxHexLen = 16

// trade errors
var (
	ErrEmptyUnsignedTx       = errors.New("trade service returned empty transaction")
	ErrImplausibleUnsignedTx = errors.New("trade service returned implausibly short transaction")
)

// Side of a leveraged position.
type Side string

// position sides
const (
	Long  Side = "Long"
	Short Side = "Short"
)

// Client talks to the trading service.
type Client struct {
	BaseURL string
	Timeout int // seconds
}

// NewClient new trade service client
func NewClient(baseURL string, timeout int) *Client {
	if timeout <= 0 {
		timeout = 60
	}
	return &Client{BaseURL: baseURL, Timeout: timeout}
}

// OpenRequest describes a position to open.
type OpenRequest struct {
	Address            string  `json:"address"`
	Asset              string  `json:"asset"`
	Side               Side    `json:"position"`
	CollateralLovelace uint64  `json:"collateralAmount"`
	Leverage           float64 `json:"leverage"`
	StopLossPrice      float64 `json:"stopLossPrice,omitempty"`
	TakeProfitPrice    float64 `json:"takeProfitPrice,omitempty"`
}

// CloseRequest describes a position to close.
type CloseRequest struct {
	Address    string `json:"address"`
	Asset      string `json:"asset"`
	PositionID string `json:"outRef"`
}

type unsignedTxResponse struct {
	CBORHex string `json:"cbor"`
	Error   string `json:"error,omitempty"`
}

// OpenPosition returns the unsigned open transaction as hex CBOR.
func (c *Client) OpenPosition(ctx context.Context, req *OpenRequest) (string, error) {
	return c.fetchUnsignedTx(ctx, "/api/position/open", req)
}

// ClosePosition returns the unsigned close transaction as hex CBOR.
func (c *Client) ClosePosition(ctx context.Context, req *CloseRequest) (string, error) {
	return c.fetchUnsignedTx(ctx, "/api/position/close", req)
}

func (c *Client) fetchUnsignedTx(ctx context.Context, path string, req interface{}) (string, error) {
	resp, err := client.HTTPPostWithContext(ctx, c.BaseURL+path, req, nil, c.Timeout)
	if err != nil {
		return "", pkgerrors.Wrapf(err, "trade service %v", path)
	}
	var result unsignedTxResponse
	if err := client.GetResultFromJSONResponse(&result, resp); err != nil {
		return "", pkgerrors.Wrapf(err, "trade service %v response", path)
	}
	if result.Error != "" {
		return "", fmt.Errorf("trade service rejected request: %v", result.Error)
	}
	if result.CBORHex == "" {
		return "", ErrEmptyUnsignedTx
	}
	if len(result.CBORHex) < minPlausibleTxHexLen {
		log.Warn("rejecting implausible unsigned tx", "path", path, "hexLen", len(result.CBORHex))
		return "", fmt.Errorf("%w: %v hex chars", ErrImplausibleUnsignedTx, len(result.CBORHex))
	}
	log.Info("fetched unsigned tx", "path", path, "hexLen", len(result.CBORHex))
	return result.CBORHex, nil
}
