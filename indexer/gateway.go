package indexer

import (
	"context"
	"fmt"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/LavonTMCQ/M-I-S-T-E-R-sub009/cardano"
	"github.com/LavonTMCQ/M-I-S-T-E-R-sub009/common"
	"github.com/LavonTMCQ/M-I-S-T-E-R-sub009/rpc/client"
	"github.com/LavonTMCQ/M-I-S-T-E-R-sub009/utxo"
)

const gatewayRPCTimeout = 60

// graphql query templates
var (
	queryUtxos = `{utxos(where: { address: { _eq: "%s"}}) {txHash index address value tokens{asset{policyId assetName}quantity}}}`
	queryTip   = `{cardano{tip{number slotNo epoch{number protocolParams{minFeeA minFeeB coinsPerUtxoByte keyDeposit maxTxSize minUTxOValue}}}}}`
	queryTx    = `{transactions(where: { hash: { _eq: "%s"}}) {block{number slotNo}hash validContract}}`
	submitTx   = `mutation{submitTransaction(transaction: "%s"){hash}}`
)

// GatewayNode queries a cardano-graphql gateway, trying each URL in
// order. It is the fallback channel when the Blockfrost API key is
// absent or the API is down.
type GatewayNode struct {
	URLs []string
}

var _ Indexer = (*GatewayNode)(nil)

// NewGatewayNode new graphql gateway node
func NewGatewayNode(urls []string) *GatewayNode {
	return &GatewayNode{URLs: urls}
}

type gatewayUtxosResult struct {
	Utxos []gatewayOutput `json:"utxos"`
}

type gatewayOutput struct {
	TxHash  string         `json:"txHash"`
	Index   uint64         `json:"index"`
	Address string         `json:"address"`
	Value   string         `json:"value"`
	Tokens  []gatewayToken `json:"tokens"`
}

type gatewayToken struct {
	Asset    gatewayAsset `json:"asset"`
	Quantity string       `json:"quantity"`
}

type gatewayAsset struct {
	PolicyID  string `json:"policyId"`
	AssetName string `json:"assetName"`
}

type gatewayTipResult struct {
	Cardano struct {
		Tip struct {
			Number uint64 `json:"number"`
			SlotNo uint64 `json:"slotNo"`
			Epoch  struct {
				Number         uint64 `json:"number"`
				ProtocolParams struct {
					MinFeeA          uint64 `json:"minFeeA"`
					MinFeeB          uint64 `json:"minFeeB"`
					CoinsPerUtxoByte uint64 `json:"coinsPerUtxoByte"`
					KeyDeposit       uint64 `json:"keyDeposit"`
					MaxTxSize        uint64 `json:"maxTxSize"`
					MinUTxOValue     uint64 `json:"minUTxOValue"`
				} `json:"protocolParams"`
			} `json:"epoch"`
		} `json:"tip"`
	} `json:"cardano"`
}

type gatewayTxResult struct {
	Transactions []struct {
		Hash  string `json:"hash"`
		Block struct {
			Number uint64 `json:"number"`
			SlotNo uint64 `json:"slotNo"`
		} `json:"block"`
		ValidContract bool `json:"validContract"`
	} `json:"transactions"`
}

type gatewaySubmitResult struct {
	SubmitTransaction struct {
		Hash string `json:"hash"`
	} `json:"submitTransaction"`
}

func (n *GatewayNode) post(ctx context.Context, query string, result interface{}) error {
	if len(n.URLs) == 0 {
		return ErrNoBackend
	}
	req := &client.Request{
		Params:  query,
		ID:      int(time.Now().UnixNano()),
		Timeout: gatewayRPCTimeout,
	}
	var err error
	for _, url := range n.URLs {
		err = client.GraphQLPostRequestWithContext(ctx, url, req, result)
		if err == nil {
			return nil
		}
	}
	return pkgerrors.Wrap(err, "all gateway urls failed")
}

// QueryUTXOs impl Indexer
func (n *GatewayNode) QueryUTXOs(ctx context.Context, address string) ([]utxo.UTXO, error) {
	var result gatewayUtxosResult
	if err := n.post(ctx, fmt.Sprintf(queryUtxos, address), &result); err != nil {
		return nil, err
	}
	utxos := make([]utxo.UTXO, 0, len(result.Utxos))
	for _, out := range result.Utxos {
		value := make(cardano.Value)
		lovelace, err := common.GetUint64FromStr(out.Value)
		if err != nil {
			return nil, fmt.Errorf("%w: utxo value '%v'", ErrOutputType, out.Value)
		}
		value.Add(cardano.Lovelace, lovelace)
		for _, token := range out.Tokens {
			qty, err := common.GetUint64FromStr(token.Quantity)
			if err != nil {
				return nil, fmt.Errorf("%w: token quantity '%v'", ErrOutputType, token.Quantity)
			}
			value.Add(cardano.AssetID{
				PolicyID:  token.Asset.PolicyID,
				AssetName: token.Asset.AssetName,
			}, qty)
		}
		utxos = append(utxos, utxo.UTXO{
			TxHash:  out.TxHash,
			Index:   out.Index,
			Address: address,
			Value:   value,
		})
	}
	return utxos, nil
}

// Tip impl Indexer
func (n *GatewayNode) Tip(ctx context.Context) (*Tip, error) {
	var result gatewayTipResult
	if err := n.post(ctx, queryTip, &result); err != nil {
		return nil, err
	}
	return &Tip{
		Block: result.Cardano.Tip.Number,
		Epoch: result.Cardano.Tip.Epoch.Number,
		Slot:  result.Cardano.Tip.SlotNo,
	}, nil
}

// ProtocolParams impl Indexer
func (n *GatewayNode) ProtocolParams(ctx context.Context) (*ProtocolParams, error) {
	var result gatewayTipResult
	if err := n.post(ctx, queryTip, &result); err != nil {
		return nil, err
	}
	pp := result.Cardano.Tip.Epoch.ProtocolParams
	return &ProtocolParams{
		MinFeeA:          pp.MinFeeA,
		MinFeeB:          pp.MinFeeB,
		CoinsPerUTXOWord: pp.CoinsPerUtxoByte,
		KeyDeposit:       pp.KeyDeposit,
		MaxTxSize:        pp.MaxTxSize,
		MinUTXOValue:     pp.MinUTxOValue,
	}, nil
}

// SubmitTx impl Indexer
func (n *GatewayNode) SubmitTx(ctx context.Context, txCBOR []byte) (string, error) {
	var result gatewaySubmitResult
	if err := n.post(ctx, fmt.Sprintf(submitTx, common.Bytes2Hex(txCBOR)), &result); err != nil {
		return "", err
	}
	if !common.IsHexHash(result.SubmitTransaction.Hash) {
		return "", fmt.Errorf("%w: submit response '%v'", ErrOutputType, result.SubmitTransaction.Hash)
	}
	return result.SubmitTransaction.Hash, nil
}

// TxStatus impl Indexer
func (n *GatewayNode) TxStatus(ctx context.Context, txID string) (*TxStatus, error) {
	var result gatewayTxResult
	if err := n.post(ctx, fmt.Sprintf(queryTx, txID), &result); err != nil {
		return nil, err
	}
	if len(result.Transactions) == 0 {
		return nil, fmt.Errorf("%w: tx %v", ErrNotFound, txID)
	}
	tip, err := n.Tip(ctx)
	if err != nil {
		return nil, err
	}
	status := &TxStatus{BlockHeight: result.Transactions[0].Block.Number}
	if tip.Block > status.BlockHeight {
		status.Confirmations = tip.Block - status.BlockHeight
	}
	return status, nil
}
