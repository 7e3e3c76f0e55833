package indexer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/blockfrost/blockfrost-go"
	pkgerrors "github.com/pkg/errors"

	"github.com/LavonTMCQ/M-I-S-T-E-R-sub009/cardano"
	"github.com/LavonTMCQ/M-I-S-T-E-R-sub009/common"
	"github.com/LavonTMCQ/M-I-S-T-E-R-sub009/rpc/client"
	"github.com/LavonTMCQ/M-I-S-T-E-R-sub009/utxo"
)

const lovelaceUnit = "lovelace"

// BlockfrostNode is the Blockfrost-backed indexer.
type BlockfrostNode struct {
	api       blockfrost.APIClient
	server    string
	projectID string
	timeout   int // seconds, raw submit only
}

var _ Indexer = (*BlockfrostNode)(nil)

// NewBlockfrostNode new blockfrost node
func NewBlockfrostNode(server, projectID string, timeout int) *BlockfrostNode {
	if server == "" {
		server = blockfrost.CardanoMainNet
	}
	if timeout <= 0 {
		timeout = 60
	}
	api := blockfrost.NewAPIClient(blockfrost.APIClientOptions{
		ProjectID: projectID,
		Server:    server,
	})
	return &BlockfrostNode{
		api:       api,
		server:    server,
		projectID: projectID,
		timeout:   timeout,
	}
}

// QueryUTXOs impl Indexer
func (n *BlockfrostNode) QueryUTXOs(ctx context.Context, address string) ([]utxo.UTXO, error) {
	raw, err := n.api.AddressUTXOs(ctx, address, blockfrost.APIQueryParams{})
	if err != nil {
		return nil, pkgerrors.Wrap(err, "blockfrost address utxos")
	}
	utxos := make([]utxo.UTXO, 0, len(raw))
	for _, item := range raw {
		value := make(cardano.Value)
		for _, amount := range item.Amount {
			qty, err := common.GetUint64FromStr(amount.Quantity)
			if err != nil {
				return nil, pkgerrors.Wrapf(err, "utxo %v#%v amount", item.TxHash, item.OutputIndex)
			}
			if amount.Unit == lovelaceUnit {
				value.Add(cardano.Lovelace, qty)
				continue
			}
			if len(amount.Unit) < 56 {
				return nil, fmt.Errorf("%w: asset unit '%v'", ErrOutputType, amount.Unit)
			}
			value.Add(cardano.AssetID{
				PolicyID:  amount.Unit[:56],
				AssetName: amount.Unit[56:],
			}, qty)
		}
		utxos = append(utxos, utxo.UTXO{
			TxHash:  item.TxHash,
			Index:   uint64(item.OutputIndex),
			Address: address,
			Value:   value,
		})
	}
	return utxos, nil
}

// Tip impl Indexer
func (n *BlockfrostNode) Tip(ctx context.Context) (*Tip, error) {
	block, err := n.api.BlockLatest(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "blockfrost latest block")
	}
	return &Tip{
		Block: uint64(block.Height),
		Epoch: uint64(block.Epoch),
		Slot:  uint64(block.Slot),
	}, nil
}

// ProtocolParams impl Indexer
func (n *BlockfrostNode) ProtocolParams(ctx context.Context) (*ProtocolParams, error) {
	params, err := n.api.LatestEpochParameters(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "blockfrost epoch parameters")
	}
	coinsPerWord, err := common.GetUint64FromStr(params.CoinsPerUtxOWord)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "coins per utxo word")
	}
	keyDeposit, err := common.GetUint64FromStr(params.KeyDeposit)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "key deposit")
	}
	minUTXO, err := common.GetUint64FromStr(params.MinUtxo)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "min utxo")
	}
	return &ProtocolParams{
		MinFeeA:          uint64(params.MinFeeA),
		MinFeeB:          uint64(params.MinFeeB),
		CoinsPerUTXOWord: coinsPerWord,
		KeyDeposit:       keyDeposit,
		MaxTxSize:        uint64(params.MaxTxSize),
		MinUTXOValue:     minUTXO,
	}, nil
}

// SubmitTx posts the raw CBOR to the tx submit endpoint. The SDK's
// query client is not used here because submission needs the
// application/cbor content type.
func (n *BlockfrostNode) SubmitTx(ctx context.Context, txCBOR []byte) (string, error) {
	url := strings.TrimSuffix(n.server, "/") + "/tx/submit"
	headers := map[string]string{
		"project_id":   n.projectID,
		"Content-Type": "application/cbor",
	}
	resp, err := client.HTTPRawPostWithContext(ctx, url, txCBOR, headers, n.timeout)
	if err != nil {
		return "", pkgerrors.Wrap(err, "blockfrost tx submit")
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1024*1024))
	if err != nil {
		return "", pkgerrors.Wrap(err, "blockfrost tx submit read")
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("blockfrost tx submit status %v: %v", resp.StatusCode, string(body))
	}
	// response is the tx hash as a JSON string
	txID := strings.Trim(strings.TrimSpace(string(body)), `"`)
	if !common.IsHexHash(txID) {
		return "", fmt.Errorf("%w: submit response '%v'", ErrOutputType, txID)
	}
	return txID, nil
}

// TxStatus impl Indexer
func (n *BlockfrostNode) TxStatus(ctx context.Context, txID string) (*TxStatus, error) {
	content, err := n.api.Transaction(ctx, txID)
	if err != nil {
		if strings.Contains(err.Error(), "404") {
			return nil, fmt.Errorf("%w: tx %v", ErrNotFound, txID)
		}
		return nil, pkgerrors.Wrap(err, "blockfrost transaction")
	}
	tip, err := n.Tip(ctx)
	if err != nil {
		return nil, err
	}
	status := &TxStatus{BlockHeight: uint64(content.BlockHeight)}
	if tip.Block > status.BlockHeight {
		status.Confirmations = tip.Block - status.BlockHeight
	}
	return status, nil
}
