package cardano

import (
	"fmt"

	cardanosdk "github.com/echovl/cardano-go"
	"github.com/fxamacker/cbor/v2"

	"github.com/LavonTMCQ/M-I-S-T-E-R-sub009/common"
)

// TxOut is one payment output of a locally built transaction.
type TxOut struct {
	Address string
	Value   Value
}

// NewUnsignedTx builds a fresh unsigned transaction for the withdrawal
// path. Outputs are restricted to lovelace; native-asset payouts stay
// with the external trade service, which builds its own bodies.
func NewUnsignedTx(inputs []UTXORef, outputs []TxOut, fee uint64) (*Tx, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("no inputs")
	}
	if len(outputs) == 0 {
		return nil, fmt.Errorf("no outputs")
	}

	txInputs := make([]TxInput, 0, len(inputs))
	for _, ref := range inputs {
		txID, err := common.HexToBytes(ref.TxHash)
		if err != nil {
			return nil, fmt.Errorf("input tx hash '%v': %w", ref.TxHash, err)
		}
		txInputs = append(txInputs, TxInput{TxID: txID, Index: ref.Index})
	}
	rawInputs, err := encMode.Marshal(txInputs)
	if err != nil {
		return nil, err
	}

	type txOutWire struct {
		_       struct{} `cbor:",toarray"`
		Address []byte
		Coin    uint64
	}
	wireOuts := make([]txOutWire, 0, len(outputs))
	for _, out := range outputs {
		for id := range out.Value {
			if !id.IsLovelace() {
				return nil, fmt.Errorf("output to %v carries native asset %v, only lovelace supported here", out.Address, id)
			}
		}
		addr, err := cardanosdk.NewAddress(out.Address)
		if err != nil {
			return nil, fmt.Errorf("output address '%v': %w", out.Address, err)
		}
		wireOuts = append(wireOuts, txOutWire{
			Address: addr.Bytes(),
			Coin:    out.Value.Lovelace(),
		})
	}
	rawOutputs, err := encMode.Marshal(wireOuts)
	if err != nil {
		return nil, err
	}
	rawFee, err := encMode.Marshal(fee)
	if err != nil {
		return nil, err
	}

	body := map[uint64]cbor.RawMessage{
		bodyKeyInputs:  rawInputs,
		bodyKeyOutputs: rawOutputs,
		bodyKeyFee:     rawFee,
	}
	rawBody, err := encMode.Marshal(body)
	if err != nil {
		return nil, err
	}

	valid := true
	return &Tx{
		Body:         rawBody,
		Witnesses:    new(WitnessSet),
		IsValid:      &valid,
		witnessDirty: true,
		elementCount: 4,
	}, nil
}

// SetFee rewrites the declared fee of an unsigned transaction.
func (tx *Tx) SetFee(fee uint64) error {
	if tx.Signed() {
		return ErrSignedBodyMutation
	}
	body, err := tx.bodyMap()
	if err != nil {
		return err
	}
	rawFee, err := encMode.Marshal(fee)
	if err != nil {
		return err
	}
	body[bodyKeyFee] = rawFee
	return tx.setBody(body)
}

// AddOutputLovelace adds fee or change lovelace onto the output at the
// given index, keeping totals balanced when the fee changes.
func (tx *Tx) AddOutputLovelace(index int, delta int64) error {
	if tx.Signed() {
		return ErrSignedBodyMutation
	}
	body, err := tx.bodyMap()
	if err != nil {
		return err
	}
	raw, ok := body[bodyKeyOutputs]
	if !ok {
		return fmt.Errorf("%w: no outputs", ErrMalformedStructure)
	}
	type txOutWire struct {
		_       struct{} `cbor:",toarray"`
		Address []byte
		Coin    uint64
	}
	var outs []txOutWire
	if err := decMode.Unmarshal(raw, &outs); err != nil {
		return classifyDecodeError(err)
	}
	if index < 0 || index >= len(outs) {
		return fmt.Errorf("output index %v out of range", index)
	}
	next := int64(outs[index].Coin) + delta
	if next < 0 {
		return fmt.Errorf("output %v would go negative", index)
	}
	outs[index].Coin = uint64(next)
	rawOuts, err := encMode.Marshal(outs)
	if err != nil {
		return err
	}
	body[bodyKeyOutputs] = rawOuts
	return tx.setBody(body)
}
