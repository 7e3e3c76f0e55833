// Package cardano holds the typed binary transaction model and the
// witness handling for a Cardano style UTXO ledger. Transactions arrive
// as opaque CBOR produced elsewhere; this package extends them without
// re-deriving any byte range it did not itself construct.
package cardano

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fxamacker/cbor/v2"

	"github.com/LavonTMCQ/M-I-S-T-E-R-sub009/common"
)

var (
	decMode cbor.DecMode
	encMode cbor.EncMode
)

func init() {
	var err error
	decMode, err = cbor.DecOptions{
		ExtraReturnErrors: cbor.ExtraDecErrorUnknownField,
	}.DecMode()
	if err != nil {
		panic(err)
	}
	encMode, err = cbor.EncOptions{Sort: cbor.SortCanonical}.EncMode()
	if err != nil {
		panic(err)
	}
}

// cborNull is the wire encoding of an absent auxiliary data element.
var cborNull = cbor.RawMessage{0xf6}

// Tx is a ledger transaction: body, witness set and auxiliary data.
// Body and auxiliary data are passthrough sub-ranges of the decoded
// input and are re-emitted verbatim on Encode. Only the witness set is
// re-encoded, and only after it has been modified through this type.
type Tx struct {
	Body          cbor.RawMessage
	Witnesses     *WitnessSet
	IsValid       *bool
	AuxiliaryData cbor.RawMessage

	rawWitnesses cbor.RawMessage
	witnessDirty bool
	elementCount int
}

// DecodeTx decodes the outer transaction structure. The top level must
// be a 3 element (body, witnesses, auxiliary) or 4 element (body,
// witnesses, validity flag, auxiliary) array.
func DecodeTx(data []byte) (*Tx, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrTruncatedInput)
	}
	var elems []cbor.RawMessage
	if err := decMode.Unmarshal(data, &elems); err != nil {
		return nil, classifyDecodeError(err)
	}
	if len(elems) != 3 && len(elems) != 4 {
		return nil, fmt.Errorf("%w: top level has %v elements, want 3 or 4", ErrMalformedStructure, len(elems))
	}

	tx := &Tx{
		Body:         elems[0],
		rawWitnesses: elems[1],
		elementCount: len(elems),
	}

	ws := new(WitnessSet)
	if err := decMode.Unmarshal(elems[1], ws); err != nil {
		return nil, classifyWitnessDecodeError(err)
	}
	tx.Witnesses = ws

	if len(elems) == 4 {
		var isValid bool
		if err := decMode.Unmarshal(elems[2], &isValid); err != nil {
			return nil, fmt.Errorf("%w: validity flag is not a boolean", ErrUnsupportedFieldCombination)
		}
		tx.IsValid = &isValid
		tx.AuxiliaryData = elems[3]
	} else {
		tx.AuxiliaryData = elems[2]
	}

	var bodyProbe map[uint64]cbor.RawMessage
	if err := decMode.Unmarshal(tx.Body, &bodyProbe); err != nil {
		return nil, classifyDecodeError(err)
	}
	return tx, nil
}

// DecodeTxHex decodes a hex encoded transaction blob.
func DecodeTxHex(txHex string) (*Tx, error) {
	data, err := common.HexToBytes(txHex)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedStructure, err)
	}
	return DecodeTx(data)
}

// Encode serializes the transaction. Body and auxiliary data bytes are
// the stored sub-ranges, untouched; the witness set is re-serialized
// only if it was modified since decode.
func (tx *Tx) Encode() ([]byte, error) {
	witRaw := tx.rawWitnesses
	if tx.witnessDirty || len(witRaw) == 0 {
		enc, err := encMode.Marshal(tx.Witnesses)
		if err != nil {
			return nil, fmt.Errorf("encode witness set: %w", err)
		}
		witRaw = enc
	}

	aux := tx.AuxiliaryData
	if len(aux) == 0 {
		aux = cborNull
	}

	count := tx.elementCount
	if count == 0 {
		if tx.IsValid != nil {
			count = 4
		} else {
			count = 3
		}
	}

	elems := make([]cbor.RawMessage, 0, count)
	elems = append(elems, tx.Body, witRaw)
	if count == 4 {
		valid := true
		if tx.IsValid != nil {
			valid = *tx.IsValid
		}
		validRaw, err := encMode.Marshal(valid)
		if err != nil {
			return nil, err
		}
		elems = append(elems, validRaw)
	}
	elems = append(elems, aux)
	return encMode.Marshal(elems)
}

// SetWitnesses replaces the witness set and marks it for re-encoding.
func (tx *Tx) SetWitnesses(ws *WitnessSet) {
	tx.Witnesses = ws
	tx.witnessDirty = true
}

// Signed reports whether any vkey witness has been attached, meaning
// the body bytes are now covered by a signature and must not change.
func (tx *Tx) Signed() bool {
	return tx.Witnesses != nil && len(tx.Witnesses.VKeyWitnesses) > 0
}

// bodyMap decodes the body into its integer-keyed field map.
func (tx *Tx) bodyMap() (map[uint64]cbor.RawMessage, error) {
	var body map[uint64]cbor.RawMessage
	if err := decMode.Unmarshal(tx.Body, &body); err != nil {
		return nil, classifyDecodeError(err)
	}
	return body, nil
}

// setBody re-encodes the given field map as the new body. Callers must
// hold the no-signature invariant; see AttachScriptSpend.
func (tx *Tx) setBody(body map[uint64]cbor.RawMessage) error {
	enc, err := encMode.Marshal(body)
	if err != nil {
		return err
	}
	tx.Body = enc
	return nil
}

// Inputs returns the transaction inputs listed in the body.
func (tx *Tx) Inputs() ([]TxInput, error) {
	body, err := tx.bodyMap()
	if err != nil {
		return nil, err
	}
	raw, ok := body[bodyKeyInputs]
	if !ok {
		return nil, nil
	}
	var inputs []TxInput
	if err := decMode.Unmarshal(raw, &inputs); err != nil {
		return nil, classifyDecodeError(err)
	}
	return inputs, nil
}

// Fee returns the declared fee from the body.
func (tx *Tx) Fee() (uint64, error) {
	body, err := tx.bodyMap()
	if err != nil {
		return 0, err
	}
	raw, ok := body[bodyKeyFee]
	if !ok {
		return 0, nil
	}
	var fee uint64
	if err := decMode.Unmarshal(raw, &fee); err != nil {
		return 0, classifyDecodeError(err)
	}
	return fee, nil
}

// transaction body field keys
const (
	bodyKeyInputs         = 0
	bodyKeyOutputs        = 1
	bodyKeyFee            = 2
	bodyKeyTTL            = 3
	bodyKeyValidityStart  = 8
	bodyKeyScriptDataHash = 11
	bodyKeyCollateral     = 13
)

// TxInput is a reference to an unspent output being consumed.
type TxInput struct {
	_     struct{} `cbor:",toarray"`
	TxID  []byte
	Index uint64
}

func classifyDecodeError(err error) error {
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) ||
		strings.Contains(err.Error(), "unexpected EOF") {
		return fmt.Errorf("%w: %v", ErrTruncatedInput, err)
	}
	return fmt.Errorf("%w: %v", ErrMalformedStructure, err)
}

func classifyWitnessDecodeError(err error) error {
	var unknown *cbor.UnknownFieldError
	if errors.As(err, &unknown) {
		return fmt.Errorf("%w: witness map key %v", ErrUnsupportedFieldCombination, unknown.Index)
	}
	return classifyDecodeError(err)
}
