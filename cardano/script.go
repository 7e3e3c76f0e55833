package cardano

import (
	"bytes"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/blake2b"

	"github.com/LavonTMCQ/M-I-S-T-E-R-sub009/common"
)

// ScriptVersion selects the Plutus language of a script.
type ScriptVersion uint8

// supported script versions
const (
	ScriptV1 ScriptVersion = 1
	ScriptV2 ScriptVersion = 2
)

// ScriptRef is a reference to the on-chain validator program guarding a
// script-locked address.
type ScriptRef struct {
	Version ScriptVersion `json:"version"`
	Script  []byte        `json:"script"`
}

// Hash returns the 28 byte payment credential hash of the script. The
// language tag byte is prepended before hashing, per ledger rules.
func (s *ScriptRef) Hash() ([]byte, error) {
	if len(s.Script) == 0 {
		return nil, fmt.Errorf("empty script")
	}
	h, err := blake2b.New(28, nil)
	if err != nil {
		return nil, err
	}
	h.Write([]byte{byte(s.Version)})
	h.Write(s.Script)
	return h.Sum(nil), nil
}

// RedeemerData is the constructor-tagged payload handed to the
// validator. The constructor selects the contract code path; this
// package never interprets its meaning.
type RedeemerData struct {
	Constructor uint64   `json:"constructor"`
	Fields      [][]byte `json:"fields"`
}

// MarshalCBOR encodes the payload as tagged plutus data. Constructors
// 0..6 map onto tags 121..127, larger ones onto the 1280 range.
func (d *RedeemerData) MarshalCBOR() ([]byte, error) {
	fields := make([]cbor.RawMessage, 0, len(d.Fields))
	for _, f := range d.Fields {
		enc, err := encMode.Marshal(f)
		if err != nil {
			return nil, err
		}
		fields = append(fields, enc)
	}
	tag := d.Constructor + 121
	if d.Constructor > 6 {
		tag = d.Constructor - 7 + 1280
	}
	return encMode.Marshal(cbor.Tag{Number: tag, Content: fields})
}

// Encode returns the wire bytes of the payload.
func (d *RedeemerData) Encode() (cbor.RawMessage, error) {
	return d.MarshalCBOR()
}

// AttachScriptSpend extends the transaction with one script-locked
// input and its spending authorization: the input joins the body input
// list, the script and redeemer join the witness set, and the body's
// script-data hash is recomputed to cover the added redeemer.
//
// Preconditions fail closed: the input address must be script locked
// and the script must hash to its payment credential. A transaction
// that already carries vkey witnesses is rejected outright, since the
// body mutation would strand those signatures; callers therefore attach
// before requesting any signature.
func AttachScriptSpend(tx *Tx, input UTXORef, script *ScriptRef, redeemer *RedeemerData) error {
	if tx.Signed() {
		return ErrSignedBodyMutation
	}

	cred, err := PaymentScriptHash(input.Address)
	if err != nil {
		return err
	}
	scriptHash, err := script.Hash()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrScriptAddressMismatch, err)
	}
	if !bytes.Equal(cred, scriptHash) {
		return fmt.Errorf("%w: address credential %v, script %v",
			ErrScriptAddressMismatch, common.Bytes2Hex(cred), common.Bytes2Hex(scriptHash))
	}

	body, err := tx.bodyMap()
	if err != nil {
		return err
	}

	var inputs []TxInput
	if raw, ok := body[bodyKeyInputs]; ok {
		if err := decMode.Unmarshal(raw, &inputs); err != nil {
			return classifyDecodeError(err)
		}
	}
	txID, err := common.HexToBytes(input.TxHash)
	if err != nil {
		return fmt.Errorf("%w: input tx hash: %v", ErrMalformedStructure, err)
	}
	inputs = append(inputs, TxInput{TxID: txID, Index: input.Index})
	rawInputs, err := encMode.Marshal(inputs)
	if err != nil {
		return err
	}
	body[bodyKeyInputs] = rawInputs

	data, err := redeemer.Encode()
	if err != nil {
		return err
	}
	red := Redeemer{
		Tag:   RedeemerTagSpend,
		Index: uint64(len(inputs) - 1),
		Data:  data,
	}

	ws := tx.Witnesses
	if ws == nil {
		ws = new(WitnessSet)
	}
	ws.Redeemers = appendRedeemerUnique(ws.Redeemers, red)
	switch script.Version {
	case ScriptV1:
		ws.PlutusV1Scripts = appendBytesUnique(ws.PlutusV1Scripts, [][]byte{script.Script})
	default:
		ws.PlutusV2Scripts = appendBytesUnique(ws.PlutusV2Scripts, [][]byte{script.Script})
	}

	sdh, err := scriptDataHash(ws.Redeemers, ws.PlutusData)
	if err != nil {
		return err
	}
	rawSDH, err := encMode.Marshal(sdh)
	if err != nil {
		return err
	}
	body[bodyKeyScriptDataHash] = rawSDH

	if err := tx.setBody(body); err != nil {
		return err
	}
	tx.SetWitnesses(ws)
	return nil
}

// scriptDataHash commits the body to the redeemers and datums it will
// be executed with. Recomputed whenever a redeemer is attached.
func scriptDataHash(redeemers []Redeemer, datums []cbor.RawMessage) ([]byte, error) {
	var buf bytes.Buffer
	encRedeemers, err := encMode.Marshal(redeemers)
	if err != nil {
		return nil, err
	}
	buf.Write(encRedeemers)
	if len(datums) > 0 {
		encDatums, err := encMode.Marshal(datums)
		if err != nil {
			return nil, err
		}
		buf.Write(encDatums)
	}
	sum := blake2b.Sum256(buf.Bytes())
	return sum[:], nil
}
