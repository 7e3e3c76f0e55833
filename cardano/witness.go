package cardano

import (
	"bytes"
	"errors"
	"fmt"
	"sort"

	"github.com/fxamacker/cbor/v2"

	"github.com/LavonTMCQ/M-I-S-T-E-R-sub009/common"
)

// WitnessSet carries the authorization proofs of a transaction. Every
// field is independently optional on the wire.
type WitnessSet struct {
	VKeyWitnesses   []VKeyWitness     `cbor:"0,keyasint,omitempty"`
	NativeScripts   []cbor.RawMessage `cbor:"1,keyasint,omitempty"`
	Bootstrap       []cbor.RawMessage `cbor:"2,keyasint,omitempty"`
	PlutusV1Scripts [][]byte          `cbor:"3,keyasint,omitempty"`
	PlutusData      []cbor.RawMessage `cbor:"4,keyasint,omitempty"`
	Redeemers       []Redeemer        `cbor:"5,keyasint,omitempty"`
	PlutusV2Scripts [][]byte          `cbor:"6,keyasint,omitempty"`
}

// VKeyWitness is a (public key, signature) pair over the body hash.
type VKeyWitness struct {
	_         struct{} `cbor:",toarray"`
	VKey      []byte
	Signature []byte
}

// redeemer purpose tags
const (
	RedeemerTagSpend uint64 = 0
	RedeemerTagMint  uint64 = 1
	RedeemerTagCert  uint64 = 2
)

// Redeemer routes a script-locked input to the validator code path
// selected by its data payload.
type Redeemer struct {
	_       struct{} `cbor:",toarray"`
	Tag     uint64
	Index   uint64
	Data    cbor.RawMessage
	ExUnits ExUnits
}

// ExUnits is the execution budget carried with a redeemer.
type ExUnits struct {
	_     struct{} `cbor:",toarray"`
	Mem   uint64
	Steps uint64
}

// DecodeWitnessSet decodes a standalone witness set fragment, such as a
// wallet returns from a partial signing request.
func DecodeWitnessSet(data []byte) (*WitnessSet, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty witness fragment", ErrTruncatedInput)
	}
	ws := new(WitnessSet)
	if err := decMode.Unmarshal(data, ws); err != nil {
		var unknown *cbor.UnknownFieldError
		if errors.As(err, &unknown) {
			return nil, fmt.Errorf("%w: witness map key %v", ErrUnknownWitnessField, unknown.Index)
		}
		return nil, classifyDecodeError(err)
	}
	return ws, nil
}

// DecodeWitnessSetHex decodes a hex encoded witness set fragment.
func DecodeWitnessSetHex(wsHex string) (*WitnessSet, error) {
	data, err := common.HexToBytes(wsHex)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedStructure, err)
	}
	return DecodeWitnessSet(data)
}

// Encode serializes the witness set in the canonical field order.
func (ws *WitnessSet) Encode() ([]byte, error) {
	return encMode.Marshal(ws)
}

// IsEmpty reports whether no field holds anything.
func (ws *WitnessSet) IsEmpty() bool {
	return ws == nil || (len(ws.VKeyWitnesses) == 0 && len(ws.NativeScripts) == 0 &&
		len(ws.Bootstrap) == 0 && len(ws.PlutusV1Scripts) == 0 &&
		len(ws.PlutusData) == 0 && len(ws.Redeemers) == 0 && len(ws.PlutusV2Scripts) == 0)
}

// CombineWitnessSets merges the original witness set with externally
// produced fragments. Vkey witnesses are keyed by public key; a second,
// different signature for a key already seen means the fragments signed
// different bodies and the merge fails. List fields are unioned and
// de-duplicated by content. The output ordering is canonical per field,
// so combining the same inputs in any order yields identical bytes.
func CombineWitnessSets(original *WitnessSet, additions ...*WitnessSet) (*WitnessSet, error) {
	out := new(WitnessSet)
	vkeyByKey := make(map[string][]byte)

	sets := make([]*WitnessSet, 0, len(additions)+1)
	if original != nil {
		sets = append(sets, original)
	}
	for _, add := range additions {
		if add != nil {
			sets = append(sets, add)
		}
	}

	for _, ws := range sets {
		for _, w := range ws.VKeyWitnesses {
			key := string(w.VKey)
			if prev, seen := vkeyByKey[key]; seen {
				if !bytes.Equal(prev, w.Signature) {
					return nil, fmt.Errorf("%w: pubkey %v", ErrConflictingSignature, common.Bytes2Hex(w.VKey))
				}
				continue
			}
			vkeyByKey[key] = append([]byte(nil), w.Signature...)
		}
		out.NativeScripts = appendRawUnique(out.NativeScripts, ws.NativeScripts)
		out.Bootstrap = appendRawUnique(out.Bootstrap, ws.Bootstrap)
		out.PlutusV1Scripts = appendBytesUnique(out.PlutusV1Scripts, ws.PlutusV1Scripts)
		out.PlutusData = appendRawUnique(out.PlutusData, ws.PlutusData)
		out.PlutusV2Scripts = appendBytesUnique(out.PlutusV2Scripts, ws.PlutusV2Scripts)
		for _, r := range ws.Redeemers {
			out.Redeemers = appendRedeemerUnique(out.Redeemers, r)
		}
	}

	keys := make([]string, 0, len(vkeyByKey))
	for key := range vkeyByKey {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		out.VKeyWitnesses = append(out.VKeyWitnesses, VKeyWitness{
			VKey:      []byte(key),
			Signature: vkeyByKey[key],
		})
	}

	sortRaw(out.NativeScripts)
	sortRaw(out.Bootstrap)
	sortBytes(out.PlutusV1Scripts)
	sortRaw(out.PlutusData)
	sortBytes(out.PlutusV2Scripts)
	sort.SliceStable(out.Redeemers, func(i, j int) bool {
		if out.Redeemers[i].Tag != out.Redeemers[j].Tag {
			return out.Redeemers[i].Tag < out.Redeemers[j].Tag
		}
		return out.Redeemers[i].Index < out.Redeemers[j].Index
	})
	return out, nil
}

func appendRawUnique(dst []cbor.RawMessage, src []cbor.RawMessage) []cbor.RawMessage {
	for _, item := range src {
		dup := false
		for _, have := range dst {
			if bytes.Equal(have, item) {
				dup = true
				break
			}
		}
		if !dup {
			dst = append(dst, append(cbor.RawMessage(nil), item...))
		}
	}
	return dst
}

func appendBytesUnique(dst [][]byte, src [][]byte) [][]byte {
	for _, item := range src {
		dup := false
		for _, have := range dst {
			if bytes.Equal(have, item) {
				dup = true
				break
			}
		}
		if !dup {
			dst = append(dst, append([]byte(nil), item...))
		}
	}
	return dst
}

func appendRedeemerUnique(dst []Redeemer, r Redeemer) []Redeemer {
	for _, have := range dst {
		if have.Tag == r.Tag && have.Index == r.Index && bytes.Equal(have.Data, r.Data) {
			return dst
		}
	}
	return append(dst, r)
}

func sortRaw(items []cbor.RawMessage) {
	sort.SliceStable(items, func(i, j int) bool {
		return bytes.Compare(items[i], items[j]) < 0
	})
}

func sortBytes(items [][]byte) {
	sort.SliceStable(items, func(i, j int) bool {
		return bytes.Compare(items[i], items[j]) < 0
	})
}
