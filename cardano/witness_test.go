package cardano

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/LavonTMCQ/M-I-S-T-E-R-sub009/common"
)

func vkeyWitness(keyByte, sigByte string) VKeyWitness {
	return VKeyWitness{
		VKey:      common.FromHex(strings.Repeat(keyByte, 32)),
		Signature: common.FromHex(strings.Repeat(sigByte, 64)),
	}
}

func encodeOrFatal(t *testing.T, ws *WitnessSet) []byte {
	t.Helper()
	enc, err := ws.Encode()
	if err != nil {
		t.Fatalf("encode witness set: %v", err)
	}
	return enc
}

func TestCombineWitnessSets(t *testing.T) {
	a := &WitnessSet{VKeyWitnesses: []VKeyWitness{vkeyWitness("11", "aa")}}
	b := &WitnessSet{VKeyWitnesses: []VKeyWitness{vkeyWitness("22", "bb")}}

	merged, err := CombineWitnessSets(a, b)
	if err != nil {
		t.Fatalf("combine failed: %v", err)
	}
	if len(merged.VKeyWitnesses) != 2 {
		t.Fatalf("want 2 vkey witnesses, got %v", len(merged.VKeyWitnesses))
	}

	// commutative: swapping the order yields identical bytes
	swapped, err := CombineWitnessSets(b, a)
	if err != nil {
		t.Fatalf("combine swapped failed: %v", err)
	}
	if !bytes.Equal(encodeOrFatal(t, merged), encodeOrFatal(t, swapped)) {
		t.Errorf("combine is order dependent")
	}

	// idempotent: merging the result with its own parts changes nothing
	again, err := CombineWitnessSets(merged, a, b)
	if err != nil {
		t.Fatalf("combine again failed: %v", err)
	}
	if !bytes.Equal(encodeOrFatal(t, merged), encodeOrFatal(t, again)) {
		t.Errorf("combine is not idempotent")
	}
}

func TestCombineDuplicateSignature(t *testing.T) {
	a := &WitnessSet{VKeyWitnesses: []VKeyWitness{vkeyWitness("11", "aa")}}
	b := &WitnessSet{VKeyWitnesses: []VKeyWitness{vkeyWitness("11", "aa")}}
	merged, err := CombineWitnessSets(a, b)
	if err != nil {
		t.Fatalf("combine failed: %v", err)
	}
	if len(merged.VKeyWitnesses) != 1 {
		t.Errorf("identical witness must deduplicate, got %v", len(merged.VKeyWitnesses))
	}
}

func TestCombineConflictingSignature(t *testing.T) {
	// same key, different signatures: the fragments signed different
	// bodies, merging must fail instead of picking one
	a := &WitnessSet{VKeyWitnesses: []VKeyWitness{vkeyWitness("11", "aa")}}
	b := &WitnessSet{VKeyWitnesses: []VKeyWitness{vkeyWitness("11", "bb")}}
	_, err := CombineWitnessSets(a, b)
	if !errors.Is(err, ErrConflictingSignature) {
		t.Fatalf("want ErrConflictingSignature, got %v", err)
	}
}

func TestCombineNonVKeyFields(t *testing.T) {
	script := []byte{0x58, 0x01, 0x01}
	a := &WitnessSet{
		PlutusV2Scripts: [][]byte{script},
		Redeemers: []Redeemer{{
			Tag:   RedeemerTagSpend,
			Index: 1,
			Data:  common.FromHex("d87980"),
		}},
	}
	b := &WitnessSet{
		PlutusV2Scripts: [][]byte{script}, // same script again
		Redeemers: []Redeemer{{
			Tag:   RedeemerTagSpend,
			Index: 0,
			Data:  common.FromHex("d87980"),
		}},
	}
	merged, err := CombineWitnessSets(a, b)
	if err != nil {
		t.Fatalf("combine failed: %v", err)
	}
	if len(merged.PlutusV2Scripts) != 1 {
		t.Errorf("want deduplicated script list, got %v entries", len(merged.PlutusV2Scripts))
	}
	if len(merged.Redeemers) != 2 {
		t.Fatalf("want 2 redeemers, got %v", len(merged.Redeemers))
	}
	if merged.Redeemers[0].Index != 0 || merged.Redeemers[1].Index != 1 {
		t.Errorf("redeemers not sorted by index: %+v", merged.Redeemers)
	}
}

func TestDecodeWitnessSetFragment(t *testing.T) {
	fragHex := "a1" + "00" + "81" + "82" +
		"5820" + strings.Repeat("11", 32) +
		"5840" + strings.Repeat("aa", 64)
	ws, err := DecodeWitnessSetHex(fragHex)
	if err != nil {
		t.Fatalf("decode fragment failed: %v", err)
	}
	if len(ws.VKeyWitnesses) != 1 {
		t.Fatalf("want 1 vkey witness, got %v", len(ws.VKeyWitnesses))
	}

	_, err = DecodeWitnessSetHex("a1" + "07" + "80")
	if !errors.Is(err, ErrUnknownWitnessField) {
		t.Errorf("unknown map key: want ErrUnknownWitnessField, got %v", err)
	}

	_, err = DecodeWitnessSet(nil)
	if !errors.Is(err, ErrTruncatedInput) {
		t.Errorf("empty fragment: want ErrTruncatedInput, got %v", err)
	}
}
