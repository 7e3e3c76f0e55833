package cardano

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/LavonTMCQ/M-I-S-T-E-R-sub009/common"
)

var (
	testTxIDHex = strings.Repeat("ab", 32)
	testVKeyHex = strings.Repeat("01", 32)
	testSigHex  = strings.Repeat("02", 64)
)

// body map with keys deliberately out of canonical order, so a decoder
// that re-encodes instead of passing bytes through would change them
func testBodyHex() string {
	return "a3" +
		"00" + "81" + "82" + "5820" + testTxIDHex + "00" + // inputs: [[txid, 0]]
		"03" + "1903e8" + // ttl: 1000
		"02" + "182a" // fee: 42
}

func testUnsignedTxHex() string {
	return "83" + testBodyHex() + "a0" + "f6"
}

func testSignedTxHex() string {
	witnesses := "a1" + "00" + "81" + "82" + "5820" + testVKeyHex + "5840" + testSigHex
	return "84" + testBodyHex() + witnesses + "f5" + "f6"
}

func TestDecodeTxRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		txHex string
	}{
		{"three element unsigned", testUnsignedTxHex()},
		{"four element signed", testSignedTxHex()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := common.FromHex(tt.txHex)
			tx, err := DecodeTx(raw)
			if err != nil {
				t.Fatalf("decode failed: %v", err)
			}
			enc, err := tx.Encode()
			if err != nil {
				t.Fatalf("encode failed: %v", err)
			}
			if !bytes.Equal(enc, raw) {
				t.Fatalf("round trip changed bytes\n in: %x\nout: %x", raw, enc)
			}
		})
	}
}

func TestDecodeTxFields(t *testing.T) {
	tx, err := DecodeTxHex(testSignedTxHex())
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if tx.IsValid == nil || !*tx.IsValid {
		t.Errorf("want validity flag true")
	}
	if len(tx.Witnesses.VKeyWitnesses) != 1 {
		t.Fatalf("want 1 vkey witness, got %v", len(tx.Witnesses.VKeyWitnesses))
	}
	w := tx.Witnesses.VKeyWitnesses[0]
	if common.Bytes2Hex(w.VKey) != testVKeyHex {
		t.Errorf("wrong vkey %x", w.VKey)
	}
	if len(w.Signature) != 64 {
		t.Errorf("want 64 byte signature, got %v", len(w.Signature))
	}
	if !tx.Signed() {
		t.Errorf("want Signed() true")
	}

	inputs, err := tx.Inputs()
	if err != nil {
		t.Fatalf("inputs: %v", err)
	}
	if len(inputs) != 1 || common.Bytes2Hex(inputs[0].TxID) != testTxIDHex || inputs[0].Index != 0 {
		t.Errorf("wrong inputs %+v", inputs)
	}
	fee, err := tx.Fee()
	if err != nil {
		t.Fatalf("fee: %v", err)
	}
	if fee != 42 {
		t.Errorf("want fee 42, got %v", fee)
	}
}

func TestDecodeTxErrors(t *testing.T) {
	unsigned := testUnsignedTxHex()
	tests := []struct {
		name    string
		txHex   string
		wantErr error
	}{
		{"empty input", "", ErrTruncatedInput},
		{"truncated", unsigned[:len(unsigned)-12], ErrTruncatedInput},
		{"not an array", "a0", ErrMalformedStructure},
		{"two elements", "82" + testBodyHex() + "a0", ErrMalformedStructure},
		{"five elements", "85" + testBodyHex() + "a0" + "f5" + "f6" + "f6", ErrMalformedStructure},
		{"trailing garbage", unsigned + "00", ErrMalformedStructure},
		{"unknown witness field", "83" + testBodyHex() + "a1" + "07" + "80" + "f6", ErrUnsupportedFieldCombination},
		{"validity flag not bool", "84" + testBodyHex() + "a0" + "00" + "f6", ErrUnsupportedFieldCombination},
		{"body not a map", "83" + "80" + "a0" + "f6", ErrMalformedStructure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeTxHex(tt.txHex)
			if err == nil {
				t.Fatalf("want error %v, got nil", tt.wantErr)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("want error %v, got %v", tt.wantErr, err)
			}
			if !IsDecodeError(err) {
				t.Errorf("error %v should belong to the decode taxonomy", err)
			}
		})
	}
}

func TestEncodeAfterWitnessChange(t *testing.T) {
	raw := common.FromHex(testUnsignedTxHex())
	tx, err := DecodeTx(raw)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	bodyBefore := append([]byte(nil), tx.Body...)
	idBefore := tx.ID()

	ws := &WitnessSet{VKeyWitnesses: []VKeyWitness{{
		VKey:      common.FromHex(testVKeyHex),
		Signature: common.FromHex(testSigHex),
	}}}
	tx.SetWitnesses(ws)

	enc, err := tx.Encode()
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	reTx, err := DecodeTx(enc)
	if err != nil {
		t.Fatalf("re-decode failed: %v", err)
	}
	if !bytes.Equal(reTx.Body, bodyBefore) {
		t.Errorf("body bytes changed by witness attach")
	}
	if reTx.ID() != idBefore {
		t.Errorf("tx id changed by witness attach: %v != %v", reTx.ID(), idBefore)
	}
	if len(reTx.Witnesses.VKeyWitnesses) != 1 {
		t.Errorf("want 1 vkey witness after re-decode, got %v", len(reTx.Witnesses.VKeyWitnesses))
	}
}

func TestSignedGuards(t *testing.T) {
	tx, err := DecodeTxHex(testSignedTxHex())
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if err := tx.SetFee(7); !errors.Is(err, ErrSignedBodyMutation) {
		t.Errorf("SetFee on signed tx: want ErrSignedBodyMutation, got %v", err)
	}
	if err := tx.AddOutputLovelace(0, 1); !errors.Is(err, ErrSignedBodyMutation) {
		t.Errorf("AddOutputLovelace on signed tx: want ErrSignedBodyMutation, got %v", err)
	}
}

func TestTxIDStable(t *testing.T) {
	tx1, err := DecodeTxHex(testUnsignedTxHex())
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	tx2, err := DecodeTxHex(testSignedTxHex())
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if tx1.ID() != tx2.ID() {
		t.Errorf("same body must hash to same id: %v != %v", tx1.ID(), tx2.ID())
	}
	if len(tx1.ID()) != 64 {
		t.Errorf("want 32 byte hex id, got %v chars", len(tx1.ID()))
	}
}
