package cardano

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/btcsuite/btcutil/bech32"

	"github.com/LavonTMCQ/M-I-S-T-E-R-sub009/common"
)

// enterprise address header: payment credential only
const (
	hdrScriptEnterprise = 0x71 // script credential, mainnet
	hdrKeyEnterprise    = 0x61 // key credential, mainnet
)

func addressForHash(t *testing.T, header byte, hash []byte) string {
	t.Helper()
	payload := append([]byte{header}, hash...)
	addr, err := bech32.EncodeFromBase256("addr", payload)
	if err != nil {
		t.Fatalf("encode address: %v", err)
	}
	return addr
}

func testScriptSpendFixture(t *testing.T) (*Tx, UTXORef, *ScriptRef, *RedeemerData) {
	t.Helper()
	tx, err := DecodeTxHex(testUnsignedTxHex())
	if err != nil {
		t.Fatalf("decode tx: %v", err)
	}
	script := &ScriptRef{Version: ScriptV2, Script: common.FromHex("4d01000033222220051200120011")}
	hash, err := script.Hash()
	if err != nil {
		t.Fatalf("script hash: %v", err)
	}
	input := UTXORef{
		TxHash:  strings.Repeat("cd", 32),
		Index:   1,
		Address: addressForHash(t, hdrScriptEnterprise, hash),
	}
	redeemer := &RedeemerData{Constructor: 1, Fields: [][]byte{{0x01, 0x02}}}
	return tx, input, script, redeemer
}

func TestScriptRefHash(t *testing.T) {
	script := common.FromHex("4d01000033222220051200120011")
	v1 := &ScriptRef{Version: ScriptV1, Script: script}
	v2 := &ScriptRef{Version: ScriptV2, Script: script}
	h1, err := v1.Hash()
	if err != nil {
		t.Fatalf("v1 hash: %v", err)
	}
	h2, err := v2.Hash()
	if err != nil {
		t.Fatalf("v2 hash: %v", err)
	}
	if len(h1) != 28 || len(h2) != 28 {
		t.Fatalf("want 28 byte hashes, got %v and %v", len(h1), len(h2))
	}
	// the language tag is part of the hash preimage
	if bytes.Equal(h1, h2) {
		t.Errorf("v1 and v2 hashes of the same bytes must differ")
	}

	if _, err := (&ScriptRef{Version: ScriptV2}).Hash(); err == nil {
		t.Errorf("empty script must not hash")
	}
}

func TestAttachScriptSpend(t *testing.T) {
	tx, input, script, redeemer := testScriptSpendFixture(t)

	if err := AttachScriptSpend(tx, input, script, redeemer); err != nil {
		t.Fatalf("attach failed: %v", err)
	}

	inputs, err := tx.Inputs()
	if err != nil {
		t.Fatalf("inputs: %v", err)
	}
	if len(inputs) != 2 {
		t.Fatalf("want 2 inputs after attach, got %v", len(inputs))
	}
	last := inputs[len(inputs)-1]
	if common.Bytes2Hex(last.TxID) != input.TxHash || last.Index != input.Index {
		t.Errorf("script input not appended: %+v", last)
	}

	ws := tx.Witnesses
	if len(ws.PlutusV2Scripts) != 1 {
		t.Errorf("want script in witness set, got %v", len(ws.PlutusV2Scripts))
	}
	if len(ws.Redeemers) != 1 {
		t.Fatalf("want 1 redeemer, got %v", len(ws.Redeemers))
	}
	red := ws.Redeemers[0]
	if red.Tag != RedeemerTagSpend {
		t.Errorf("want spend tag, got %v", red.Tag)
	}
	if red.Index != uint64(len(inputs)-1) {
		t.Errorf("redeemer index %v does not point at the appended input", red.Index)
	}

	body, err := tx.bodyMap()
	if err != nil {
		t.Fatalf("body: %v", err)
	}
	var sdh []byte
	if err := decMode.Unmarshal(body[bodyKeyScriptDataHash], &sdh); err != nil {
		t.Fatalf("script data hash: %v", err)
	}
	if len(sdh) != 32 {
		t.Errorf("want 32 byte script data hash, got %v bytes", len(sdh))
	}

	// whole result still decodes and round trips
	enc, err := tx.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := DecodeTx(enc); err != nil {
		t.Fatalf("re-decode: %v", err)
	}
}

func TestAttachScriptSpendIdempotentRetry(t *testing.T) {
	tx, input, script, redeemer := testScriptSpendFixture(t)
	if err := AttachScriptSpend(tx, input, script, redeemer); err != nil {
		t.Fatalf("first attach: %v", err)
	}
	first, err := tx.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	// a retry of the same intent builds from a fresh decode of the
	// same unsigned bytes and must produce the same transaction
	tx2, err := DecodeTxHex(testUnsignedTxHex())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if err := AttachScriptSpend(tx2, input, script, redeemer); err != nil {
		t.Fatalf("second attach: %v", err)
	}
	second, err := tx2.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Errorf("same spend intent produced different bytes")
	}
}

func TestAttachScriptSpendRejections(t *testing.T) {
	t.Run("script does not match address", func(t *testing.T) {
		tx, input, script, redeemer := testScriptSpendFixture(t)
		other := &ScriptRef{Version: ScriptV2, Script: common.FromHex("4d010000332222200512001200ff")}
		otherHash, _ := other.Hash()
		input.Address = addressForHash(t, hdrScriptEnterprise, otherHash)

		before, err := tx.Encode()
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		err = AttachScriptSpend(tx, input, script, redeemer)
		if !errors.Is(err, ErrScriptAddressMismatch) {
			t.Fatalf("want ErrScriptAddressMismatch, got %v", err)
		}
		after, err := tx.Encode()
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		if !bytes.Equal(before, after) {
			t.Errorf("failed attach must leave the transaction unmodified")
		}
	})

	t.Run("key locked address", func(t *testing.T) {
		tx, input, script, redeemer := testScriptSpendFixture(t)
		hash, _ := script.Hash()
		input.Address = addressForHash(t, hdrKeyEnterprise, hash)
		err := AttachScriptSpend(tx, input, script, redeemer)
		if !errors.Is(err, ErrNotScriptAddress) {
			t.Fatalf("want ErrNotScriptAddress, got %v", err)
		}
	})

	t.Run("already signed", func(t *testing.T) {
		tx, err := DecodeTxHex(testSignedTxHex())
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		_, input, script, redeemer := testScriptSpendFixture(t)
		err = AttachScriptSpend(tx, input, script, redeemer)
		if !errors.Is(err, ErrSignedBodyMutation) {
			t.Fatalf("want ErrSignedBodyMutation, got %v", err)
		}
	})
}

func TestRedeemerDataEncoding(t *testing.T) {
	tests := []struct {
		name        string
		constructor uint64
		wantPrefix  string
	}{
		{"constructor 0", 0, "d879"},   // tag 121
		{"constructor 1", 1, "d87a"},   // tag 122
		{"constructor 6", 6, "d87f"},   // tag 127
		{"constructor 7", 7, "d90500"}, // tag 1280
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &RedeemerData{Constructor: tt.constructor}
			enc, err := d.Encode()
			if err != nil {
				t.Fatalf("encode: %v", err)
			}
			if !strings.HasPrefix(common.Bytes2Hex(enc), tt.wantPrefix) {
				t.Errorf("constructor %v: want prefix %v, got %x", tt.constructor, tt.wantPrefix, enc)
			}
		})
	}
}
