package common

import (
	"bytes"
	"testing"
)

func TestHexToBytes(t *testing.T) {
	tests := []struct {
		input   string
		want    []byte
		wantErr bool
	}{
		{"deadbeef", []byte{0xde, 0xad, 0xbe, 0xef}, false},
		{"0xdeadbeef", []byte{0xde, 0xad, 0xbe, 0xef}, false},
		{"0Xdeadbeef", []byte{0xde, 0xad, 0xbe, 0xef}, false},
		{"", []byte{}, false},
		{"abc", nil, true},  // odd length
		{"zzzz", nil, true}, // not hex
	}
	for _, tt := range tests {
		got, err := HexToBytes(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("HexToBytes(%q): want error", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("HexToBytes(%q): %v", tt.input, err)
			continue
		}
		if !bytes.Equal(got, tt.want) {
			t.Errorf("HexToBytes(%q) = %x, want %x", tt.input, got, tt.want)
		}
	}
}

func TestFromHexPadsOddLength(t *testing.T) {
	if got := FromHex("0xabc"); !bytes.Equal(got, []byte{0x0a, 0xbc}) {
		t.Errorf("FromHex(0xabc) = %x", got)
	}
	if got := ToHex([]byte{0x0a, 0xbc}); got != "0x0abc" {
		t.Errorf("ToHex = %v", got)
	}
}

func TestIsHexHash(t *testing.T) {
	hash64 := "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"
	tests := []struct {
		input string
		want  bool
	}{
		{hash64, true},
		{"0x" + hash64, true},
		{hash64[:62], false},
		{hash64 + "00", false},
		{"g" + hash64[1:], false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsHexHash(tt.input); got != tt.want {
			t.Errorf("IsHexHash(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestGetUint64FromStr(t *testing.T) {
	if v, err := GetUint64FromStr("42"); err != nil || v != 42 {
		t.Errorf("GetUint64FromStr(42) = %v, %v", v, err)
	}
	if v, err := GetUint64FromStr("0x2a"); err != nil || v != 42 {
		t.Errorf("GetUint64FromStr(0x2a) = %v, %v", v, err)
	}
	if _, err := GetUint64FromStr("-1"); err == nil {
		t.Errorf("negative must fail")
	}
	if _, err := GetUint64FromStr("forty"); err == nil {
		t.Errorf("non numeric must fail")
	}
}
