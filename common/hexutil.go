package common

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// FromHex returns the bytes represented by the hexadecimal string s.
// s may be prefixed with "0x". Odd-length strings get a leading zero.
func FromHex(s string) []byte {
	if has0xPrefix(s) {
		s = s[2:]
	}
	if len(s)%2 == 1 {
		s = "0" + s
	}
	return Hex2Bytes(s)
}

// Hex2Bytes returns the bytes represented by the hexadecimal string str.
func Hex2Bytes(str string) []byte {
	h, _ := hex.DecodeString(str)
	return h
}

// Bytes2Hex returns the hexadecimal encoding of d.
func Bytes2Hex(d []byte) string {
	return hex.EncodeToString(d)
}

// ToHex returns the hex representation of b, prefixed with "0x".
func ToHex(b []byte) string {
	return "0x" + hex.EncodeToString(b)
}

// HexToBytes decodes a hex string (with or without 0x prefix) and
// reports malformed input instead of swallowing it.
func HexToBytes(s string) ([]byte, error) {
	if has0xPrefix(s) {
		s = s[2:]
	}
	data, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex string: %w", err)
	}
	return data, nil
}

func has0xPrefix(str string) bool {
	return len(str) >= 2 && str[0] == '0' && (str[1] == 'x' || str[1] == 'X')
}

// GetBigIntFromStr new big int from string.
func GetBigIntFromStr(str string) (*big.Int, error) {
	bi, ok := new(big.Int).SetString(str, 0)
	if !ok {
		return nil, fmt.Errorf("invalid big int string '%v'", str)
	}
	return bi, nil
}

// GetUint64FromStr new uint64 from string.
func GetUint64FromStr(str string) (uint64, error) {
	res, err := strconv.ParseUint(str, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid uint64 string '%v'", str)
	}
	return res, nil
}

// IsEqualIgnoreCase returns if s1 and s2 are equal ignore case.
func IsEqualIgnoreCase(s1, s2 string) bool {
	return strings.EqualFold(s1, s2)
}

// IsHexHash verifies whether a string can represent a valid hex-encoded
// 32 byte hash or not.
func IsHexHash(s string) bool {
	if has0xPrefix(s) {
		s = s[2:]
	}
	if len(s) != 64 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}
