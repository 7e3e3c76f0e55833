package signer

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcutil/bech32"
	"github.com/echovl/cardano-go/crypto"

	"github.com/LavonTMCQ/M-I-S-T-E-R-sub009/cardano"
)

// LocalKeySigner signs with an in-process ed25519 key. Used in tests
// and in the SignWithPrivateKey config mode; it exposes no relay, so
// submission always goes through the indexer channel.
type LocalKeySigner struct {
	key crypto.PrvKey
}

var _ Signer = (*LocalKeySigner)(nil)

// NewLocalKeySigner accepts a bech32 "addr_sk" key or a hex seed.
func NewLocalKeySigner(priv string) (*LocalKeySigner, error) {
	if key, err := crypto.NewPrvKey(priv); err == nil {
		return &LocalKeySigner{key: key}, nil
	}
	seed, err := hex.DecodeString(priv)
	if err != nil {
		return nil, fmt.Errorf("private key is neither bech32 nor hex seed: %w", err)
	}
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("hex seed has %v bytes, want %v", len(seed), ed25519.SeedSize)
	}
	edKey := ed25519.NewKeyFromSeed(seed)
	encoded, err := bech32.EncodeFromBase256("addr_sk", edKey)
	if err != nil {
		return nil, err
	}
	key, err := crypto.NewPrvKey(encoded)
	if err != nil {
		return nil, err
	}
	return &LocalKeySigner{key: key}, nil
}

// PubKeyHex returns the hex encoded public key.
func (s *LocalKeySigner) PubKeyHex() string {
	return s.key.PubKey().String()
}

// Sign impl Signer. The partial form returns a vkey-only witness set
// fragment; the complete form returns the whole signed transaction.
func (s *LocalKeySigner) Sign(ctx context.Context, txCBOR []byte, partial bool) ([]byte, error) {
	tx, err := cardano.DecodeTx(txCBOR)
	if err != nil {
		return nil, err
	}
	payload := tx.HashSigningPayload()
	sig := s.key.Sign(payload)

	fragment := &cardano.WitnessSet{
		VKeyWitnesses: []cardano.VKeyWitness{{
			VKey:      []byte(s.key.PubKey()),
			Signature: sig,
		}},
	}
	if partial {
		return fragment.Encode()
	}

	merged, err := cardano.CombineWitnessSets(tx.Witnesses, fragment)
	if err != nil {
		return nil, err
	}
	tx.SetWitnesses(merged)
	return tx.Encode()
}
