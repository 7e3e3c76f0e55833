// Package signer requests transaction signatures from a wallet-like
// collaborator. The signer is untrusted but treated as well formed on
// success; everything it returns goes through the typed decoder before
// use.
package signer

import (
	"context"
	"errors"
)

// signer errors
var (
	ErrSignerUnavailable = errors.New("signer channel unavailable")
	ErrEmptyWitness      = errors.New("signer returned empty witness")
)

// Signer produces witness bytes over a transaction. With partial true
// the result is a witness-set fragment to be merged; with partial false
// it is a complete signed transaction that is taken as authoritative.
type Signer interface {
	Sign(ctx context.Context, txCBOR []byte, partial bool) ([]byte, error)
}

// Relay is the optional submission channel a wallet signer exposes.
// Submission through the signer is preferred over direct indexer
// submission because some wallets track their own UTXO state.
type Relay interface {
	SubmitTx(ctx context.Context, txCBOR []byte) (string, error)
}
