package cardano

import (
	"golang.org/x/crypto/blake2b"

	"github.com/LavonTMCQ/M-I-S-T-E-R-sub009/common"
)

// TxID is the fixed-length hex identifier of a transaction.
type TxID string

func (id TxID) String() string { return string(id) }

// ID returns the transaction id, the blake2b-256 hash of the exact body
// bytes. Signatures verify against this hash, which is why the body is
// passthrough-only.
func (tx *Tx) ID() TxID {
	sum := blake2b.Sum256(tx.Body)
	return TxID(common.Bytes2Hex(sum[:]))
}

// HashSigningPayload returns the byte payload a wallet signs for this
// transaction.
func (tx *Tx) HashSigningPayload() []byte {
	sum := blake2b.Sum256(tx.Body)
	return sum[:]
}
