// Package assembler composes one build-sign-submit cycle: it takes an
// unsigned transaction from the trade service or builds a withdrawal
// locally, collects witnesses, and hands the finished bytes to the
// submitter. The pipeline is synchronous and pure between its external
// calls; nothing in here retries.
package assembler

import (
	"context"
	"fmt"

	"github.com/LavonTMCQ/M-I-S-T-E-R-sub009/cardano"
	"github.com/LavonTMCQ/M-I-S-T-E-R-sub009/indexer"
	"github.com/LavonTMCQ/M-I-S-T-E-R-sub009/log"
	"github.com/LavonTMCQ/M-I-S-T-E-R-sub009/signer"
	"github.com/LavonTMCQ/M-I-S-T-E-R-sub009/submitter"
	"github.com/LavonTMCQ/M-I-S-T-E-R-sub009/trade"
	"github.com/LavonTMCQ/M-I-S-T-E-R-sub009/utxo"
)

// vkey witness wire overhead used when estimating the fee of a draft
// transaction that has not been signed yet
const signatureOverheadBytes = 102

// Assembler wires the pipeline's collaborators together. Lifecycle is
// owned by the caller; there is no process-wide instance.
type Assembler struct {
	Trade         *trade.Client
	Signer        signer.Signer
	Indexer       indexer.Indexer
	Pool          *utxo.Pool
	Submitter     *submitter.Submitter
	OwnerAddress  string
	PartialSign   bool
	SelectOptions utxo.SelectOptions

	// Tracker, when set, receives every successfully submitted tx that
	// still holds input reservations, so they can be released once the
	// tx is confirmed.
	Tracker Tracker
}

// Tracker follows submitted transactions until confirmation.
type Tracker interface {
	Track(txID cardano.TxID, inputs []utxo.UTXO)
}

// ScriptSpend is one withdrawal intent against a script-locked UTXO.
// The redeemer bytes stay identical across retries of the same intent.
type ScriptSpend struct {
	Input    cardano.UTXORef
	Script   *cardano.ScriptRef
	Redeemer *cardano.RedeemerData
}

// OpenPosition fetches the unsigned open transaction and runs the
// sign-combine-submit tail of the pipeline.
func (a *Assembler) OpenPosition(ctx context.Context, req *trade.OpenRequest) (cardano.TxID, error) {
	unsignedHex, err := a.Trade.OpenPosition(ctx, req)
	if err != nil {
		return "", err
	}
	return a.AssembleAndSubmit(ctx, unsignedHex, nil)
}

// ClosePosition fetches the unsigned close transaction, attaches the
// contract withdrawal authorization when the position sits behind a
// script, then signs and submits.
func (a *Assembler) ClosePosition(ctx context.Context, req *trade.CloseRequest, spend *ScriptSpend) (cardano.TxID, error) {
	unsignedHex, err := a.Trade.ClosePosition(ctx, req)
	if err != nil {
		return "", err
	}
	return a.AssembleAndSubmit(ctx, unsignedHex, spend)
}

// AssembleAndSubmit is the pipeline tail shared by every operation:
// decode, attach script spend, request signature, combine, submit.
// Script attachment strictly precedes the signature request; there is
// no code path that mutates the body afterwards.
func (a *Assembler) AssembleAndSubmit(ctx context.Context, unsignedHex string, spend *ScriptSpend) (cardano.TxID, error) {
	tx, err := cardano.DecodeTxHex(unsignedHex)
	if err != nil {
		return "", err
	}
	if spend != nil {
		if err := cardano.AttachScriptSpend(tx, spend.Input, spend.Script, spend.Redeemer); err != nil {
			return "", err
		}
	}
	if err := a.collectSignature(ctx, tx); err != nil {
		return "", err
	}
	txID, attempts, err := a.Submitter.Submit(ctx, tx)
	if err != nil {
		log.Error("submit failed", "txid", tx.ID(), "attempts", len(attempts), "err", err)
		return "", err
	}
	return txID, nil
}

// collectSignature asks the signer for witnesses and merges them in.
// In partial mode the wallet returns a witness fragment; in complete
// mode it returns a fully signed transaction that is authoritative and
// replaces ours without re-merging.
func (a *Assembler) collectSignature(ctx context.Context, tx *cardano.Tx) error {
	encoded, err := tx.Encode()
	if err != nil {
		return err
	}
	signed, err := a.Signer.Sign(ctx, encoded, a.PartialSign)
	if err != nil {
		return err
	}
	if !a.PartialSign {
		full, err := cardano.DecodeTx(signed)
		if err != nil {
			return fmt.Errorf("signer returned unparseable transaction: %w", err)
		}
		*tx = *full
		return nil
	}
	fragment, err := cardano.DecodeWitnessSet(signed)
	if err != nil {
		return fmt.Errorf("signer returned unparseable witness fragment: %w", err)
	}
	merged, err := cardano.CombineWitnessSets(tx.Witnesses, fragment)
	if err != nil {
		return err
	}
	tx.SetWitnesses(merged)
	return nil
}
