package assembler

import (
	"context"
	"errors"
	"fmt"

	"github.com/LavonTMCQ/M-I-S-T-E-R-sub009/cardano"
	"github.com/LavonTMCQ/M-I-S-T-E-R-sub009/log"
	"github.com/LavonTMCQ/M-I-S-T-E-R-sub009/utxo"
)

// ErrAssetBearingInputs means fee selection pulled a utxo carrying
// native assets into a lovelace-only transaction, which would leave
// those assets unaccounted for on the output side.
var ErrAssetBearingInputs = errors.New("selected inputs carry native assets")

// WithdrawRequest withdraws a contract-held lovelace balance back to
// the owner address.
type WithdrawRequest struct {
	Spend   *ScriptSpend
	Balance uint64 // lovelace held at the script input
}

// Withdraw builds the withdrawal transaction locally: fee-paying
// inputs are selected and reserved from the owner's wallet, the
// script input is attached with its redeemer, the signature is
// requested last. Reservations are released on any failure; on success
// they stay held until the confirmation watcher sees the spend.
func (a *Assembler) Withdraw(ctx context.Context, req *WithdrawRequest) (txID cardano.TxID, retErr error) {
	pp, err := a.Indexer.ProtocolParams(ctx)
	if err != nil {
		return "", err
	}
	available, err := a.Indexer.QueryUTXOs(ctx, a.OwnerAddress)
	if err != nil {
		return "", err
	}

	opts := a.SelectOptions
	if opts.MinUTXO == 0 {
		opts.MinUTXO = pp.MinUTXOValue
	}
	// draft pass with a worst-case fee, refined after sizing
	opts.FeeEstimate = pp.LinearFee(pp.MaxTxSize / 4)

	sel, err := a.Pool.Select(available, cardano.NewValue(0), opts)
	if err != nil {
		return "", err
	}
	defer func() {
		if retErr != nil {
			a.Pool.Release(sel.Inputs)
		}
	}()

	// the payout output is lovelace-only, so any asset riding along on
	// a fee input would be burned; reject before building the body
	if sel.Change.HasAssets() {
		return "", fmt.Errorf("%w: change %v", ErrAssetBearingInputs, sel.Change)
	}

	inputs := make([]cardano.UTXORef, 0, len(sel.Inputs))
	for _, u := range sel.Inputs {
		inputs = append(inputs, u.Ref())
	}
	payout := req.Balance + sel.Change.Lovelace()
	tx, err := cardano.NewUnsignedTx(inputs, []cardano.TxOut{{
		Address: a.OwnerAddress,
		Value:   cardano.NewValue(payout),
	}}, opts.FeeEstimate+sel.FoldedDust)
	if err != nil {
		return "", err
	}

	if err := cardano.AttachScriptSpend(tx, req.Spend.Input, req.Spend.Script, req.Spend.Redeemer); err != nil {
		return "", err
	}

	// refine the fee now that the real size is known; the saved
	// lovelace goes back to the payout so totals stay balanced
	draft, err := tx.Encode()
	if err != nil {
		return "", err
	}
	realFee := pp.LinearFee(uint64(len(draft))+signatureOverheadBytes) + sel.FoldedDust
	declared := opts.FeeEstimate + sel.FoldedDust
	if realFee < declared {
		if err := tx.SetFee(realFee); err != nil {
			return "", err
		}
		if err := tx.AddOutputLovelace(0, int64(declared-realFee)); err != nil {
			return "", err
		}
	}

	if err := a.collectSignature(ctx, tx); err != nil {
		return "", err
	}
	txID, attempts, err := a.Submitter.Submit(ctx, tx)
	if err != nil {
		log.Error("withdraw submit failed", "txid", tx.ID(), "attempts", len(attempts), "err", err)
		return "", err
	}
	if a.Tracker != nil {
		a.Tracker.Track(txID, sel.Inputs)
	}
	log.Info("withdraw submitted", "txid", txID, "payout", payout, "fee", realFee, "inputs", len(sel.Inputs))
	return txID, nil
}

// ReleaseInputs frees reservations after a definitive external outcome.
func (a *Assembler) ReleaseInputs(inputs []utxo.UTXO) {
	a.Pool.Release(inputs)
}
