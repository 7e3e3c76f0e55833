// Package utxo chooses spendable outputs for a build and tracks which
// ones are already committed to an in-flight build-sign-submit cycle.
package utxo

import (
	"errors"
	"fmt"
	"sort"

	"github.com/LavonTMCQ/M-I-S-T-E-R-sub009/cardano"
)

// selection errors, recoverable by caller action
var (
	ErrInsufficientFunds = errors.New("insufficient funds for target value plus fee")
	ErrDustChange        = errors.New("change below minimum utxo value")
)

// UTXO is one unspent output. Immutable; consumed exactly once.
type UTXO struct {
	TxHash  string        `json:"txHash"`
	Index   uint64        `json:"index"`
	Address string        `json:"address"`
	Value   cardano.Value `json:"value"`
}

// Key returns the reservation key, "txhash#index".
func (u UTXO) Key() string {
	return fmt.Sprintf("%s#%d", u.TxHash, u.Index)
}

// Ref returns the ledger reference of this output.
func (u UTXO) Ref() cardano.UTXORef {
	return cardano.UTXORef{TxHash: u.TxHash, Index: u.Index, Address: u.Address}
}

// DustPolicy decides what happens when change would fall below the
// ledger's minimum output value.
type DustPolicy uint8

// dust policies
const (
	// DustFoldFee folds sub-minimum change into the fee, a documented
	// bounded loss.
	DustFoldFee DustPolicy = iota
	// DustAddInput pulls one additional input to lift the change above
	// the minimum.
	DustAddInput
)

// SelectOptions parameterize one selection.
type SelectOptions struct {
	FeeEstimate uint64
	MinUTXO     uint64
	DustPolicy  DustPolicy
}

// Selection is the outcome of a successful selection. Change is exact:
// inputs minus target minus fee, with FoldedDust the lovelace folded
// into the fee under DustFoldFee (zero otherwise).
type Selection struct {
	Inputs     []UTXO
	Change     cardano.Value
	FoldedDust uint64
}

// Select picks the fewest inputs covering target plus fee, largest
// lovelace first, and computes exact change. On failure nothing is
// selected. It does not consult or update any reservation state; see
// Pool.Select for the guarded variant.
func Select(available []UTXO, target cardano.Value, opts SelectOptions) (*Selection, error) {
	need := target.Clone()
	need.Add(cardano.Lovelace, opts.FeeEstimate)

	candidates := make([]UTXO, len(available))
	copy(candidates, available)
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Value.Lovelace() != candidates[j].Value.Lovelace() {
			return candidates[i].Value.Lovelace() > candidates[j].Value.Lovelace()
		}
		return candidates[i].Key() < candidates[j].Key()
	})

	accum := make(cardano.Value)
	used := make(map[string]bool)
	var inputs []UTXO

	take := func(u UTXO) {
		used[u.Key()] = true
		inputs = append(inputs, u)
		accum.AddValue(u.Value)
	}

	// cover non-native assets first, richest holder of each asset first
	assetIDs := make([]cardano.AssetID, 0, len(need))
	for id := range need {
		if !id.IsLovelace() {
			assetIDs = append(assetIDs, id)
		}
	}
	sort.Slice(assetIDs, func(i, j int) bool { return assetIDs[i].String() < assetIDs[j].String() })
	for _, id := range assetIDs {
		holders := make([]UTXO, 0)
		for _, u := range candidates {
			if !used[u.Key()] && u.Value[id] > 0 {
				holders = append(holders, u)
			}
		}
		sort.SliceStable(holders, func(i, j int) bool {
			if holders[i].Value[id] != holders[j].Value[id] {
				return holders[i].Value[id] > holders[j].Value[id]
			}
			return holders[i].Key() < holders[j].Key()
		})
		for _, u := range holders {
			if accum[id] >= need[id] {
				break
			}
			take(u)
		}
		if accum[id] < need[id] {
			return nil, fmt.Errorf("%w: asset %v short by %v", ErrInsufficientFunds, id, need[id]-accum[id])
		}
	}

	for _, u := range candidates {
		if accum.Covers(need) {
			break
		}
		if !used[u.Key()] {
			take(u)
		}
	}
	if !accum.Covers(need) {
		return nil, fmt.Errorf("%w: lovelace short by %v", ErrInsufficientFunds, need.Lovelace()-accum.Lovelace())
	}

	change, err := accum.Sub(need)
	if err != nil {
		return nil, err
	}

	sel := &Selection{Inputs: inputs, Change: change}
	changeLovelace := change.Lovelace()
	if changeLovelace > 0 && changeLovelace < opts.MinUTXO {
		switch opts.DustPolicy {
		case DustFoldFee:
			hasAssets := false
			for id := range change {
				if !id.IsLovelace() {
					hasAssets = true
					break
				}
			}
			if hasAssets {
				// cannot burn native assets into the fee
				return nil, fmt.Errorf("%w: %v lovelace alongside native assets", ErrDustChange, changeLovelace)
			}
			sel.FoldedDust = changeLovelace
			sel.Change = make(cardano.Value)
		case DustAddInput:
			extra := UTXO{}
			found := false
			for _, u := range candidates {
				if !used[u.Key()] && u.Value.Lovelace() > 0 {
					extra = u
					found = true
					break
				}
			}
			if !found {
				return nil, fmt.Errorf("%w: %v lovelace and no spare input", ErrDustChange, changeLovelace)
			}
			take(extra)
			change, err = accum.Sub(need)
			if err != nil {
				return nil, err
			}
			if change.Lovelace() < opts.MinUTXO {
				return nil, fmt.Errorf("%w: %v lovelace after extra input", ErrDustChange, change.Lovelace())
			}
			sel.Inputs = inputs
			sel.Change = change
		}
	}
	return sel, nil
}
