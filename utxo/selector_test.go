package utxo

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/LavonTMCQ/M-I-S-T-E-R-sub009/cardano"
)

var testAsset = cardano.AssetID{PolicyID: strings.Repeat("aa", 28), AssetName: "4d495354"}

func makeUTXO(n int, lovelace uint64) UTXO {
	return UTXO{
		TxHash:  fmt.Sprintf("%064d", n),
		Index:   0,
		Address: "addr1test",
		Value:   cardano.NewValue(lovelace),
	}
}

func makeAssetUTXO(n int, lovelace, assetQty uint64) UTXO {
	u := makeUTXO(n, lovelace)
	u.Value.Add(testAsset, assetQty)
	return u
}

func totalInputs(sel *Selection) cardano.Value {
	total := make(cardano.Value)
	for _, u := range sel.Inputs {
		total.AddValue(u.Value)
	}
	return total
}

func TestSelectFewestInputs(t *testing.T) {
	available := []UTXO{
		makeUTXO(1, 1_000_000),
		makeUTXO(2, 5_000_000),
		makeUTXO(3, 2_000_000),
	}
	sel, err := Select(available, cardano.NewValue(3_000_000), SelectOptions{FeeEstimate: 200_000})
	if err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if len(sel.Inputs) != 1 {
		t.Fatalf("largest-first should cover with 1 input, got %v", len(sel.Inputs))
	}
	if sel.Inputs[0].TxHash != makeUTXO(2, 0).TxHash {
		t.Errorf("want the 5 ada input, got %v", sel.Inputs[0].TxHash)
	}
	// exact change: inputs - target - fee
	if sel.Change.Lovelace() != 5_000_000-3_000_000-200_000 {
		t.Errorf("wrong change %v", sel.Change)
	}
}

func TestSelectBalanceEquation(t *testing.T) {
	available := []UTXO{
		makeUTXO(1, 900_000),
		makeUTXO(2, 800_000),
		makeAssetUTXO(3, 1_500_000, 10),
	}
	target := cardano.NewValue(2_000_000)
	target.Add(testAsset, 4)
	opts := SelectOptions{FeeEstimate: 150_000}

	sel, err := Select(available, target, opts)
	if err != nil {
		t.Fatalf("select failed: %v", err)
	}

	// selected total == target + fee + change, per asset
	want := target.Clone()
	want.Add(cardano.Lovelace, opts.FeeEstimate)
	want.AddValue(sel.Change)
	if !totalInputs(sel).Equal(want) {
		t.Errorf("balance broken: inputs %v, target+fee+change %v", totalInputs(sel), want)
	}
	if sel.Change[testAsset] != 6 {
		t.Errorf("want 6 asset change, got %v", sel.Change[testAsset])
	}
}

func TestSelectDeterministic(t *testing.T) {
	available := []UTXO{
		makeUTXO(3, 2_000_000),
		makeUTXO(1, 2_000_000),
		makeUTXO(2, 2_000_000),
	}
	shuffled := []UTXO{available[2], available[0], available[1]}

	a, err := Select(available, cardano.NewValue(3_000_000), SelectOptions{})
	if err != nil {
		t.Fatalf("select failed: %v", err)
	}
	b, err := Select(shuffled, cardano.NewValue(3_000_000), SelectOptions{})
	if err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if len(a.Inputs) != len(b.Inputs) {
		t.Fatalf("input counts differ: %v vs %v", len(a.Inputs), len(b.Inputs))
	}
	for i := range a.Inputs {
		if a.Inputs[i].Key() != b.Inputs[i].Key() {
			t.Errorf("selection depends on input order: %v vs %v", a.Inputs[i].Key(), b.Inputs[i].Key())
		}
	}
}

func TestSelectInsufficientFunds(t *testing.T) {
	available := []UTXO{makeUTXO(1, 1_000_000)}
	_, err := Select(available, cardano.NewValue(2_000_000), SelectOptions{FeeEstimate: 100_000})
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("want ErrInsufficientFunds, got %v", err)
	}
	// the shortfall is reported, never silently approximated
	if !strings.Contains(err.Error(), "1100000") {
		t.Errorf("error should carry the shortfall: %v", err)
	}

	_, err = Select(available, cardano.Value{testAsset: 1}, SelectOptions{})
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("missing asset: want ErrInsufficientFunds, got %v", err)
	}
}

func TestSelectDustFoldFee(t *testing.T) {
	available := []UTXO{makeUTXO(1, 2_050_000)}
	opts := SelectOptions{FeeEstimate: 100_000, MinUTXO: 1_000_000, DustPolicy: DustFoldFee}

	sel, err := Select(available, cardano.NewValue(1_900_000), opts)
	if err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if sel.FoldedDust != 50_000 {
		t.Errorf("want 50000 folded into fee, got %v", sel.FoldedDust)
	}
	if !sel.Change.IsZero() {
		t.Errorf("change must be empty after folding, got %v", sel.Change)
	}
}

func TestSelectDustFoldFeeWithAssets(t *testing.T) {
	// change would carry native assets, which cannot be burned into
	// the fee
	available := []UTXO{makeAssetUTXO(1, 2_050_000, 5)}
	opts := SelectOptions{FeeEstimate: 100_000, MinUTXO: 1_000_000, DustPolicy: DustFoldFee}
	_, err := Select(available, cardano.NewValue(1_900_000), opts)
	if !errors.Is(err, ErrDustChange) {
		t.Fatalf("want ErrDustChange, got %v", err)
	}
}

func TestSelectDustAddInput(t *testing.T) {
	available := []UTXO{
		makeUTXO(1, 2_050_000),
		makeUTXO(2, 1_500_000),
	}
	opts := SelectOptions{FeeEstimate: 100_000, MinUTXO: 1_000_000, DustPolicy: DustAddInput}

	sel, err := Select(available, cardano.NewValue(1_900_000), opts)
	if err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if len(sel.Inputs) != 2 {
		t.Fatalf("want the extra input pulled in, got %v inputs", len(sel.Inputs))
	}
	if sel.Change.Lovelace() != 1_550_000 {
		t.Errorf("wrong change %v", sel.Change)
	}
	if sel.FoldedDust != 0 {
		t.Errorf("nothing should be folded under add-input, got %v", sel.FoldedDust)
	}
}

func TestSelectDustAddInputExhausted(t *testing.T) {
	available := []UTXO{makeUTXO(1, 2_050_000)}
	opts := SelectOptions{FeeEstimate: 100_000, MinUTXO: 1_000_000, DustPolicy: DustAddInput}
	_, err := Select(available, cardano.NewValue(1_900_000), opts)
	if !errors.Is(err, ErrDustChange) {
		t.Fatalf("want ErrDustChange, got %v", err)
	}
}

func TestSelectZeroChange(t *testing.T) {
	// exact cover: no change output, no dust handling
	available := []UTXO{makeUTXO(1, 2_000_000)}
	opts := SelectOptions{FeeEstimate: 100_000, MinUTXO: 1_000_000, DustPolicy: DustFoldFee}
	sel, err := Select(available, cardano.NewValue(1_900_000), opts)
	if err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if !sel.Change.IsZero() || sel.FoldedDust != 0 {
		t.Errorf("exact cover: change %v, folded %v", sel.Change, sel.FoldedDust)
	}
}
