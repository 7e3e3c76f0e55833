package utxo

import (
	"errors"
	"sync"
	"testing"

	"github.com/LavonTMCQ/M-I-S-T-E-R-sub009/cardano"
)

func TestPoolSelectReserves(t *testing.T) {
	pool := NewPool()
	available := []UTXO{
		makeUTXO(1, 5_000_000),
		makeUTXO(2, 5_000_000),
	}

	sel, err := pool.Select(available, cardano.NewValue(4_000_000), SelectOptions{})
	if err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if len(sel.Inputs) != 1 {
		t.Fatalf("want 1 input, got %v", len(sel.Inputs))
	}
	if !pool.IsReserved(sel.Inputs[0].Key()) {
		t.Errorf("selected input must be reserved")
	}

	// second selection must take the other output
	sel2, err := pool.Select(available, cardano.NewValue(4_000_000), SelectOptions{})
	if err != nil {
		t.Fatalf("second select failed: %v", err)
	}
	if sel2.Inputs[0].Key() == sel.Inputs[0].Key() {
		t.Fatalf("same output handed out twice: %v", sel.Inputs[0].Key())
	}

	// both reserved now, third selection fails and reserves nothing
	_, err = pool.Select(available, cardano.NewValue(4_000_000), SelectOptions{})
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("want ErrInsufficientFunds, got %v", err)
	}
	if pool.ReservedCount() != 2 {
		t.Errorf("failed selection changed reservations: %v", pool.ReservedCount())
	}
}

func TestPoolRelease(t *testing.T) {
	pool := NewPool()
	available := []UTXO{makeUTXO(1, 5_000_000)}

	sel, err := pool.Select(available, cardano.NewValue(4_000_000), SelectOptions{})
	if err != nil {
		t.Fatalf("select failed: %v", err)
	}
	pool.Release(sel.Inputs)
	if pool.ReservedCount() != 0 {
		t.Fatalf("release left %v reservations", pool.ReservedCount())
	}

	// released outputs are selectable again
	if _, err := pool.Select(available, cardano.NewValue(4_000_000), SelectOptions{}); err != nil {
		t.Fatalf("select after release failed: %v", err)
	}

	// releasing unknown keys is harmless
	pool.ReleaseKeys("not-reserved#0")
}

func TestPoolConcurrentSelection(t *testing.T) {
	// many goroutines racing for a small set of outputs must never be
	// handed the same output twice
	pool := NewPool()
	const nOutputs = 8
	const nWorkers = 32

	available := make([]UTXO, 0, nOutputs)
	for i := 0; i < nOutputs; i++ {
		available = append(available, makeUTXO(i, 5_000_000))
	}

	var mu sync.Mutex
	seen := make(map[string]int)
	var wg sync.WaitGroup
	for w := 0; w < nWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sel, err := pool.Select(available, cardano.NewValue(4_000_000), SelectOptions{})
			if err != nil {
				return // pool exhausted, fine
			}
			mu.Lock()
			for _, u := range sel.Inputs {
				seen[u.Key()]++
			}
			mu.Unlock()
		}()
	}
	wg.Wait()

	for key, count := range seen {
		if count != 1 {
			t.Errorf("output %v handed out %v times", key, count)
		}
	}
	if len(seen) != nOutputs {
		t.Errorf("want all %v outputs handed out exactly once, got %v", nOutputs, len(seen))
	}
	if pool.ReservedCount() != nOutputs {
		t.Errorf("want %v reservations, got %v", nOutputs, pool.ReservedCount())
	}
}
