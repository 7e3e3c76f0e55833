package utxo

import (
	"sync"

	mapset "github.com/deckarep/golang-set"

	"github.com/LavonTMCQ/M-I-S-T-E-R-sub009/cardano"
	"github.com/LavonTMCQ/M-I-S-T-E-R-sub009/log"
)

// Pool serializes selections for one wallet. A selected UTXO stays
// reserved for the whole build-sign-submit cycle and is released on
// confirmation, definitive failure or cancellation. Two concurrent
// builds racing for the same output therefore collide here, locally,
// instead of at ledger submission time.
type Pool struct {
	mu       sync.Mutex
	reserved mapset.Set
}

// NewPool new reservation pool
func NewPool() *Pool {
	return &Pool{reserved: mapset.NewThreadUnsafeSet()}
}

// Select filters out reserved outputs, runs Select over the remainder,
// and reserves the chosen inputs. Filtering, selection and reservation
// happen under one lock, so no two calls can return the same output.
// On any error nothing is reserved.
func (p *Pool) Select(available []UTXO, target cardano.Value, opts SelectOptions) (*Selection, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	free := make([]UTXO, 0, len(available))
	for _, u := range available {
		if !p.reserved.Contains(u.Key()) {
			free = append(free, u)
		}
	}

	sel, err := Select(free, target, opts)
	if err != nil {
		return nil, err
	}
	for _, u := range sel.Inputs {
		p.reserved.Add(u.Key())
	}
	return sel, nil
}

// Release frees the reservations of the given inputs.
func (p *Pool) Release(inputs []UTXO) {
	keys := make([]string, 0, len(inputs))
	for _, u := range inputs {
		keys = append(keys, u.Key())
	}
	p.ReleaseKeys(keys...)
}

// ReleaseKeys frees reservations by key ("txhash#index").
func (p *Pool) ReleaseKeys(keys ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, key := range keys {
		p.reserved.Remove(key)
	}
	log.Trace("released utxo reservations", "count", len(keys))
}

// IsReserved reports whether the key is held by an in-flight build.
func (p *Pool) IsReserved(key string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reserved.Contains(key)
}

// ReservedCount returns the number of in-flight reservations.
func (p *Pool) ReservedCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reserved.Cardinality()
}
