package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/LavonTMCQ/M-I-S-T-E-R-sub009/cardano"
	"github.com/LavonTMCQ/M-I-S-T-E-R-sub009/cmd/utils"
	"github.com/LavonTMCQ/M-I-S-T-E-R-sub009/indexer"
	"github.com/LavonTMCQ/M-I-S-T-E-R-sub009/utxo"
)

const (
	restIntervalInConfirmJob = 20 * time.Second
	statusQueryTimeout       = 60 * time.Second

	// drop a pending entry and free its inputs if it never lands
	maxPendingLifetime = 2 * time.Hour
)

type pendingTx struct {
	txID      cardano.TxID
	inputKeys []string
	addedAt   int64
}

// ConfirmWatcher polls the indexer for submitted transactions and
// releases their reserved inputs once they are deep enough on chain.
type ConfirmWatcher struct {
	idx           indexer.Indexer
	pool          *utxo.Pool
	confirmations uint64

	mu      sync.Mutex
	pending map[cardano.TxID]*pendingTx
}

// NewConfirmWatcher new confirm watcher
func NewConfirmWatcher(idx indexer.Indexer, pool *utxo.Pool, confirmations uint64) *ConfirmWatcher {
	if confirmations == 0 {
		confirmations = 1
	}
	return &ConfirmWatcher{
		idx:           idx,
		pool:          pool,
		confirmations: confirmations,
		pending:       make(map[cardano.TxID]*pendingTx),
	}
}

// Track watch a submitted transaction and release its inputs
// when it reaches the configured confirmation depth.
func (w *ConfirmWatcher) Track(txID cardano.TxID, inputs []utxo.UTXO) {
	keys := make([]string, len(inputs))
	for i, in := range inputs {
		keys[i] = in.Key()
	}
	w.TrackKeys(txID, keys)
}

// TrackKeys like Track but with prebuilt reservation keys.
func (w *ConfirmWatcher) TrackKeys(txID cardano.TxID, inputKeys []string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, exist := w.pending[txID]; exist {
		return
	}
	w.pending[txID] = &pendingTx{
		txID:      txID,
		inputKeys: inputKeys,
		addedAt:   now(),
	}
	logWorker("confirm", "track submitted tx", "txid", txID, "inputs", len(inputKeys))
}

// PendingCount pending count
func (w *ConfirmWatcher) PendingCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending)
}

// StartConfirmJob start confirm job
func (w *ConfirmWatcher) StartConfirmJob() {
	logWorker("confirm", "start tx confirm job", "confirmations", w.confirmations)
	utils.TopWaitGroup.Add(1)
	go w.loop()
}

func (w *ConfirmWatcher) loop() {
	defer utils.TopWaitGroup.Done()
	for {
		if utils.IsCleanuping() {
			return
		}
		w.processPending()
		restInJob(restIntervalInConfirmJob)
	}
}

func (w *ConfirmWatcher) processPending() {
	for _, p := range w.snapshot() {
		if utils.IsCleanuping() {
			return
		}
		w.processOne(p)
	}
}

func (w *ConfirmWatcher) snapshot() []*pendingTx {
	w.mu.Lock()
	defer w.mu.Unlock()
	res := make([]*pendingTx, 0, len(w.pending))
	for _, p := range w.pending {
		res = append(res, p)
	}
	return res
}

func (w *ConfirmWatcher) processOne(p *pendingTx) {
	ctx, cancel := context.WithTimeout(context.Background(), statusQueryTimeout)
	defer cancel()

	status, err := w.idx.TxStatus(ctx, p.txID.String())
	switch {
	case err == nil:
		if status.Confirmations >= w.confirmations {
			logWorker("confirm", "tx confirmed", "txid", p.txID, "height", status.BlockHeight, "confirmations", status.Confirmations)
			w.finish(p)
		} else {
			logWorkerTrace("confirm", "tx not deep enough", "txid", p.txID, "confirmations", status.Confirmations)
		}
	case errors.Is(err, indexer.ErrNotFound):
		if now()-p.addedAt > int64(maxPendingLifetime/time.Second) {
			logWorker("confirm", "give up stale pending tx", "txid", p.txID, "age", now()-p.addedAt)
			w.finish(p)
		} else {
			logWorkerTrace("confirm", "tx not indexed yet", "txid", p.txID)
		}
	default:
		logWorkerError("confirm", "query tx status failed", err, "txid", p.txID)
	}
}

func (w *ConfirmWatcher) finish(p *pendingTx) {
	w.mu.Lock()
	delete(w.pending, p.txID)
	w.mu.Unlock()
	w.pool.ReleaseKeys(p.inputKeys...)
}
