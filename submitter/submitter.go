// Package submitter pushes a finished transaction to the ledger. One
// Submit call walks a bounded state machine: the signer relay first,
// then a single fallback to direct indexer submission. No channel is
// tried twice; retrying a whole Submit with the same signed bytes is
// safe because resubmitting a confirmed transaction is a no-op success.
package submitter

import (
	"context"
	"errors"
	"fmt"

	"github.com/LavonTMCQ/M-I-S-T-E-R-sub009/cardano"
	"github.com/LavonTMCQ/M-I-S-T-E-R-sub009/indexer"
	"github.com/LavonTMCQ/M-I-S-T-E-R-sub009/log"
	"github.com/LavonTMCQ/M-I-S-T-E-R-sub009/signer"
)

// submission errors
var (
	ErrSignerChannelUnavailable = errors.New("signer channel unavailable")
	ErrIndexerRejected          = errors.New("indexer rejected transaction")
	ErrTimeout                  = errors.New("submission timed out")
)

// Channel identifies a submission path.
type Channel string

// submission channels
const (
	ChannelSigner  Channel = "signer"
	ChannelIndexer Channel = "indexer"
)

// State of one submit call.
type State string

// submit states
const (
	StateBuilt               State = "Built"
	StateSubmittedViaSigner  State = "SubmittedViaSigner"
	StateSubmittedViaIndexer State = "SubmittedViaIndexer"
	StateConfirmed           State = "Confirmed"
	StateFailed              State = "Failed"
)

// Attempt records one channel attempt. Held in memory only; durable
// audit history belongs to an external collaborator.
type Attempt struct {
	TxID    string  `json:"txId"`
	Channel Channel `json:"channel"`
	Number  int     `json:"number"`
	Outcome string  `json:"outcome"`
}

// Submitter owns the two submission channels.
type Submitter struct {
	relay   signer.Relay // nil when the signer has no relay
	indexer indexer.Indexer
}

// New new submitter
func New(relay signer.Relay, idx indexer.Indexer) *Submitter {
	return &Submitter{relay: relay, indexer: idx}
}

// Submit sends the encoded transaction and returns the ledger tx id.
// The returned attempts describe every channel tried, in order.
func (s *Submitter) Submit(ctx context.Context, tx *cardano.Tx) (cardano.TxID, []Attempt, error) {
	encoded, err := tx.Encode()
	if err != nil {
		return "", nil, err
	}
	wantID := tx.ID()
	var attempts []Attempt

	record := func(ch Channel, outcome string) {
		attempts = append(attempts, Attempt{
			TxID:    wantID.String(),
			Channel: ch,
			Number:  len(attempts) + 1,
			Outcome: outcome,
		})
	}

	if s.relay != nil {
		gotID, err := s.relay.SubmitTx(ctx, encoded)
		switch {
		case err == nil:
			record(ChannelSigner, "ok")
			checkReportedID(wantID, gotID)
			log.Info("submit via signer success", "txid", gotID, "state", StateConfirmed)
			return cardano.TxID(gotID), attempts, nil
		case ctx.Err() != nil:
			record(ChannelSigner, "timeout")
			return "", attempts, fmt.Errorf("%w: signer channel: %v", ErrTimeout, err)
		default:
			record(ChannelSigner, err.Error())
			log.Warn("submit via signer failed, falling back to indexer", "txid", wantID, "err", err)
		}
	} else {
		log.Trace("no signer relay configured, submitting via indexer", "txid", wantID)
	}

	gotID, err := s.indexer.SubmitTx(ctx, encoded)
	if err != nil {
		record(ChannelIndexer, err.Error())
		if ctx.Err() != nil {
			return "", attempts, fmt.Errorf("%w: indexer channel: %v", ErrTimeout, err)
		}
		log.Error("submit failed on both channels", "txid", wantID, "state", StateFailed, "err", err)
		return "", attempts, fmt.Errorf("%w: %v", ErrIndexerRejected, err)
	}
	record(ChannelIndexer, "ok")
	checkReportedID(wantID, gotID)
	log.Info("submit via indexer success", "txid", gotID, "state", StateConfirmed)
	return cardano.TxID(gotID), attempts, nil
}

// checkReportedID flags a backend reporting a different hash than the
// one computed over the body. That means the backend mangled the bytes.
func checkReportedID(want cardano.TxID, got string) {
	if got != "" && got != want.String() {
		log.Warn("submission backend reported different tx hash", "want", want, "got", got)
	}
}
