package signer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/LavonTMCQ/M-I-S-T-E-R-sub009/common"
)

func newWalletServer(t *testing.T, sign, submit map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/sign":
			_ = json.NewEncoder(w).Encode(sign)
		case "/submit":
			_ = json.NewEncoder(w).Encode(submit)
		default:
			t.Errorf("unexpected path %v", r.URL.Path)
			http.NotFound(w, r)
		}
	}))
}

func TestWalletBridgeSignPartial(t *testing.T) {
	witnessHex := "a1" + "00" + "81" + "82" +
		"5820" + strings.Repeat("11", 32) +
		"5840" + strings.Repeat("aa", 64)
	srv := newWalletServer(t, map[string]string{"witness": witnessHex}, nil)
	defer srv.Close()

	w := NewWalletBridge(srv.URL, 5)
	got, err := w.Sign(context.Background(), common.FromHex("83a0a0f6"), true)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	if common.Bytes2Hex(got) != witnessHex {
		t.Errorf("wrong witness bytes: %x", got)
	}
}

func TestWalletBridgeSignComplete(t *testing.T) {
	txHex := "84a0a0f5f6"
	srv := newWalletServer(t, map[string]string{"tx": txHex}, nil)
	defer srv.Close()

	w := NewWalletBridge(srv.URL, 5)
	got, err := w.Sign(context.Background(), common.FromHex("83a0a0f6"), false)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	if common.Bytes2Hex(got) != txHex {
		t.Errorf("wrong tx bytes: %x", got)
	}
}

func TestWalletBridgeSignErrors(t *testing.T) {
	t.Run("wallet rejects", func(t *testing.T) {
		srv := newWalletServer(t, map[string]string{"error": "user declined"}, nil)
		defer srv.Close()
		w := NewWalletBridge(srv.URL, 5)
		_, err := w.Sign(context.Background(), []byte{0x83}, true)
		if err == nil || !strings.Contains(err.Error(), "user declined") {
			t.Errorf("want wallet rejection, got %v", err)
		}
	})
	t.Run("empty witness", func(t *testing.T) {
		srv := newWalletServer(t, map[string]string{}, nil)
		defer srv.Close()
		w := NewWalletBridge(srv.URL, 5)
		_, err := w.Sign(context.Background(), []byte{0x83}, true)
		if !errors.Is(err, ErrEmptyWitness) {
			t.Errorf("want ErrEmptyWitness, got %v", err)
		}
	})
	t.Run("unreachable", func(t *testing.T) {
		w := NewWalletBridge("http://127.0.0.1:1", 1)
		_, err := w.Sign(context.Background(), []byte{0x83}, true)
		if !errors.Is(err, ErrSignerUnavailable) {
			t.Errorf("want ErrSignerUnavailable, got %v", err)
		}
	})
}

func TestWalletBridgeSubmit(t *testing.T) {
	wantHash := strings.Repeat("ab", 32)
	srv := newWalletServer(t, nil, map[string]string{"hash": wantHash})
	defer srv.Close()

	w := NewWalletBridge(srv.URL, 5)
	got, err := w.SubmitTx(context.Background(), common.FromHex("84a0a0f5f6"))
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if got != wantHash {
		t.Errorf("want %v, got %v", wantHash, got)
	}
}

func TestWalletBridgeSubmitInvalidHash(t *testing.T) {
	srv := newWalletServer(t, nil, map[string]string{"hash": "nothex"})
	defer srv.Close()

	w := NewWalletBridge(srv.URL, 5)
	if _, err := w.SubmitTx(context.Background(), []byte{0x84}); err == nil {
		t.Fatalf("want error for invalid hash")
	}
}
