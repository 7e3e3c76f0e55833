package restapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/LavonTMCQ/M-I-S-T-E-R-sub009/assembler"
	"github.com/LavonTMCQ/M-I-S-T-E-R-sub009/cmd/utils"
	"github.com/LavonTMCQ/M-I-S-T-E-R-sub009/internal/txapi"
	"github.com/LavonTMCQ/M-I-S-T-E-R-sub009/trade"
)

func writeResponse(w http.ResponseWriter, resp interface{}, err error) {
	// Note: must set header before write header
	if err == nil {
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(http.StatusOK)
	if err == nil {
		jsonData, _ := json.Marshal(resp)
		_, _ = w.Write(jsonData)
	} else {
		fmt.Fprintln(w, err.Error())
	}
}

func readJSONBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	defer func() { _ = r.Body.Close() }()
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	return dec.Decode(v)
}

// VersionInfoHandler handler
func VersionInfoHandler(w http.ResponseWriter, r *http.Request) {
	writeResponse(w, utils.Version, nil)
}

// ServerInfoHandler handler
func ServerInfoHandler(w http.ResponseWriter, r *http.Request) {
	writeResponse(w, txapi.GetServerInfo(), nil)
}

// PoolInfoHandler handler
func PoolInfoHandler(w http.ResponseWriter, r *http.Request) {
	writeResponse(w, txapi.GetPoolInfo(), nil)
}

// OpenPositionHandler handler
func OpenPositionHandler(w http.ResponseWriter, r *http.Request) {
	var req trade.OpenRequest
	if err := readJSONBody(w, r, &req); err != nil {
		writeResponse(w, nil, err)
		return
	}
	res, err := txapi.OpenPosition(r.Context(), &req)
	writeResponse(w, res, err)
}

type closePositionRequest struct {
	Close trade.CloseRequest     `json:"close"`
	Spend *txapi.ScriptSpendArgs `json:"spend,omitempty"`
}

// ClosePositionHandler handler
func ClosePositionHandler(w http.ResponseWriter, r *http.Request) {
	var req closePositionRequest
	if err := readJSONBody(w, r, &req); err != nil {
		writeResponse(w, nil, err)
		return
	}
	spend, err := req.Spend.ToScriptSpend()
	if err != nil {
		writeResponse(w, nil, err)
		return
	}
	res, err := txapi.ClosePosition(r.Context(), &req.Close, spend)
	writeResponse(w, res, err)
}

type withdrawRequest struct {
	Spend   *txapi.ScriptSpendArgs `json:"spend"`
	Balance uint64                 `json:"balance"`
}

// WithdrawHandler handler
func WithdrawHandler(w http.ResponseWriter, r *http.Request) {
	var req withdrawRequest
	if err := readJSONBody(w, r, &req); err != nil {
		writeResponse(w, nil, err)
		return
	}
	if req.Spend == nil {
		writeResponse(w, nil, fmt.Errorf("missing spend"))
		return
	}
	spend, err := req.Spend.ToScriptSpend()
	if err != nil {
		writeResponse(w, nil, err)
		return
	}
	res, err := txapi.Withdraw(r.Context(), &assembler.WithdrawRequest{
		Spend:   spend,
		Balance: req.Balance,
	})
	writeResponse(w, res, err)
}

// TxStatusHandler handler
func TxStatusHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	res, err := txapi.GetTxStatus(r.Context(), vars["txid"])
	writeResponse(w, res, err)
}

type decodeTxRequest struct {
	CBORHex string `json:"cbor"`
}

// DecodeTxHandler handler
func DecodeTxHandler(w http.ResponseWriter, r *http.Request) {
	var req decodeTxRequest
	if err := readJSONBody(w, r, &req); err != nil {
		writeResponse(w, nil, err)
		return
	}
	res, err := txapi.DecodeTxSummary(req.CBORHex)
	writeResponse(w, res, err)
}
