package rpcServer

import (
	"encoding/json"
	"net/http"
)

type ExplainRequest struct {
	// Tx is the transaction hash to explain.
	Tx string `json:"tx"`
	// PayTx optionally references the payment transaction. Any other way of
	// claiming "paid" is ignored.
	PayTx string `json:"payTx"`
}

func (rpc *RpcServer) handleExplain(w http.ResponseWriter, r *http.Request) {
	var req ExplainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rpc.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result := rpc.explainer.Explain(r.Context(), req.Tx, req.PayTx)
	rpc.writeJson(w, http.StatusOK, result)
}
