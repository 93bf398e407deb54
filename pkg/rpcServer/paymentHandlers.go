package rpcServer

import (
	"net/http"

	"github.com/txplain-labs/txplain/pkg/paymentVerifier"
	"github.com/txplain-labs/txplain/pkg/providerPool"
	"github.com/txplain-labs/txplain/pkg/utils"
	"go.uber.org/zap"
)

type PaymentStatusResponse struct {
	State string `json:"state"`
	// AmountPaid is the cumulative credited amount in the token's smallest
	// unit, decimal-encoded. Empty when nothing was observed.
	AmountPaid string `json:"amountPaid,omitempty"`
	Message    string `json:"message"`
}

func paymentStatusToResponse(status *paymentVerifier.PaymentStatus) *PaymentStatusResponse {
	resp := &PaymentStatusResponse{
		State:   string(status.State),
		Message: status.Message,
	}
	if status.AmountPaid != nil {
		resp.AmountPaid = status.AmountPaid.String()
	}
	return resp
}

func (rpc *RpcServer) handleVerifyPayment(w http.ResponseWriter, r *http.Request) {
	hash := r.PathValue("hash")
	if !utils.IsValidTransactionHash(hash) {
		rpc.writeError(w, http.StatusBadRequest, "malformed transaction hash")
		return
	}

	status, err := rpc.verifier.VerifyPayment(r.Context(), hash)
	if err != nil {
		if providerPool.IsAllProvidersUnavailable(err) {
			rpc.writeError(w, http.StatusServiceUnavailable, "no provider available, try again shortly")
			return
		}
		rpc.Logger.Sugar().Errorw("payment verification failed",
			zap.String("paymentHash", hash),
			zap.Error(err),
		)
		rpc.writeError(w, http.StatusInternalServerError, "payment verification failed")
		return
	}

	rpc.writeJson(w, http.StatusOK, paymentStatusToResponse(status))
}
