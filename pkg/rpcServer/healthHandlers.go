package rpcServer

import (
	"net/http"

	"github.com/txplain-labs/txplain/internal/version"
)

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Chain   string `json:"chain"`
}

func (rpc *RpcServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	rpc.writeJson(w, http.StatusOK, &HealthResponse{
		Status:  "ok",
		Version: version.GetVersion(),
		Commit:  version.GetCommit(),
		Chain:   rpc.globalConfig.Chain.String(),
	})
}
