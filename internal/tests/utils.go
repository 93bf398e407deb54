package tests

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/jarcoal/httpmock"
)

// JsonRpcResponder builds an httpmock responder that answers JSON-RPC
// requests from a map of method name to raw JSON result. Methods not in the
// map get a -32601 error response.
func JsonRpcResponder(results map[string]string) httpmock.Responder {
	return func(req *http.Request) (*http.Response, error) {
		var rpcReq struct {
			Id     uint64        `json:"id"`
			Method string        `json:"method"`
			Params []interface{} `json:"params"`
		}
		if err := json.NewDecoder(req.Body).Decode(&rpcReq); err != nil {
			return httpmock.NewStringResponse(400, "bad request"), nil
		}
		result, ok := results[rpcReq.Method]
		if !ok {
			body := fmt.Sprintf(`{"jsonrpc":"2.0","id":%d,"error":{"code":-32601,"message":"method not found"}}`, rpcReq.Id)
			return httpmock.NewStringResponse(200, body), nil
		}
		body := fmt.Sprintf(`{"jsonrpc":"2.0","id":%d,"result":%s}`, rpcReq.Id, result)
		return httpmock.NewStringResponse(200, body), nil
	}
}
