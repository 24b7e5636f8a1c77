package api

import (
	"net/http"

	"github.com/jonafarm/market/chain"
	"github.com/jonafarm/market/monitoring"
)

type chainStatus struct {
	Valid   bool          `json:"valid"`
	Length  int           `json:"length"`
	Failure *chain.Result `json:"failure,omitempty"`
}

func (api *MarketAPI) getProductChain(w http.ResponseWriter, r *http.Request) {
	blocks, err := api.deps.Chain.Blocks(r.Context())
	if err != nil {
		writeError(w, err, "Error reading product blockchain")
		return
	}
	if blocks == nil {
		blocks = []chain.Block{}
	}
	monitoring.SetChainLength(len(blocks))
	writeJSON(w, http.StatusOK, blocks)
}

func (api *MarketAPI) verifyProductChain(w http.ResponseWriter, r *http.Request) {
	res, length, err := api.deps.Chain.Verify(r.Context())
	if err != nil {
		writeError(w, err, "Error reading product blockchain")
		return
	}

	status := chainStatus{Valid: res.Valid, Length: length}
	if !res.Valid {
		status.Failure = &res
	}
	writeJSON(w, http.StatusOK, status)
}
