package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/jonafarm/market/types"
	"github.com/jonafarm/market/validation"
)

func (api *MarketAPI) placeOrder(w http.ResponseWriter, r *http.Request) {
	var in types.OrderInput
	if err := decodeBody(r, validation.OrderPlace, &in); err != nil {
		writeError(w, err, "Error placing order")
		return
	}

	order, err := api.deps.Orders.Place(r.Context(), in)
	if err != nil {
		writeError(w, err, "Error placing order")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Order placed successfully",
		"order":   order,
	})
}

func (api *MarketAPI) listOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := api.deps.Orders.List(r.Context())
	if err != nil {
		writeError(w, err, "Error reading orders")
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (api *MarketAPI) listFarmerOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := api.deps.Orders.ListByFarmer(r.Context(), mux.Vars(r)["farmer"])
	if err != nil {
		writeError(w, err, "Error reading orders for farmer")
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (api *MarketAPI) listDistributorOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := api.deps.Orders.List(r.Context())
	if err != nil {
		writeError(w, err, "Error reading orders for distributor")
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (api *MarketAPI) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var in types.OrderStatusUpdate
	if err := decodeBody(r, validation.DistributorUpdate, &in); err != nil {
		writeError(w, err, "Error updating order")
		return
	}

	order, err := api.deps.Orders.UpdateStatus(r.Context(), in)
	if err != nil {
		writeError(w, err, "Error updating order")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Order status updated successfully",
		"order":   order,
	})
}
