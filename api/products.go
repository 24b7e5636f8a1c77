package api

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	apierrors "github.com/jonafarm/market/errors"
	"github.com/jonafarm/market/types"
	"github.com/jonafarm/market/validation"
)

func (api *MarketAPI) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := api.deps.Products.List(r.Context())
	if err != nil {
		writeError(w, err, "Error reading products file")
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (api *MarketAPI) addProduct(w http.ResponseWriter, r *http.Request) {
	var in types.ProductInput
	if err := decodeBody(r, validation.ProductAdd, &in); err != nil {
		writeError(w, err, "Error adding product")
		return
	}

	product, err := api.deps.Products.Add(r.Context(), in)
	if err != nil {
		writeError(w, err, "Error adding product")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Product added successfully",
		"product": product,
	})
}

func (api *MarketAPI) verifyProduct(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeBody(r, validation.ProductVerify, &req); err != nil {
		writeError(w, err, "Error verifying product")
		return
	}

	product, err := api.deps.Products.Verify(r.Context(), req.Name)
	if err != nil {
		writeError(w, err, "Error verifying product")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Product verified successfully",
		"product": product,
	})
}

func (api *MarketAPI) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}
	var in types.ProductInput
	if err := decodeBody(r, validation.ProductUpdate, &in); err != nil {
		writeError(w, err, "Error updating product")
		return
	}

	product, err := api.deps.Products.Update(r.Context(), id, in)
	if err != nil {
		writeError(w, err, "Error updating product")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Product updated successfully",
		"product": product,
	})
}

func (api *MarketAPI) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}
	if _, err := api.deps.Products.Delete(r.Context(), id); err != nil {
		writeError(w, err, "Error deleting product")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Product deleted successfully",
	})
}

// productID parses the {id} path variable. A non-numeric id cannot name a
// product, so it is reported as not found.
func productID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		writeAPIError(w, &apierrors.APIError{Code: apierrors.ErrCodeNotFound, Message: apierrors.ErrMsgProductNotFound})
		return 0, false
	}
	return id, true
}
