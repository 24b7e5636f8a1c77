package api

import (
	stderrors "errors"
	"io"
	"net/http"

	"github.com/jonafarm/market/chain"
	apierrors "github.com/jonafarm/market/errors"
	"github.com/jonafarm/market/jsonx"
	"github.com/jonafarm/market/logx"
	"github.com/jonafarm/market/service"
	"github.com/jonafarm/market/validation"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := jsonx.NewEncoder(w).Encode(data); err != nil {
		logx.Error("API", "Failed to encode response: ", err)
	}
}

func writeAPIError(w http.ResponseWriter, e *apierrors.APIError) {
	writeJSON(w, apierrors.StatusCode(e.Code), e)
}

// writeError maps err to an API error body. message is used for failures
// that carry no client-facing wording of their own.
func writeError(w http.ResponseWriter, err error, message string) {
	if apiErr, ok := apierrors.As(err); ok {
		writeAPIError(w, apiErr)
		return
	}

	switch {
	case stderrors.Is(err, service.ErrProductNotFound):
		writeAPIError(w, &apierrors.APIError{Code: apierrors.ErrCodeNotFound, Message: apierrors.ErrMsgProductNotFound})
		return
	case stderrors.Is(err, service.ErrOrderNotFound):
		writeAPIError(w, &apierrors.APIError{Code: apierrors.ErrCodeNotFound, Message: apierrors.ErrMsgOrderNotFound})
		return
	case stderrors.Is(err, service.ErrEmailRegistered):
		writeAPIError(w, &apierrors.APIError{Code: apierrors.ErrCodeDuplicate, Message: apierrors.ErrMsgEmailRegistered})
		return
	}

	code := apierrors.ErrCodeInternal
	if isChainError(err) {
		code = apierrors.ErrCodeChain
	}
	logx.Error("API", message, ": ", err)
	writeAPIError(w, &apierrors.APIError{Code: code, Message: message, Detail: err.Error()})
}

func isChainError(err error) bool {
	var (
		encErr   *chain.EncodingError
		readErr  *chain.StoreReadError
		writeErr *chain.StoreWriteError
		verErr   *chain.VerificationFailure
	)
	return stderrors.As(err, &encErr) || stderrors.As(err, &readErr) ||
		stderrors.As(err, &writeErr) || stderrors.As(err, &verErr)
}

// decodeBody reads the request body, checks it against the schema for kind
// and unmarshals it into v.
func decodeBody(r *http.Request, kind validation.Kind, v interface{}) error {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return apierrors.Wrap(apierrors.ErrCodeBodyTooLarge, apierrors.ErrMsgRequestBodyTooLarge, err)
		}
		return apierrors.Wrap(apierrors.ErrCodeInvalidRequest, apierrors.ErrMsgInvalidRequest, err)
	}
	if len(body) == 0 {
		body = []byte("{}")
	}
	if err := validation.Validate(kind, body); err != nil {
		return err
	}
	if err := jsonx.Unmarshal(body, v); err != nil {
		return apierrors.Wrap(apierrors.ErrCodeInvalidRequest, apierrors.ErrMsgInvalidRequest, err)
	}
	return nil
}
