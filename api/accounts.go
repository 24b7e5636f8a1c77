package api

import (
	stderrors "errors"
	"net/http"

	apierrors "github.com/jonafarm/market/errors"
	"github.com/jonafarm/market/monitoring"
	"github.com/jonafarm/market/service"
	"github.com/jonafarm/market/session"
	"github.com/jonafarm/market/types"
	"github.com/jonafarm/market/validation"
)

func (api *MarketAPI) listFarmers(w http.ResponseWriter, r *http.Request) {
	farmers, err := api.deps.Accounts.ListFarmers(r.Context())
	if err != nil {
		writeError(w, err, "Error reading farmers file")
		return
	}
	writeJSON(w, http.StatusOK, farmers)
}

// staffLogin handles farmer, admin and distributor logins. The response
// names the account after its role, e.g. {"message": ..., "farmer": {...}}.
func (api *MarketAPI) staffLogin(role string) http.HandlerFunc {
	invalidMsg := apierrors.ErrMsgInvalidCredentials
	if role == session.RoleAdmin {
		invalidMsg = apierrors.ErrMsgInvalidAdminCredentials
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := decodeBody(r, validation.UsernameLogin, &req); err != nil {
			writeError(w, err, apierrors.ErrMsgServer)
			return
		}

		account, err := api.deps.Accounts.LoginStaff(r.Context(), role, req.Username, req.Password)
		monitoring.RecordLoginAttempt(role, err == nil)
		if stderrors.Is(err, service.ErrInvalidCredentials) {
			writeAPIError(w, &apierrors.APIError{Code: apierrors.ErrCodeUnauthorized, Message: invalidMsg})
			return
		}
		if err != nil {
			writeError(w, err, apierrors.ErrMsgServer)
			return
		}

		api.startSession(w, role, account.Username)
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"message": "Login successful",
			role:      account,
		})
	}
}

func (api *MarketAPI) signup(w http.ResponseWriter, r *http.Request) {
	var in types.SignupInput
	if err := decodeBody(r, validation.Signup, &in); err != nil {
		writeError(w, err, "Error signing up")
		return
	}

	user, err := api.deps.Accounts.Signup(r.Context(), in)
	if err != nil {
		writeError(w, err, "Error signing up")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Signup successful",
		"user":    user,
	})
}

func (api *MarketAPI) userLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, validation.EmailLogin, &req); err != nil {
		writeError(w, err, "Error logging in")
		return
	}

	user, err := api.deps.Accounts.LoginUser(r.Context(), req.Email, req.Password)
	monitoring.RecordLoginAttempt(session.RoleUser, err == nil)
	if stderrors.Is(err, service.ErrInvalidCredentials) {
		writeAPIError(w, &apierrors.APIError{Code: apierrors.ErrCodeUnauthorized, Message: apierrors.ErrMsgInvalidEmailOrPassword})
		return
	}
	if err != nil {
		writeError(w, err, "Error logging in")
		return
	}

	api.startSession(w, session.RoleUser, user.Email)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Login successful",
		"user":    user,
	})
}

func (api *MarketAPI) startSession(w http.ResponseWriter, role, name string) {
	if api.deps.Sessions != nil {
		api.deps.Sessions.Create(w, role, name)
	}
}

func (api *MarketAPI) currentSession(w http.ResponseWriter, r *http.Request) {
	if api.deps.Sessions == nil {
		writeAPIError(w, &apierrors.APIError{Code: apierrors.ErrCodeUnauthorized, Message: apierrors.ErrMsgNotLoggedIn})
		return
	}
	s, ok := api.deps.Sessions.Get(r)
	if !ok {
		writeAPIError(w, &apierrors.APIError{Code: apierrors.ErrCodeUnauthorized, Message: apierrors.ErrMsgNotLoggedIn})
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (api *MarketAPI) logout(w http.ResponseWriter, r *http.Request) {
	if api.deps.Sessions != nil {
		api.deps.Sessions.Destroy(w, r)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Logged out",
	})
}
