package api

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	apierrors "github.com/jonafarm/market/errors"
	"github.com/jonafarm/market/logx"
	"github.com/jonafarm/market/monitoring"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (api *MarketAPI) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := "unmatched"
		if current := mux.CurrentRoute(r); current != nil {
			if tpl, err := current.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		monitoring.RecordHTTPRequest(route, rec.status)
	})
}

func (api *MarketAPI) bodyLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if api.opts.MaxBodyBytes > 0 && r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, api.opts.MaxBodyBytes)
		}
		next.ServeHTTP(w, r)
	})
}

func (api *MarketAPI) rateLimited(h http.HandlerFunc) http.HandlerFunc {
	if api.deps.LoginLimiter == nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ip := api.deps.LoginLimiter.ClientIP(r)
		if !api.deps.LoginLimiter.Allow(ip) {
			logx.Warn("API", fmt.Sprintf("Rate limit exceeded | ip=%s | path=%s", ip, r.URL.Path))
			monitoring.IncreaseRateLimited()
			writeAPIError(w, &apierrors.APIError{Code: apierrors.ErrCodeRateLimited, Message: apierrors.ErrMsgRateLimited})
			return
		}
		h(w, r)
	}
}
