package api

import (
	"net/http"
	"path/filepath"

	"github.com/gorilla/mux"

	apierrors "github.com/jonafarm/market/errors"
	"github.com/jonafarm/market/interfaces"
	"github.com/jonafarm/market/monitoring"
	"github.com/jonafarm/market/ratelimit"
	"github.com/jonafarm/market/session"
)

// Deps are the services behind the HTTP routes.
type Deps struct {
	Products interfaces.ProductService
	Accounts interfaces.AccountService
	Orders   interfaces.OrderService
	Chain    interfaces.ChainService
	Sessions *session.Manager
	// LoginLimiter throttles login and signup per client IP; nil disables it.
	LoginLimiter *ratelimit.RateLimiter
}

type Options struct {
	PublicDir      string
	MaxBodyBytes   int64
	EnforceRoles   bool
	MetricsEnabled bool
	// RPC is mounted at /rpc when set.
	RPC http.Handler
}

// MarketAPI serves the marketplace HTTP routes.
type MarketAPI struct {
	deps   Deps
	opts   Options
	router *mux.Router
}

func NewMarketAPI(deps Deps, opts Options) *MarketAPI {
	api := &MarketAPI{
		deps:   deps,
		opts:   opts,
		router: mux.NewRouter(),
	}
	api.setupRoutes()
	return api
}

func (api *MarketAPI) setupRoutes() {
	r := api.router
	r.Use(api.metricsMiddleware, api.bodyLimitMiddleware)

	// Products
	r.HandleFunc("/products", api.listProducts).Methods(http.MethodGet)
	r.Handle("/products/add", api.requireRole(api.addProduct, session.RoleFarmer, session.RoleAdmin)).Methods(http.MethodPost)
	r.Handle("/products/verify", api.requireRole(api.verifyProduct, session.RoleAdmin)).Methods(http.MethodPost)
	r.Handle("/products/update/{id}", api.requireRole(api.updateProduct, session.RoleFarmer, session.RoleAdmin)).Methods(http.MethodPatch)
	r.Handle("/products/{id}", api.requireRole(api.deleteProduct, session.RoleFarmer, session.RoleAdmin)).Methods(http.MethodDelete)

	// Accounts
	r.HandleFunc("/farmers", api.listFarmers).Methods(http.MethodGet)
	r.HandleFunc("/farmers/login", api.rateLimited(api.staffLogin(session.RoleFarmer))).Methods(http.MethodPost)
	r.HandleFunc("/admins/login", api.rateLimited(api.staffLogin(session.RoleAdmin))).Methods(http.MethodPost)
	r.HandleFunc("/distributors/login", api.rateLimited(api.staffLogin(session.RoleDistributor))).Methods(http.MethodPost)
	r.HandleFunc("/users/signup", api.rateLimited(api.signup)).Methods(http.MethodPost)
	r.HandleFunc("/users/login", api.rateLimited(api.userLogin)).Methods(http.MethodPost)
	r.HandleFunc("/session", api.currentSession).Methods(http.MethodGet)
	r.HandleFunc("/logout", api.logout).Methods(http.MethodPost)

	// Orders
	r.HandleFunc("/orders/place", api.placeOrder).Methods(http.MethodPost)
	r.HandleFunc("/orders", api.listOrders).Methods(http.MethodGet)
	r.HandleFunc("/orders/farmer/{farmer}", api.listFarmerOrders).Methods(http.MethodGet)
	r.HandleFunc("/orders/distributor", api.listDistributorOrders).Methods(http.MethodGet)
	r.Handle("/orders/distributor/update", api.requireRole(api.updateOrderStatus, session.RoleDistributor, session.RoleAdmin)).Methods(http.MethodPost)

	// Audit chain
	r.HandleFunc("/blockchain/products", api.getProductChain).Methods(http.MethodGet)
	r.HandleFunc("/blockchain/products/verify", api.verifyProductChain).Methods(http.MethodGet)

	if api.opts.MetricsEnabled {
		r.Handle("/metrics", monitoring.Handler()).Methods(http.MethodGet)
	}
	if api.opts.RPC != nil {
		r.Handle("/rpc", api.opts.RPC).Methods(http.MethodPost, http.MethodOptions)
	}

	if api.opts.PublicDir != "" {
		r.HandleFunc("/", api.index).Methods(http.MethodGet)
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(api.opts.PublicDir))).Methods(http.MethodGet)
	}
}

// GetRouter returns the configured router
func (api *MarketAPI) GetRouter() *mux.Router {
	return api.router
}

func (api *MarketAPI) index(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, filepath.Join(api.opts.PublicDir, "index.html"))
}

func (api *MarketAPI) requireRole(h http.HandlerFunc, roles ...string) http.Handler {
	if !api.opts.EnforceRoles || api.deps.Sessions == nil {
		return h
	}
	return api.deps.Sessions.RequireRole(denyAccess, roles...)(h)
}

func denyAccess(w http.ResponseWriter, status int) {
	if status == http.StatusUnauthorized {
		writeAPIError(w, &apierrors.APIError{Code: apierrors.ErrCodeUnauthorized, Message: apierrors.ErrMsgNotLoggedIn})
		return
	}
	writeAPIError(w, &apierrors.APIError{Code: apierrors.ErrCodeForbidden, Message: apierrors.ErrMsgForbidden})
}
