package api

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonafarm/market/chain"
	apierrors "github.com/jonafarm/market/errors"
	"github.com/jonafarm/market/jsonx"
	"github.com/jonafarm/market/logx"
	"github.com/jonafarm/market/ratelimit"
	"github.com/jonafarm/market/service"
	"github.com/jonafarm/market/session"
	"github.com/jonafarm/market/store"
	"github.com/jonafarm/market/types"
)

func TestMain(m *testing.M) {
	logx.InitWithOutput(io.Discard)
	os.Exit(m.Run())
}

type fixture struct {
	dir     string
	handler http.Handler
	limiter *ratelimit.RateLimiter
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	dir := t.TempDir()

	farmers := store.NewJSONFile[types.Account](filepath.Join(dir, "farmers.json"))
	admins := store.NewJSONFile[types.Account](filepath.Join(dir, "admins.json"))
	distributors := store.NewJSONFile[types.Account](filepath.Join(dir, "distributors.json"))
	require.NoError(t, farmers.Save([]types.Account{{ID: 1, Name: "Wanjiru", Username: "wanjiru", Password: "shamba"}}))
	require.NoError(t, admins.Save([]types.Account{{Username: "admin", Password: "root"}}))
	require.NoError(t, distributors.Save([]types.Account{{Username: "haul", Password: "truck"}}))

	builder := chain.NewBuilder(chain.NewFileStore(filepath.Join(dir, "productBlockchain.json")))
	limiter := ratelimit.NewRateLimiter(&ratelimit.RateLimiterConfig{MaxRequests: 3, WindowSize: time.Minute})
	t.Cleanup(limiter.Stop)

	deps := Deps{
		Products:     service.NewProductService(store.NewJSONFile[types.Product](filepath.Join(dir, "products.json")), builder),
		Accounts:     service.NewAccountService(farmers, admins, distributors, store.NewJSONFile[types.User](filepath.Join(dir, "users.json"))),
		Orders:       service.NewOrderService(store.NewJSONFile[types.Order](filepath.Join(dir, "orders.json"))),
		Chain:        service.NewChainService(builder),
		Sessions:     session.NewManager("market.sid", time.Hour),
		LoginLimiter: limiter,
	}
	return &fixture{dir: dir, handler: NewMarketAPI(deps, opts).GetRouter(), limiter: limiter}
}

func (f *fixture) do(t *testing.T, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) login(t *testing.T, path, username, password string) *http.Cookie {
	t.Helper()
	rec := f.do(t, http.MethodPost, path, `{"username":"`+username+`","password":"`+password+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies[0]
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, jsonx.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

const kaleBody = `{"name":"Kale","price_ksh":"30","quantity":12,"unit":"bunch","image":"kale.png"}`

func TestProducts_RequireSession(t *testing.T) {
	f := newFixture(t, Options{EnforceRoles: true})

	rec := f.do(t, http.MethodPost, "/products/add", kaleBody)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	distributor := f.login(t, "/distributors/login", "haul", "truck")
	rec = f.do(t, http.MethodPost, "/products/add", kaleBody, distributor)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	body := decode[apierrors.APIError](t, rec)
	assert.Equal(t, apierrors.ErrCodeForbidden, body.Code)
}

func TestProducts_LifecycleRecordsChain(t *testing.T) {
	f := newFixture(t, Options{EnforceRoles: true})
	farmer := f.login(t, "/farmers/login", "wanjiru", "shamba")
	admin := f.login(t, "/admins/login", "admin", "root")

	rec := f.do(t, http.MethodPost, "/products/add", kaleBody, farmer)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	added := decode[struct {
		Message string        `json:"message"`
		Product types.Product `json:"product"`
	}](t, rec)
	assert.Equal(t, "Product added successfully", added.Message)
	assert.Equal(t, 1, added.Product.ID)
	assert.Equal(t, types.Number(30), added.Product.PriceKsh)

	rec = f.do(t, http.MethodPost, "/products/verify", `{"name":"Kale"}`, farmer)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = f.do(t, http.MethodPost, "/products/verify", `{"name":"Kale"}`, admin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodPatch, "/products/update/1", `{"price_ksh":35}`, farmer)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodDelete, "/products/1", "", farmer)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Product deleted successfully", decode[map[string]string](t, rec)["message"])

	rec = f.do(t, http.MethodGet, "/products", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/blockchain/products", "")
	require.Equal(t, http.StatusOK, rec.Code)
	blocks := decode[[]chain.Block](t, rec)
	require.Len(t, blocks, 4)
	assert.Equal(t, chain.GenesisPrevHash, blocks[0].PreviousHash)
	assert.True(t, chain.Verify(blocks).Valid)

	rec = f.do(t, http.MethodGet, "/blockchain/products/verify", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"valid":true,"length":4}`, rec.Body.String())
}

func TestProducts_ValidationAndNotFound(t *testing.T) {
	f := newFixture(t, Options{})

	rec := f.do(t, http.MethodPost, "/products/add", `{"name":"Kale"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apierrors.ErrMsgAllFieldsRequired, decode[apierrors.APIError](t, rec).Message)

	rec = f.do(t, http.MethodPost, "/products/verify", `{"name":"Ghost"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, apierrors.ErrMsgProductNotFound, decode[apierrors.APIError](t, rec).Message)

	rec = f.do(t, http.MethodDelete, "/products/abc", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodPatch, "/products/update/7", `{"name":"x"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodGet, "/blockchain/products", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestProducts_UpdateRejectsNonFiniteNumbers(t *testing.T) {
	f := newFixture(t, Options{})
	rec := f.do(t, http.MethodPost, "/products/add", kaleBody)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	for _, body := range []string{`{"price_ksh":"NaN"}`, `{"quantity":"Inf"}`} {
		rec = f.do(t, http.MethodPatch, "/products/update/1", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Equal(t, apierrors.ErrCodeInvalidRequest, decode[apierrors.APIError](t, rec).Code)
	}

	rec = f.do(t, http.MethodGet, "/blockchain/products", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]chain.Block](t, rec), 1)
}

func TestBlockchain_TamperedChainReported(t *testing.T) {
	f := newFixture(t, Options{})
	for _, name := range []string{"Kale", "Maize", "Beans"} {
		rec := f.do(t, http.MethodPost, "/products/add", strings.Replace(kaleBody, "Kale", name, 1))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	path := filepath.Join(f.dir, "productBlockchain.json")
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, bytes.Replace(raw, []byte(`"Maize"`), []byte(`"Mahindi"`), 1), 0o644))

	rec := f.do(t, http.MethodGet, "/blockchain/products/verify", "")
	require.Equal(t, http.StatusOK, rec.Code)
	status := decode[chainStatus](t, rec)
	assert.False(t, status.Valid)
	assert.Equal(t, 3, status.Length)
	require.NotNil(t, status.Failure)
	assert.Equal(t, uint64(2), status.Failure.Index)
	assert.Equal(t, chain.ReasonContentHashMismatch, status.Failure.Reason)
}

func TestBlockchain_MalformedStoreIsServerError(t *testing.T) {
	f := newFixture(t, Options{})
	require.NoError(t, os.WriteFile(filepath.Join(f.dir, "productBlockchain.json"), []byte(`{"oops":`), 0o644))

	rec := f.do(t, http.MethodGet, "/blockchain/products", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decode[apierrors.APIError](t, rec)
	assert.Equal(t, apierrors.ErrCodeChain, body.Code)
	assert.Equal(t, "Error reading product blockchain", body.Message)
	assert.NotEmpty(t, body.Detail)

	// The product write stands even though its block could not be appended.
	rec = f.do(t, http.MethodPost, "/products/add", kaleBody)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	rec = f.do(t, http.MethodGet, "/products", "")
	assert.Len(t, decode[[]types.Product](t, rec), 1)
}

func TestAccounts_LoginsAndSignup(t *testing.T) {
	f := newFixture(t, Options{})

	rec := f.do(t, http.MethodPost, "/admins/login", `{"username":"admin","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, apierrors.ErrMsgInvalidAdminCredentials, decode[apierrors.APIError](t, rec).Message)

	rec = f.do(t, http.MethodPost, "/distributors/login", `{"username":"haul"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apierrors.ErrMsgCredentialsRequired, decode[apierrors.APIError](t, rec).Message)

	rec = f.do(t, http.MethodPost, "/users/signup", `{"name":"Amina","phone":"0712","email":"amina@example.com","password":"pw"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	signup := decode[struct {
		User types.User `json:"user"`
	}](t, rec)
	assert.Equal(t, types.UserRoleBuyer, signup.User.Role)
	assert.Empty(t, signup.User.Password)

	// Three throttled calls so far; clear the window for the rest.
	f.limiter.Reset("192.0.2.1")

	rec = f.do(t, http.MethodPost, "/users/signup", `{"name":"Amina","phone":"0712","email":"amina@example.com","password":"pw"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apierrors.ErrMsgEmailRegistered, decode[apierrors.APIError](t, rec).Message)

	rec = f.do(t, http.MethodPost, "/users/login", `{"email":"amina@example.com","password":"pw"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	cookie := rec.Result().Cookies()[0]

	rec = f.do(t, http.MethodGet, "/session", "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	who := decode[session.Session](t, rec)
	assert.Equal(t, session.RoleUser, who.Role)
	assert.Equal(t, "amina@example.com", who.Name)

	rec = f.do(t, http.MethodPost, "/logout", "", cookie)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = f.do(t, http.MethodGet, "/session", "", cookie)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAccounts_FarmersHidePasswords(t *testing.T) {
	f := newFixture(t, Options{})
	rec := f.do(t, http.MethodGet, "/farmers", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "shamba")
}

func TestAccounts_LoginRateLimited(t *testing.T) {
	f := newFixture(t, Options{})
	for i := 0; i < 3; i++ {
		rec := f.do(t, http.MethodPost, "/farmers/login", `{"username":"wanjiru","password":"bad"}`)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}
	rec := f.do(t, http.MethodPost, "/farmers/login", `{"username":"wanjiru","password":"shamba"}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, apierrors.ErrCodeRateLimited, decode[apierrors.APIError](t, rec).Code)
}

func TestAccounts_LoginRateLimitIgnoresForwardedFor(t *testing.T) {
	f := newFixture(t, Options{})
	var codes []int
	for i := 0; i < 6; i++ {
		req := httptest.NewRequest(http.MethodPost, "/farmers/login", strings.NewReader(`{"username":"wanjiru","password":"bad"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("10.0.0.%d", i))
		rec := httptest.NewRecorder()
		f.handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{401, 401, 401, 429, 429, 429}, codes)
}

func TestOrders_PlaceListUpdate(t *testing.T) {
	f := newFixture(t, Options{EnforceRoles: true})

	rec := f.do(t, http.MethodPost, "/orders/place", `{"product":"Kale","quantity":2,"buyer":"Amina"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apierrors.ErrMsgMissingRequiredFields, decode[apierrors.APIError](t, rec).Message)

	rec = f.do(t, http.MethodPost, "/orders/place", `{"product":"Kale","quantity":2,"buyer":"Amina","phone":"0712","address":"Thika","farmer":"wanjiru","order_date":"2024-03-01"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/orders/farmer/wanjiru", "")
	require.Equal(t, http.StatusOK, rec.Code)
	orders := decode[[]types.Order](t, rec)
	require.Len(t, orders, 1)
	assert.Equal(t, types.OrderStatusPending, orders[0].Status)

	update := `{"id":1,"status":"Shipped","distributor":"haul"}`
	rec = f.do(t, http.MethodPost, "/orders/distributor/update", update)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	distributor := f.login(t, "/distributors/login", "haul", "truck")
	rec = f.do(t, http.MethodPost, "/orders/distributor/update", update, distributor)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodPost, "/orders/distributor/update", `{"id":9,"status":"Shipped","distributor":"haul"}`, distributor)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, apierrors.ErrMsgOrderNotFound, decode[apierrors.APIError](t, rec).Message)

	rec = f.do(t, http.MethodGet, "/orders/distributor", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Shipped", decode[[]types.Order](t, rec)[0].Status)
}

func TestBodyLimit(t *testing.T) {
	f := newFixture(t, Options{MaxBodyBytes: 64})
	big := `{"name":"` + strings.Repeat("k", 200) + `","price_ksh":1,"quantity":1,"unit":"kg","image":"x"}`

	rec := f.do(t, http.MethodPost, "/products/add", big)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestStaticIndex(t *testing.T) {
	public := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(public, "index.html"), []byte("<h1>JonaFarm</h1>"), 0o644))
	f := newFixture(t, Options{PublicDir: public})

	rec := f.do(t, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "JonaFarm")
}
