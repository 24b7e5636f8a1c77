package session

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonafarm/market/logx"
)

func TestMain(m *testing.M) {
	logx.InitWithOutput(io.Discard)
	os.Exit(m.Run())
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestManager() (*Manager, *clock) {
	c := &clock{t: time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)}
	m := NewManager("market.sid", time.Hour)
	m.now = c.now
	return m, c
}

// login creates a session and returns a request carrying its cookie.
func login(t *testing.T, m *Manager, role, name string) *http.Request {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Create(rec, role, name)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	return req
}

func TestManager_CreateAndGet(t *testing.T) {
	m, _ := newTestManager()
	req := login(t, m, RoleFarmer, "wanjiru")

	s, ok := m.Get(req)
	require.True(t, ok)
	assert.Equal(t, RoleFarmer, s.Role)
	assert.Equal(t, "wanjiru", s.Name)
	assert.NotEmpty(t, s.ID)
}

func TestManager_GetWithoutCookie(t *testing.T) {
	m, _ := newTestManager()
	_, ok := m.Get(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.False(t, ok)
}

func TestManager_Expiry(t *testing.T) {
	m, c := newTestManager()
	req := login(t, m, RoleAdmin, "admin")

	c.t = c.t.Add(59 * time.Minute)
	_, ok := m.Get(req)
	assert.True(t, ok)

	c.t = c.t.Add(time.Minute)
	_, ok = m.Get(req)
	assert.False(t, ok)
	assert.Equal(t, 0, m.Count())
}

func TestManager_Destroy(t *testing.T) {
	m, _ := newTestManager()
	req := login(t, m, RoleUser, "amina")

	rec := httptest.NewRecorder()
	assert.True(t, m.Destroy(rec, req))
	_, ok := m.Get(req)
	assert.False(t, ok)

	cleared := rec.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Equal(t, -1, cleared[0].MaxAge)

	assert.False(t, m.Destroy(httptest.NewRecorder(), req))
}

func TestManager_Sweep(t *testing.T) {
	m, c := newTestManager()
	login(t, m, RoleUser, "a")
	c.t = c.t.Add(30 * time.Minute)
	login(t, m, RoleUser, "b")

	c.t = c.t.Add(45 * time.Minute)
	assert.Equal(t, 1, m.Sweep())
	assert.Equal(t, 1, m.Count())
}

func TestRequireRole(t *testing.T) {
	m, _ := newTestManager()
	deny := func(w http.ResponseWriter, status int) { w.WriteHeader(status) }

	var seen Session
	h := m.RequireRole(deny, RoleFarmer, RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = FromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, login(t, m, RoleDistributor, "haul"))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, login(t, m, RoleAdmin, "root"))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "root", seen.Name)
}
