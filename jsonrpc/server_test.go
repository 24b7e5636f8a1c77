package jsonrpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
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
	"github.com/jonafarm/market/jsonx"
	"github.com/jonafarm/market/logx"
	"github.com/jonafarm/market/service"
)

func TestMain(m *testing.M) {
	logx.InitWithOutput(io.Discard)
	os.Exit(m.Run())
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func newChainServer(t *testing.T, appends int) (*httptest.Server, *chain.Builder) {
	t.Helper()
	clock := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	builder := chain.NewBuilder(
		chain.NewFileStore(filepath.Join(t.TempDir(), "productBlockchain.json")),
		chain.WithClock(func() time.Time { return clock }),
	)
	for i := 0; i < appends; i++ {
		_, err := builder.CreateBlock(chain.Action{Label: "Add Product", Product: i})
		require.NoError(t, err)
	}
	srv := httptest.NewServer(NewServer(service.NewChainService(builder)).Handler())
	t.Cleanup(srv.Close)
	return srv, builder
}

func call(t *testing.T, url, method, params string) rpcResponse {
	t.Helper()
	body := `{"jsonrpc":"2.0","id":1,"method":"` + method + `"`
	if params != "" {
		body += `,"params":` + params
	}
	body += `}`

	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out rpcResponse
	require.NoError(t, jsonx.Unmarshal(raw, &out), string(raw))
	return out
}

func TestChainLength(t *testing.T) {
	srv, builder := newChainServer(t, 3)

	out := call(t, srv.URL, MethodChainLength, "")
	require.Nil(t, out.Error)
	var res lengthResponse
	require.NoError(t, jsonx.Unmarshal(out.Result, &res))

	blocks, err := builder.Chain()
	require.NoError(t, err)
	assert.Equal(t, 3, res.Length)
	assert.Equal(t, blocks[2].Hash, res.Tip)
}

func TestChainGetBlocksPaging(t *testing.T) {
	srv, _ := newChainServer(t, 5)

	out := call(t, srv.URL, MethodChainGetBlocks, `{"offset":1,"limit":2}`)
	require.Nil(t, out.Error)
	var res getBlocksResponse
	require.NoError(t, jsonx.Unmarshal(out.Result, &res))
	assert.Equal(t, 5, res.Total)
	require.Len(t, res.Blocks, 2)
	assert.Equal(t, uint64(2), res.Blocks[0].Index)
	assert.Equal(t, uint64(3), res.Blocks[1].Index)

	out = call(t, srv.URL, MethodChainGetBlocks, `{"offset":10}`)
	require.Nil(t, out.Error)
	require.NoError(t, jsonx.Unmarshal(out.Result, &res))
	assert.Empty(t, res.Blocks)

	out = call(t, srv.URL, MethodChainGetBlocks, `{"offset":-1}`)
	require.NotNil(t, out.Error)
	assert.Equal(t, codeInvalidParams, out.Error.Code)
}

func TestChainGetBlocksHugeLimit(t *testing.T) {
	srv, _ := newChainServer(t, 3)

	params := fmt.Sprintf(`{"offset":1,"limit":%d}`, math.MaxInt64)
	out := call(t, srv.URL, MethodChainGetBlocks, params)
	require.Nil(t, out.Error)
	var res getBlocksResponse
	require.NoError(t, jsonx.Unmarshal(out.Result, &res))
	assert.Equal(t, 3, res.Total)
	require.Len(t, res.Blocks, 2)
	assert.Equal(t, uint64(2), res.Blocks[0].Index)
	assert.Equal(t, uint64(3), res.Blocks[1].Index)

	// server still answers
	out = call(t, srv.URL, MethodChainLength, "")
	require.Nil(t, out.Error)
}

func TestChainGetBlock(t *testing.T) {
	srv, builder := newChainServer(t, 2)
	blocks, err := builder.Chain()
	require.NoError(t, err)

	out := call(t, srv.URL, MethodChainGetBlock, `{"index":2}`)
	require.Nil(t, out.Error)
	var blk chain.Block
	require.NoError(t, jsonx.Unmarshal(out.Result, &blk))
	assert.Equal(t, blocks[1].Hash, blk.Hash)
	assert.Equal(t, blocks[0].Hash, blk.PreviousHash)

	out = call(t, srv.URL, MethodChainGetBlock, `{"index":0}`)
	require.NotNil(t, out.Error)
	assert.Equal(t, codeBlockNotFound, out.Error.Code)
}

func TestChainVerify(t *testing.T) {
	srv, _ := newChainServer(t, 4)

	out := call(t, srv.URL, MethodChainVerify, "")
	require.Nil(t, out.Error)
	var res verifyResponse
	require.NoError(t, jsonx.Unmarshal(out.Result, &res))
	assert.True(t, res.Valid)
	assert.Equal(t, 4, res.Length)
	assert.Nil(t, res.Result)
}

type brokenChain struct{}

func (brokenChain) Blocks(ctx context.Context) ([]chain.Block, error) {
	return nil, &chain.StoreReadError{Source: "test", Err: errors.New("unreadable")}
}

func (brokenChain) Verify(ctx context.Context) (chain.Result, int, error) {
	return chain.Result{}, 0, &chain.StoreReadError{Source: "test", Err: errors.New("unreadable")}
}

func TestChainUnavailable(t *testing.T) {
	srv := httptest.NewServer(NewServer(brokenChain{}).Handler())
	defer srv.Close()

	for _, method := range []string{MethodChainLength, MethodChainVerify} {
		out := call(t, srv.URL, method, "")
		require.NotNil(t, out.Error, method)
		assert.Equal(t, codeChainUnavailable, out.Error.Code)
		assert.Contains(t, out.Error.Message, "unreadable")
	}
}

func TestCORSPreflight(t *testing.T) {
	s := NewServer(brokenChain{})
	s.SetCORSConfig(CORSConfig{AllowedOrigins: []string{"*"}, MaxAge: 600})

	req := httptest.NewRequest(http.MethodOptions, "/rpc", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "600", rec.Header().Get("Access-Control-Max-Age"))
}

func TestCORSFromEnv(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("CORS_MAX_AGE", "30")

	cfg, ok := CORSFromEnv()
	require.True(t, ok)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, 30, cfg.MaxAge)
}
