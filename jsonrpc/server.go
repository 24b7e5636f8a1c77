package jsonrpc

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/handler"
	"github.com/creachadair/jrpc2/jhttp"

	"github.com/jonafarm/market/chain"
	"github.com/jonafarm/market/interfaces"
	"github.com/jonafarm/market/logx"
)

// JSON-RPC method names
const (
	MethodChainGetBlocks = "chain.getblocks"
	MethodChainGetBlock  = "chain.getblock"
	MethodChainVerify    = "chain.verify"
	MethodChainLength    = "chain.length"
)

// Error codes in the server-defined range
const (
	codeChainUnavailable = -32000
	codeInvalidParams    = -32602
	codeBlockNotFound    = -32004
)

type rpcError struct {
	Code    int
	Message string
}

func toJRPC2Error(e *rpcError) error {
	if e == nil {
		return nil
	}
	return jrpc2.Errorf(jrpc2.Code(e.Code), "%s", e.Message)
}

// --- Params/Results ---

type getBlocksRequest struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

type getBlocksResponse struct {
	Total  int           `json:"total"`
	Blocks []chain.Block `json:"blocks"`
}

type getBlockRequest struct {
	Index uint64 `json:"index"`
}

type verifyResponse struct {
	Valid  bool          `json:"valid"`
	Length int           `json:"length"`
	Result *chain.Result `json:"failure,omitempty"`
}

type lengthResponse struct {
	Length int    `json:"length"`
	Tip    string `json:"tip"`
}

// --- Server ---

// Server exposes the audit chain read side over JSON-RPC 2.0 on HTTP.
type Server struct {
	chainSvc   interfaces.ChainService
	corsConfig CORSConfig
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	MaxAge         int
}

func NewServer(chainSvc interfaces.ChainService) *Server {
	return &Server{chainSvc: chainSvc}
}

// SetCORSConfig allows configuring CORS settings
func (s *Server) SetCORSConfig(config CORSConfig) {
	s.corsConfig = config
}

// Handler returns the HTTP bridge serving every method.
func (s *Server) Handler() http.Handler {
	jh := jhttp.NewBridge(s.buildMethodMap(), &jhttp.BridgeOptions{Server: &jrpc2.ServerOptions{}})

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.setCORSHeaders(w, r)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		jh.ServeHTTP(w, r)
	})
}

// Build jrpc2 method map
func (s *Server) buildMethodMap() handler.Map {
	return handler.Map{
		MethodChainGetBlocks: handler.New(func(ctx context.Context, p getBlocksRequest) (*getBlocksResponse, error) {
			res, err := s.rpcGetBlocks(ctx, p)
			return res, toJRPC2Error(err)
		}),
		MethodChainGetBlock: handler.New(func(ctx context.Context, p getBlockRequest) (*chain.Block, error) {
			res, err := s.rpcGetBlock(ctx, p)
			return res, toJRPC2Error(err)
		}),
		MethodChainVerify: handler.New(func(ctx context.Context) (*verifyResponse, error) {
			res, err := s.rpcVerify(ctx)
			return res, toJRPC2Error(err)
		}),
		MethodChainLength: handler.New(func(ctx context.Context) (*lengthResponse, error) {
			res, err := s.rpcLength(ctx)
			return res, toJRPC2Error(err)
		}),
	}
}

// --- Implementations ---

func (s *Server) rpcGetBlocks(ctx context.Context, p getBlocksRequest) (*getBlocksResponse, *rpcError) {
	if p.Offset < 0 || p.Limit < 0 {
		return nil, &rpcError{Code: codeInvalidParams, Message: "offset and limit must not be negative"}
	}
	blocks, err := s.chainSvc.Blocks(ctx)
	if err != nil {
		return nil, chainUnavailable(err)
	}

	total := len(blocks)
	start := p.Offset
	if start > total {
		start = total
	}
	end := total
	if p.Limit > 0 && p.Limit < total-start {
		end = start + p.Limit
	}
	page := make([]chain.Block, end-start)
	copy(page, blocks[start:end])
	return &getBlocksResponse{Total: total, Blocks: page}, nil
}

func (s *Server) rpcGetBlock(ctx context.Context, p getBlockRequest) (*chain.Block, *rpcError) {
	blocks, err := s.chainSvc.Blocks(ctx)
	if err != nil {
		return nil, chainUnavailable(err)
	}
	if p.Index == 0 || p.Index > uint64(len(blocks)) {
		return nil, &rpcError{Code: codeBlockNotFound, Message: fmt.Sprintf("block %d not found", p.Index)}
	}
	blk := blocks[p.Index-1]
	return &blk, nil
}

func (s *Server) rpcVerify(ctx context.Context) (*verifyResponse, *rpcError) {
	res, length, err := s.chainSvc.Verify(ctx)
	if err != nil {
		return nil, chainUnavailable(err)
	}
	out := &verifyResponse{Valid: res.Valid, Length: length}
	if !res.Valid {
		out.Result = &res
	}
	return out, nil
}

func (s *Server) rpcLength(ctx context.Context) (*lengthResponse, *rpcError) {
	blocks, err := s.chainSvc.Blocks(ctx)
	if err != nil {
		return nil, chainUnavailable(err)
	}
	tip := chain.GenesisPrevHash
	if len(blocks) > 0 {
		tip = blocks[len(blocks)-1].Hash
	}
	return &lengthResponse{Length: len(blocks), Tip: tip}, nil
}

func chainUnavailable(err error) *rpcError {
	logx.Error("JSONRPC", "Chain read failed: ", err)
	return &rpcError{Code: codeChainUnavailable, Message: err.Error()}
}

// --- Helpers ---

func (s *Server) setCORSHeaders(w http.ResponseWriter, r *http.Request) {
	if len(s.corsConfig.AllowedOrigins) > 0 {
		if s.corsConfig.AllowedOrigins[0] == "*" {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		} else {
			origin := r.Header.Get("Origin")
			for _, allowedOrigin := range s.corsConfig.AllowedOrigins {
				if origin == allowedOrigin {
					w.Header().Set("Access-Control-Allow-Origin", origin)
					break
				}
			}
		}
	}

	if len(s.corsConfig.AllowedMethods) > 0 {
		w.Header().Set("Access-Control-Allow-Methods", strings.Join(s.corsConfig.AllowedMethods, ", "))
	}
	if len(s.corsConfig.AllowedHeaders) > 0 {
		w.Header().Set("Access-Control-Allow-Headers", strings.Join(s.corsConfig.AllowedHeaders, ", "))
	}
	if s.corsConfig.MaxAge > 0 {
		w.Header().Set("Access-Control-Max-Age", strconv.Itoa(s.corsConfig.MaxAge))
	}
}

// CORSFromEnv reads environment variables and constructs a CORSConfig.
// Returns (cfg, true) if any CORS-related env var is set; otherwise (zero, false).
//
// Env vars:
// - CORS_ALLOWED_ORIGINS: comma-separated list
// - CORS_ALLOWED_METHODS: comma-separated list
// - CORS_ALLOWED_HEADERS: comma-separated list
// - CORS_MAX_AGE: integer seconds
func CORSFromEnv() (CORSConfig, bool) {
	var maxAge int
	if v, err := strconv.Atoi(os.Getenv("CORS_MAX_AGE")); err == nil {
		maxAge = v
	}

	cfg := CORSConfig{
		AllowedOrigins: splitAndTrim(os.Getenv("CORS_ALLOWED_ORIGINS")),
		AllowedMethods: splitAndTrim(os.Getenv("CORS_ALLOWED_METHODS")),
		AllowedHeaders: splitAndTrim(os.Getenv("CORS_ALLOWED_HEADERS")),
		MaxAge:         maxAge,
	}
	provided := len(cfg.AllowedOrigins) > 0 || len(cfg.AllowedMethods) > 0 || len(cfg.AllowedHeaders) > 0 || maxAge > 0
	if !provided {
		return CORSConfig{}, false
	}
	return cfg, true
}

func splitAndTrim(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
