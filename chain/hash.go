package chain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"

	"github.com/jonafarm/market/jsonx"
)

// Content is the hashed part of a block. Field order is the canonical key
// order and must not change.
type Content struct {
	Index         uint64          `json:"index"`
	Timestamp     string          `json:"timestamp"`
	ProductAction json.RawMessage `json:"productAction"`
	PreviousHash  string          `json:"previousHash"`
}

var errEmptyAction = errors.New("productAction is empty")

// CanonicalBytes returns the deterministic serialization of c: compact JSON
// in the fixed key order, productAction stripped of insignificant whitespace.
func CanonicalBytes(c Content) ([]byte, error) {
	if len(c.ProductAction) == 0 {
		return nil, &EncodingError{Err: errEmptyAction}
	}
	action, err := jsonx.Compact(c.ProductAction)
	if err != nil {
		return nil, &EncodingError{Err: err}
	}
	c.ProductAction = action
	data, err := jsonx.MarshalCanonical(c)
	if err != nil {
		return nil, &EncodingError{Err: err}
	}
	return data, nil
}

// Digest returns the lowercase hex SHA-256 of the canonical content.
func Digest(c Content) (string, error) {
	data, err := CanonicalBytes(c)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// EncodeAction serializes an arbitrary action payload for a block.
func EncodeAction(action interface{}) (json.RawMessage, error) {
	data, err := jsonx.MarshalCanonical(action)
	if err != nil {
		return nil, &EncodingError{Err: err}
	}
	return json.RawMessage(data), nil
}
