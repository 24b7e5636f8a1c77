// Package chain implements the product audit chain: an append-only ledger in
// which every block carries the SHA-256 digest of its own content and the
// digest of the block before it.
package chain

import (
	"encoding/json"
	"time"

	"github.com/jonafarm/market/jsonx"
)

const (
	// GenesisPrevHash is the previousHash of the first block.
	GenesisPrevHash = "0"

	// TimestampLayout is ISO-8601 in UTC with millisecond precision.
	TimestampLayout = "2006-01-02T15:04:05.000Z"
)

// Block is one ledger entry. It is never modified after it is appended.
type Block struct {
	Index         uint64          `json:"index"`
	Timestamp     string          `json:"timestamp"`
	ProductAction json.RawMessage `json:"productAction"`
	PreviousHash  string          `json:"previousHash"`
	Hash          string          `json:"hash"`
}

// Action is the payload recorded for a product mutation. Product holds
// either the product name or the full product record.
type Action struct {
	Label   string      `json:"action"`
	Product interface{} `json:"product"`
}

// Content returns the fields covered by the block hash.
func (b Block) Content() Content {
	return Content{
		Index:         b.Index,
		Timestamp:     b.Timestamp,
		ProductAction: b.ProductAction,
		PreviousHash:  b.PreviousHash,
	}
}

// Time parses the block timestamp.
func (b Block) Time() (time.Time, error) {
	return time.Parse(time.RFC3339Nano, b.Timestamp)
}

// DecodeAction unmarshals the productAction payload into an Action.
func (b Block) DecodeAction() (Action, error) {
	var a Action
	err := jsonx.Unmarshal(b.ProductAction, &a)
	return a, err
}

// FormatTimestamp renders t the way block timestamps are stored.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
