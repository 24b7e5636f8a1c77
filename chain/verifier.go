package chain

import "fmt"

// Reason names the integrity rule a block violates.
type Reason string

const (
	ReasonGenesisLinkMismatch Reason = "genesisLinkMismatch"
	ReasonLinkMismatch        Reason = "linkMismatch"
	ReasonContentHashMismatch Reason = "contentHashMismatch"
	ReasonIndexMismatch       Reason = "indexMismatch"
	ReasonEncodingFailure     Reason = "encodingFailure"
)

// Result is the outcome of Verify. When Valid is false, Index is the
// 1-based position of the first offending block.
type Result struct {
	Valid  bool   `json:"valid"`
	Index  uint64 `json:"index,omitempty"`
	Reason Reason `json:"reason,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// Valid is the result for an intact chain.
func Valid() Result {
	return Result{Valid: true}
}

// InvalidAt is the result for a chain broken at block index.
func InvalidAt(index uint64, reason Reason, detail string) Result {
	return Result{Index: index, Reason: reason, Detail: detail}
}

// Err returns nil for a valid result and a *VerificationFailure otherwise.
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	return &VerificationFailure{Index: r.Index, Reason: r.Reason, Detail: r.Detail}
}

// Verify walks blocks in order. Linkage is checked against the stored hash
// of the predecessor, and every block's stored hash is checked against a
// fresh digest of its own content. The first failure wins; an empty chain
// is valid.
func Verify(blocks []Block) Result {
	for i, blk := range blocks {
		pos := uint64(i) + 1

		if i == 0 {
			if blk.PreviousHash != GenesisPrevHash {
				return InvalidAt(pos, ReasonGenesisLinkMismatch,
					fmt.Sprintf("previousHash %q, want %q", blk.PreviousHash, GenesisPrevHash))
			}
		} else if prev := blocks[i-1].Hash; blk.PreviousHash != prev {
			return InvalidAt(pos, ReasonLinkMismatch,
				fmt.Sprintf("previousHash %q, predecessor hash %q", blk.PreviousHash, prev))
		}

		digest, err := Digest(blk.Content())
		if err != nil {
			return InvalidAt(pos, ReasonEncodingFailure, err.Error())
		}
		if digest != blk.Hash {
			return InvalidAt(pos, ReasonContentHashMismatch,
				fmt.Sprintf("stored %q, computed %q", blk.Hash, digest))
		}

		if blk.Index != pos {
			return InvalidAt(pos, ReasonIndexMismatch,
				fmt.Sprintf("index %d at position %d", blk.Index, pos))
		}
	}
	return Valid()
}
