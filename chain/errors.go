package chain

import "fmt"

// EncodingError reports block content that cannot be serialized.
type EncodingError struct {
	Err error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("chain: encode block content: %v", e.Err)
}

func (e *EncodingError) Unwrap() error { return e.Err }

// StoreReadError reports a persisted chain that cannot be read or decoded.
type StoreReadError struct {
	Source string
	Err    error
}

func (e *StoreReadError) Error() string {
	return fmt.Sprintf("chain: read %s: %v", e.Source, e.Err)
}

func (e *StoreReadError) Unwrap() error { return e.Err }

// StoreWriteError reports an append that was not durably written.
type StoreWriteError struct {
	Source string
	Err    error
}

func (e *StoreWriteError) Error() string {
	return fmt.Sprintf("chain: write %s: %v", e.Source, e.Err)
}

func (e *StoreWriteError) Unwrap() error { return e.Err }

// VerificationFailure is the error form of an invalid Result.
type VerificationFailure struct {
	Index  uint64
	Reason Reason
	Detail string
}

func (e *VerificationFailure) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("chain: verification failed at block %d: %s", e.Index, e.Reason)
	}
	return fmt.Sprintf("chain: verification failed at block %d: %s (%s)", e.Index, e.Reason, e.Detail)
}
