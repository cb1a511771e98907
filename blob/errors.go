// Package blob implements the data-availability layer of the epoch proving
// core: the self-describing marker codec, the transaction/block/checkpoint
// blob field codec, blob assembly with KZG commitments, and the batched blob
// accumulator that folds every blob of an epoch into a single opening proof
// obligation.
//
// The field layouts here are an on-chain-verified wire format. Field order,
// packed widths and marker tags must stay bit-exact with the verifying
// circuits.
package blob

import (
	"errors"
	"fmt"
)

// ErrDeserialization is the sentinel every DeserializationError unwraps to.
// Callers reject the offending input; decode failures are never fatal to the
// process.
var ErrDeserialization = errors.New("blob: deserialization failed")

// DeserializationError reports a mismatch between declared and actual data
// while decoding blob fields. It carries enough context to diagnose a
// corrupted input.
type DeserializationError struct {
	What     string // which record or sub-field failed
	Expected int
	Actual   int
}

func (e *DeserializationError) Error() string {
	return fmt.Sprintf("blob: bad %s: expected %d, actual %d", e.What, e.Expected, e.Actual)
}

// Unwrap lets callers match with errors.Is(err, ErrDeserialization).
func (e *DeserializationError) Unwrap() error {
	return ErrDeserialization
}

func deserErr(what string, expected, actual int) error {
	return &DeserializationError{What: what, Expected: expected, Actual: actual}
}
