package cardano

import (
	"errors"
)

// decode errors, fatal for the current build and never retried
var (
	ErrMalformedStructure          = errors.New("malformed transaction structure")
	ErrTruncatedInput              = errors.New("truncated transaction input")
	ErrUnsupportedFieldCombination = errors.New("unsupported field combination")
)

// witness errors
var (
	ErrConflictingSignature = errors.New("conflicting signature for same public key")
	ErrUnknownWitnessField  = errors.New("unknown witness field")
)

// script errors
var (
	ErrScriptAddressMismatch = errors.New("script hash does not match input address credential")
	ErrNotScriptAddress      = errors.New("input address is not script locked")
	ErrSignedBodyMutation    = errors.New("refusing to mutate body with signatures attached")
)

// IsDecodeError reports whether err belongs to the decode taxonomy.
func IsDecodeError(err error) bool {
	return errors.Is(err, ErrMalformedStructure) ||
		errors.Is(err, ErrTruncatedInput) ||
		errors.Is(err, ErrUnsupportedFieldCombination)
}
