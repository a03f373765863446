package token

import "errors"

// ErrNetwork matches every *NetworkError via errors.Is.
var ErrNetwork = errors.New("network error")

// Operation prefixes carried by NetworkError messages. They are user-facing
// and start with a capital letter on purpose.
const (
	OpCheckBalance = "Error checking balance"
	OpTransfer     = "Error transferring cbBTC"
	OpApprove      = "Error approving spender"
	OpAllowance    = "Error checking allowance"
)

// NetworkError wraps a failure from the chain with the operation that hit it.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *NetworkError) Unwrap() error { return e.Err }

// Is reports ErrNetwork so callers need not know the concrete type.
func (e *NetworkError) Is(target error) bool { return target == ErrNetwork }
