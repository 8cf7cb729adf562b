package reconcile

import "fmt"

// Error kinds surfaced to clients as stable machine-readable strings.
const (
	KindValidation         = "validation_error"
	KindNotFound           = "not_found"
	KindGatewayUnavailable = "gateway_unavailable"
	KindVerification       = "verification_failed"
	KindConflict           = "conflict"
)

// ValidationError rejects malformed or missing input before any
// persistence happens.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// NotFoundError means a referenced payable, ledger entry or priced item
// does not exist.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string { return e.Resource + " not found" }

// GatewayUnavailableError means remote order creation failed or timed
// out. Nothing has been persisted when it is returned.
type GatewayUnavailableError struct {
	Err error
}

func (e *GatewayUnavailableError) Error() string {
	return fmt.Sprintf("payment gateway unavailable: %v", e.Err)
}

func (e *GatewayUnavailableError) Unwrap() error { return e.Err }

// VerificationError means the submitted signature did not match. The
// ledger entry has been marked FAILED; the payable is untouched.
type VerificationError struct {
	Reason string
}

func (e *VerificationError) Error() string { return e.Reason }

// ConflictError means the requested transition is not allowed from the
// current state, e.g. re-verifying a terminal ledger entry with
// different credentials, or deleting a payable that still owes money.
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string { return e.Msg }
