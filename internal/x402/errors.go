package x402

import "errors"

// Sentinel errors for the payment pipeline. Callers distinguish an explicit
// facilitator rejection from transport failure with errors.Is: a rejection is
// terminal for the proof, while an unreachable facilitator is safe to retry.
var (
	// ErrMalformedProof indicates the payment header could not be decoded.
	ErrMalformedProof = errors.New("x402: malformed payment proof")

	// ErrVerificationFailed indicates the facilitator rejected the proof
	// before settlement was attempted.
	ErrVerificationFailed = errors.New("x402: payment verification failed")

	// ErrSettlementFailed indicates the proof verified but the settlement
	// broadcast or confirmation failed.
	ErrSettlementFailed = errors.New("x402: payment settlement failed")

	// ErrFacilitatorUnreachable indicates a network, timeout, or decode
	// error talking to the facilitator, as opposed to an explicit rejection.
	ErrFacilitatorUnreachable = errors.New("x402: facilitator unreachable")
)
