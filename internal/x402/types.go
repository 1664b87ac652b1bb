// Package x402 holds the wire types of the x402 pay-per-request protocol:
// the payment requirement served in a 402 challenge, the client-supplied
// payment proof, and the settlement result written back as a receipt.
package x402

import "encoding/json"

// Version is the protocol version tag carried in every requirement.
const Version = "1"

// SchemeExact is the only settlement scheme currently supported: the payer
// transfers exactly MaxAmount of the asset.
const SchemeExact = "exact"

// RequirementParams are the deployment-wide constants a requirement is built
// from. They come from configuration and never change at runtime.
type RequirementParams struct {
	Network     string
	Asset       string
	Payee       string
	ServiceName string
	Sponsored   bool
}

// Extra carries scheme-specific metadata echoed back to the caller.
type Extra struct {
	Name      string `json:"name"`
	Sponsored bool   `json:"sponsored"`
}

// PaymentRequirement describes what must be paid to access a resource.
// It is rebuilt deterministically from the route pricing entry on every
// request, so the server keeps no state between the 402 challenge and the
// retried request.
type PaymentRequirement struct {
	Version      string          `json:"version"`
	Network      string          `json:"network"`
	Asset        string          `json:"asset"`
	Payee        string          `json:"payee"`
	MaxAmount    string          `json:"maxAmount"`
	Description  string          `json:"description"`
	Resource     string          `json:"resource"`
	Scheme       string          `json:"scheme"`
	MimeType     string          `json:"mimeType"`
	OutputSchema json.RawMessage `json:"outputSchema"`
	Extra        Extra           `json:"extra"`
}

// NewRequirement builds the canonical requirement for a priced resource.
// Pure and deterministic: identical inputs produce an identical value, and
// Encode of that value produces byte-identical transport output.
func NewRequirement(p RequirementParams, resource, price, description string) PaymentRequirement {
	return PaymentRequirement{
		Version:     Version,
		Network:     p.Network,
		Asset:       p.Asset,
		Payee:       p.Payee,
		MaxAmount:   price,
		Description: description,
		Resource:    resource,
		Scheme:      SchemeExact,
		MimeType:    "application/json",
		Extra: Extra{
			Name:      p.ServiceName,
			Sponsored: p.Sponsored,
		},
	}
}

// PaymentProof is the client-supplied evidence of a signed payment
// transaction. The Transaction blob is opaque to the server and forwarded
// verbatim to the facilitator; only the sender identity is inspected.
type PaymentProof struct {
	Sender      string          `json:"sender"`
	Transaction json.RawMessage `json:"transaction"`
}

// SettlementResult is the outcome of a verify+settle round trip with the
// facilitator. Created per request and discarded with the response.
type SettlementResult struct {
	Success bool   `json:"success"`
	TxHash  string `json:"txHash,omitempty"`
	Detail  string `json:"errorDetail,omitempty"`
}

// TxRefCompleted is the sentinel transaction reference used when the
// facilitator settled the payment but returned no retrievable hash.
const TxRefCompleted = "completed"
