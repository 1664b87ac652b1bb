package x402

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// Encode returns the base64 JSON transport form of the requirement, as
// carried in the X-Payment-Required header and the 402 body. The output is
// byte-identical for identical requirements.
func (r PaymentRequirement) Encode() string {
	data, err := json.Marshal(r)
	if err != nil {
		// PaymentRequirement contains only marshalable fields.
		panic(fmt.Sprintf("x402: marshal requirement: %v", err))
	}
	return base64.StdEncoding.EncodeToString(data)
}

// DecodeRequirement parses the base64 JSON transport form back into a
// requirement. Used by clients and tests; the server never needs it to
// validate a retry because it re-derives the requirement from the route.
func DecodeRequirement(encoded string) (PaymentRequirement, error) {
	var req PaymentRequirement
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return req, fmt.Errorf("decode requirement base64: %w", err)
	}
	if err := json.Unmarshal(data, &req); err != nil {
		return req, fmt.Errorf("unmarshal requirement: %w", err)
	}
	return req, nil
}

// DecodeProof parses the base64 payment proof header. The proof's
// transaction blob stays opaque; decoding only surfaces the sender identity.
func DecodeProof(encoded string) (PaymentProof, error) {
	var proof PaymentProof
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return proof, fmt.Errorf("%w: invalid base64", ErrMalformedProof)
	}
	if err := json.Unmarshal(data, &proof); err != nil {
		return proof, fmt.Errorf("%w: invalid payload", ErrMalformedProof)
	}
	return proof, nil
}

// EncodeReceipt renders the receipt header value attached to paid responses.
func EncodeReceipt(txHash string) string {
	data, _ := json.Marshal(map[string]string{"txHash": txHash})
	return string(data)
}
