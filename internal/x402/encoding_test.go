package x402

import (
	"errors"
	"strings"
	"testing"
)

func testParams() RequirementParams {
	return RequirementParams{
		Network:     "aptos:2",
		Asset:       "0xa",
		Payee:       "0xpayee",
		ServiceName: "x402-gateway",
		Sponsored:   true,
	}
}

func TestEncodeDeterministic(t *testing.T) {
	first := NewRequirement(testParams(), "/service/data", "100", "basic access").Encode()

	for i := 0; i < 10; i++ {
		again := NewRequirement(testParams(), "/service/data", "100", "basic access").Encode()
		if again != first {
			t.Fatalf("encoding not deterministic: iteration %d produced %q, want %q", i, again, first)
		}
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	req := NewRequirement(testParams(), "/shard/level/4", "500", "premium access")

	decoded, err := DecodeRequirement(req.Encode())
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if decoded.Version != Version {
		t.Errorf("version = %q, want %q", decoded.Version, Version)
	}
	if decoded.Scheme != SchemeExact {
		t.Errorf("scheme = %q, want %q", decoded.Scheme, SchemeExact)
	}
	if decoded.Network != "aptos:2" {
		t.Errorf("network = %q, want aptos:2", decoded.Network)
	}
	if decoded.Asset != "0xa" {
		t.Errorf("asset = %q, want 0xa", decoded.Asset)
	}
	if decoded.Payee != "0xpayee" {
		t.Errorf("payee = %q, want 0xpayee", decoded.Payee)
	}
	if decoded.MaxAmount != "500" {
		t.Errorf("maxAmount = %q, want 500", decoded.MaxAmount)
	}
	if decoded.Resource != "/shard/level/4" {
		t.Errorf("resource = %q, want /shard/level/4", decoded.Resource)
	}
	if !decoded.Extra.Sponsored {
		t.Error("extra.sponsored not preserved")
	}
}

func TestDecodeRequirementInvalidBase64(t *testing.T) {
	if _, err := DecodeRequirement("!!not-base64!!"); err == nil {
		t.Fatal("expected error for invalid base64")
	}
}

func TestDecodeProof(t *testing.T) {
	// base64 of {"sender":"0xabc","transaction":{"raw":"0x00"}}
	encoded := "eyJzZW5kZXIiOiIweGFiYyIsInRyYW5zYWN0aW9uIjp7InJhdyI6IjB4MDAifX0="

	proof, err := DecodeProof(encoded)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if proof.Sender != "0xabc" {
		t.Errorf("sender = %q, want 0xabc", proof.Sender)
	}
	if len(proof.Transaction) == 0 {
		t.Error("transaction blob not preserved")
	}
}

func TestDecodeProofMalformed(t *testing.T) {
	cases := []struct {
		name    string
		encoded string
	}{
		{"not base64", "!!!"},
		{"not json", "bm90IGpzb24="},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeProof(tc.encoded)
			if !errors.Is(err, ErrMalformedProof) {
				t.Fatalf("error = %v, want ErrMalformedProof", err)
			}
		})
	}
}

func TestEncodeReceipt(t *testing.T) {
	receipt := EncodeReceipt("0xdead")
	if !strings.Contains(receipt, `"txHash":"0xdead"`) {
		t.Errorf("receipt = %q, want txHash field", receipt)
	}
}
