// Package registry defines the static route pricing table: which paths are
// payment-gated, at what price, and which gates a request must pass. The
// table is built once from configuration and read-only afterwards, which
// makes it safe for concurrent use and lets the payment gate rebuild the
// exact same 402 challenge on every request.
package registry

import "github.com/sentience-labs/x402-gateway/internal/config"

// GateKind names a gate a route can require.
type GateKind string

const (
	GatePayment   GateKind = "payment"
	GateIdentity  GateKind = "identity"
	GateTrust     GateKind = "trust"
	GateSpell     GateKind = "spell"
	GateOwnership GateKind = "ownership"
)

// GateSpec is the declarative description of one gate in a route's chain.
// Parameter fields are meaningful only for the kinds that use them.
type GateSpec struct {
	Kind GateKind

	// MinScore is the inclusive trust threshold for GateTrust.
	MinScore int64

	// RequiredShards lists shard IDs the caller must own for GateOwnership.
	RequiredShards []int
}

// Route is one entry of the pricing table.
type Route struct {
	Path        string
	Price       string
	Description string
	Gates       []GateSpec
}

// Routes builds the pricing table. The payment gate always runs first so no
// other check spends work on an unpaid request.
func Routes(cfg *config.Config) []Route {
	return []Route{
		{
			Path:        "/service/data",
			Price:       cfg.Prices.Basic,
			Description: "Access Sentience Agent Database",
			Gates: []GateSpec{
				{Kind: GatePayment},
			},
		},
		{
			Path:        "/shard/level/1",
			Price:       cfg.Prices.Basic,
			Description: "Level 1: The Observer - First x402 Payment",
			Gates: []GateSpec{
				{Kind: GatePayment},
			},
		},
		{
			Path:        "/shard/level/2",
			Price:       cfg.Prices.Basic,
			Description: "Level 2: The Sybil - Trust Score Required",
			Gates: []GateSpec{
				{Kind: GatePayment},
				{Kind: GateIdentity},
				{Kind: GateTrust, MinScore: cfg.MinTrustScore},
			},
		},
		{
			Path:        "/shard/level/3",
			Price:       cfg.Prices.Basic,
			Description: "Level 3: The Ghost - Soulbound Identity Required",
			Gates: []GateSpec{
				{Kind: GatePayment},
				{Kind: GateIdentity},
			},
		},
		{
			Path:        "/shard/level/4",
			Price:       cfg.Prices.Premium,
			Description: "Level 4: The Mirror - Magic Spell Required",
			Gates: []GateSpec{
				{Kind: GatePayment},
				{Kind: GateSpell},
			},
		},
		{
			Path:        "/shard/level/5",
			Price:       cfg.Prices.High,
			Description: "Level 5: The Void - High Value Transaction",
			Gates: []GateSpec{
				{Kind: GatePayment},
				{Kind: GateIdentity},
				{Kind: GateOwnership, RequiredShards: []int{1, 2, 3, 4}},
			},
		},
	}
}
