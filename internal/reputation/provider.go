// Package reputation provides the trust and shard-ownership lookups gates
// depend on. The real providers would query the identity and reputation
// contracts on chain; the simulated implementations here derive deterministic
// answers from the identity so the pipeline works end to end without a chain
// connection.
package reputation

import "context"

// Trust scores use six implied decimals: 15_000_000 reads as 15.0.
const (
	scoreEstablished = 15_000_000
	scoreNewcomer    = 5_000_000
)

// SimulatedProvider derives a trust score from the agent address itself.
// Addresses longer than ten characters are treated as established agents.
type SimulatedProvider struct{}

func (SimulatedProvider) ScoreOf(_ context.Context, identity string) (int64, int, error) {
	if len(identity) > 10 {
		return scoreEstablished, 1, nil
	}
	return scoreNewcomer, 1, nil
}

// SimulatedLedger reports every agent as owning the first four shards.
type SimulatedLedger struct{}

func (SimulatedLedger) OwnedShards(_ context.Context, _ string) ([]int, error) {
	return []int{1, 2, 3, 4}, nil
}
