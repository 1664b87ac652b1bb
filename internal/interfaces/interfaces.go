package interfaces

import (
	"context"
	"time"

	"github.com/sentience-labs/x402-gateway/internal/models"
	"github.com/sentience-labs/x402-gateway/internal/x402"
)

// SettlementGateway is the contract for the facilitator round trip: verify
// the proof, then settle it. Implementations must never attempt settlement
// when verification failed.
type SettlementGateway interface {
	VerifyAndSettle(ctx context.Context, proof, requirement string) (*x402.SettlementResult, error)
}

// ReceiptRepository defines the contract for settled-payment persistence.
type ReceiptRepository interface {
	Insert(ctx context.Context, receipt models.Receipt) error
	ListRoutesByPayer(ctx context.Context, payer string) ([]string, error)
}

// ReceiptCache is the idempotency layer over a settled proof: a resubmitted
// proof returns the recorded result instead of being settled twice.
type ReceiptCache interface {
	GetResult(ctx context.Context, digest string) (*x402.SettlementResult, error)
	PutResult(ctx context.Context, digest string, result *x402.SettlementResult, ttl time.Duration) error
	AcquireLock(ctx context.Context, digest string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, digest string) error
}

// EventPublisher emits settlement events to downstream consumers.
type EventPublisher interface {
	PublishSettled(ctx context.Context, event models.SettledEvent) error
}

// ReputationProvider resolves the trust standing of an agent identity.
// The production implementation would query the reputation contract; the
// bundled simulated provider derives a score from the identity itself.
type ReputationProvider interface {
	ScoreOf(ctx context.Context, identity string) (score int64, rank int, err error)
}

// ShardLedger resolves the set of shards an agent identity owns.
type ShardLedger interface {
	OwnedShards(ctx context.Context, identity string) ([]int, error)
}
