package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/sentience-labs/x402-gateway/internal/interfaces"
	"github.com/sentience-labs/x402-gateway/internal/models"
	"github.com/sentience-labs/x402-gateway/internal/registry"
	"github.com/sentience-labs/x402-gateway/internal/telemetry"
	"github.com/sentience-labs/x402-gateway/internal/x402"
)

// ErrAlreadyProcessing indicates the same proof is mid-settlement in another
// request. The caller should retry after the first submission resolves.
var ErrAlreadyProcessing = errors.New("payment is already being processed")

const (
	settleLockTTL = 30 * time.Second
	receiptTTL    = 24 * time.Hour
)

// PaymentService orchestrates a payment: idempotency check, facilitator
// verify+settle, then receipt persistence and event publication.
//
// Receipts, Cache, and Events are optional; a nil collaborator disables that
// step, leaving the protocol core self-contained.
type PaymentService struct {
	Facilitator interfaces.SettlementGateway
	Receipts    interfaces.ReceiptRepository
	Cache       interfaces.ReceiptCache
	Events      interfaces.EventPublisher
}

// Process settles the proof for one route access and returns the result.
// A proof already settled (per the cache) is returned without a second
// facilitator round trip, so resubmitting after a lost response never
// double-charges.
func (s *PaymentService) Process(ctx context.Context, route registry.Route, proofB64, requirementB64, payer string) (*x402.SettlementResult, error) {
	digest := proofDigest(proofB64)

	if s.Cache != nil {
		cached, err := s.Cache.GetResult(ctx, digest)
		if err != nil {
			telemetry.Logger.Warn("receipt cache lookup failed", zap.Error(err))
		} else if cached != nil {
			telemetry.Logger.Info("returning recorded settlement for resubmitted proof",
				zap.String("payment_id", digest),
				zap.String("tx_hash", cached.TxHash),
			)
			return cached, nil
		}

		locked, err := s.Cache.AcquireLock(ctx, digest, settleLockTTL)
		if err != nil {
			telemetry.Logger.Warn("settlement lock unavailable", zap.Error(err))
		} else if !locked {
			return nil, ErrAlreadyProcessing
		} else {
			defer func() {
				if err := s.Cache.ReleaseLock(context.WithoutCancel(ctx), digest); err != nil {
					telemetry.Logger.Warn("settlement lock release failed", zap.Error(err))
				}
			}()
		}
	}

	result, err := s.Facilitator.VerifyAndSettle(ctx, proofB64, requirementB64)
	if err != nil {
		return nil, err
	}

	s.record(ctx, digest, route, payer, result)
	return result, nil
}

// record persists the receipt, caches it for idempotent resubmission, and
// publishes the settlement event. Failures here are logged, not returned:
// the charge already happened and the caller must still get their resource.
func (s *PaymentService) record(ctx context.Context, digest string, route registry.Route, payer string, result *x402.SettlementResult) {
	if s.Receipts != nil {
		receipt := models.Receipt{
			PaymentID: digest,
			Route:     route.Path,
			Payer:     payer,
			Amount:    route.Price,
			TxHash:    result.TxHash,
		}
		if err := s.Receipts.Insert(ctx, receipt); err != nil {
			telemetry.Logger.Warn("receipt insert failed",
				zap.String("payment_id", digest),
				zap.Error(err),
			)
		}
	}

	if s.Cache != nil {
		if err := s.Cache.PutResult(ctx, digest, result, receiptTTL); err != nil {
			telemetry.Logger.Warn("receipt cache write failed", zap.Error(err))
		}
	}

	if s.Events != nil {
		event := models.SettledEvent{
			PaymentID: digest,
			Route:     route.Path,
			Payer:     payer,
			Amount:    route.Price,
			TxHash:    result.TxHash,
			Timestamp: time.Now().UTC(),
		}
		if err := s.Events.PublishSettled(ctx, event); err != nil {
			telemetry.Logger.Warn("settlement event publish failed", zap.Error(err))
		}
	}
}

// proofDigest keys idempotency on the proof exactly as presented on the
// wire; any re-signing produces a new payment.
func proofDigest(proofB64 string) string {
	sum := sha256.Sum256([]byte(proofB64))
	return hex.EncodeToString(sum[:])
}
