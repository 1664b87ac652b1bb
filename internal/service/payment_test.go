package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sentience-labs/x402-gateway/internal/models"
	"github.com/sentience-labs/x402-gateway/internal/registry"
	"github.com/sentience-labs/x402-gateway/internal/service"
	"github.com/sentience-labs/x402-gateway/internal/x402"
)

type fakeGateway struct {
	result *x402.SettlementResult
	err    error
	calls  int
}

func (f *fakeGateway) VerifyAndSettle(_ context.Context, _, _ string) (*x402.SettlementResult, error) {
	f.calls++
	return f.result, f.err
}

type fakeCache struct {
	results  map[string]*x402.SettlementResult
	locked   map[string]bool
	denyLock bool
	puts     int
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		results: make(map[string]*x402.SettlementResult),
		locked:  make(map[string]bool),
	}
}

func (f *fakeCache) GetResult(_ context.Context, digest string) (*x402.SettlementResult, error) {
	return f.results[digest], nil
}

func (f *fakeCache) PutResult(_ context.Context, digest string, result *x402.SettlementResult, _ time.Duration) error {
	f.puts++
	f.results[digest] = result
	return nil
}

func (f *fakeCache) AcquireLock(_ context.Context, digest string, _ time.Duration) (bool, error) {
	if f.denyLock || f.locked[digest] {
		return false, nil
	}
	f.locked[digest] = true
	return true, nil
}

func (f *fakeCache) ReleaseLock(_ context.Context, digest string) error {
	delete(f.locked, digest)
	return nil
}

type fakeRepo struct {
	receipts []models.Receipt
}

func (f *fakeRepo) Insert(_ context.Context, receipt models.Receipt) error {
	f.receipts = append(f.receipts, receipt)
	return nil
}

func (f *fakeRepo) ListRoutesByPayer(_ context.Context, _ string) ([]string, error) {
	return nil, nil
}

type fakeEvents struct {
	events []models.SettledEvent
}

func (f *fakeEvents) PublishSettled(_ context.Context, event models.SettledEvent) error {
	f.events = append(f.events, event)
	return nil
}

func testRoute() registry.Route {
	return registry.Route{Path: "/shard/level/1", Price: "100", Description: "Level 1"}
}

func TestProcessRecordsSettlement(t *testing.T) {
	gw := &fakeGateway{result: &x402.SettlementResult{Success: true, TxHash: "0xdead"}}
	cache := newFakeCache()
	repo := &fakeRepo{}
	events := &fakeEvents{}

	svc := &service.PaymentService{Facilitator: gw, Receipts: repo, Cache: cache, Events: events}

	result, err := svc.Process(context.Background(), testRoute(), "proof-b64", "req-b64", "0xpayer")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.TxHash != "0xdead" {
		t.Errorf("txHash = %q, want 0xdead", result.TxHash)
	}

	if len(repo.receipts) != 1 {
		t.Fatalf("receipts persisted = %d, want 1", len(repo.receipts))
	}
	receipt := repo.receipts[0]
	if receipt.Route != "/shard/level/1" || receipt.Payer != "0xpayer" || receipt.Amount != "100" || receipt.TxHash != "0xdead" {
		t.Errorf("receipt = %+v, want route/payer/amount/tx recorded", receipt)
	}

	if len(events.events) != 1 {
		t.Errorf("events published = %d, want 1", len(events.events))
	}
	if cache.puts != 1 {
		t.Errorf("cache writes = %d, want 1", cache.puts)
	}
	if len(cache.locked) != 0 {
		t.Error("settlement lock not released")
	}
}

func TestProcessIdempotentResubmission(t *testing.T) {
	gw := &fakeGateway{result: &x402.SettlementResult{Success: true, TxHash: "0xdead"}}
	cache := newFakeCache()
	svc := &service.PaymentService{Facilitator: gw, Cache: cache}

	if _, err := svc.Process(context.Background(), testRoute(), "proof-b64", "req-b64", "0xpayer"); err != nil {
		t.Fatalf("first submission failed: %v", err)
	}

	result, err := svc.Process(context.Background(), testRoute(), "proof-b64", "req-b64", "0xpayer")
	if err != nil {
		t.Fatalf("resubmission failed: %v", err)
	}
	if result.TxHash != "0xdead" {
		t.Errorf("resubmission txHash = %q, want recorded 0xdead", result.TxHash)
	}
	if gw.calls != 1 {
		t.Errorf("facilitator calls = %d, want 1 (resubmission must not settle twice)", gw.calls)
	}
}

func TestProcessConcurrentDuplicate(t *testing.T) {
	gw := &fakeGateway{result: &x402.SettlementResult{Success: true, TxHash: "0x1"}}
	cache := newFakeCache()
	cache.denyLock = true
	svc := &service.PaymentService{Facilitator: gw, Cache: cache}

	_, err := svc.Process(context.Background(), testRoute(), "proof-b64", "req-b64", "0xpayer")
	if !errors.Is(err, service.ErrAlreadyProcessing) {
		t.Fatalf("error = %v, want ErrAlreadyProcessing", err)
	}
	if gw.calls != 0 {
		t.Errorf("facilitator calls = %d, want 0 while another submission holds the lock", gw.calls)
	}
}

func TestProcessFailureNotRecorded(t *testing.T) {
	gw := &fakeGateway{err: x402.ErrVerificationFailed}
	cache := newFakeCache()
	repo := &fakeRepo{}
	svc := &service.PaymentService{Facilitator: gw, Receipts: repo, Cache: cache}

	_, err := svc.Process(context.Background(), testRoute(), "proof-b64", "req-b64", "0xpayer")
	if !errors.Is(err, x402.ErrVerificationFailed) {
		t.Fatalf("error = %v, want ErrVerificationFailed", err)
	}
	if len(repo.receipts) != 0 {
		t.Error("failed payment must not persist a receipt")
	}
	if cache.puts != 0 {
		t.Error("failed payment must not be cached as settled")
	}
}

func TestProcessWithoutCollaborators(t *testing.T) {
	gw := &fakeGateway{result: &x402.SettlementResult{Success: true, TxHash: "0x1"}}
	svc := &service.PaymentService{Facilitator: gw}

	result, err := svc.Process(context.Background(), testRoute(), "proof-b64", "req-b64", "0xpayer")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success {
		t.Error("expected success with nil persistence collaborators")
	}
}
