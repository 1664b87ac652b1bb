// Package facilitator implements the HTTP client for the external payment
// facilitator: a two-step verify-then-settle handshake over its REST API.
package facilitator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/sentience-labs/x402-gateway/internal/telemetry"
	"github.com/sentience-labs/x402-gateway/internal/x402"
)

// Client talks to a facilitator service. Both calls carry the request
// context so a client disconnect cancels in-flight facilitator work, plus a
// bounded per-call timeout so a stalled facilitator cannot pin a request.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	callTimeout time.Duration
}

const defaultCallTimeout = 5 * time.Second

func NewClient(baseURL string, callTimeout time.Duration) *Client {
	if callTimeout <= 0 {
		callTimeout = defaultCallTimeout
	}
	return &Client{
		baseURL:     baseURL,
		httpClient:  &http.Client{},
		callTimeout: callTimeout,
	}
}

// handshakeRequest is the body of both /verify and /settle. The proof and
// requirement stay in their base64 transport form end to end.
type handshakeRequest struct {
	PaymentPayload      string `json:"paymentPayload"`
	PaymentRequirements string `json:"paymentRequirements"`
}

// settleResponse covers both field names facilitators use for the
// transaction reference.
type settleResponse struct {
	TxHash string `json:"txHash"`
	Hash   string `json:"hash"`
}

// VerifyAndSettle runs the two-step handshake. Settlement is never attempted
// when verification fails, so an invalid proof can not be charged.
//
// Error classes, distinguished with errors.Is:
//   - x402.ErrVerificationFailed: facilitator rejected the proof at /verify
//   - x402.ErrSettlementFailed: proof verified but /settle failed
//   - x402.ErrFacilitatorUnreachable: transport, timeout, or decode failure
func (c *Client) VerifyAndSettle(ctx context.Context, proof, requirement string) (*x402.SettlementResult, error) {
	body, err := json.Marshal(handshakeRequest{
		PaymentPayload:      proof,
		PaymentRequirements: requirement,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal handshake request: %w", err)
	}

	status, respBody, err := c.post(ctx, "/verify", body)
	if err != nil {
		telemetry.Settlements.WithLabelValues(telemetry.OutcomeUnreachable).Inc()
		return nil, err
	}
	if status < 200 || status > 299 {
		telemetry.Settlements.WithLabelValues(telemetry.OutcomeVerificationFailed).Inc()
		return nil, fmt.Errorf("%w: %s", x402.ErrVerificationFailed, errDetail(status, respBody))
	}

	status, respBody, err = c.post(ctx, "/settle", body)
	if err != nil {
		telemetry.Settlements.WithLabelValues(telemetry.OutcomeUnreachable).Inc()
		return nil, err
	}
	if status < 200 || status > 299 {
		telemetry.Settlements.WithLabelValues(telemetry.OutcomeSettlementFailed).Inc()
		return nil, fmt.Errorf("%w: %s", x402.ErrSettlementFailed, errDetail(status, respBody))
	}

	var settled settleResponse
	if err := json.Unmarshal(respBody, &settled); err != nil {
		telemetry.Settlements.WithLabelValues(telemetry.OutcomeUnreachable).Inc()
		return nil, fmt.Errorf("%w: malformed settle response", x402.ErrFacilitatorUnreachable)
	}

	tx := settled.TxHash
	if tx == "" {
		tx = settled.Hash
	}
	if tx == "" {
		// The facilitator settled without returning a reference.
		tx = x402.TxRefCompleted
		telemetry.Logger.Warn("settlement succeeded without transaction reference")
	}

	telemetry.Settlements.WithLabelValues(telemetry.OutcomeSettled).Inc()
	telemetry.Logger.Info("payment settled", zap.String("tx_hash", tx))
	return &x402.SettlementResult{Success: true, TxHash: tx}, nil
}

func (c *Client) post(ctx context.Context, path string, body []byte) (int, []byte, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", x402.ErrFacilitatorUnreachable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", x402.ErrFacilitatorUnreachable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", x402.ErrFacilitatorUnreachable, err)
	}
	return resp.StatusCode, respBody, nil
}

func errDetail(status int, body []byte) string {
	if len(body) > 0 && len(body) < 500 {
		return fmt.Sprintf("status %d: %s", status, string(body))
	}
	return fmt.Sprintf("status %d", status)
}
