package gate

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sentience-labs/x402-gateway/internal/registry"
	"github.com/sentience-labs/x402-gateway/internal/service"
	"github.com/sentience-labs/x402-gateway/internal/telemetry"
	"github.com/sentience-labs/x402-gateway/internal/x402"
)

// Proof header names; X-Payment takes precedence.
const (
	HeaderPayment          = "X-Payment"
	HeaderPaymentSignature = "Payment-Signature"
	HeaderPaymentRequired  = "X-Payment-Required"
	HeaderPaymentResponse  = "X-Payment-Response"

	// Legacy aliases without the X- prefix, set alongside the canonical ones.
	HeaderPaymentRequiredAlt = "Payment-Required"
	HeaderPaymentResponseAlt = "Payment-Response"
)

// Payment gates a route on a settled x402 payment. Without a proof header it
// answers 402 with the challenge; with one it runs the verify+settle
// handshake and records the settlement in the gate context.
type Payment struct {
	Params   x402.RequirementParams
	Route    registry.Route
	Payments *service.PaymentService
}

func (p *Payment) Name() string { return "payment" }

func (p *Payment) Check(c *gin.Context, gc *Context) *Rejection {
	requirement := x402.NewRequirement(p.Params, p.Route.Path, p.Route.Price, p.Route.Description)
	encoded := requirement.Encode()

	proofHeader := c.GetHeader(HeaderPayment)
	if proofHeader == "" {
		proofHeader = c.GetHeader(HeaderPaymentSignature)
	}

	if proofHeader == "" {
		telemetry.ChallengesIssued.Inc()
		c.Header(HeaderPaymentRequired, encoded)
		c.Header(HeaderPaymentRequiredAlt, encoded)
		return &Rejection{
			Status: http.StatusPaymentRequired,
			Payload: gin.H{
				"error":           "Payment Required",
				"message":         p.Route.Description,
				"price":           p.Route.Price,
				"network":         p.Params.Network,
				"paymentRequired": encoded,
			},
		}
	}

	proof, err := x402.DecodeProof(proofHeader)
	if err != nil {
		return &Rejection{
			Status: http.StatusPaymentRequired,
			Payload: gin.H{
				"error":   "Payment Failed",
				"message": err.Error(),
			},
		}
	}
	if proof.Sender != "" {
		gc.PayerIdentity = proof.Sender
	}

	result, err := p.Payments.Process(c.Request.Context(), p.Route, proofHeader, encoded, proof.Sender)
	if err != nil {
		return paymentRejection(err)
	}

	gc.Settlement = result
	receipt := x402.EncodeReceipt(result.TxHash)
	c.Header(HeaderPaymentResponse, receipt)
	c.Header(HeaderPaymentResponseAlt, receipt)

	telemetry.Logger.Info("access granted",
		zap.String("route", p.Route.Path),
		zap.String("payer", proof.Sender),
		zap.String("tx_hash", result.TxHash),
	)
	return nil
}

// paymentRejection maps pipeline errors onto the HTTP surface. An explicit
// facilitator rejection stays a 402 the client can fix by resubmitting; an
// unreachable facilitator is the gateway's problem and safe to retry as-is.
func paymentRejection(err error) *Rejection {
	switch {
	case errors.Is(err, x402.ErrFacilitatorUnreachable):
		return &Rejection{
			Status: http.StatusBadGateway,
			Payload: gin.H{
				"error":   "Facilitator Unreachable",
				"message": "Payment could not be processed. Retry shortly.",
			},
		}
	case errors.Is(err, service.ErrAlreadyProcessing):
		return &Rejection{
			Status: http.StatusConflict,
			Payload: gin.H{
				"error":   "Payment In Progress",
				"message": err.Error(),
			},
		}
	default:
		// Verification or settlement rejected the proof.
		return &Rejection{
			Status: http.StatusPaymentRequired,
			Payload: gin.H{
				"error":   "Payment Failed",
				"message": err.Error(),
			},
		}
	}
}
