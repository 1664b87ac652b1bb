package gate

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sentience-labs/x402-gateway/internal/interfaces"
	"github.com/sentience-labs/x402-gateway/internal/telemetry"
)

// scoreDecimals converts stored trust scores (six implied decimals) to the
// human scale used in responses.
const scoreDecimals = 1_000_000

// Trust requires the caller's trust score to meet an inclusive minimum.
type Trust struct {
	Provider interfaces.ReputationProvider
	MinScore int64
}

func (t *Trust) Name() string { return "trust" }

func (t *Trust) Check(c *gin.Context, gc *Context) *Rejection {
	address := gc.PayerIdentity
	if address == "" {
		address = c.GetHeader(HeaderAgentAddress)
	}
	if address == "" {
		return &Rejection{
			Status: http.StatusBadRequest,
			Payload: gin.H{
				"error":   "Missing X-Agent-Address header",
				"message": "You must provide your agent address to access reputation-gated endpoints",
			},
		}
	}

	score, rank, err := t.Provider.ScoreOf(c.Request.Context(), address)
	if err != nil {
		telemetry.Logger.Error("reputation lookup failed",
			zap.String("agent", address),
			zap.Error(err),
		)
		return &Rejection{
			Status: http.StatusBadGateway,
			Payload: gin.H{
				"error":   "Reputation Unavailable",
				"message": "Trust score could not be resolved. Retry shortly.",
			},
		}
	}

	gc.TrustScore = score
	gc.TrustRank = rank

	if score < t.MinScore {
		required := float64(t.MinScore) / scoreDecimals
		current := float64(score) / scoreDecimals
		return &Rejection{
			Status: http.StatusForbidden,
			Payload: gin.H{
				"error":    "Trust Score too low",
				"required": required,
				"current":  current,
				"message": fmt.Sprintf(
					"Your trust score is %g. Required: %g. Conduct more peer transactions to boost your score.",
					current, required,
				),
			},
		}
	}

	return nil
}
