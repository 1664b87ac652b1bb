package gate

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sentience-labs/x402-gateway/internal/interfaces"
	"github.com/sentience-labs/x402-gateway/internal/telemetry"
)

// Ownership requires the caller's owned-shard set to cover the route's
// required set.
type Ownership struct {
	Ledger         interfaces.ShardLedger
	RequiredShards []int
}

func (o *Ownership) Name() string { return "ownership" }

func (o *Ownership) Check(c *gin.Context, gc *Context) *Rejection {
	address := gc.PayerIdentity
	if address == "" {
		address = c.GetHeader(HeaderAgentAddress)
	}
	if address == "" {
		return &Rejection{
			Status: http.StatusBadRequest,
			Payload: gin.H{
				"error": "Missing X-Agent-Address header",
			},
		}
	}

	owned, err := o.Ledger.OwnedShards(c.Request.Context(), address)
	if err != nil {
		telemetry.Logger.Error("shard ownership lookup failed",
			zap.String("agent", address),
			zap.Error(err),
		)
		return &Rejection{
			Status: http.StatusBadGateway,
			Payload: gin.H{
				"error":   "Ownership Unavailable",
				"message": "Shard ownership could not be resolved. Retry shortly.",
			},
		}
	}

	ownedSet := make(map[int]bool, len(owned))
	for _, id := range owned {
		ownedSet[id] = true
	}

	var missing []int
	for _, id := range o.RequiredShards {
		if !ownedSet[id] {
			missing = append(missing, id)
		}
	}

	if len(missing) > 0 {
		return &Rejection{
			Status: http.StatusForbidden,
			Payload: gin.H{
				"error":    "Missing required shards",
				"required": o.RequiredShards,
				"owned":    owned,
				"missing":  missing,
				"message":  fmt.Sprintf("You need shard %d to proceed", missing[0]),
			},
		}
	}

	return nil
}
