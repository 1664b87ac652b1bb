// Package gate implements the ordered gating pipeline that runs before a
// protected handler. Each gate is an independent predicate over the request
// and the per-request Context; routes declare which gates they need and one
// engine evaluates them, failing fast on the first rejection.
package gate

import (
	"github.com/gin-gonic/gin"

	"github.com/sentience-labs/x402-gateway/internal/telemetry"
	"github.com/sentience-labs/x402-gateway/internal/x402"
)

// Context is the mutable per-request state accumulated by the chain. It is
// owned by the request's goroutine and discarded with the response.
type Context struct {
	PayerIdentity string
	TrustScore    int64
	TrustRank     int
	Settlement    *x402.SettlementResult
}

// Rejection is a terminal gate failure: the status and structured body to
// send. Later gates never run once a gate rejects.
type Rejection struct {
	Status  int
	Payload gin.H
}

// Gate is a single named check in the pipeline.
type Gate interface {
	Name() string

	// Check returns nil to pass (optionally mutating gc) or a Rejection
	// that terminates the request.
	Check(c *gin.Context, gc *Context) *Rejection
}

const contextKey = "x402.gateContext"

// Chain composes gates into one gin middleware. Gates run in declaration
// order and the chain short-circuits on the first rejection.
func Chain(gates ...Gate) gin.HandlerFunc {
	return func(c *gin.Context) {
		gc := &Context{}
		c.Set(contextKey, gc)

		for _, g := range gates {
			rejection := g.Check(c, gc)
			if rejection == nil {
				continue
			}
			telemetry.GateRejections.WithLabelValues(g.Name()).Inc()
			c.AbortWithStatusJSON(rejection.Status, rejection.Payload)
			return
		}

		c.Next()
	}
}

// FromContext returns the gate context populated by the chain, or an empty
// one for routes without gates.
func FromContext(c *gin.Context) *Context {
	if v, ok := c.Get(contextKey); ok {
		if gc, ok := v.(*Context); ok {
			return gc
		}
	}
	return &Context{}
}
