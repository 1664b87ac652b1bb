package gate

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HeaderAgentAddress carries the caller's agent identity.
const HeaderAgentAddress = "X-Agent-Address"

// Identity requires the caller-identity header and records it in the gate
// context for the gates and handlers behind it.
type Identity struct{}

func (Identity) Name() string { return "identity" }

func (Identity) Check(c *gin.Context, gc *Context) *Rejection {
	address := c.GetHeader(HeaderAgentAddress)
	if address == "" {
		return &Rejection{
			Status: http.StatusBadRequest,
			Payload: gin.H{
				"error":   "Missing X-Agent-Address header",
				"message": "You must provide your agent address to access identity-gated endpoints",
			},
		}
	}

	gc.PayerIdentity = address
	return nil
}
