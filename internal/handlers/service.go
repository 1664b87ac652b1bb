package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sentience-labs/x402-gateway/internal/gate"
)

// ServiceData serves the basic paid dataset.
func ServiceData() gin.HandlerFunc {
	return func(c *gin.Context) {
		gc := gate.FromContext(c)

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data": gin.H{
				"agents":            42,
				"totalTransactions": 1337,
				"averageTrustScore": 0.85,
			},
			"payment": receiptBody(gc),
		})
	}
}
