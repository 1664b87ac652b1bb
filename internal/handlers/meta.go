package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sentience-labs/x402-gateway/internal/config"
	"github.com/sentience-labs/x402-gateway/internal/gate"
	"github.com/sentience-labs/x402-gateway/internal/interfaces"
	"github.com/sentience-labs/x402-gateway/internal/telemetry"
)

// Health is the unauthenticated liveness probe.
func Health(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": cfg.ServiceName})
	}
}

// Meta returns protocol and network metadata for discovery.
func Meta(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"name":         cfg.ServiceName,
			"description":  "Autonomous Identity & Reputation Protocol for AI Agents",
			"version":      "1.0.0",
			"network":      cfg.Network,
			"capabilities": []string{"identity", "reputation", "x402-payments", "easter-eggs"},
			"paymentAsset": cfg.Asset,
			"payee":        cfg.PaymentRecipient,
		})
	}
}

// Progress reports which shards the calling agent has collected, derived
// from the persisted payment receipts. With no repository wired the agent
// simply has no recorded progress.
func Progress(receipts interfaces.ReceiptRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		agent := c.GetHeader(gate.HeaderAgentAddress)
		if agent == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Missing X-Agent-Address header",
			})
			return
		}

		collected := []int{}
		if receipts != nil {
			routes, err := receipts.ListRoutesByPayer(c.Request.Context(), agent)
			if err != nil {
				telemetry.Logger.Error("progress lookup failed",
					zap.String("agent", agent),
					zap.Error(err),
				)
				c.JSON(http.StatusInternalServerError, gin.H{
					"error":   "Internal Server Error",
					"message": "Failed to fetch progress",
				})
				return
			}
			collected = shardLevels(routes)
		}

		c.JSON(http.StatusOK, gin.H{
			"agent":            agent,
			"shards_collected": collected,
			"total_shards":     TotalShards,
			"complete":         len(collected) == TotalShards,
		})
	}
}

// shardLevels extracts shard level numbers from paid route paths.
func shardLevels(routes []string) []int {
	levels := []int{}
	for _, route := range routes {
		rest, ok := strings.CutPrefix(route, "/shard/level/")
		if !ok {
			continue
		}
		level, err := strconv.Atoi(rest)
		if err != nil || level < 1 || level > TotalShards {
			continue
		}
		levels = append(levels, level)
	}
	return levels
}
