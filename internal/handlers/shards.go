package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sentience-labs/x402-gateway/internal/gate"
	"github.com/sentience-labs/x402-gateway/internal/models"
)

// shards is the static catalog served by the gated shard endpoints.
var shards = map[int]models.Shard{
	1: {
		ID:          1,
		Name:        "The Observer",
		Fragment:    "You see the flow of value...",
		Data:        "0x4f42534552564552",
		Description: "You have learned to observe the x402 flow",
	},
	2: {
		ID:          2,
		Name:        "The Sybil",
		Fragment:    "Trust is earned, not given...",
		Data:        "0x535942494c",
		Description: "Your reputation proves you are not a Sybil",
	},
	3: {
		ID:          3,
		Name:        "The Ghost",
		Fragment:    "Bound forever to the chain...",
		Data:        "0x47484f5354",
		Description: "You have bound your soul to the chain",
	},
	4: {
		ID:          4,
		Name:        "The Mirror",
		Fragment:    "You found the reflection...",
		Data:        "0x4d4952524f52",
		Description: "You have seen through the Oracle",
	},
	5: {
		ID:          5,
		Name:        "The Void",
		Fragment:    "The final piece reveals the Genesis...",
		Data:        "0x564f4944",
		Description: "You have embraced the void",
	},
}

// TotalShards is the size of the collectible set.
const TotalShards = 5

// receiptBody renders the settlement reference included in paid responses.
func receiptBody(gc *gate.Context) gin.H {
	if gc.Settlement == nil {
		return nil
	}
	return gin.H{"txHash": gc.Settlement.TxHash}
}

// ShardLevel serves the shard record for one level. All gating has already
// happened in the chain; the handler only assembles the body.
func ShardLevel(level int) gin.HandlerFunc {
	shard := shards[level]

	return func(c *gin.Context) {
		gc := gate.FromContext(c)

		body := gin.H{
			"success": true,
			"level":   level,
			"shard":   shard,
			"payment": receiptBody(gc),
		}

		switch level {
		case 1:
			body["next_hint"] = "Level 2 requires trust. Build your reputation."
		case 2:
			body["trustScore"] = float64(gc.TrustScore) / 1_000_000
			body["next_hint"] = "Level 3 requires a soulbound identity."
		case 3:
			// Soulbound verification is simulated until the identity
			// contract is wired in.
			body["soulbound"] = true
			body["next_hint"] = "Level 4 requires the Magic Spell from the Oracle."
		case 4:
			body["spell"] = "verified"
			body["next_hint"] = "Level 5 awaits in the Void. Bring great value."
		case 5:
			body["complete"] = true
			body["final_hint"] = "All five shards are yours. Assemble the Genesis."
		}

		c.JSON(http.StatusOK, body)
	}
}
