package gate

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// HeaderMagicSpell carries the caller's secret phrase.
const HeaderMagicSpell = "X-Magic-Spell"

// Spell requires a secret phrase header matching the configured value,
// compared case-insensitively. Rejections never reveal the expected value.
type Spell struct {
	Secret string
}

func (s *Spell) Name() string { return "spell" }

func (s *Spell) Check(c *gin.Context, _ *Context) *Rejection {
	provided := c.GetHeader(HeaderMagicSpell)

	if provided == "" {
		return &Rejection{
			Status: http.StatusForbidden,
			Payload: gin.H{
				"error": "Magic Spell Required",
				"hint":  "Seek the spell in the reputation module",
			},
		}
	}

	if !strings.EqualFold(provided, s.Secret) {
		return &Rejection{
			Status: http.StatusForbidden,
			Payload: gin.H{
				"error":   "Invalid Magic Spell",
				"message": "The Oracle does not recognize this incantation",
			},
		}
	}

	return nil
}
