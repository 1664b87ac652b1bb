package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sentience-labs/x402-gateway/internal/config"
	"github.com/sentience-labs/x402-gateway/internal/gate"
	"github.com/sentience-labs/x402-gateway/internal/handlers"
	"github.com/sentience-labs/x402-gateway/internal/interfaces"
	"github.com/sentience-labs/x402-gateway/internal/registry"
	"github.com/sentience-labs/x402-gateway/internal/service"
	"github.com/sentience-labs/x402-gateway/internal/telemetry"
	"github.com/sentience-labs/x402-gateway/internal/x402"
)

// Deps are the collaborators the router wires into gates and handlers.
type Deps struct {
	Cfg        *config.Config
	Payments   *service.PaymentService
	Reputation interfaces.ReputationProvider
	Shards     interfaces.ShardLedger
	Receipts   interfaces.ReceiptRepository
}

// NewRouter builds the gin engine: free endpoints, the gated routes from the
// pricing table with their gate chains, and the JSON 404/500 handlers.
func NewRouter(d Deps) *gin.Engine {
	if !d.Cfg.DevMode {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(recovery(d.Cfg.DevMode))
	r.Use(telemetry.TracingMiddleware())

	// Free endpoints
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/health", handlers.Health(d.Cfg))
	r.GET("/meta", handlers.Meta(d.Cfg))
	r.GET("/shard/progress", handlers.Progress(d.Receipts))

	// Gated endpoints from the pricing table
	routes := registry.Routes(d.Cfg)
	handlerFor := map[string]gin.HandlerFunc{
		"/service/data":  handlers.ServiceData(),
		"/shard/level/1": handlers.ShardLevel(1),
		"/shard/level/2": handlers.ShardLevel(2),
		"/shard/level/3": handlers.ShardLevel(3),
		"/shard/level/4": handlers.ShardLevel(4),
		"/shard/level/5": handlers.ShardLevel(5),
	}
	for _, route := range routes {
		handler, ok := handlerFor[route.Path]
		if !ok {
			panic(fmt.Sprintf("no handler registered for priced route %s", route.Path))
		}
		r.GET(route.Path, gate.Chain(buildGates(d, route)...), handler)
	}

	r.NoRoute(notFound(routes))

	return r
}

// buildGates instantiates a route's declarative gate list.
func buildGates(d Deps, route registry.Route) []gate.Gate {
	params := x402.RequirementParams{
		Network:     d.Cfg.Network,
		Asset:       d.Cfg.Asset,
		Payee:       d.Cfg.PaymentRecipient,
		ServiceName: d.Cfg.ServiceName,
		Sponsored:   d.Cfg.SponsoredGas,
	}

	gates := make([]gate.Gate, 0, len(route.Gates))
	for _, spec := range route.Gates {
		switch spec.Kind {
		case registry.GatePayment:
			gates = append(gates, &gate.Payment{
				Params:   params,
				Route:    route,
				Payments: d.Payments,
			})
		case registry.GateIdentity:
			gates = append(gates, gate.Identity{})
		case registry.GateTrust:
			gates = append(gates, &gate.Trust{
				Provider: d.Reputation,
				MinScore: spec.MinScore,
			})
		case registry.GateSpell:
			gates = append(gates, &gate.Spell{Secret: d.Cfg.MagicSpell})
		case registry.GateOwnership:
			gates = append(gates, &gate.Ownership{
				Ledger:         d.Shards,
				RequiredShards: spec.RequiredShards,
			})
		default:
			panic(fmt.Sprintf("unknown gate kind %q on route %s", spec.Kind, route.Path))
		}
	}
	return gates
}

func notFound(routes []registry.Route) gin.HandlerFunc {
	available := []string{"/health", "/meta", "/shard/progress"}
	for _, route := range routes {
		available = append(available, route.Path)
	}

	return func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":               "Not Found",
			"message":             fmt.Sprintf("No route for %s %s", c.Request.Method, c.Request.URL.Path),
			"available_endpoints": available,
		})
	}
}

// recovery converts handler panics into a JSON 500, hiding the detail
// outside development mode.
func recovery(devMode bool) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		telemetry.Logger.Error("handler panic",
			zap.String("path", c.Request.URL.Path),
			zap.Any("panic", recovered),
		)

		message := "An unexpected error occurred"
		if devMode {
			message = fmt.Sprintf("%v", recovered)
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal Server Error",
			"message": message,
		})
	})
}
