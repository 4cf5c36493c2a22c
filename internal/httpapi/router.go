// Package httpapi exposes the shipment tracking REST surface over gin.
package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	shipports "github.com/chaintrack/shipment-tracking-api/internal/domains/shipments/ports"
)

// ApiHandleFunctions groups the per-context API handlers mounted by NewRouter.
type ApiHandleFunctions struct {
	ShipmentAPI  ShipmentAPI
	AnalyticsAPI AnalyticsAPI
}

// RouterOption customizes the assembled router.
type RouterOption func(*routerConfig)

type routerConfig struct {
	middleware   []gin.HandlerFunc
	roleResolver shipports.RoleResolver
}

// WithMiddleware appends engine-level middleware, e.g. otelgin.
func WithMiddleware(handlers ...gin.HandlerFunc) RouterOption {
	return func(cfg *routerConfig) {
		cfg.middleware = append(cfg.middleware, handlers...)
	}
}

// WithRoleResolver resolves caller identities to roles instead of trusting
// the role header.
func WithRoleResolver(resolver shipports.RoleResolver) RouterOption {
	return func(cfg *routerConfig) {
		cfg.roleResolver = resolver
	}
}

// NewRouter mounts all routes with role guards and returns a gin engine.
func NewRouter(handlers ApiHandleFunctions, opts ...RouterOption) *gin.Engine {
	var cfg routerConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	router := gin.Default()
	router.Use(cfg.middleware...)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	anyRole := RequireRole(cfg.roleResolver, shipports.RoleViewer, shipports.RoleOperator, shipports.RoleAdmin)
	mutatorRole := RequireRole(cfg.roleResolver, shipports.RoleOperator, shipports.RoleAdmin)

	v1 := router.Group("/v1")

	reads := v1.Group("", anyRole)
	reads.GET("/shipments", handlers.ShipmentAPI.ListActiveShipments)
	reads.GET("/shipments/:shipmentId", handlers.ShipmentAPI.GetShipmentById)
	reads.GET("/shipments/:shipmentId/prediction", handlers.AnalyticsAPI.PredictDelay)
	reads.GET("/shipments/:shipmentId/anomalies", handlers.AnalyticsAPI.DetectAnomalies)
	reads.GET("/shipments/:shipmentId/risk", handlers.AnalyticsAPI.RiskScore)
	reads.GET("/parties/:partyId/performance", handlers.AnalyticsAPI.PartyPerformance)

	mutations := v1.Group("", mutatorRole)
	mutations.POST("/shipments", handlers.ShipmentAPI.CreateShipment)
	mutations.POST("/shipments/:shipmentId/checkpoints", handlers.ShipmentAPI.AppendCheckpoint)
	mutations.POST("/shipments/:shipmentId/deliver", handlers.ShipmentAPI.MarkDelivered)
	mutations.POST("/shipments/:shipmentId/cancel", handlers.ShipmentAPI.CancelShipment)
	mutations.POST("/shipments/:shipmentId/alerts/:alertId/resolve", handlers.ShipmentAPI.ResolveAlert)
	mutations.POST("/shipments/:shipmentId/evaluate-delay", handlers.ShipmentAPI.EvaluateDelay)

	return router
}
