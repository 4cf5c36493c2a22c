package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	analyticsdomain "github.com/chaintrack/shipment-tracking-api/internal/domains/analytics/domain"
	analyticsports "github.com/chaintrack/shipment-tracking-api/internal/domains/analytics/ports"
	shipmapper "github.com/chaintrack/shipment-tracking-api/internal/domains/shipments/adapters/http/mapper"
)

// AnalyticsAPI wires HTTP transport with the analytics bounded context
// service.
type AnalyticsAPI struct {
	service analyticsports.Service
}

// NewAnalyticsAPI creates an AnalyticsAPI backed by the provided service.
func NewAnalyticsAPI(service analyticsports.Service) AnalyticsAPI {
	return AnalyticsAPI{service: service}
}

// Anomaly is the HTTP representation of a detected sensor anomaly.
type Anomaly struct {
	Type           string `json:"type"`
	Severity       string `json:"severity"`
	Message        string `json:"message"`
	Recommendation string `json:"recommendation,omitempty"`
}

// Performance is the HTTP representation of a party's delivery aggregate.
type Performance struct {
	AverageOverrunHours float64 `json:"averageOverrunHours"`
	SuccessRate         float64 `json:"successRate"`
	SampleSize          int     `json:"sampleSize"`
}

// Get /v1/shipments/:shipmentId/prediction
// Predict the delay of a shipment
func (api *AnalyticsAPI) PredictDelay(c *gin.Context) {
	id, ok := shipmentIDParam(c)
	if !ok {
		return
	}
	prediction, err := api.service.PredictDelay(c.Request.Context(), id)
	if err != nil {
		respondAnalyticsServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, shipmapper.FromPredictionValue(prediction))
}

// Get /v1/shipments/:shipmentId/anomalies
// Detect environmental anomalies on the latest checkpoint
func (api *AnalyticsAPI) DetectAnomalies(c *gin.Context) {
	id, ok := shipmentIDParam(c)
	if !ok {
		return
	}
	anomalies, err := api.service.DetectAnomalies(c.Request.Context(), id)
	if err != nil {
		respondAnalyticsServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, fromAnomalies(anomalies))
}

// Get /v1/shipments/:shipmentId/risk
// Compute the composite risk score of a shipment
func (api *AnalyticsAPI) RiskScore(c *gin.Context) {
	id, ok := shipmentIDParam(c)
	if !ok {
		return
	}
	risk, err := api.service.RiskScore(c.Request.Context(), id)
	if err != nil {
		respondAnalyticsServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, shipmapper.FromRiskScoreValue(risk))
}

// Get /v1/parties/:partyId/performance
// Aggregate historical delivery performance of a party
func (api *AnalyticsAPI) PartyPerformance(c *gin.Context) {
	partyID := strings.TrimSpace(c.Param("partyId"))
	if partyID == "" {
		respondError(c, http.StatusBadRequest, errors.New("partyId path parameter is required"))
		return
	}
	perf, err := api.service.PerformanceOf(c.Request.Context(), partyID)
	if err != nil {
		respondAnalyticsServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, Performance(perf))
}

func fromAnomalies(anomalies []analyticsdomain.Anomaly) []Anomaly {
	result := make([]Anomaly, 0, len(anomalies))
	for _, a := range anomalies {
		result = append(result, Anomaly{
			Type:           a.Type,
			Severity:       string(a.Severity),
			Message:        a.Message,
			Recommendation: a.Recommendation,
		})
	}
	return result
}
