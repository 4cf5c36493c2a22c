package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	analyticsapp "github.com/chaintrack/shipment-tracking-api/internal/domains/analytics/application"
	shipapp "github.com/chaintrack/shipment-tracking-api/internal/domains/shipments/application"
	shipports "github.com/chaintrack/shipment-tracking-api/internal/domains/shipments/ports"
	apierrors "github.com/chaintrack/shipment-tracking-api/internal/shared/errors"
)

// respondProblem maps a ProblemDetail through the shared responder.
func respondProblem(c *gin.Context, problem apierrors.ProblemDetail) {
	apierrors.Respond(c, problem)
}

// respondError preserves the existing call sites while returning RFC 7807 responses.
func respondError(c *gin.Context, status int, err error) {
	if err == nil {
		return
	}
	var problem apierrors.ProblemDetail
	switch status {
	case http.StatusBadRequest:
		problem = apierrors.ErrBadRequest.WithDetail(err.Error())
	case http.StatusNotFound:
		problem = apierrors.ErrNotFound.WithDetail(err.Error())
	case http.StatusForbidden:
		problem = apierrors.ErrForbidden.WithDetail(err.Error())
	case http.StatusConflict:
		problem = apierrors.ErrConflict.WithDetail(err.Error())
	case http.StatusServiceUnavailable:
		problem = apierrors.ErrUnavailable.WithDetail(err.Error())
	default:
		problem = apierrors.ErrInternal.WithDetail(err.Error())
	}
	respondProblem(c, problem)
}

// respondShipmentServiceError translates shipments application errors into
// problem responses.
func respondShipmentServiceError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, shipports.ErrNotFound):
		respondError(c, http.StatusNotFound, err)
	case errors.Is(err, shipapp.ErrInvalidInput):
		respondProblem(c, apierrors.ErrValidation.WithDetail(err.Error()))
	case errors.Is(err, shipapp.ErrInvalidState):
		respondError(c, http.StatusConflict, err)
	case errors.Is(err, shipapp.ErrTransient):
		respondError(c, http.StatusServiceUnavailable, err)
	default:
		respondError(c, http.StatusInternalServerError, err)
	}
}

// respondAnalyticsServiceError translates analytics application errors into
// problem responses.
func respondAnalyticsServiceError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, shipports.ErrNotFound):
		respondError(c, http.StatusNotFound, err)
	case errors.Is(err, analyticsapp.ErrUnavailable):
		respondError(c, http.StatusServiceUnavailable, err)
	default:
		respondError(c, http.StatusInternalServerError, err)
	}
}
