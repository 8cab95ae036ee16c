package pricing

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"buslink/internal/shared/utils/response"
)

type Controller interface {
	EstimatePrice(c *gin.Context)
	BulkEstimate(c *gin.Context)
	GetRoutes(c *gin.Context)
	GetRoute(c *gin.Context)
	CreateRoute(c *gin.Context)
	UpdateRoutePricing(c *gin.Context)
	DeactivateRoute(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

// parseJourneyTime accepts either a full RFC3339 timestamp or a bare
// date, which quotes the fare at midnight (off-peak, date modifiers only).
func parseJourneyTime(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02", raw, time.Local)
}

func (ctrl *controller) EstimatePrice(c *gin.Context) {
	var req EstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	journey, err := parseJourneyTime(req.JourneyDate)
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid journey date", nil, err.Error())
		return
	}

	seatCount := req.SeatCount
	if seatCount == 0 {
		seatCount = 1
	}

	result, err := ctrl.service.EstimatePrice(c.Request.Context(), EstimateParams{
		Origin:      req.Origin,
		Destination: req.Destination,
		BusType:     req.BusType,
		Journey:     journey,
		SeatCount:   seatCount,
	})
	if err != nil {
		statusCode := http.StatusInternalServerError
		if errors.Is(err, ErrRouteNotFound) {
			statusCode = http.StatusNotFound
		}
		response.RespondJSON(c, "error", statusCode, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Price estimated successfully", result, nil)
}

func (ctrl *controller) BulkEstimate(c *gin.Context) {
	var req BulkEstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	// Each item succeeds or fails on its own; a malformed date only
	// poisons its own slot.
	items := make([]BulkEstimateItem, len(req.Requests))
	params := make([]EstimateParams, 0, len(req.Requests))
	indices := make([]int, 0, len(req.Requests))

	for i, r := range req.Requests {
		items[i] = BulkEstimateItem{
			Origin:      r.Origin,
			Destination: r.Destination,
			BusType:     r.BusType,
			SeatCount:   r.SeatCount,
		}

		journey, err := parseJourneyTime(r.JourneyDate)
		if err != nil {
			items[i].Error = "invalid journey date: " + r.JourneyDate
			continue
		}
		seatCount := r.SeatCount
		if seatCount == 0 {
			seatCount = 1
		}
		params = append(params, EstimateParams{
			Origin:      r.Origin,
			Destination: r.Destination,
			BusType:     r.BusType,
			Journey:     journey,
			SeatCount:   seatCount,
		})
		indices = append(indices, i)
	}

	for j, result := range ctrl.service.BulkEstimate(c.Request.Context(), params) {
		items[indices[j]] = result
	}

	response.RespondJSON(c, "success", http.StatusOK, "Bulk estimate completed", gin.H{
		"results": items,
		"count":   len(items),
	}, nil)
}

func (ctrl *controller) GetRoutes(c *gin.Context) {
	filter := RouteFilter{
		Origin:      c.Query("origin"),
		Destination: c.Query("destination"),
	}

	routes, err := ctrl.service.GetRoutes(c.Request.Context(), filter)
	if err != nil {
		response.RespondJSON(c, "error", http.StatusInternalServerError, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Routes retrieved successfully", gin.H{
		"routes": routes,
		"count":  len(routes),
	}, nil)
}

func (ctrl *controller) GetRoute(c *gin.Context) {
	routeID, err := uuid.Parse(c.Param("routeId"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid route ID", nil, err.Error())
		return
	}

	route, err := ctrl.service.GetRouteByID(c.Request.Context(), routeID)
	if err != nil {
		statusCode := http.StatusInternalServerError
		if errors.Is(err, ErrRouteNotFound) {
			statusCode = http.StatusNotFound
		}
		response.RespondJSON(c, "error", statusCode, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Route retrieved successfully", route, nil)
}

func (ctrl *controller) CreateRoute(c *gin.Context) {
	var req CreateRouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	// Get admin user ID from context (set by auth middleware)
	adminID, exists := c.Get("user_id")
	if !exists {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "Admin not authenticated", nil, nil)
		return
	}

	adminUUID, err := uuid.Parse(adminID.(string))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusInternalServerError, "Invalid admin ID format", nil, nil)
		return
	}

	route, err := ctrl.service.CreateRoute(c.Request.Context(), adminUUID, req)
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusCreated, "Route created successfully", route, nil)
}

func (ctrl *controller) UpdateRoutePricing(c *gin.Context) {
	routeID, err := uuid.Parse(c.Param("routeId"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid route ID", nil, err.Error())
		return
	}

	var req UpdateRoutePricingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	route, err := ctrl.service.UpdateRoutePricing(c.Request.Context(), routeID, req)
	if err != nil {
		statusCode := http.StatusBadRequest
		if errors.Is(err, ErrRouteNotFound) {
			statusCode = http.StatusNotFound
		}
		response.RespondJSON(c, "error", statusCode, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Route pricing updated successfully", route, nil)
}

func (ctrl *controller) DeactivateRoute(c *gin.Context) {
	routeID, err := uuid.Parse(c.Param("routeId"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid route ID", nil, err.Error())
		return
	}

	if err := ctrl.service.DeactivateRoute(c.Request.Context(), routeID); err != nil {
		statusCode := http.StatusInternalServerError
		if errors.Is(err, ErrRouteNotFound) {
			statusCode = http.StatusNotFound
		}
		response.RespondJSON(c, "error", statusCode, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Route deactivated successfully", nil, nil)
}
