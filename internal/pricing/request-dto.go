package pricing

type CreateRouteRequest struct {
	Origin             string             `json:"origin" binding:"required,min=2,max=100"`
	Destination        string             `json:"destination" binding:"required,min=2,max=100"`
	DistanceKm         float64            `json:"distance_km" binding:"required,gt=0"`
	BasePricePerKm     float64            `json:"base_price_per_km" binding:"omitempty,gt=0"`
	Description        string             `json:"description" binding:"max=500"`
	BusTypeMultipliers map[string]float64 `json:"bus_type_multipliers"`
}

type UpdateRoutePricingRequest struct {
	DistanceKm         *float64           `json:"distance_km" binding:"omitempty,gt=0"`
	BasePricePerKm     *float64           `json:"base_price_per_km" binding:"omitempty,gt=0"`
	BusTypeMultipliers map[string]float64 `json:"bus_type_multipliers"`
}

type EstimateRequest struct {
	Origin      string `json:"origin" binding:"required"`
	Destination string `json:"destination" binding:"required"`
	BusType     string `json:"bus_type" binding:"required"`
	JourneyDate string `json:"journey_date" binding:"required"` // RFC3339 or YYYY-MM-DD
	SeatCount   int    `json:"seat_count" binding:"omitempty,min=1,max=10"`
}

type BulkEstimateRequest struct {
	Requests []EstimateRequest `json:"requests" binding:"required,min=1,max=25,dive"`
}
