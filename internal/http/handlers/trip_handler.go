// README: Trip handler; registers realized trip outcomes.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"rotacusto/internal/modules/history"
	"rotacusto/internal/modules/quote"
)

type TripHandler struct {
	quote *quote.Service
}

func NewTripHandler(svc *quote.Service) *TripHandler {
	return &TripHandler{quote: svc}
}

type registerTripReq struct {
	Origin        string   `json:"origin"`
	Destination   string   `json:"destination"`
	VehicleID     string   `json:"vehicle_id"`
	DistanceKm    float64  `json:"distance_km"`
	ActualCost    float64  `json:"actual_cost"`
	FuelConsumedL *float64 `json:"fuel_consumed_l,omitempty"`
	DurationMin   *float64 `json:"duration_min,omitempty"`
	Date          string   `json:"date,omitempty"`
	Issues        []string `json:"issues,omitempty"`
}

func (h *TripHandler) Register(c *gin.Context) {
	var req registerTripReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}

	var date time.Time
	if req.Date != "" {
		var err error
		if date, err = time.Parse(time.RFC3339, req.Date); err != nil {
			writeError(c, http.StatusBadRequest, "date must be RFC3339")
			return
		}
	}

	id, err := h.quote.RegisterRealizedTrip(c.Request.Context(), history.RegisterCommand{
		Origin:        req.Origin,
		Destination:   req.Destination,
		VehicleID:     req.VehicleID,
		DistanceKm:    req.DistanceKm,
		ActualCost:    req.ActualCost,
		FuelConsumedL: req.FuelConsumedL,
		DurationMin:   req.DurationMin,
		Date:          date,
		Issues:        req.Issues,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, gin.H{"trip_id": id})
}
