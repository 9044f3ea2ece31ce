// README: Price quote handler: validation, cache lookup, pricing delegation.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"tratta/internal/modules/pricing"
	"tratta/internal/modules/quotecache"
	"tratta/internal/types"
)

type QuoteHandler struct {
	pricing *pricing.Service
	cache   *quotecache.Service
}

func NewQuoteHandler(pricingSvc *pricing.Service, cacheSvc *quotecache.Service) *QuoteHandler {
	return &QuoteHandler{pricing: pricingSvc, cache: cacheSvc}
}

// Coordinates are pointers so that zero (the equator, the prime meridian) is
// distinguishable from an absent field.
type priceRequest struct {
	PickupLat       *float64         `json:"pickup_lat" binding:"required,gte=-90,lte=90"`
	PickupLng       *float64         `json:"pickup_lng" binding:"required,gte=-180,lte=180"`
	DropoffLat      *float64         `json:"dropoff_lat" binding:"required,gte=-90,lte=90"`
	DropoffLng      *float64         `json:"dropoff_lng" binding:"required,gte=-180,lte=180"`
	VehicleCategory string           `json:"vehicle_category"`
	PickupTime      time.Time        `json:"pickup_time" binding:"required"`
	TripType        pricing.TripType `json:"trip_type"`
}

// CheckPrice handles POST /check-price. The cache layer guarantees identical
// concurrent requests compute at most once.
func (h *QuoteHandler) CheckPrice(c *gin.Context) {
	var req priceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, bindErrorMessage(err))
		return
	}

	if req.TripType == 0 {
		req.TripType = pricing.TripOneWay
	}
	quoteReq := pricing.QuoteRequest{
		Pickup:          types.Point{Lat: *req.PickupLat, Lng: *req.PickupLng},
		Dropoff:         types.Point{Lat: *req.DropoffLat, Lng: *req.DropoffLng},
		VehicleCategory: req.VehicleCategory,
		PickupAt:        req.PickupTime,
		Trip:            req.TripType,
	}

	key := quotecache.Key(quoteReq)
	result, cached, err := h.cache.GetOrCompute(c.Request.Context(), key, func(ctx context.Context) (pricing.QuoteResult, error) {
		return h.pricing.Quote(ctx, quoteReq)
	})
	if err != nil {
		writePricingError(c, err)
		return
	}
	if cached {
		log.Printf("http: quote served from cache (key %.12s)", key)
	}
	writeJSON(c, http.StatusOK, result)
}

// bindErrorMessage turns a binding failure into a client message naming the
// offending field. Raw decoder internals never reach the caller.
func bindErrorMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return fmt.Sprintf("invalid or missing field %q", jsonFieldName(verrs[0].Field()))
	}
	if strings.Contains(err.Error(), "trip_type") {
		return err.Error()
	}
	return "invalid request body"
}

// jsonFieldName maps a Go struct field name back to its wire name.
func jsonFieldName(field string) string {
	names := map[string]string{
		"PickupLat":  "pickup_lat",
		"PickupLng":  "pickup_lng",
		"DropoffLat": "dropoff_lat",
		"DropoffLng": "dropoff_lng",
		"PickupTime": "pickup_time",
		"TripType":   "trip_type",
	}
	if n, ok := names[field]; ok {
		return n
	}
	return strings.ToLower(field)
}
