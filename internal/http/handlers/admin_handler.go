// README: Operational endpoints: health, configuration summary, config refresh.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tratta/internal/modules/pricing"
)

type AdminHandler struct {
	pricing *pricing.Service
}

func NewAdminHandler(pricingSvc *pricing.Service) *AdminHandler {
	return &AdminHandler{pricing: pricingSvc}
}

func (h *AdminHandler) Health(c *gin.Context) {
	writeJSON(c, http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// Config exposes a summary of the active pricing snapshot.
func (h *AdminHandler) Config(c *gin.Context) {
	snap := h.pricing.Snapshot()
	zones := make([]string, 0, len(snap.ZoneMultipliers))
	for code := range snap.ZoneMultipliers {
		zones = append(zones, code)
	}
	writeJSON(c, http.StatusOK, gin.H{
		"vehicle_categories": snap.Categories,
		"currency":           snap.Currency,
		"zones":              zones,
	})
}

// Refresh rebuilds the pricing snapshot from its sources and swaps it in.
// The build degrades layer by layer and never fails.
func (h *AdminHandler) Refresh(c *gin.Context) {
	h.pricing.Refresh(c.Request.Context())
	writeJSON(c, http.StatusOK, gin.H{
		"status":  "success",
		"message": "configuration refreshed",
	})
}
