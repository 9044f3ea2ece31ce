// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tratta/internal/modules/pricing"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

func writePricingError(c *gin.Context, err error) {
	switch err {
	case pricing.ErrBadRequest:
		writeError(c, http.StatusBadRequest, err.Error())
	default:
		// Diagnostic detail stays in the logs.
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}
