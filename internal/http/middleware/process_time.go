// README: Response-time header middleware for monitoring.
package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
)

// timingWriter injects the X-Process-Time header just before the status line
// goes out; headers cannot be added once the body has started.
type timingWriter struct {
	gin.ResponseWriter
	start time.Time
}

func (w *timingWriter) WriteHeader(status int) {
	w.Header().Set("X-Process-Time", fmt.Sprintf("%.6f", time.Since(w.start).Seconds()))
	w.ResponseWriter.WriteHeader(status)
}

// ProcessTime reports the handler's wall time in seconds via X-Process-Time.
func ProcessTime() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer = &timingWriter{ResponseWriter: c.Writer, start: time.Now()}
		c.Next()
	}
}
