package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"diningroom/internal/store"
)

func Health(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /health"

		if err := ensureStore(c.Request.Context(), st); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "store unavailable")
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "status": "ok"})
	}
}
