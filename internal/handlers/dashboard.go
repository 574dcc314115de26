package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"diningroom/internal/dashboard"
)

func Dashboard(svc *dashboard.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /dashboard"
		defer handlePanic(c, route)

		summary, err := svc.Summary(c.Request.Context())
		if err != nil {
			respondAppError(c, route, err)
			return
		}
		respondOK(c, http.StatusOK, summary)
	}
}
