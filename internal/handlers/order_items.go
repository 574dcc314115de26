package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"diningroom/internal/models"
	"diningroom/internal/orders"
)

// orderItemUpdateRequest changes either the kitchen status or the quantity.
type orderItemUpdateRequest struct {
	Status   *string `json:"status"`
	Quantity *int    `json:"quantity"`
}

func UpdateOrderItem(svc *orders.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /order-items/:id"
		defer handlePanic(c, route)

		id, ok := parseIDParam(c, route, "id")
		if !ok {
			return
		}
		var req orderItemUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}
		if (req.Status == nil) == (req.Quantity == nil) {
			respondWithError(c, http.StatusBadRequest, route, "exactly one of status or quantity is required")
			return
		}

		var (
			item models.OrderItem
			err  error
		)
		if req.Status != nil {
			status := models.ItemStatus(strings.ToUpper(strings.TrimSpace(*req.Status)))
			item, err = svc.SetItemStatus(c.Request.Context(), id, status)
		} else {
			item, err = svc.UpdateItemQuantity(c.Request.Context(), id, *req.Quantity)
		}
		if err != nil {
			respondAppError(c, route, err)
			return
		}
		respondOK(c, http.StatusOK, item)
	}
}

func KitchenQueue(svc *orders.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /kitchen/queue"
		defer handlePanic(c, route)

		queue, err := svc.KitchenQueue(c.Request.Context())
		if err != nil {
			respondAppError(c, route, err)
			return
		}
		respondOK(c, http.StatusOK, queue)
	}
}
