package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"diningroom/internal/apperror"
	"diningroom/internal/middleware"
	"diningroom/internal/models"
	"diningroom/internal/orders"
	"diningroom/internal/store"
)

const orderDateLayout = "2006-01-02"

type orderItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity"`
}

type createOrderRequest struct {
	TableID string             `json:"tableId" binding:"required"`
	Items   []orderItemRequest `json:"items" binding:"required,min=1,dive"`
}

type addItemsRequest struct {
	Items []orderItemRequest `json:"items" binding:"required,min=1,dive"`
}

type orderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func toItemInputs(items []orderItemRequest) ([]orders.ItemInput, error) {
	raw := make([]string, 0, len(items))
	for _, item := range items {
		raw = append(raw, item.ProductID)
	}
	ids, err := parseObjectIDs(raw, "productId")
	if err != nil {
		return nil, err
	}

	out := make([]orders.ItemInput, 0, len(items))
	for i, item := range items {
		out = append(out, orders.ItemInput{ProductID: ids[i], Quantity: item.Quantity})
	}
	return out, nil
}

// parseOrderFilter reads ?status, ?tableId, ?from and ?to. Dates are whole
// UTC days and to is inclusive.
func parseOrderFilter(c *gin.Context) (store.OrderFilter, error) {
	filter := store.OrderFilter{
		Status: models.OrderStatus(strings.ToUpper(strings.TrimSpace(c.Query("status")))),
	}

	if v := strings.TrimSpace(c.Query("tableId")); v != "" {
		id, err := primitive.ObjectIDFromHex(v)
		if err != nil {
			return store.OrderFilter{}, apperror.Validation("invalid tableId")
		}
		filter.TableID = id
	}
	if v := strings.TrimSpace(c.Query("from")); v != "" {
		from, err := time.Parse(orderDateLayout, v)
		if err != nil {
			return store.OrderFilter{}, apperror.Validation("from must be YYYY-MM-DD")
		}
		filter.From = from
	}
	if v := strings.TrimSpace(c.Query("to")); v != "" {
		to, err := time.Parse(orderDateLayout, v)
		if err != nil {
			return store.OrderFilter{}, apperror.Validation("to must be YYYY-MM-DD")
		}
		filter.To = to.AddDate(0, 0, 1)
	}
	return filter, nil
}

func ListOrders(svc *orders.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /orders"
		defer handlePanic(c, route)

		filter, err := parseOrderFilter(c)
		if err != nil {
			respondAppError(c, route, err)
			return
		}
		page, limit, err := parsePaginationParams(c.Query("page"), c.Query("limit"))
		if err != nil {
			respondAppError(c, route, err)
			return
		}

		list, err := svc.List(c.Request.Context(), filter)
		if err != nil {
			respondAppError(c, route, err)
			return
		}
		c.Header("X-Total-Count", strconv.Itoa(len(list)))
		respondOK(c, http.StatusOK, paginate(list, page, limit))
	}
}

func GetOrder(svc *orders.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /orders/:id"
		defer handlePanic(c, route)

		id, ok := parseIDParam(c, route, "id")
		if !ok {
			return
		}
		order, err := svc.Get(c.Request.Context(), id)
		if err != nil {
			respondAppError(c, route, err)
			return
		}
		respondOK(c, http.StatusOK, order)
	}
}

func CreateOrder(svc *orders.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /orders"
		defer handlePanic(c, route)

		principal, ok := middleware.CurrentPrincipal(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		var req createOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}
		tableID, err := primitive.ObjectIDFromHex(strings.TrimSpace(req.TableID))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid tableId")
			return
		}
		items, err := toItemInputs(req.Items)
		if err != nil {
			respondAppError(c, route, err)
			return
		}

		order, err := svc.CreateOrder(c.Request.Context(), principal, tableID, items)
		if err != nil {
			respondAppError(c, route, err)
			return
		}
		respondOK(c, http.StatusCreated, order)
	}
}

// UpdateOrderStatus pays or cancels an order.
func UpdateOrderStatus(svc *orders.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /orders/:id"
		defer handlePanic(c, route)

		id, ok := parseIDParam(c, route, "id")
		if !ok {
			return
		}
		var req orderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}
		status := models.OrderStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
		order, err := svc.SetOrderStatus(c.Request.Context(), id, status)
		if err != nil {
			respondAppError(c, route, err)
			return
		}
		respondOK(c, http.StatusOK, order)
	}
}

func AddOrderItems(svc *orders.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /orders/:id/items"
		defer handlePanic(c, route)

		id, ok := parseIDParam(c, route, "id")
		if !ok {
			return
		}
		var req addItemsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}
		items, err := toItemInputs(req.Items)
		if err != nil {
			respondAppError(c, route, err)
			return
		}
		order, err := svc.AddItems(c.Request.Context(), id, items)
		if err != nil {
			respondAppError(c, route, err)
			return
		}
		respondOK(c, http.StatusOK, order)
	}
}

func DeleteOrder(svc *orders.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /orders/:id"
		defer handlePanic(c, route)

		id, ok := parseIDParam(c, route, "id")
		if !ok {
			return
		}
		if err := svc.DeleteOrder(c.Request.Context(), id); err != nil {
			respondAppError(c, route, err)
			return
		}
		respondMessage(c, "order deleted")
	}
}
