package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"diningroom/internal/models"
	"diningroom/internal/tables"
)

type tableNumberRequest struct {
	Number int `json:"number" binding:"required,gt=0"`
}

type reservationRequest struct {
	Name   string `json:"name" binding:"required"`
	Phone  string `json:"phone"`
	Date   string `json:"date" binding:"required"`
	Time   string `json:"time" binding:"required"`
	Guests int    `json:"guests" binding:"gte=0"`
}

func (r *reservationRequest) toModel() *models.Reservation {
	if r == nil {
		return nil
	}
	return &models.Reservation{Name: r.Name, Phone: r.Phone, Date: r.Date, Time: r.Time, Guests: r.Guests}
}

type tableStatusRequest struct {
	Status       string              `json:"status" binding:"required"`
	Reservation  *reservationRequest `json:"reservation"`
	ClosedReason string              `json:"closedReason"`
}

type closeTableRequest struct {
	Reason string `json:"reason"`
}

func ListTables(svc *tables.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /tables"
		defer handlePanic(c, route)

		list, err := svc.List(c.Request.Context())
		if err != nil {
			respondAppError(c, route, err)
			return
		}
		respondOK(c, http.StatusOK, list)
	}
}

func GetTable(svc *tables.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /tables/:id"
		defer handlePanic(c, route)

		id, ok := parseIDParam(c, route, "id")
		if !ok {
			return
		}
		table, err := svc.Get(c.Request.Context(), id)
		if err != nil {
			respondAppError(c, route, err)
			return
		}
		respondOK(c, http.StatusOK, table)
	}
}

func CreateTable(svc *tables.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /tables"
		defer handlePanic(c, route)

		var req tableNumberRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}
		table, err := svc.Create(c.Request.Context(), req.Number)
		if err != nil {
			respondAppError(c, route, err)
			return
		}
		respondOK(c, http.StatusCreated, table)
	}
}

func RenumberTable(svc *tables.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /tables/:id"
		defer handlePanic(c, route)

		id, ok := parseIDParam(c, route, "id")
		if !ok {
			return
		}
		var req tableNumberRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}
		table, err := svc.Renumber(c.Request.Context(), id, req.Number)
		if err != nil {
			respondAppError(c, route, err)
			return
		}
		respondOK(c, http.StatusOK, table)
	}
}

func SetTableStatus(svc *tables.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /tables/:id/status"
		defer handlePanic(c, route)

		id, ok := parseIDParam(c, route, "id")
		if !ok {
			return
		}
		var req tableStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}
		table, err := svc.SetStatus(c.Request.Context(), id, tables.StatusChange{
			Status:       models.TableStatus(strings.ToUpper(strings.TrimSpace(req.Status))),
			Reservation:  req.Reservation.toModel(),
			ClosedReason: req.ClosedReason,
		})
		if err != nil {
			respondAppError(c, route, err)
			return
		}
		respondOK(c, http.StatusOK, table)
	}
}

func ReserveTable(svc *tables.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /tables/:id/reserve"
		defer handlePanic(c, route)

		id, ok := parseIDParam(c, route, "id")
		if !ok {
			return
		}
		var req reservationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}
		table, err := svc.Reserve(c.Request.Context(), id, *req.toModel())
		if err != nil {
			respondAppError(c, route, err)
			return
		}
		respondOK(c, http.StatusOK, table)
	}
}

func CloseTable(svc *tables.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /tables/:id/close"
		defer handlePanic(c, route)

		id, ok := parseIDParam(c, route, "id")
		if !ok {
			return
		}
		var req closeTableRequest
		if c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				respondValidationError(c, route, err)
				return
			}
		}
		table, err := svc.Close(c.Request.Context(), id, req.Reason)
		if err != nil {
			respondAppError(c, route, err)
			return
		}
		respondOK(c, http.StatusOK, table)
	}
}

func DeleteTable(svc *tables.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /tables/:id"
		defer handlePanic(c, route)

		id, ok := parseIDParam(c, route, "id")
		if !ok {
			return
		}
		if err := svc.Delete(c.Request.Context(), id); err != nil {
			respondAppError(c, route, err)
			return
		}
		respondMessage(c, "table deleted")
	}
}
