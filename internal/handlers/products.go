package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"diningroom/internal/catalog"
)

type productRequest struct {
	Name     string  `json:"name" binding:"required"`
	Price    float64 `json:"price" binding:"gte=0"`
	Category string  `json:"category" binding:"required"`
}

type productUpdateRequest struct {
	Name     *string  `json:"name"`
	Price    *float64 `json:"price" binding:"omitempty,gte=0"`
	Category *string  `json:"category"`
}

// ListProducts filters by ?category and groups into menu sections with
// ?grouped=true.
func ListProducts(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /products"
		defer handlePanic(c, route)

		products, err := svc.List(c.Request.Context(), strings.TrimSpace(c.Query("category")))
		if err != nil {
			respondAppError(c, route, err)
			return
		}
		if strings.EqualFold(c.Query("grouped"), "true") {
			respondOK(c, http.StatusOK, catalog.GroupByCategory(products))
			return
		}
		respondOK(c, http.StatusOK, products)
	}
}

func GetProduct(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /products/:id"
		defer handlePanic(c, route)

		id, ok := parseIDParam(c, route, "id")
		if !ok {
			return
		}
		product, err := svc.Get(c.Request.Context(), id)
		if err != nil {
			respondAppError(c, route, err)
			return
		}
		respondOK(c, http.StatusOK, product)
	}
}

func CreateProduct(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /products"
		defer handlePanic(c, route)

		var req productRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}
		product, err := svc.Create(c.Request.Context(), catalog.ProductInput{
			Name:     req.Name,
			Price:    req.Price,
			Category: req.Category,
		})
		if err != nil {
			respondAppError(c, route, err)
			return
		}
		respondOK(c, http.StatusCreated, product)
	}
}

func UpdateProduct(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /products/:id"
		defer handlePanic(c, route)

		id, ok := parseIDParam(c, route, "id")
		if !ok {
			return
		}
		var req productUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}
		product, err := svc.Update(c.Request.Context(), id, catalog.ProductUpdate{
			Name:     req.Name,
			Price:    req.Price,
			Category: req.Category,
		})
		if err != nil {
			respondAppError(c, route, err)
			return
		}
		respondOK(c, http.StatusOK, product)
	}
}

func DeleteProduct(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /products/:id"
		defer handlePanic(c, route)

		id, ok := parseIDParam(c, route, "id")
		if !ok {
			return
		}
		if err := svc.Delete(c.Request.Context(), id); err != nil {
			respondAppError(c, route, err)
			return
		}
		respondMessage(c, "product deleted")
	}
}

func ListCategories(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /categories"
		defer handlePanic(c, route)

		categories, err := svc.Categories(c.Request.Context())
		if err != nil {
			respondAppError(c, route, err)
			return
		}
		respondOK(c, http.StatusOK, categories)
	}
}
