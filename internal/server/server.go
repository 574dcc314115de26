package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"diningroom/internal/catalog"
	"diningroom/internal/dashboard"
	"diningroom/internal/handlers"
	"diningroom/internal/middleware"
	"diningroom/internal/orders"
	"diningroom/internal/stats"
	"diningroom/internal/store"
	"diningroom/internal/tables"
)

type Options struct {
	JWTSecret      string
	AccessTokenTTL time.Duration
	RequestTimeout time.Duration
}

type Server struct {
	router *gin.Engine
	store  store.Store
	opts   Options

	tables    *tables.Service
	catalog   *catalog.Service
	orders    *orders.Service
	stats     *stats.Service
	dashboard *dashboard.Service
}

// NewServer wires the services over st and registers every route.
func NewServer(st store.Store, opts Options) *Server {
	binding.EnableDecoderDisallowUnknownFields = true

	router := gin.Default()
	router.SetHTMLTemplate(stats.ReportTemplate)

	s := &Server{
		router:  router,
		store:   st,
		opts:    opts,
		tables:  tables.NewService(st),
		catalog: catalog.NewService(st),
		orders:  orders.NewService(st),
		stats:   stats.NewService(st),
	}
	s.dashboard = dashboard.NewService(s.tables, s.orders, s.stats)

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := s.router
	r.Use(middleware.RequestTimeout(s.opts.RequestTimeout))

	r.GET("/health", handlers.Health(s.store))
	r.POST("/auth/login", handlers.Login(s.store, s.opts.JWTSecret, s.opts.AccessTokenTTL))

	staff := r.Group("/")
	staff.Use(middleware.AuthGuard(s.opts.JWTSecret))
	{
		staff.GET("/tables", handlers.ListTables(s.tables))
		staff.GET("/tables/:id", handlers.GetTable(s.tables))
		staff.PUT("/tables/:id/status", handlers.SetTableStatus(s.tables))
		staff.PUT("/tables/:id/reserve", handlers.ReserveTable(s.tables))
		staff.PUT("/tables/:id/close", handlers.CloseTable(s.tables))

		staff.GET("/products", handlers.ListProducts(s.catalog))
		staff.GET("/products/:id", handlers.GetProduct(s.catalog))
		staff.GET("/categories", handlers.ListCategories(s.catalog))

		staff.GET("/orders", handlers.ListOrders(s.orders))
		staff.GET("/orders/:id", handlers.GetOrder(s.orders))
		staff.POST("/orders", handlers.CreateOrder(s.orders))
		staff.PUT("/orders/:id", handlers.UpdateOrderStatus(s.orders))
		staff.POST("/orders/:id/items", handlers.AddOrderItems(s.orders))
		staff.PUT("/order-items/:id", handlers.UpdateOrderItem(s.orders))
		staff.GET("/kitchen/queue", handlers.KitchenQueue(s.orders))

		staff.GET("/statistics", handlers.Statistics(s.stats))
		staff.GET("/dashboard", handlers.Dashboard(s.dashboard))
	}

	admin := r.Group("/")
	admin.Use(middleware.AdminAuth(s.opts.JWTSecret))
	{
		admin.POST("/tables", handlers.CreateTable(s.tables))
		admin.PUT("/tables/:id", handlers.RenumberTable(s.tables))
		admin.DELETE("/tables/:id", handlers.DeleteTable(s.tables))

		admin.POST("/products", handlers.CreateProduct(s.catalog))
		admin.PUT("/products/:id", handlers.UpdateProduct(s.catalog))
		admin.DELETE("/products/:id", handlers.DeleteProduct(s.catalog))

		admin.DELETE("/orders/:id", handlers.DeleteOrder(s.orders))
		admin.GET("/statistics/export", handlers.ExportStatistics(s.stats))
		admin.POST("/statistics/export", handlers.ExportStatistics(s.stats))
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start(addr string) error {
	return s.router.Run(addr)
}
