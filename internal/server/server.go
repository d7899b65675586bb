package server

import (
	"context"
	"net/http"

	"chuks-kitchen/internal/handler"
	authmw "chuks-kitchen/internal/middleware"
	"chuks-kitchen/internal/security"
	"chuks-kitchen/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

type Services struct {
	Auth     service.AuthService
	Catalog  service.CatalogService
	Cart     service.CartService
	Orders   service.OrderService
	Payments service.PaymentService
}

type Server struct {
	echo           *echo.Echo
	tokens         security.TokenIssuer
	users          authmw.UserFinder
	catalogAdmins  []string
	authHandler    *handler.AuthHandler
	catalogHandler *handler.CatalogHandler
	cartHandler    *handler.CartHandler
	orderHandler   *handler.OrderHandler
	paymentHandler *handler.PaymentHandler
}

// NewServer wires the routes. catalogAdmins restricts catalog writes to those
// emails; empty admits any verified user.
func NewServer(services Services, tokens security.TokenIssuer, catalogAdmins []string, logger *zap.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.NewErrorHandler(logger)

	e.Use(middleware.RequestLoggerWithConfig(requestLoggerConfig(logger)))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	s := &Server{
		echo:           e,
		tokens:         tokens,
		users:          services.Auth,
		catalogAdmins:  catalogAdmins,
		authHandler:    handler.NewAuthHandler(services.Auth),
		catalogHandler: handler.NewCatalogHandler(services.Catalog),
		cartHandler:    handler.NewCartHandler(services.Cart),
		orderHandler:   handler.NewOrderHandler(services.Orders),
		paymentHandler: handler.NewPaymentHandler(services.Payments),
	}

	s.setupRoutes()
	return s
}

func requestLoggerConfig(logger *zap.Logger) middleware.RequestLoggerConfig {
	return middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("remote_ip", v.RemoteIP),
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
			}
			logger.Info("request", fields...)
			return nil
		},
	}
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// -------- auth --------
	auth := api.Group("/auth")
	auth.POST("/signup", s.authHandler.Signup)
	auth.POST("/login", s.authHandler.Login)
	auth.POST("/verify", s.authHandler.Verify)

	// -------- catalog --------
	requireAuth := authmw.AuthMiddleware(s.tokens)
	requireAdmin := authmw.RequireCatalogAdmin(s.users, s.catalogAdmins)
	api.GET("/foods", s.catalogHandler.ListFoods)
	api.GET("/foods/:id", s.catalogHandler.GetFood)
	api.POST("/foods", s.catalogHandler.CreateFood, requireAuth, requireAdmin)
	api.PATCH("/foods/:id/stock", s.catalogHandler.AdjustStock, requireAuth, requireAdmin)

	// -------- cart --------
	cart := api.Group("/cart", requireAuth)
	cart.GET("", s.cartHandler.View)
	cart.POST("/items", s.cartHandler.AddItem)
	cart.PUT("/items/:foodID", s.cartHandler.UpdateQuantity)
	cart.DELETE("/items/:foodID", s.cartHandler.RemoveItem)
	cart.DELETE("", s.cartHandler.Clear)

	// -------- orders & payments --------
	orders := api.Group("/orders", requireAuth)
	orders.POST("", s.orderHandler.Create)
	orders.GET("", s.orderHandler.List)
	orders.GET("/:id", s.orderHandler.Get)
	orders.POST("/:id/cancel", s.orderHandler.Cancel)
	orders.POST("/:id/pay", s.paymentHandler.Pay)

	api.GET("/payments/:ref", s.paymentHandler.GetPayment, requireAuth)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
