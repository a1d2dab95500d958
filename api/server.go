// Package api provides the HTTP server for the fuel delivery and loyalty
// rewards backend.
package api

import (
	"net/http"
	"time"

	"gaznger/auth"
	"gaznger/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server is the HTTP API server.
type Server struct {
	auth          service.AuthService
	users         service.UserService
	points        service.PointsService
	settlement    service.SettlementService
	orders        service.OrderService
	stations      service.StationService
	notifications service.NotificationService
	tokens        *auth.TokenIssuer
}

// NewServer creates a new API server.
func NewServer(
	authSvc service.AuthService,
	users service.UserService,
	points service.PointsService,
	settlement service.SettlementService,
	orders service.OrderService,
	stations service.StationService,
	notifications service.NotificationService,
	tokens *auth.TokenIssuer,
) *Server {
	return &Server{
		auth:          authSvc,
		users:         users,
		points:        points,
		settlement:    settlement,
		orders:        orders,
		stations:      stations,
		notifications: notifications,
		tokens:        tokens,
	}
}

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(requestMetrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", s.handleRegister)
		r.Post("/login", s.handleLogin)
		r.Post("/refresh-token", s.handleRefresh)
		r.Post("/logout", s.handleLogout)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(s.requireAuth)

		r.Route("/points", func(r chi.Router) {
			r.Get("/{userID}", s.handleGetPoints)
			r.Get("/{userID}/history", s.handleGetPointHistory)
			r.Patch("/{userID}", s.handleAdjustPoints)
			r.Post("/settle", s.handleSettlePoints)
			r.Get("/settle/latest", s.handleLatestSettlement)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", s.handlePlaceOrder)
			r.Get("/user/{userID}", s.handleGetUserOrders)
			r.Get("/{orderID}", s.handleGetOrder)
			r.Patch("/{orderID}/status", s.handleUpdateOrderStatus)
			r.Post("/{orderID}/rate", s.handleRateOrder)
		})

		r.Route("/stations", func(r chi.Router) {
			r.Get("/", s.handleListStations)
			r.Post("/", s.handleCreateStation)
			r.Get("/{id}", s.handleGetStation)
		})

		r.Route("/fuel-types", func(r chi.Router) {
			r.Get("/", s.handleListFuelTypes)
			r.Post("/", s.handleCreateFuelType)
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/{userID}", s.handleGetNotifications)
			r.Patch("/{id}/read", s.handleMarkNotificationRead)
			r.Post("/send", s.handleSendNotification)
		})

		r.Route("/addresses", func(r chi.Router) {
			r.Get("/", s.handleGetAddresses)
			r.Post("/", s.handleSaveAddress)
		})

		r.Post("/devices", s.handleRegisterDevice)
		r.Get("/profile", s.handleGetProfile)
	})

	return r
}
