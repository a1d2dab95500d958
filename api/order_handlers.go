package api

import (
	"net/http"

	"gaznger/models"
	"gaznger/service"
)

func (s *Server) handlePlaceOrder(w http.ResponseWriter, r *http.Request) {
	var body struct {
		FuelTypeID        int64  `json:"fuelTypeId"`
		StationID         int64  `json:"stationId"`
		Quantity          string `json:"quantity"`
		DeliveryAddressID int64  `json:"deliveryAddressId"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	order, err := s.orders.PlaceOrder(r.Context(), service.PlaceOrderRequest{
		UserID:            callerID(r),
		FuelTypeID:        body.FuelTypeID,
		StationID:         body.StationID,
		Quantity:          body.Quantity,
		DeliveryAddressID: body.DeliveryAddressID,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, order)
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(r, "orderID")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid order id"})
		return
	}

	order, err := s.orders.GetOrder(r.Context(), orderID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

func (s *Server) handleGetUserOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(r, "userID")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid user id"})
		return
	}

	orders, err := s.orders.GetUserOrders(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, orders)
}

func (s *Server) handleUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(r, "orderID")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid order id"})
		return
	}

	var body struct {
		Status models.OrderStatus `json:"status"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	order, err := s.orders.UpdateStatus(r.Context(), orderID, body.Status)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

func (s *Server) handleRateOrder(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(r, "orderID")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid order id"})
		return
	}

	var body struct {
		Score   int    `json:"score"`
		Comment string `json:"comment"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	rating, err := s.orders.RateOrder(r.Context(), orderID, callerID(r), body.Score, body.Comment)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, rating)
}
