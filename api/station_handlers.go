package api

import (
	"net/http"
	"strconv"

	"gaznger/models"

	"github.com/shopspring/decimal"
)

func (s *Server) handleListStations(w http.ResponseWriter, r *http.Request) {
	var filter models.StationFilter

	q := r.URL.Query()
	if v := q.Get("verified"); v != "" {
		verified := v == "true"
		filter.Verified = &verified
	}
	filter.State = q.Get("state")
	filter.LGA = q.Get("lga")

	if lat, err := strconv.ParseFloat(q.Get("lat"), 64); err == nil {
		if lng, err := strconv.ParseFloat(q.Get("lng"), 64); err == nil {
			if radius, err := strconv.ParseFloat(q.Get("radius"), 64); err == nil && radius > 0 {
				filter.Latitude = &lat
				filter.Longitude = &lng
				filter.RadiusKM = &radius
			}
		}
	}

	stations, err := s.stations.ListStations(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stations)
}

func (s *Server) handleGetStation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid station id"})
		return
	}

	station, err := s.stations.GetStation(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, station)
}

func (s *Server) handleCreateStation(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name      string  `json:"name"`
		Address   string  `json:"address"`
		State     string  `json:"state"`
		LGA       string  `json:"lga"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Verified  bool    `json:"verified"`
		Fuels     []struct {
			FuelTypeID   int64  `json:"fuelTypeId"`
			PricePerUnit string `json:"pricePerUnit"`
		} `json:"fuels"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	station := &models.Station{
		Name:      body.Name,
		Address:   body.Address,
		State:     body.State,
		LGA:       body.LGA,
		Latitude:  body.Latitude,
		Longitude: body.Longitude,
		Verified:  body.Verified,
	}
	for _, f := range body.Fuels {
		price, err := decimal.NewFromString(f.PricePerUnit)
		if err != nil || !price.IsPositive() {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid fuel price"})
			return
		}
		station.Fuels = append(station.Fuels, models.StationFuel{
			FuelTypeID:   f.FuelTypeID,
			PricePerUnit: price,
		})
	}

	if err := s.stations.CreateStation(r.Context(), station); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, station)
}

func (s *Server) handleListFuelTypes(w http.ResponseWriter, r *http.Request) {
	fuels, err := s.stations.ListFuelTypes(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, fuels)
}

func (s *Server) handleCreateFuelType(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name         string `json:"name"`
		Unit         string `json:"unit"`
		PricePerUnit string `json:"pricePerUnit"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	price, err := decimal.NewFromString(body.PricePerUnit)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid price"})
		return
	}

	fuel := &models.FuelType{
		Name:         body.Name,
		Unit:         body.Unit,
		PricePerUnit: price,
	}
	if err := s.stations.CreateFuelType(r.Context(), fuel); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, fuel)
}
