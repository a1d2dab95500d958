package api

import (
	"net/http"
	"strconv"
	"time"

	"gaznger/models"
	"gaznger/service"

	"github.com/go-chi/chi/v5"
)

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil && id > 0
}

func (s *Server) handleGetPoints(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(r, "userID")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid user id"})
		return
	}

	balance, err := s.points.GetBalance(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	body := map[string]any{
		"userId": userID,
		"points": balance,
	}

	// The ledger-derived figure is an audit read that scans the ledger, so
	// it is computed only when asked for.
	if r.URL.Query().Get("effective") == "true" {
		effective, err := s.points.EffectiveBalance(r.Context(), userID, time.Now())
		if err != nil {
			writeError(w, err)
			return
		}
		body["effectivePoints"] = effective
	}

	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleGetPointHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(r, "userID")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid user id"})
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	history, err := s.points.GetHistory(r.Context(), userID, limit)
	if err != nil {
		writeError(w, err)
		return
	}

	type historyItem struct {
		*models.PointEntry
		Status models.PointStatus `json:"status"`
	}
	items := make([]historyItem, 0, len(history))
	for _, h := range history {
		items = append(items, historyItem{PointEntry: h.Entry, Status: h.Status})
	}

	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleAdjustPoints(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(r, "userID")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid user id"})
		return
	}

	var body struct {
		Change       int64      `json:"change"`
		Description  string     `json:"description"`
		PendingUntil *time.Time `json:"pendingUntil"`
		ExpiresAt    *time.Time `json:"expiresAt"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	balance, entry, err := s.points.Award(r.Context(), service.AwardRequest{
		UserID:       userID,
		Change:       body.Change,
		Kind:         models.PointKindAdjust,
		Description:  body.Description,
		PendingUntil: body.PendingUntil,
		ExpiresAt:    body.ExpiresAt,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"points": balance,
		"entry":  entry,
	})
}

func (s *Server) handleSettlePoints(w http.ResponseWriter, r *http.Request) {
	run, err := s.settlement.SettlePendingPoints(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleLatestSettlement(w http.ResponseWriter, r *http.Request) {
	run, err := s.settlement.LastRun(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if run == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "no settlement runs recorded"})
		return
	}
	writeJSON(w, http.StatusOK, run)
}
