package api

import (
	"net/http"

	"gaznger/models"
)

func (s *Server) handleGetNotifications(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(r, "userID")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid user id"})
		return
	}

	notifications, err := s.notifications.GetUserNotifications(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, notifications)
}

func (s *Server) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid notification id"})
		return
	}

	if err := s.notifications.MarkRead(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "read"})
}

func (s *Server) handleSendNotification(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserID int64                   `json:"userId"`
		Type   models.NotificationType `json:"type"`
		Title  string                  `json:"title"`
		Body   string                  `json:"body"`
		Push   bool                    `json:"push"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	n, err := s.notifications.Send(r.Context(), body.UserID, body.Type, body.Title, body.Body, body.Push)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, n)
}
