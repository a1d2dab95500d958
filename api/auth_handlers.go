package api

import (
	"net/http"

	"gaznger/models"
	"gaznger/service"
)

type userResponse struct {
	ID           int64  `json:"id"`
	Email        string `json:"email"`
	Phone        string `json:"phone,omitempty"`
	DisplayName  string `json:"displayName"`
	Gender       string `json:"gender"`
	ProfileImage string `json:"profileImage"`
	Points       int64  `json:"points"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{
		ID:           u.ID,
		Email:        u.Email,
		Phone:        u.Phone,
		DisplayName:  u.DisplayName,
		Gender:       u.Gender,
		ProfileImage: u.ProfileImage,
		Points:       u.Points,
	}
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email        string `json:"email"`
		Phone        string `json:"phone"`
		Password     string `json:"password"`
		DisplayName  string `json:"displayName"`
		Gender       string `json:"gender"`
		ProfileImage string `json:"profileImage"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	user, pair, err := s.auth.Register(r.Context(), service.RegisterRequest{
		Email:        body.Email,
		Phone:        body.Phone,
		Password:     body.Password,
		DisplayName:  body.DisplayName,
		Gender:       body.Gender,
		ProfileImage: body.ProfileImage,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"user":         toUserResponse(user),
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	user, pair, err := s.auth.Login(r.Context(), body.Email, body.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user":         toUserResponse(user),
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RefreshToken string `json:"refreshToken"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	access, err := s.auth.Refresh(r.Context(), body.RefreshToken)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"accessToken": access})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RefreshToken string `json:"refreshToken"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	if err := s.auth.Logout(r.Context(), body.RefreshToken); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	user, err := s.users.GetProfile(r.Context(), callerID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (s *Server) handleRegisterDevice(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Token string `json:"token"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	if err := s.users.RegisterDevice(r.Context(), callerID(r), body.Token); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "registered"})
}

func (s *Server) handleGetAddresses(w http.ResponseWriter, r *http.Request) {
	addresses, err := s.users.GetAddresses(r.Context(), callerID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, addresses)
}

func (s *Server) handleSaveAddress(w http.ResponseWriter, r *http.Request) {
	var addr models.Address
	if !decodeBody(w, r, &addr) {
		return
	}
	addr.UserID = callerID(r)

	if err := s.users.SaveAddress(r.Context(), &addr); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, addr)
}
