package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/friendorbit/orbit/internal/store"
)

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TelegramID  string `json:"telegram_id"`
		DisplayName string `json:"display_name"`
		AvatarURL   string `json:"avatar_url"`
		Timezone    string `json:"timezone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	if req.TelegramID == "" {
		http.Error(w, `{"error":"telegram_id required"}`, http.StatusBadRequest)
		return
	}

	// Find-or-create keeps the endpoint idempotent for bot retries.
	u, err := s.db.GetUserByTelegramID(req.TelegramID)
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}
	if u != nil {
		respondJSON(w, http.StatusOK, u)
		return
	}

	u, err = s.db.CreateUser(req.TelegramID, req.DisplayName, req.AvatarURL, req.Timezone)
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusCreated, u)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	u, err := s.db.GetUserByTelegramID(chi.URLParam(r, "telegramID"))
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}
	if u == nil {
		http.Error(w, `{"error":"user not found"}`, http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, u)
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DisplayName     *string `json:"display_name"`
		AvatarURL       *string `json:"avatar_url"`
		Timezone        *string `json:"timezone"`
		InnerCircleSize *int    `json:"inner_circle_size"`
		Strictness      *string `json:"strictness"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}

	if req.Strictness != nil {
		switch *req.Strictness {
		case "gentle", "normal", "strict":
		default:
			http.Error(w, `{"error":"strictness must be gentle, normal, or strict"}`, http.StatusBadRequest)
			return
		}
	}

	u, err := s.db.UpdateUser(chi.URLParam(r, "userID"), store.UserUpdate{
		DisplayName:     req.DisplayName,
		AvatarURL:       req.AvatarURL,
		Timezone:        req.Timezone,
		InnerCircleSize: req.InnerCircleSize,
		Strictness:      req.Strictness,
	})
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
		return
	}
	if u == nil {
		http.Error(w, `{"error":"user not found"}`, http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, u)
}

func (s *Server) handleOnboardUser(w http.ResponseWriter, r *http.Request) {
	u, err := s.db.MarkOnboarded(chi.URLParam(r, "userID"))
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}
	if u == nil {
		http.Error(w, `{"error":"user not found"}`, http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, u)
}
