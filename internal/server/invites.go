package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/friendorbit/orbit/internal/telegram"
)

func (s *Server) handleCreateInvite(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PersonID string `json:"person_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}

	user := currentUser(r)

	p, err := s.db.GetPerson(req.PersonID)
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}
	if p == nil {
		http.Error(w, `{"error":"person not found"}`, http.StatusNotFound)
		return
	}
	if p.UserID != user.ID {
		http.Error(w, `{"error":"not your orbit"}`, http.StatusForbidden)
		return
	}
	if p.Connected {
		http.Error(w, `{"error":"already connected"}`, http.StatusConflict)
		return
	}

	inv, err := s.db.CreateInvite(user.ID, p.ID, time.Now())
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}

	link := telegram.InviteLink(s.cfg.BotUsername, inv.Token)
	respondJSON(w, http.StatusCreated, map[string]any{
		"invite":  inv,
		"link":    link,
		"message": fmt.Sprintf("Hey! I'm using Friend Orbit to stay in touch. Join my orbit: %s", link),
	})
}

func (s *Server) handleAcceptInvite(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TelegramID string `json:"telegram_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	if req.TelegramID == "" {
		http.Error(w, `{"error":"telegram_id required"}`, http.StatusBadRequest)
		return
	}

	inv, err := s.db.AcceptInvite(chi.URLParam(r, "token"), req.TelegramID, time.Now())
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusGone)
		return
	}
	if inv == nil {
		http.Error(w, `{"error":"invite not found"}`, http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, inv)
}
