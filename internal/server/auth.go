package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/friendorbit/orbit/internal/store"
	"github.com/friendorbit/orbit/internal/telegram"
)

type ctxKey int

const userKey ctxKey = 0

// requireUser resolves the X-User-Id header to a user row and stashes
// it in the request context. Unknown or missing ids get 401.
func (s *Server) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-User-Id")
		if id == "" {
			http.Error(w, `{"error":"X-User-Id header required"}`, http.StatusUnauthorized)
			return
		}

		u, err := s.db.GetUser(id)
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		if u == nil {
			http.Error(w, `{"error":"unknown user"}`, http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, u)))
	})
}

func currentUser(r *http.Request) *store.User {
	u, _ := r.Context().Value(userKey).(*store.User)
	return u
}

// handleAuthTelegram signs a user in from Telegram WebApp initData.
// A bare telegram_id is accepted as a demo path when no initData is
// presented.
func (s *Server) handleAuthTelegram(w http.ResponseWriter, r *http.Request) {
	var req struct {
		InitData    string `json:"init_data"`
		TelegramID  string `json:"telegram_id"`
		DisplayName string `json:"display_name"`
		AvatarURL   string `json:"avatar_url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}

	telegramID := req.TelegramID
	displayName := req.DisplayName
	avatarURL := req.AvatarURL

	if req.InitData != "" {
		wu, err := telegram.VerifyInitData(req.InitData, s.cfg.BotToken)
		if err != nil {
			http.Error(w, `{"error":"invalid init data"}`, http.StatusUnauthorized)
			return
		}
		telegramID = strconv.FormatInt(wu.ID, 10)
		displayName = wu.DisplayName()
		avatarURL = wu.PhotoURL
	}

	if telegramID == "" {
		http.Error(w, `{"error":"init_data or telegram_id required"}`, http.StatusUnauthorized)
		return
	}

	u, err := s.db.GetUserByTelegramID(telegramID)
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}

	isNew := false
	if u == nil {
		u, err = s.db.CreateUser(telegramID, displayName, avatarURL, "")
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		isNew = true
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"user":   u,
		"is_new": isNew,
	})
}
