package server

import (
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/friendorbit/orbit/internal/telegram"
)

// handleWebhook receives Telegram updates. The path secret stands in
// for authentication; once it matches, Telegram always gets 200 so it
// never retries an update we already saw.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if s.cfg.WebhookSecret == "" || chi.URLParam(r, "secret") != s.cfg.WebhookSecret {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, `{"error":"read body failed"}`, http.StatusBadRequest)
		return
	}

	update, err := telegram.ParseUpdate(body)
	if err != nil {
		log.Printf("webhook: bad update payload: %v", err)
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}

	if s.bot != nil {
		switch {
		case update.CallbackQuery != nil:
			s.handleCallback(update)
		case update.Message != nil && strings.HasPrefix(update.Message.Text, "/start"):
			s.handleStart(update)
		}
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStart(update *tgbotapi.Update) {
	chatID := telegram.ExtractChatID(update)
	if chatID == "" {
		return
	}

	payload := telegram.StartPayload(update.Message.Text)
	if token, ok := strings.CutPrefix(payload, "invite_"); ok {
		s.sendInvitePrompt(chatID, token)
		return
	}

	if err := s.bot.SendKeyboard(chatID, telegram.WelcomeText, telegram.WelcomeKeyboard(s.cfg.WebAppURL)); err != nil {
		log.Printf("webhook: welcome to %s: %v", chatID, err)
	}
}

func (s *Server) sendInvitePrompt(chatID, token string) {
	inv, err := s.db.GetPendingInvite(token)
	if err != nil {
		log.Printf("webhook: invite lookup %s: %v", token, err)
		return
	}
	if inv == nil || time.Now().UnixMilli() > inv.ExpiresAt {
		s.bot.SendHTML(chatID, "This invite has expired or was already used.")
		return
	}

	inviterName := "A friend"
	if inviter, err := s.db.GetUser(inv.InviterID); err == nil && inviter != nil {
		inviterName = inviter.DisplayName
	}

	if err := s.bot.SendKeyboard(chatID, telegram.InvitePromptText(inviterName), telegram.InviteKeyboard(token)); err != nil {
		log.Printf("webhook: invite prompt to %s: %v", chatID, err)
	}
}

func (s *Server) handleCallback(update *tgbotapi.Update) {
	cb := update.CallbackQuery
	if err := s.bot.AnswerCallback(cb.ID); err != nil {
		log.Printf("webhook: answer callback %s: %v", cb.ID, err)
	}

	chatID := telegram.ExtractChatID(update)
	if chatID == "" {
		return
	}

	switch {
	case strings.HasPrefix(cb.Data, telegram.CallbackAcceptPrefix):
		token := strings.TrimPrefix(cb.Data, telegram.CallbackAcceptPrefix)
		s.acceptFromCallback(chatID, token, telegram.ExtractUserID(update))

	case strings.HasPrefix(cb.Data, telegram.CallbackDeclinePrefix):
		token := strings.TrimPrefix(cb.Data, telegram.CallbackDeclinePrefix)
		if err := s.db.DeclineInvite(token); err != nil {
			log.Printf("webhook: decline invite %s: %v", token, err)
		}
		s.bot.SendHTML(chatID, "No problem. Maybe another time!")

	case cb.Data == telegram.CallbackHowItWorks:
		s.bot.SendHTML(chatID, telegram.HowItWorksText)

	case cb.Data == telegram.CallbackPrivacy:
		s.bot.SendHTML(chatID, telegram.PrivacyText)
	}
}

func (s *Server) acceptFromCallback(chatID, token, telegramUserID string) {
	inv, err := s.db.AcceptInvite(token, telegramUserID, time.Now())
	if err != nil || inv == nil {
		s.bot.SendHTML(chatID, "This invite has expired or was already used.")
		return
	}

	s.bot.SendHTML(chatID, telegram.InviteConnectedText)

	// The acceptance notice goes to the inviter, not back to the invitee.
	inviter, err := s.db.GetUser(inv.InviterID)
	if err != nil || inviter == nil {
		log.Printf("webhook: inviter lookup %s: %v", inv.InviterID, err)
		return
	}

	personName := "Someone"
	if p, err := s.db.GetPerson(inv.PersonID); err == nil && p != nil {
		personName = p.Name
	}
	if err := s.bot.SendHTML(inviter.TelegramID, telegram.InviteAcceptedText(personName)); err != nil {
		log.Printf("webhook: notify inviter %s: %v", inviter.TelegramID, err)
	}
}
