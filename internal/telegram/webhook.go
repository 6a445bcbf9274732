package telegram

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// ParseUpdate decodes a webhook payload into a Telegram update.
func ParseUpdate(payload []byte) (*tgbotapi.Update, error) {
	var update tgbotapi.Update
	if err := json.Unmarshal(payload, &update); err != nil {
		return nil, fmt.Errorf("decode update: %w", err)
	}
	return &update, nil
}

func parseChatID(chatID string) (int64, error) {
	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid chat ID %q: %w", chatID, err)
	}
	return id, nil
}

// ExtractChatID extracts the chat ID from an update, or "" when the
// update carries none.
func ExtractChatID(update *tgbotapi.Update) string {
	var chat *tgbotapi.Chat

	switch {
	case update.Message != nil:
		chat = update.Message.Chat
	case update.EditedMessage != nil:
		chat = update.EditedMessage.Chat
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil:
		chat = update.CallbackQuery.Message.Chat
	}

	if chat != nil {
		return strconv.FormatInt(chat.ID, 10)
	}
	return ""
}

// ExtractUserID extracts the sending user's ID from an update.
func ExtractUserID(update *tgbotapi.Update) string {
	var from *tgbotapi.User

	switch {
	case update.Message != nil:
		from = update.Message.From
	case update.EditedMessage != nil:
		from = update.EditedMessage.From
	case update.CallbackQuery != nil:
		from = update.CallbackQuery.From
	}

	if from != nil {
		return strconv.FormatInt(from.ID, 10)
	}
	return ""
}

// StartPayload returns the deep-link payload of a /start command, or ""
// for a bare /start or any other message.
func StartPayload(text string) string {
	if !strings.HasPrefix(text, "/start") {
		return ""
	}
	parts := strings.SplitN(strings.TrimSpace(text), " ", 2)
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

// InviteLink builds the t.me deep link that carries an invite token.
func InviteLink(botUsername, token string) string {
	return fmt.Sprintf("https://t.me/%s?start=invite_%s", botUsername, token)
}
