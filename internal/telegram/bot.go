// Package telegram wraps the Telegram Bot API: outbound nudges, webhook
// update parsing, and WebApp initData verification.
package telegram

import (
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Sender is the outbound surface the rest of orbit depends on. The
// engine's scheduled jobs and the webhook handler send through it, so
// tests can swap in a fake.
type Sender interface {
	// SendHTML sends an HTML-formatted message to a chat.
	SendHTML(chatID, text string) error
	// SendKeyboard sends an HTML message with an inline keyboard.
	SendKeyboard(chatID, text string, keyboard tgbotapi.InlineKeyboardMarkup) error
	// AnswerCallback acknowledges a callback query so the client
	// stops showing its loading state.
	AnswerCallback(callbackID string) error
}

// Bot is the live Telegram implementation of Sender.
type Bot struct {
	api      *tgbotapi.BotAPI
	username string
}

// NewBot connects to the Telegram Bot API with the given token.
func NewBot(token string) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	slog.Info("telegram: bot connected", "username", api.Self.UserName)
	return &Bot{api: api, username: api.Self.UserName}, nil
}

// Username returns the bot's telegram username, used for deep links.
func (b *Bot) Username() string {
	return b.username
}

// SendHTML sends an HTML-formatted text message.
func (b *Bot) SendHTML(chatID, text string) error {
	id, err := parseChatID(chatID)
	if err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(id, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := b.api.Send(msg); err != nil {
		slog.Error("telegram: send failed", "chat_id", chatID, "error", err)
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// SendKeyboard sends an HTML message with an inline keyboard attached.
func (b *Bot) SendKeyboard(chatID, text string, keyboard tgbotapi.InlineKeyboardMarkup) error {
	id, err := parseChatID(chatID)
	if err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(id, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = keyboard
	if _, err := b.api.Send(msg); err != nil {
		slog.Error("telegram: send failed", "chat_id", chatID, "error", err)
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// AnswerCallback acknowledges a callback query.
func (b *Bot) AnswerCallback(callbackID string) error {
	if _, err := b.api.Request(tgbotapi.NewCallback(callbackID, "")); err != nil {
		return fmt.Errorf("answer callback: %w", err)
	}
	return nil
}

// SetWebhook registers the webhook URL with Telegram.
func (b *Bot) SetWebhook(webhookURL string) error {
	cfg, err := tgbotapi.NewWebhook(webhookURL)
	if err != nil {
		return fmt.Errorf("build webhook config: %w", err)
	}
	if _, err := b.api.Request(cfg); err != nil {
		return fmt.Errorf("set webhook: %w", err)
	}
	return nil
}

var _ Sender = (*Bot)(nil)
