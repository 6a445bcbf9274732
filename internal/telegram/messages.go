package telegram

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Callback data prefixes and actions used by inline keyboards.
const (
	CallbackAcceptPrefix  = "accept_"
	CallbackDeclinePrefix = "decline_"
	CallbackHowItWorks    = "how_it_works"
	CallbackPrivacy       = "privacy"
)

// WelcomeText is the /start greeting.
const WelcomeText = "<b>Welcome to Friend Orbit</b>\n\n" +
	"Your relationships as a universe. You're the sun — friends, family, " +
	"and partners orbit around you based on how close you stay.\n\n" +
	"<i>No guilt. Just gravity.</i>"

// HowItWorksText explains the gravity model.
const HowItWorksText = "<b>How Friend Orbit works:</b>\n\n" +
	"1. <b>Add people</b> to your universe (friends, family, partner)\n" +
	"2. They appear as <b>planets</b> orbiting around you\n" +
	"3. <b>Gravity</b> = how close you are (recent chats = closer)\n" +
	"4. Without interaction, they <b>drift</b> outward\n" +
	"5. Daily <b>battery check</b> suggests who to reach out to\n\n" +
	"<i>No notifications to them. No guilt. Just awareness.</i>"

// PrivacyText explains what's stored.
const PrivacyText = "<b>Privacy:</b>\n\n" +
	"• We only store names you enter\n" +
	"• Connected friends see they're in your orbit (nothing more)\n" +
	"• No message content is stored\n" +
	"• You can delete all data anytime"

// BatteryPromptText is the daily nudge to log a battery reading.
const BatteryPromptText = "<b>Good morning!</b>\n\n" +
	"How's your social battery today?\n\n" +
	"Tap below to log it and see who you should connect with."

// WelcomeKeyboard opens the web app plus info callbacks.
func WelcomeKeyboard(webAppURL string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			webAppButton("Open Friend Orbit", webAppURL),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("How it works", CallbackHowItWorks),
			tgbotapi.NewInlineKeyboardButtonData("Privacy", CallbackPrivacy),
		),
	)
}

// BatteryKeyboard carries the single "log battery" button.
func BatteryKeyboard(webAppURL string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			webAppButton("Log Battery", webAppURL),
		),
	)
}

// DigestKeyboard carries the "view universe" button.
func DigestKeyboard(webAppURL string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			webAppButton("View Universe", webAppURL),
		),
	)
}

// InviteKeyboard carries accept/decline callbacks for an invite token.
func InviteKeyboard(token string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Accept", CallbackAcceptPrefix+token),
			tgbotapi.NewInlineKeyboardButtonData("Decline", CallbackDeclinePrefix+token),
		),
	)
}

// InvitePromptText asks the invitee to connect.
func InvitePromptText(inviterName string) string {
	return fmt.Sprintf("<b>%s</b> invited you to connect on Friend Orbit!\n\nAccept to stay in their universe.", inviterName)
}

// InviteConnectedText confirms the accept to the invitee.
const InviteConnectedText = "Connected! You're now in their orbit."

// InviteAcceptedText notifies the inviter.
func InviteAcceptedText(personName string) string {
	return fmt.Sprintf("<b>%s</b> accepted your invite! They're now connected.", personName)
}

// DriftDigestText summarizes who is drifting for the weekly digest.
func DriftDigestText(names []string, total int) string {
	noun := "people are"
	if total == 1 {
		noun = "person is"
	}
	return fmt.Sprintf("<b>Weekly Drift Report</b>\n\n%d %s drifting away:\n<i>%s</i>\n\nA quick message could pull them back into orbit.",
		total, noun, strings.Join(names, ", "))
}

func webAppButton(text, webAppURL string) tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardButtonURL(text, webAppURL)
}
