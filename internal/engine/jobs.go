package engine

import (
	"fmt"
	"log"
	"time"

	"github.com/friendorbit/orbit/internal/store"
	"github.com/friendorbit/orbit/internal/telegram"
)

// driftThreshold is the score below which a person counts as drifting.
const driftThreshold = 40.0

// maxDigestNames bounds how many names a digest message lists.
const maxDigestNames = 5

// SendBatteryPrompts nudges every onboarded user who hasn't logged a
// battery reading today, judged in the user's own timezone. Per-user
// failures are logged and skipped.
func (e *Engine) SendBatteryPrompts() error {
	if e.Bot == nil {
		return fmt.Errorf("no bot configured")
	}

	users, err := e.DB.ListOnboardedUsers()
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	now := e.now()
	for _, u := range users {
		if !needsBatteryPrompt(&u, now) {
			continue
		}
		if err := e.Bot.SendKeyboard(u.TelegramID, telegram.BatteryPromptText, telegram.BatteryKeyboard(e.WebAppURL)); err != nil {
			log.Printf("battery prompt: send to %s: %v", u.TelegramID, err)
		}
	}
	return nil
}

// needsBatteryPrompt reports whether the user's last reading predates
// today in the user's timezone. Unknown timezones fall back to UTC.
func needsBatteryPrompt(u *store.User, now time.Time) bool {
	if u.LastBatteryAt == nil {
		return true
	}

	loc, err := time.LoadLocation(u.Timezone)
	if err != nil {
		loc = time.UTC
	}

	last := time.UnixMilli(*u.LastBatteryAt).In(loc)
	local := now.In(loc)
	return last.Year() != local.Year() || last.YearDay() != local.YearDay()
}

// SendDriftDigest sends each onboarded user a weekly summary of who is
// drifting (score below 40). Users with nobody drifting get nothing.
func (e *Engine) SendDriftDigest() error {
	if e.Bot == nil {
		return fmt.Errorf("no bot configured")
	}

	users, err := e.DB.ListOnboardedUsers()
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	for _, u := range users {
		people, err := e.DB.ListPeople(u.ID, false)
		if err != nil {
			log.Printf("drift digest: list people for %s: %v", u.ID, err)
			continue
		}

		var names []string
		total := 0
		for _, p := range people {
			if p.GravityScore >= driftThreshold {
				continue
			}
			total++
			if len(names) < maxDigestNames {
				names = append(names, p.Name)
			}
		}
		if total == 0 {
			continue
		}

		text := telegram.DriftDigestText(names, total)
		if err := e.Bot.SendKeyboard(u.TelegramID, text, telegram.DigestKeyboard(e.WebAppURL)); err != nil {
			log.Printf("drift digest: send to %s: %v", u.TelegramID, err)
		}
	}
	return nil
}
