package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// User is an orbit account, keyed to a Telegram identity.
type User struct {
	ID              string `json:"id"`
	TelegramID      string `json:"telegram_id"`
	DisplayName     string `json:"display_name"`
	AvatarURL       string `json:"avatar_url,omitempty"`
	Timezone        string `json:"timezone"`
	InnerCircleSize int    `json:"inner_circle_size"`
	Strictness      string `json:"strictness"`
	Onboarded       bool   `json:"onboarded"`
	LastBattery     *int   `json:"last_battery"`
	LastBatteryAt   *int64 `json:"last_battery_at"`
	CreatedAt       int64  `json:"created_at"`
}

// UserUpdate carries optional user settings changes. Nil fields are
// left untouched.
type UserUpdate struct {
	DisplayName     *string
	AvatarURL       *string
	Timezone        *string
	InnerCircleSize *int
	Strictness      *string
}

const userColumns = `id, telegram_id, display_name, COALESCE(avatar_url, ''), timezone,
	inner_circle_size, strictness, onboarded, last_battery, last_battery_at, created_at`

func scanUser(row interface{ Scan(...any) error }) (*User, error) {
	var u User
	var battery sql.NullInt64
	var batteryAt sql.NullInt64
	err := row.Scan(&u.ID, &u.TelegramID, &u.DisplayName, &u.AvatarURL, &u.Timezone,
		&u.InnerCircleSize, &u.Strictness, &u.Onboarded, &battery, &batteryAt, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	if battery.Valid {
		b := int(battery.Int64)
		u.LastBattery = &b
	}
	if batteryAt.Valid {
		u.LastBatteryAt = &batteryAt.Int64
	}
	return &u, nil
}

// CreateUser inserts a new user with defaults applied.
func (db *DB) CreateUser(telegramID, displayName, avatarURL, timezone string) (*User, error) {
	if timezone == "" {
		timezone = "Asia/Kolkata"
	}
	u := &User{
		ID:              uuid.NewString(),
		TelegramID:      telegramID,
		DisplayName:     displayName,
		AvatarURL:       avatarURL,
		Timezone:        timezone,
		InnerCircleSize: 6,
		Strictness:      "normal",
		CreatedAt:       time.Now().UnixMilli(),
	}

	_, err := db.Exec(`
		INSERT INTO users (id, telegram_id, display_name, avatar_url, timezone, inner_circle_size, strictness, onboarded, created_at)
		VALUES (?, ?, ?, NULLIF(?, ''), ?, ?, ?, 0, ?)
	`, u.ID, u.TelegramID, u.DisplayName, u.AvatarURL, u.Timezone, u.InnerCircleSize, u.Strictness, u.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// GetUser returns a user by id, or nil when not found.
func (db *DB) GetUser(id string) (*User, error) {
	u, err := scanUser(db.QueryRow(`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// GetUserByTelegramID returns a user by telegram id, or nil when not found.
func (db *DB) GetUserByTelegramID(telegramID string) (*User, error) {
	u, err := scanUser(db.QueryRow(`SELECT `+userColumns+` FROM users WHERE telegram_id = ?`, telegramID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by telegram id: %w", err)
	}
	return u, nil
}

// UpdateUser applies the non-nil fields of upd and returns the fresh row.
// Returns nil when the user does not exist.
func (db *DB) UpdateUser(id string, upd UserUpdate) (*User, error) {
	var sets []string
	var args []any

	if upd.DisplayName != nil {
		sets = append(sets, "display_name = ?")
		args = append(args, *upd.DisplayName)
	}
	if upd.AvatarURL != nil {
		sets = append(sets, "avatar_url = ?")
		args = append(args, *upd.AvatarURL)
	}
	if upd.Timezone != nil {
		sets = append(sets, "timezone = ?")
		args = append(args, *upd.Timezone)
	}
	if upd.InnerCircleSize != nil {
		sets = append(sets, "inner_circle_size = ?")
		args = append(args, *upd.InnerCircleSize)
	}
	if upd.Strictness != nil {
		sets = append(sets, "strictness = ?")
		args = append(args, *upd.Strictness)
	}
	if len(sets) == 0 {
		return nil, fmt.Errorf("no update fields provided")
	}

	args = append(args, id)
	result, err := db.Exec("UPDATE users SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return nil, nil
	}
	return db.GetUser(id)
}

// MarkOnboarded flags the user as having completed onboarding.
func (db *DB) MarkOnboarded(id string) (*User, error) {
	result, err := db.Exec(`UPDATE users SET onboarded = 1 WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("mark onboarded: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return nil, nil
	}
	return db.GetUser(id)
}

// UserStrictness resolves a user's decay strictness, defaulting to
// "normal" when the user record is missing.
func (db *DB) UserStrictness(id string) string {
	var strictness string
	err := db.QueryRow(`SELECT strictness FROM users WHERE id = ?`, id).Scan(&strictness)
	if err != nil || strictness == "" {
		return "normal"
	}
	return strictness
}

// StampBattery records the user's latest battery reading on the user row.
func (db *DB) StampBattery(id string, score int, at int64) error {
	_, err := db.Exec(`UPDATE users SET last_battery = ?, last_battery_at = ? WHERE id = ?`, score, at, id)
	if err != nil {
		return fmt.Errorf("stamp battery: %w", err)
	}
	return nil
}

// ListOnboardedUsers returns every user who finished onboarding.
// Used by the scheduled prompt and digest jobs.
func (db *DB) ListOnboardedUsers() ([]User, error) {
	rows, err := db.Query(`SELECT ` + userColumns + ` FROM users WHERE onboarded = 1`)
	if err != nil {
		return nil, fmt.Errorf("list onboarded users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}
