package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Invite lets a person accept a connection to the inviter's orbit via
// a Telegram deep link. Pending invites expire after seven days.
type Invite struct {
	ID                string `json:"id"`
	Token             string `json:"token"`
	InviterID         string `json:"inviter_id"`
	PersonID          string `json:"person_id"`
	Status            string `json:"status"`
	InviteeTelegramID string `json:"invitee_telegram_id,omitempty"`
	CreatedAt         int64  `json:"created_at"`
	ExpiresAt         int64  `json:"expires_at"`
}

const inviteTTL = 7 * 24 * time.Hour

// CreateInvite inserts a pending invite with a fresh short token.
func (db *DB) CreateInvite(inviterID, personID string, now time.Time) (*Invite, error) {
	inv := &Invite{
		ID:        uuid.NewString(),
		Token:     strings.ReplaceAll(uuid.NewString(), "-", "")[:12],
		InviterID: inviterID,
		PersonID:  personID,
		Status:    "pending",
		CreatedAt: now.UnixMilli(),
		ExpiresAt: now.Add(inviteTTL).UnixMilli(),
	}

	_, err := db.Exec(`
		INSERT INTO invites (id, token, inviter_id, person_id, status, created_at, expires_at)
		VALUES (?, ?, ?, ?, 'pending', ?, ?)
	`, inv.ID, inv.Token, inv.InviterID, inv.PersonID, inv.CreatedAt, inv.ExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("create invite: %w", err)
	}
	return inv, nil
}

// GetPendingInvite returns the pending invite for a token, or nil when
// no pending invite exists.
func (db *DB) GetPendingInvite(token string) (*Invite, error) {
	var inv Invite
	var invitee sql.NullString
	err := db.QueryRow(`
		SELECT id, token, inviter_id, person_id, status, invitee_telegram_id, created_at, expires_at
		FROM invites WHERE token = ? AND status = 'pending'
	`, token).Scan(&inv.ID, &inv.Token, &inv.InviterID, &inv.PersonID, &inv.Status,
		&invitee, &inv.CreatedAt, &inv.ExpiresAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get pending invite: %w", err)
	}
	if invitee.Valid {
		inv.InviteeTelegramID = invitee.String
	}
	return &inv, nil
}

// AcceptInvite marks a pending invite accepted and connects the person
// to the invitee's telegram account. Expired invites are rejected.
func (db *DB) AcceptInvite(token, inviteeTelegramID string, now time.Time) (*Invite, error) {
	inv, err := db.GetPendingInvite(token)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, nil
	}
	if now.UnixMilli() > inv.ExpiresAt {
		return nil, fmt.Errorf("invite %s has expired", token)
	}

	_, err = db.Exec(`
		UPDATE invites SET status = 'accepted', invitee_telegram_id = ? WHERE token = ?
	`, inviteeTelegramID, token)
	if err != nil {
		return nil, fmt.Errorf("accept invite: %w", err)
	}

	if err := db.ConnectPerson(inv.PersonID, inviteeTelegramID); err != nil {
		return nil, err
	}

	inv.Status = "accepted"
	inv.InviteeTelegramID = inviteeTelegramID
	return inv, nil
}

// DeclineInvite marks a pending invite declined.
func (db *DB) DeclineInvite(token string) error {
	_, err := db.Exec(`UPDATE invites SET status = 'declined' WHERE token = ? AND status = 'pending'`, token)
	if err != nil {
		return fmt.Errorf("decline invite: %w", err)
	}
	return nil
}
