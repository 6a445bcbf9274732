package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Meteor is a small memory note attached to a person: something to
// remember, ask about, or do before the next interaction.
type Meteor struct {
	ID        string `json:"id"`
	PersonID  string `json:"person_id"`
	UserID    string `json:"user_id"`
	Content   string `json:"content"`
	Tag       string `json:"tag,omitempty"`
	DueDate   string `json:"due_date,omitempty"`
	Done      bool   `json:"done"`
	Archived  bool   `json:"archived"`
	CreatedAt int64  `json:"created_at"`
}

// MeteorUpdate carries optional meteor changes.
type MeteorUpdate struct {
	Content  *string
	Tag      *string
	Done     *bool
	Archived *bool
}

const meteorColumns = `id, person_id, user_id, content, COALESCE(tag, ''), COALESCE(due_date, ''),
	done, archived, created_at`

func scanMeteor(row interface{ Scan(...any) error }) (*Meteor, error) {
	var m Meteor
	err := row.Scan(&m.ID, &m.PersonID, &m.UserID, &m.Content, &m.Tag, &m.DueDate,
		&m.Done, &m.Archived, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// CreateMeteor inserts a new meteor.
func (db *DB) CreateMeteor(m *Meteor) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	m.CreatedAt = time.Now().UnixMilli()

	_, err := db.Exec(`
		INSERT INTO meteors (id, person_id, user_id, content, tag, due_date, done, archived, created_at)
		VALUES (?, ?, ?, ?, NULLIF(?, ''), NULLIF(?, ''), 0, 0, ?)
	`, m.ID, m.PersonID, m.UserID, m.Content, m.Tag, m.DueDate, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("create meteor: %w", err)
	}
	return nil
}

// GetMeteor returns a meteor by id, or nil when not found.
func (db *DB) GetMeteor(id string) (*Meteor, error) {
	m, err := scanMeteor(db.QueryRow(`SELECT `+meteorColumns+` FROM meteors WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get meteor: %w", err)
	}
	return m, nil
}

// ListMeteors returns a user's non-archived meteors, optionally
// filtered to one person.
func (db *DB) ListMeteors(userID, personID string) ([]Meteor, error) {
	query := `SELECT ` + meteorColumns + ` FROM meteors WHERE user_id = ? AND archived = 0`
	args := []any{userID}
	if personID != "" {
		query += ` AND person_id = ?`
		args = append(args, personID)
	}
	query += ` ORDER BY created_at ASC`

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list meteors: %w", err)
	}
	defer rows.Close()

	var meteors []Meteor
	for rows.Next() {
		m, err := scanMeteor(rows)
		if err != nil {
			return nil, fmt.Errorf("scan meteor: %w", err)
		}
		meteors = append(meteors, *m)
	}
	return meteors, rows.Err()
}

// UpdateMeteor applies the non-nil fields of upd and returns the fresh
// row. Returns nil when the meteor does not exist.
func (db *DB) UpdateMeteor(id string, upd MeteorUpdate) (*Meteor, error) {
	var sets []string
	var args []any

	if upd.Content != nil {
		sets = append(sets, "content = ?")
		args = append(args, *upd.Content)
	}
	if upd.Tag != nil {
		sets = append(sets, "tag = ?")
		args = append(args, *upd.Tag)
	}
	if upd.Done != nil {
		sets = append(sets, "done = ?")
		args = append(args, *upd.Done)
	}
	if upd.Archived != nil {
		sets = append(sets, "archived = ?")
		args = append(args, *upd.Archived)
	}
	if len(sets) == 0 {
		return nil, fmt.Errorf("no update fields provided")
	}

	args = append(args, id)
	result, err := db.Exec("UPDATE meteors SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return nil, fmt.Errorf("update meteor: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return nil, nil
	}
	return db.GetMeteor(id)
}

// ArchiveMeteor soft-deletes a meteor.
func (db *DB) ArchiveMeteor(id string) error {
	result, err := db.Exec(`UPDATE meteors SET archived = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("archive meteor: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return fmt.Errorf("meteor %s not found", id)
	}
	return nil
}
