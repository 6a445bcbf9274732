package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/friendorbit/orbit/internal/gravity"
)

// Person is a planet in a user's orbit.
type Person struct {
	ID                  string   `json:"id"`
	UserID              string   `json:"user_id"`
	Name                string   `json:"name"`
	RelationshipType    string   `json:"relationship_type"`
	RelationshipSubtype string   `json:"relationship_subtype,omitempty"`
	Archetype           string   `json:"archetype"`
	CadenceDays         int      `json:"cadence_days"`
	Tags                []string `json:"tags"`
	Pinned              bool     `json:"pinned"`
	Archived            bool     `json:"archived"`
	GravityScore        float64  `json:"gravity_score"`
	LastInteraction     *int64   `json:"last_interaction"`
	DecayedAt           *int64   `json:"-"` // sweep bookkeeping, not part of the API
	TelegramUserID      string   `json:"telegram_user_id,omitempty"`
	Connected           bool     `json:"connected"`
	CreatedAt           int64    `json:"created_at"`
}

// Relationship converts a stored person to the plain-data view the
// gravity core operates on.
func (p *Person) Relationship() gravity.Relationship {
	rel := gravity.Relationship{
		ID:        p.ID,
		UserID:    p.UserID,
		Name:      p.Name,
		Category:  gravity.Category(p.RelationshipType),
		Archetype: gravity.Archetype(p.Archetype),
		Pinned:    p.Pinned,
		Score:     p.GravityScore,
	}
	if p.LastInteraction != nil {
		t := time.UnixMilli(*p.LastInteraction).UTC()
		rel.LastInteraction = &t
	}
	if p.DecayedAt != nil {
		t := time.UnixMilli(*p.DecayedAt).UTC()
		rel.LastDecay = &t
	}
	return rel
}

// PersonUpdate carries optional person changes. Nil fields are left
// untouched.
type PersonUpdate struct {
	Name        *string
	Archetype   *string
	CadenceDays *int
	Tags        []string
	Pinned      *bool
	Archived    *bool
}

const personColumns = `id, user_id, name, relationship_type, COALESCE(relationship_subtype, ''),
	archetype, cadence_days, tags, pinned, archived, gravity_score, last_interaction,
	decayed_at, COALESCE(telegram_user_id, ''), connected, created_at`

func scanPerson(row interface{ Scan(...any) error }) (*Person, error) {
	var p Person
	var tags string
	var lastInteraction sql.NullInt64
	var decayedAt sql.NullInt64
	err := row.Scan(&p.ID, &p.UserID, &p.Name, &p.RelationshipType, &p.RelationshipSubtype,
		&p.Archetype, &p.CadenceDays, &tags, &p.Pinned, &p.Archived, &p.GravityScore,
		&lastInteraction, &decayedAt, &p.TelegramUserID, &p.Connected, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	if lastInteraction.Valid {
		p.LastInteraction = &lastInteraction.Int64
	}
	if decayedAt.Valid {
		p.DecayedAt = &decayedAt.Int64
	}
	p.Tags = []string{}
	if tags != "" {
		if err := json.Unmarshal([]byte(tags), &p.Tags); err != nil {
			return nil, fmt.Errorf("decode tags for %s: %w", p.ID, err)
		}
	}
	return &p, nil
}

// CreatePerson inserts a new person. New planets start at the inner
// edge of the goldilocks boundary: score 80.
func (db *DB) CreatePerson(p *Person) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Archetype == "" {
		p.Archetype = "Anchor"
	}
	if p.CadenceDays == 0 {
		p.CadenceDays = 7
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if p.GravityScore == 0 {
		p.GravityScore = 80.0
	}
	p.CreatedAt = time.Now().UnixMilli()

	tags, err := json.Marshal(p.Tags)
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO people (id, user_id, name, relationship_type, relationship_subtype,
			archetype, cadence_days, tags, pinned, archived, gravity_score, created_at)
		VALUES (?, ?, ?, ?, NULLIF(?, ''), ?, ?, ?, ?, 0, ?, ?)
	`, p.ID, p.UserID, p.Name, p.RelationshipType, p.RelationshipSubtype,
		p.Archetype, p.CadenceDays, string(tags), p.Pinned, p.GravityScore, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("create person: %w", err)
	}
	return nil
}

// GetPerson returns a person by id, or nil when not found.
func (db *DB) GetPerson(id string) (*Person, error) {
	p, err := scanPerson(db.QueryRow(`SELECT `+personColumns+` FROM people WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get person: %w", err)
	}
	return p, nil
}

// ListPeople returns a user's people, oldest first. Archived people
// are excluded unless includeArchived is set.
func (db *DB) ListPeople(userID string, includeArchived bool) ([]Person, error) {
	query := `SELECT ` + personColumns + ` FROM people WHERE user_id = ?`
	if !includeArchived {
		query += ` AND archived = 0`
	}
	query += ` ORDER BY created_at ASC`

	rows, err := db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("list people: %w", err)
	}
	defer rows.Close()

	var people []Person
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("scan person: %w", err)
		}
		people = append(people, *p)
	}
	return people, rows.Err()
}

// ListActivePeople returns every non-archived person across all users,
// oldest first. This is the decay sweep's working set.
func (db *DB) ListActivePeople() ([]Person, error) {
	rows, err := db.Query(`SELECT ` + personColumns + ` FROM people WHERE archived = 0 ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list active people: %w", err)
	}
	defer rows.Close()

	var people []Person
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("scan person: %w", err)
		}
		people = append(people, *p)
	}
	return people, rows.Err()
}

// HasActivePartner reports whether the user already has a non-archived
// partner. At most one is allowed per user.
func (db *DB) HasActivePartner(userID string) (bool, error) {
	var count int
	err := db.QueryRow(`
		SELECT COUNT(*) FROM people
		WHERE user_id = ? AND relationship_type = 'partner' AND archived = 0
	`, userID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check active partner: %w", err)
	}
	return count > 0, nil
}

// UpdatePerson applies the non-nil fields of upd and returns the fresh row.
// Returns nil when the person does not exist.
func (db *DB) UpdatePerson(id string, upd PersonUpdate) (*Person, error) {
	var sets []string
	var args []any

	if upd.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *upd.Name)
	}
	if upd.Archetype != nil {
		sets = append(sets, "archetype = ?")
		args = append(args, *upd.Archetype)
	}
	if upd.CadenceDays != nil {
		sets = append(sets, "cadence_days = ?")
		args = append(args, *upd.CadenceDays)
	}
	if upd.Tags != nil {
		tags, err := json.Marshal(upd.Tags)
		if err != nil {
			return nil, fmt.Errorf("encode tags: %w", err)
		}
		sets = append(sets, "tags = ?")
		args = append(args, string(tags))
	}
	if upd.Pinned != nil {
		sets = append(sets, "pinned = ?")
		args = append(args, *upd.Pinned)
	}
	if upd.Archived != nil {
		sets = append(sets, "archived = ?")
		args = append(args, *upd.Archived)
	}
	if len(sets) == 0 {
		return nil, fmt.Errorf("no update fields provided")
	}

	args = append(args, id)
	result, err := db.Exec("UPDATE people SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return nil, fmt.Errorf("update person: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return nil, nil
	}
	return db.GetPerson(id)
}

// UpdateGravity persists a recomputed gravity score and stamps when the
// decay was applied. Used by the decay sweep; the stamp is what keeps a
// repeated sweep inside the same day from charging decay twice.
func (db *DB) UpdateGravity(id string, score float64, now time.Time) error {
	_, err := db.Exec(`UPDATE people SET gravity_score = ?, decayed_at = ? WHERE id = ?`,
		score, now.UnixMilli(), id)
	if err != nil {
		return fmt.Errorf("update gravity: %w", err)
	}
	return nil
}

// LogInteraction records an interaction: boosts the score by 20 (capped
// at 100) and stamps last_interaction. Pinning does not affect this.
func (db *DB) LogInteraction(id string, now time.Time) (*Person, error) {
	p, err := db.GetPerson(id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, nil
	}

	score := p.GravityScore + 20
	if score > 100 {
		score = 100
	}

	_, err = db.Exec(`UPDATE people SET gravity_score = ?, last_interaction = ? WHERE id = ?`,
		score, now.UnixMilli(), id)
	if err != nil {
		return nil, fmt.Errorf("log interaction: %w", err)
	}
	return db.GetPerson(id)
}

// ArchivePerson soft-deletes a person. People are never hard-deleted.
func (db *DB) ArchivePerson(id string) error {
	result, err := db.Exec(`UPDATE people SET archived = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("archive person: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return fmt.Errorf("person %s not found", id)
	}
	return nil
}

// ConnectPerson marks a person as connected to their own telegram account.
func (db *DB) ConnectPerson(id, telegramUserID string) error {
	_, err := db.Exec(`UPDATE people SET connected = 1, telegram_user_id = ? WHERE id = ?`, telegramUserID, id)
	if err != nil {
		return fmt.Errorf("connect person: %w", err)
	}
	return nil
}
