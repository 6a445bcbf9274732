package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// BatteryLog is one social battery reading.
type BatteryLog struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Score     int    `json:"score"`
	CreatedAt int64  `json:"created_at"`
}

// LogBattery records a battery reading and stamps it on the user row.
func (db *DB) LogBattery(userID string, score int, now time.Time) (*BatteryLog, error) {
	log := &BatteryLog{
		ID:        uuid.NewString(),
		UserID:    userID,
		Score:     score,
		CreatedAt: now.UnixMilli(),
	}

	_, err := db.Exec(`
		INSERT INTO battery_logs (id, user_id, score, created_at)
		VALUES (?, ?, ?, ?)
	`, log.ID, log.UserID, log.Score, log.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("log battery: %w", err)
	}

	if err := db.StampBattery(userID, score, log.CreatedAt); err != nil {
		return nil, err
	}
	return log, nil
}

// RecentBatteryLogs returns the user's most recent readings, newest first.
func (db *DB) RecentBatteryLogs(userID string, limit int) ([]BatteryLog, error) {
	rows, err := db.Query(`
		SELECT id, user_id, score, created_at FROM battery_logs
		WHERE user_id = ? ORDER BY created_at DESC LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent battery logs: %w", err)
	}
	defer rows.Close()

	var logs []BatteryLog
	for rows.Next() {
		var l BatteryLog
		if err := rows.Scan(&l.ID, &l.UserID, &l.Score, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan battery log: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
