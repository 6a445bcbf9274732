// Package engine runs orbit's scheduled work: the daily gravity decay
// sweep, battery prompts, and the weekly drift digest.
package engine

import (
	"log"
	"sync/atomic"
	"time"

	"github.com/friendorbit/orbit/internal/gravity"
	"github.com/friendorbit/orbit/internal/store"
	"github.com/friendorbit/orbit/internal/telegram"
)

// Engine orchestrates decay sweeps and bot nudges over the store.
type Engine struct {
	DB        *store.DB
	Bot       telegram.Sender
	WebAppURL string

	stopCh   chan struct{}
	sweeping atomic.Bool
	now      func() time.Time
}

// New creates a new Engine. Bot may stay nil; nudge jobs are skipped
// without one, the sweep runs regardless.
func New(db *store.DB) *Engine {
	return &Engine{
		DB:     db,
		stopCh: make(chan struct{}),
		now:    time.Now,
	}
}

// SetBot configures the outbound Telegram sender used by nudge jobs.
func (e *Engine) SetBot(bot telegram.Sender, webAppURL string) {
	e.Bot = bot
	e.WebAppURL = webAppURL
}

// RunGravitySweep recomputes decay for every active person and persists
// changed scores. Safe to re-run: a second sweep inside the same day
// writes nothing. Overlapping triggers are collapsed to one run.
func (e *Engine) RunGravitySweep() (int, error) {
	if !e.sweeping.CompareAndSwap(false, true) {
		return 0, nil
	}
	defer e.sweeping.Store(false)

	fetch := func() ([]gravity.Relationship, error) {
		people, err := e.DB.ListActivePeople()
		if err != nil {
			return nil, err
		}
		rels := make([]gravity.Relationship, len(people))
		for i := range people {
			rels[i] = people[i].Relationship()
		}
		return rels, nil
	}

	strictnessFor := func(userID string) gravity.Strictness {
		return gravity.Strictness(e.DB.UserStrictness(userID))
	}

	now := e.now()
	persist := func(id string, score float64) error {
		return e.DB.UpdateGravity(id, score, now)
	}

	return gravity.RunSweep(now, fetch, strictnessFor, persist)
}

// StartSweepTimer runs the gravity sweep at startup and then daily.
func (e *Engine) StartSweepTimer() {
	if updated, err := e.RunGravitySweep(); err != nil {
		log.Printf("sweep error: %v", err)
	} else if updated > 0 {
		log.Printf("sweep: updated %d people", updated)
	}

	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if updated, err := e.RunGravitySweep(); err != nil {
					log.Printf("sweep error: %v", err)
				} else if updated > 0 {
					log.Printf("sweep: updated %d people", updated)
				}
			case <-e.stopCh:
				return
			}
		}
	}()
}

// StartPromptTimer sends daily battery prompts. No-op without a bot.
func (e *Engine) StartPromptTimer() {
	if e.Bot == nil {
		return
	}

	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := e.SendBatteryPrompts(); err != nil {
					log.Printf("battery prompt error: %v", err)
				}
			case <-e.stopCh:
				return
			}
		}
	}()
}

// StartDigestTimer sends the weekly drift digest. No-op without a bot.
func (e *Engine) StartDigestTimer() {
	if e.Bot == nil {
		return
	}

	go func() {
		ticker := time.NewTicker(7 * 24 * time.Hour)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := e.SendDriftDigest(); err != nil {
					log.Printf("drift digest error: %v", err)
				}
			case <-e.stopCh:
				return
			}
		}
	}()
}

// Stop shuts down the engine's background goroutines.
func (e *Engine) Stop() {
	close(e.stopCh)
}
