package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/friendorbit/orbit/internal/engine"
	"github.com/friendorbit/orbit/internal/store"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run one gravity decay sweep and exit",
	Long:  "Recomputes decay for every active person and persists changed scores. Safe to run from cron; a repeat sweep inside the same day writes nothing.",
	RunE:  runSweep,
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	dbPath := cfg.Database.Path
	if dbPath == "" {
		dbPath, err = store.DefaultDBPath()
		if err != nil {
			return fmt.Errorf("resolve db path: %w", err)
		}
	}

	db, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	eng := engine.New(db)
	defer eng.Stop()

	updated, err := eng.RunGravitySweep()
	if err != nil {
		return fmt.Errorf("sweep: %w", err)
	}

	fmt.Printf("sweep complete: %d people updated\n", updated)
	return nil
}
