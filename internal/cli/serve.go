package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/friendorbit/orbit/internal/config"
	"github.com/friendorbit/orbit/internal/engine"
	"github.com/friendorbit/orbit/internal/server"
	"github.com/friendorbit/orbit/internal/store"
	"github.com/friendorbit/orbit/internal/telegram"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server and background jobs",
	RunE:  runServe,
}

// loadConfig resolves the effective config: file (when given) over
// defaults, env over everything.
func loadConfig() (config.Config, error) {
	cfg := config.Default()
	if configPath != "" {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return cfg, err
		}
	}
	cfg.ApplyEnv()
	return cfg, nil
}

func runServe(cmd *cobra.Command, args []string) error {
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

	srv := server.New(db, cfg.Telegram, VersionString())

	// Bot is optional: without a token the API still works, only the
	// nudges and webhook replies are disabled.
	if cfg.Telegram.BotToken == "" {
		fmt.Fprintln(os.Stderr, "warning: no bot token configured, Telegram nudges disabled")
	} else {
		bot, err := telegram.NewBot(cfg.Telegram.BotToken)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: telegram bot init failed (%v), nudges disabled\n", err)
		} else {
			eng.SetBot(bot, cfg.Telegram.WebAppURL)
			srv.SetBot(bot)
			fmt.Fprintf(os.Stderr, "  bot: @%s\n", bot.Username())
		}
	}

	eng.StartSweepTimer()
	eng.StartPromptTimer()
	eng.StartDigestTimer()
	defer eng.Stop()

	addr := cfg.ListenAddr()
	httpServer := &http.Server{
		Addr:    addr,
		Handler: srv,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		fmt.Fprintf(os.Stderr, "orbit serving on %s\n", addr)
		fmt.Fprintf(os.Stderr, "  db: %s\n", dbPath)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "server error: %v\n", err)
			os.Exit(1)
		}
	}()

	<-done
	fmt.Fprintln(os.Stderr, "\nshutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return httpServer.Shutdown(ctx)
}
