package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/PoluyanbIch/tabibot/internal/leaderboard"
	"github.com/PoluyanbIch/tabibot/internal/telegram"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the Telegram bot until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.RequireTelegram(); err != nil {
				return err
			}

			logger, closeLog, err := ctx.logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closeLog()

			lock := flock.New(cfg.Paths.LockFile)
			ok, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire lock: %w", err)
			}
			if !ok {
				return errors.New("another tabibot instance is already running")
			}
			defer func() {
				if err := lock.Unlock(); err != nil {
					logger.Warn("failed to release lock", "lock", cfg.Paths.LockFile, "error", err)
				}
			}()

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			board, err := leaderboard.Open(runCtx, cfg.Leaderboard, logger)
			if err != nil {
				return fmt.Errorf("open leaderboard: %w", err)
			}
			defer board.Close()

			engine, err := ctx.engine(logger)
			if err != nil {
				return err
			}

			api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
			if err != nil {
				return fmt.Errorf("connect to telegram: %w", err)
			}
			api.Debug = cfg.Telegram.Debug

			bot := telegram.NewBot(api, engine, board, telegram.Options{
				TimeAttack: cfg.TimeAttack(),
				Logger:     logger,
			})
			logger.Info("bot starting",
				"leaderboard", cfg.Leaderboard.Backend,
				"time_attack", cfg.TimeAttack(),
				"lock", cfg.Paths.LockFile,
			)
			return telegram.Listen(runCtx, api, bot)
		},
	}
}
