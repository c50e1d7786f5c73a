package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/PoluyanbIch/tabibot/internal/quiz"
	"github.com/PoluyanbIch/tabibot/internal/tui"
)

func newPlayCommand(ctx *commandContext) *cobra.Command {
	var modeFlag string
	var chapterFlag int
	var timeAttack bool
	var noColor bool

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a quiz in the terminal",
		Long: `Play a quiz session in the terminal.

Keys: 1-9 answer, enter next, r retry wrong answers after the result, q quit.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			mode, err := quiz.ParseMode(modeFlag)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("chapter") {
				mode = quiz.ModeChapter
			}

			// The player owns the terminal, so logs only go to the log file.
			logger, closeLog, err := ctx.logger(io.Discard)
			if err != nil {
				return err
			}
			defer closeLog()

			engine, err := ctx.engine(logger)
			if err != nil {
				return err
			}

			var countdown time.Duration
			if timeAttack {
				countdown = cfg.TimeAttack()
			}
			model, err := tui.New(engine, tui.Options{
				Mode:       mode,
				ChapterID:  chapterFlag,
				TimeAttack: countdown,
				NoColor:    noColor || !isTerminal(os.Stdout),
			})
			if errors.Is(err, quiz.ErrEmptyQuestionSet) {
				return fmt.Errorf("no questions to play for %s mode (chapter %d)", mode, chapterFlag)
			}
			if err != nil {
				return err
			}

			program := tea.NewProgram(model,
				tea.WithContext(cmd.Context()),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()),
			)
			final, err := program.Run()
			if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
				return err
			}
			if m, ok := final.(tui.Model); ok {
				if res := m.Result(); res != nil {
					logger.Info("session finished",
						"mode", string(res.Mode),
						"score", res.Score,
						"total", res.Total,
					)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&modeFlag, "mode", "m", string(quiz.ModeRandom), "Question selection: random, full or chapter")
	cmd.Flags().IntVar(&chapterFlag, "chapter", 0, "Chapter id (implies --mode chapter)")
	cmd.Flags().BoolVarP(&timeAttack, "time-attack", "t", false, "Enable the per-question countdown")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	return cmd
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
