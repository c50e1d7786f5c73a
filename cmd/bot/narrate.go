package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/PoluyanbIch/tabibot/internal/config"
	"github.com/PoluyanbIch/tabibot/internal/content"
	"github.com/PoluyanbIch/tabibot/internal/logging"
	"github.com/PoluyanbIch/tabibot/internal/voice"
)

func newNarrateCommand(ctx *commandContext) *cobra.Command {
	var chapterFlag int
	var voicesFlag string
	var langFlag string

	cmd := &cobra.Command{
		Use:   "narrate",
		Short: "Print the narration plan for a chapter conversation",
		Long: `Resolve a voice and prosody for every line of a chapter conversation
and print the resulting timeline. --voices points at a YAML snapshot of the
platform voice list; without it every line uses the platform default voice.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			course, err := ctx.course(logging.NewNop())
			if err != nil {
				return err
			}
			chapter, ok := course.Chapter(chapterFlag)
			if !ok {
				return fmt.Errorf("chapter %d not found", chapterFlag)
			}
			if len(chapter.Conversation) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Chapter %d has no conversation\n", chapter.ID)
				return nil
			}

			var available []voice.Voice
			if strings.TrimSpace(voicesFlag) != "" {
				path, err := config.ExpandPath(voicesFlag)
				if err != nil {
					return err
				}
				available, err = voice.LoadSnapshot(path)
				if err != nil {
					return err
				}
			}

			lang := narrationLanguage(langFlag, course, cfg)
			cues := planChapter(cfg, course, chapter, lang, available)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s) · %s · %d voices\n", chapter.Title, chapter.JapaneseTitle, lang, len(available))
			fmt.Fprintln(out, renderCues(cues))
			if n := len(cues); n > 0 {
				total := cues[n-1].Offset + cues[n-1].Duration
				fmt.Fprintf(out, "Estimated length: %s\n", formatSeconds(total))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&chapterFlag, "chapter", 1, "Chapter id")
	cmd.Flags().StringVar(&voicesFlag, "voices", "", "YAML snapshot of available voices")
	cmd.Flags().StringVar(&langFlag, "lang", "", "Narration language tag (defaults to the course language)")
	return cmd
}

func narrationLanguage(flag string, course *content.Course, cfg *config.Config) string {
	if lang := strings.TrimSpace(flag); lang != "" {
		return lang
	}
	if strings.TrimSpace(course.Language) != "" {
		return course.Lang()
	}
	return cfg.Voice.Language
}

func planChapter(cfg *config.Config, course *content.Course, chapter *content.Chapter, lang string, available []voice.Voice) []voice.Cue {
	overrides := make(map[string]voice.Prosody, len(cfg.Voice.Speakers))
	for name, p := range cfg.Voice.Speakers {
		overrides[name] = voice.Prosody{Pitch: p.Pitch, Rate: p.Rate}
	}
	resolver := voice.NewResolver(overrides)

	lines := make([]voice.Utterance, 0, len(chapter.Conversation))
	for _, line := range chapter.Conversation {
		lines = append(lines, voice.Utterance{
			Speaker: line.Speaker,
			Gender:  voice.ParseGender(course.SpeakerGender(line.Speaker)),
			Text:    line.Japanese,
		})
	}
	return resolver.Plan(lang, lines, available, voice.Pacing{
		CharsPerSecond: cfg.Voice.CharsPerSecond,
		MinPause:       cfg.MinPause(),
	})
}

func renderCues(cues []voice.Cue) string {
	rows := make([][]string, 0, len(cues))
	for _, c := range cues {
		rows = append(rows, []string{
			c.Speaker,
			c.Profile.VoiceName(),
			strconv.FormatFloat(c.Profile.Pitch, 'f', 2, 64),
			strconv.FormatFloat(c.Profile.Rate, 'f', 2, 64),
			formatSeconds(c.Offset),
			formatSeconds(c.Duration),
			c.Text,
		})
	}
	return tableSpec{
		columns: []column{
			{header: "Speaker"},
			{header: "Voice", wrap: 24},
			{header: "Pitch", align: alignRight},
			{header: "Rate", align: alignRight},
			{header: "Start", align: alignRight},
			{header: "Length", align: alignRight},
			{header: "Line", wrap: lineWrap},
		},
	}.render(rows)
}

// lineWrap is measured in terminal cells; a Japanese character takes two.
const lineWrap = 36

func formatSeconds(d time.Duration) string {
	return fmt.Sprintf("%.1fs", d.Seconds())
}
