package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/PoluyanbIch/tabibot/internal/content"
	"github.com/PoluyanbIch/tabibot/internal/logging"
)

func newWordbookCommand(ctx *commandContext) *cobra.Command {
	var searchFlag string
	var chapterFlag int

	cmd := &cobra.Command{
		Use:   "wordbook",
		Short: "List sentence patterns, optionally filtered",
		Long: `List the sentence patterns of every chapter. --search keeps patterns whose
title, description or example sentences contain the term, ignoring case.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			course, err := ctx.course(logging.NewNop())
			if err != nil {
				return err
			}
			entries := course.SearchPatterns(searchFlag)
			if cmd.Flags().Changed("chapter") {
				entries = filterChapter(entries, chapterFlag)
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				if term := strings.TrimSpace(searchFlag); term != "" {
					fmt.Fprintf(out, "No patterns match %q\n", term)
				} else {
					fmt.Fprintln(out, "No patterns found")
				}
				return nil
			}
			fmt.Fprintln(out, renderPatterns(entries))
			fmt.Fprintf(out, "%d patterns\n", len(entries))
			return nil
		},
	}

	cmd.Flags().StringVarP(&searchFlag, "search", "s", "", "Only show patterns containing this text")
	cmd.Flags().IntVar(&chapterFlag, "chapter", 0, "Only show patterns from this chapter")
	return cmd
}

func filterChapter(entries []content.PatternEntry, chapterID int) []content.PatternEntry {
	var out []content.PatternEntry
	for _, e := range entries {
		if e.ChapterID == chapterID {
			out = append(out, e)
		}
	}
	return out
}

func renderPatterns(entries []content.PatternEntry) string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		examples := make([]string, 0, len(e.Examples))
		for _, ex := range e.Examples {
			examples = append(examples, ex.Japanese+"\n"+ex.Korean)
		}
		rows = append(rows, []string{
			e.Key(),
			e.ChapterTitle,
			e.Title,
			e.Description,
			strings.Join(examples, "\n"),
		})
	}
	return tableSpec{
		columns: []column{
			{header: "Key", align: alignRight},
			{header: "Chapter", wrap: 16},
			{header: "Pattern", wrap: 20},
			{header: "Meaning", wrap: 28},
			{header: "Examples", wrap: lineWrap},
		},
	}.render(rows)
}
