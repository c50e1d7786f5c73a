package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/PoluyanbIch/tabibot/internal/logging"
)

func newChaptersCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "chapters",
		Short: "List course chapters",
		RunE: func(cmd *cobra.Command, args []string) error {
			course, err := ctx.course(logging.NewNop())
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(course.Chapters))
			for _, ch := range course.Chapters {
				rows = append(rows, []string{
					strconv.Itoa(ch.ID),
					ch.Title,
					ch.JapaneseTitle,
					strconv.Itoa(len(ch.Exercises)),
					strconv.Itoa(len(ch.Conversation)),
					strconv.Itoa(len(ch.Patterns)),
				})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, chaptersTable(course.Title).render(rows))
			fmt.Fprintf(out, "%d exercises in %d chapters\n", course.ExerciseCount(), len(course.Chapters))
			return nil
		},
	}
}

func chaptersTable(title string) tableSpec {
	return tableSpec{
		title: title,
		columns: []column{
			{header: "ID", align: alignRight},
			{header: "Title", wrap: 24},
			{header: "Japanese"},
			{header: "Exercises", align: alignRight},
			{header: "Lines", align: alignRight},
			{header: "Patterns", align: alignRight},
		},
	}
}
