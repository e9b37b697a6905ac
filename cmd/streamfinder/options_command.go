package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"streamfinder/internal/discovery"
)

func newOptionsCommand() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:         "options",
		Short:       "List selectable services, genres, languages and durations",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			choices := discovery.DefaultChoices()
			if jsonOutput {
				return writeJSON(cmd, choices)
			}
			out := cmd.OutOrStdout()
			printOptionList(out, "Streaming services", choices.Services)
			printOptionList(out, "Genres", choices.Genres)
			printOptionList(out, "Languages", choices.Languages)
			durations := make([]string, len(choices.Durations))
			for i, band := range choices.Durations {
				durations[i] = fmt.Sprintf("%s (--duration %s)", band.Label, band.Name)
			}
			printOptionList(out, "Durations", durations)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func printOptionList(out io.Writer, title string, values []string) {
	fmt.Fprintf(out, "%s:\n", title)
	for i, value := range values {
		fmt.Fprintf(out, "  [%d] %s\n", i+1, value)
	}
	fmt.Fprintln(out)
}
