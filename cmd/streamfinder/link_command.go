package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"streamfinder/internal/discovery"
)

type linkOutput struct {
	ID        int64  `json:"tmdb_id"`
	Service   string `json:"service"`
	Link      string `json:"link"`
	Available bool   `json:"available"`
}

func newLinkCommand(ctx *commandContext) *cobra.Command {
	var service string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:     "link <tmdb-id>",
		Short:   "Resolve the streaming link for one movie",
		Example: "  streamfinder link 550 --service Netflix",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(strings.TrimSpace(args[0]), 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid tmdb id %q", args[0])
			}
			if strings.TrimSpace(service) == "" {
				return fmt.Errorf("--service is required")
			}
			return ctx.withApp(func(a *app) error {
				link, err := a.discovery.StreamingLink(cmd.Context(), id, service)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, linkOutput{
						ID:        id,
						Service:   strings.TrimSpace(service),
						Link:      link,
						Available: discovery.IsAvailable(link),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), link)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&service, "service", "s", "", "Streaming service name")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
