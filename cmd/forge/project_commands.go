package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newProjectsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "Work with dashboard projects",
	}
	cmd.AddCommand(newProjectsListCommand(ctx))
	return cmd
}

func newProjectsListCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects, most recently opened first",
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := ctx.client()
			if err != nil {
				return err
			}
			projects, err := api.ListProjects(cmd.Context(), limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(projects) == 0 {
				fmt.Fprintln(out, "No projects")
				return nil
			}

			rows := make([][]string, 0, len(projects))
			for _, p := range projects {
				opened := "never"
				if p.LastOpened != nil {
					opened = p.LastOpened.Local().Format("2006-01-02 15:04")
				}
				rows = append(rows, []string{
					p.ID.String(),
					p.Name,
					strconv.Itoa(p.Tempo),
					strconv.Itoa(p.TracksCount),
					p.OwnerEmail,
					opened,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Name", "Tempo", "Tracks", "Owner", "Last Opened"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignLeft},
			))
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of projects to show")
	return cmd
}
