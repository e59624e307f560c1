package main

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/dadolfin1208/signalforge/internal/domain"
	"github.com/dadolfin1208/signalforge/internal/presence"
)

const defaultView = "dashboard"

func newPresenceCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "presence",
		Short: "See who is working on a project",
	}
	cmd.AddCommand(newPresenceListCommand(ctx))
	cmd.AddCommand(newPresenceWatchCommand(ctx))
	return cmd
}

func newPresenceListCommand(ctx *commandContext) *cobra.Command {
	var project string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the current presence of a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := parseProjectID(project)
			if err != nil {
				return err
			}
			api, err := ctx.client()
			if err != nil {
				return err
			}
			snap, err := api.ListPresence(cmd.Context(), projectID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			renderSnapshot(out, snap, shouldColorize(out))
			return nil
		},
	}
	cmd.Flags().StringVarP(&project, "project", "p", "", "Project ID")
	return cmd
}

// presence watch keeps a heartbeat running for the signed-in user and
// prints each polled snapshot until interrupted or --count is reached.
func newPresenceWatchCommand(ctx *commandContext) *cobra.Command {
	var (
		project string
		view    string
		count   int
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Report presence and follow collaborators live",
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := parseProjectID(project)
			if err != nil {
				return err
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			api, err := ctx.client()
			if err != nil {
				return err
			}

			me, err := api.Me(cmd.Context())
			if err != nil {
				return err
			}
			user := domain.User{ID: me.ID, Email: me.Email, FullName: me.FullName, Role: me.Role}

			if view == "" {
				view = cfg.Presence.View
			}
			if view == "" {
				view = defaultView
			}

			logger := ctx.log()
			updates := make(chan *presence.Snapshot)
			stopCh := make(chan struct{})

			heartbeat := presence.NewHeartbeat(api, projectID, user, view, presence.HeartbeatConfig{
				Interval:    seconds(cfg.Presence.HeartbeatSeconds, presence.DefaultHeartbeatInterval),
				CallTimeout: cfg.timeout(),
			}, logger)
			poller := presence.NewPoller(api, projectID, func(snap *presence.Snapshot) {
				select {
				case updates <- snap:
				case <-stopCh:
				}
			}, presence.PollerConfig{
				Interval:    seconds(cfg.Presence.PollSeconds, presence.DefaultPollInterval),
				CallTimeout: cfg.timeout(),
			}, logger)

			heartbeat.Start()
			poller.Start()
			defer func() {
				close(stopCh)
				poller.Stop()
				heartbeat.Stop()
			}()

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			fmt.Fprintf(out, "Watching %s as %s (view %q)\n", projectID, user.DisplayName(), view)

			seen := 0
			for {
				select {
				case <-cmd.Context().Done():
					return nil
				case snap := <-updates:
					fmt.Fprintln(out)
					renderSnapshot(out, snap, colorize)
					seen++
					if count > 0 && seen >= count {
						return nil
					}
				}
			}
		},
	}
	cmd.Flags().StringVarP(&project, "project", "p", "", "Project ID")
	cmd.Flags().StringVar(&view, "view", "", "View label to report (default from config, then \"dashboard\")")
	cmd.Flags().IntVar(&count, "count", 0, "Stop after this many updates (0 watches until interrupted)")
	return cmd
}

func parseProjectID(raw string) (uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return uuid.Nil, errors.New("--project is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid project id %q", raw)
	}
	return id, nil
}

func renderSnapshot(out io.Writer, snap *presence.Snapshot, colorize bool) {
	if len(snap.Records) == 0 {
		fmt.Fprintln(out, "Nobody is here")
		return
	}

	rows := make([][]string, 0, len(snap.Records))
	for _, rec := range snap.Records {
		rows = append(rows, []string{
			rec.UserName,
			rec.UserEmail,
			rec.CurrentView,
			statusLabel(rec.Status, colorize),
			formatAgo(snap.At, rec.LastSeen),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Name", "Email", "View", "Status", "Last Seen"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
	))
	fmt.Fprintf(out, "%d active\n", snap.ActiveCount)

	views := make([]string, 0, len(snap.Editors))
	for v := range snap.Editors {
		views = append(views, v)
	}
	sort.Strings(views)
	for _, v := range views {
		fmt.Fprintf(out, "  %s: %s\n", v, strings.Join(snap.Editors[v], ", "))
	}
}

func formatAgo(now, then time.Time) string {
	if now.IsZero() || then.IsZero() {
		return "-"
	}
	d := now.Sub(then)
	if d < time.Second {
		return "now"
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds ago", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	}
	return fmt.Sprintf("%dh ago", int(d.Hours()))
}
