package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dadolfin1208/signalforge/internal/client"
)

func newAuthCommands(ctx *commandContext) []*cobra.Command {
	return []*cobra.Command{
		newLoginCommand(ctx),
		newLogoutCommand(ctx),
		newWhoamiCommand(ctx),
	}
}

func newLoginCommand(ctx *commandContext) *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store a session token after verifying it with the dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			token = strings.TrimSpace(token)
			if token == "" {
				return errors.New("--token is required")
			}

			user, err := ctx.clientWithToken(token).Me(cmd.Context())
			if err != nil {
				if errors.Is(err, client.ErrUnauthorized) {
					return errors.New("the dashboard rejected that token")
				}
				return fmt.Errorf("verify token: %w", err)
			}

			if err := updateConfig(ctx.configPath, func(cfg *forgeConfig) {
				cfg.Token = token
				if server := strings.TrimSpace(*ctx.serverFlag); server != "" {
					cfg.Server = server
				}
			}); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", user.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "Session token issued by the dashboard")
	return cmd
}

func newLogoutCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and forget the stored token",
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := ctx.client()
			if errors.Is(err, errNotLoggedIn) {
				fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")
				return nil
			}
			if err != nil {
				return err
			}

			if err := api.Logout(cmd.Context()); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: dashboard logout failed: %v\n", err)
			}
			if err := updateConfig(ctx.configPath, func(cfg *forgeConfig) {
				cfg.Token = ""
			}); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newWhoamiCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := ctx.client()
			if err != nil {
				return err
			}
			user, err := api.Me(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			name := user.FullName
			if name == "" {
				name = user.Email
			}
			fmt.Fprintf(out, "%s <%s>\n", name, user.Email)
			fmt.Fprintf(out, "Role: %s\n", user.Role)
			return nil
		},
	}
}
