package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newLoginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and persist the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("STOCKROOM_PASSWORD")
			}
			if password == "" {
				return fmt.Errorf("--password or STOCKROOM_PASSWORD required")
			}
			c, err := openClient(cmd, false)
			if err != nil {
				return err
			}
			defer c.Close()

			user, err := c.Login(cmd.Context(), email, password).Unpack()
			if err != nil {
				return fmt.Errorf("login: %w", err)
			}
			log.Info().Str("user_id", user.ID).Msg("logged in")
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", user.Email)
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email (required)")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (default $STOCKROOM_PASSWORD)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the persisted session",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openClient(cmd, false)
			if err != nil {
				return err
			}
			defer c.Close()
			if err := c.Logout(cmd.Context()); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user as the backend sees it",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openClient(cmd, true)
			if err != nil {
				return err
			}
			defer c.Close()
			user, err := c.Me(cmd.Context()).Unpack()
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), user)
		},
	}
}
