package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newSessionCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Manage operator sessions",
	}
	cmd.AddCommand(newSessionCreateCommand(ctx))
	cmd.AddCommand(newSessionRevokeCommand(ctx))
	return cmd
}

func newSessionCreateCommand(ctx *commandContext) *cobra.Command {
	var email string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Issue an operator session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("ttl") {
				ttl = cfg.Session.TTL
			}
			logger, closeLog := ctx.logger(cmd.ErrOrStderr())
			defer closeLog()

			return ctx.withStore(logger, func(s *store) error {
				issued, err := s.sessions.Issue(cmd.Context(), email, ttl)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, issued.Token)
				fmt.Fprintf(cmd.ErrOrStderr(), "session for %s expires %s\n", issued.Session.Email, issued.Session.ExpiresAt.Format(time.RFC3339))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Operator email")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "Session lifetime (defaults to session.ttl)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newSessionRevokeCommand(ctx *commandContext) *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "revoke",
		Short: "Revoke an operator session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, closeLog := ctx.logger(cmd.ErrOrStderr())
			defer closeLog()

			return ctx.withStore(logger, func(s *store) error {
				if err := s.sessions.Revoke(cmd.Context(), token); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Session revoked")
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "Session token to revoke")
	_ = cmd.MarkFlagRequired("token")
	return cmd
}
