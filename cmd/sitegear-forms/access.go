package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sitegear/go-sitegear/internal/config"
)

var errDenied = errors.New("access denied")

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check SUBJECT PRIVILEGE",
		Short: "Check a privilege through the configured access controller",
		Long:  "Check a privilege through the controller selected by SITEGEAR_ACCESS. Any failure to reach the policy store is reported as denied.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			controller, closeFn, err := a.cfg.Controller(cmd.Context(), a.logger)
			if err != nil {
				a.logger.Warn("access controller unavailable, denying", "error", err)
				fmt.Fprintln(cmd.OutOrStdout(), "denied")
				return errDenied
			}
			defer func() { _ = closeFn() }()

			if !controller.CheckPrivilege(cmd.Context(), args[0], args[1]) {
				fmt.Fprintln(cmd.OutOrStdout(), "denied")
				return errDenied
			}
			fmt.Fprintln(cmd.OutOrStdout(), "allowed")
			return nil
		},
	}
}

func newGrantCmd(a *app) *cobra.Command {
	var (
		subjects []string
		revoke   bool
	)
	cmd := &cobra.Command{
		Use:   "grant ROLE PRIVILEGE...",
		Short: "Grant privileges to a role in the Redis policy store",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.AccessMode != config.AccessRedis {
				return fmt.Errorf("grant requires SITEGEAR_ACCESS=redis, got %q", a.cfg.AccessMode)
			}
			store, closeFn, err := a.cfg.RedisStore(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = closeFn() }()

			ctx := cmd.Context()
			role, privileges := args[0], args[1:]
			if revoke {
				if err := store.Revoke(ctx, role, privileges...); err != nil {
					return err
				}
				a.logger.Info("privileges revoked", "role", role, "privileges", privileges)
			} else {
				if err := store.Grant(ctx, role, privileges...); err != nil {
					return err
				}
				a.logger.Info("privileges granted", "role", role, "privileges", privileges)
			}
			for _, subject := range subjects {
				if err := store.Assign(ctx, subject, role); err != nil {
					return err
				}
				a.logger.Info("role assigned", "subject", subject, "role", role)
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&subjects, "assign", nil, "Subjects to assign the role to")
	cmd.Flags().BoolVar(&revoke, "revoke", false, "Revoke the privileges instead of granting them")
	return cmd
}
