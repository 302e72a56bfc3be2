package cli

import (
	"errors"
	"fmt"

	"github.com/ortelius/media-provisioner/internal/commands"
	"github.com/spf13/cobra"
)

const (
	// AddUse is the one-shot add command
	AddUse = commands.AddCommand
	// DeleteUse is the one-shot delete command
	DeleteUse = commands.DeleteCommand
)

func newBatchCmd(name string, loader ConfigLoader, newLogger LoggerFactory) *cobra.Command {
	var principal int64

	short := "Create accounts on every configured backend"
	if name == DeleteUse {
		short = "Delete accounts from every configured backend"
	}

	cmd := &cobra.Command{
		Use:   name + " <username> [username...]",
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loader()
			if err != nil {
				return err
			}
			logger := newLogger()
			defer func() { _ = logger.Sync() }()

			action, _ := commands.ActionFor(name)
			app := NewApp(cfg, logger)
			reply := app.Dispatcher.Run(cmd.Context(), principal, action, args)

			switch reply.Status {
			case commands.StatusUnauthorized, commands.StatusUsage:
				return errors.New(reply.Text)
			}

			out := cmd.OutOrStdout()
			if getOutputFormat(cmd) == "json" {
				if err := printJSON(out, reply.Result); err != nil {
					return err
				}
			} else {
				_, _ = fmt.Fprintln(out, reply.Text)
			}

			if reply.Status == commands.StatusPartial {
				return fmt.Errorf("%d operation(s) failed", len(reply.Result.Failures()))
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&principal, "principal", 0, "Principal id issuing the command; must be in AUTHORIZED_USERS")
	_ = cmd.MarkFlagRequired("principal")

	return cmd
}
