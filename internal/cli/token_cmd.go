package cli

import (
	"fmt"
	"time"

	"github.com/ortelius/media-provisioner/restapi/modules/auth"
	"github.com/spf13/cobra"
)

func newTokenCmd(loader ConfigLoader) *cobra.Command {
	var (
		principal int64
		ttl       time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for the REST API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loader()
			if err != nil {
				return err
			}

			tokens := auth.NewTokens(cfg.JWTSecret)
			signed, err := tokens.GenerateJWT(principal, ttl)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if getOutputFormat(cmd) == "json" {
				return printJSON(out, auth.TokenResponse{
					Principal: principal,
					Token:     signed,
					ExpiresAt: time.Now().Add(ttl).Unix(),
				})
			}
			_, _ = fmt.Fprintln(out, signed)
			return nil
		},
	}

	cmd.Flags().Int64Var(&principal, "principal", 0, "Principal id to put in the token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	_ = cmd.MarkFlagRequired("principal")

	return cmd
}
