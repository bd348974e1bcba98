package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newURLCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "url <name>",
		Short: "Print the access URL for a stored object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			backend, err := openBackend(ctx, v)
			if err != nil {
				return err
			}

			u, err := backend.URL(ctx, args[0])
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), u)
			return nil
		},
	}
}
