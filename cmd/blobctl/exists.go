package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newExistsCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "exists <name>",
		Short: "Check whether an object is stored (exit status 1 if not)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			backend, err := openBackend(ctx, v)
			if err != nil {
				return err
			}

			ok, err := backend.Exists(ctx, args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%s: not found", backend.Normalize(args[0]))
			}
			return nil
		},
	}
}
