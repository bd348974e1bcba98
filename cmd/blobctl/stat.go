package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newStatCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "stat <name>",
		Short: "Show size and existence of a stored object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			backend, err := openBackend(ctx, v)
			if err != nil {
				return err
			}

			name := backend.Normalize(args[0])

			ok, err := backend.Exists(ctx, name)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%s: not found", name)
			}

			size, err := backend.Size(ctx, name)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\n", name, size)
			return nil
		},
	}
}
