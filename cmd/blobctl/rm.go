package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newRmCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <name>...",
		Short: "Delete stored objects",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			backend, err := openBackend(ctx, v)
			if err != nil {
				return err
			}

			for _, name := range args {
				if err := backend.Delete(ctx, name); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
