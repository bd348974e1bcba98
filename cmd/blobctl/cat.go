package main

import (
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/parcelfs/blobstore"
)

func newCatCmd(v *viper.Viper) *cobra.Command {
	var decompress bool

	cmd := &cobra.Command{
		Use:   "cat <name>",
		Short: "Stream a stored object to stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			backend, err := openBackend(ctx, v)
			if err != nil {
				return err
			}

			f, err := backend.Open(ctx, args[0], blobstore.ModeRead)
			if err != nil {
				return err
			}
			defer f.Close()

			var src io.Reader = f
			if decompress {
				dec, err := zstd.NewReader(f)
				if err != nil {
					return err
				}
				defer dec.Close()
				src = dec
			}

			_, err = io.Copy(cmd.OutOrStdout(), src)
			return err
		},
	}

	cmd.Flags().BoolVar(&decompress, "unzstd", false, "decompress zstd content while streaming")

	return cmd
}
