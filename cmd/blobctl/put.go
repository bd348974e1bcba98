package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

func newPutCmd(v *viper.Viper) *cobra.Command {
	var (
		compress bool
		parallel int
	)

	cmd := &cobra.Command{
		Use:   "put <path>...",
		Short: "Upload one or more local files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			backend, err := openBackend(ctx, v)
			if err != nil {
				return err
			}

			g, ctx := errgroup.WithContext(ctx)
			g.SetLimit(parallel)

			for _, path := range args {
				g.Go(func() error {
					f, err := os.Open(path)
					if err != nil {
						return err
					}
					defer f.Close()

					name := filepath.Base(path)
					var content io.Reader = f

					if compress {
						name += ".zst"
						pr, pw := io.Pipe()
						enc, err := zstd.NewWriter(pw)
						if err != nil {
							return err
						}
						go func() {
							_, cerr := io.Copy(enc, f)
							if cerr == nil {
								cerr = enc.Close()
							}
							pw.CloseWithError(cerr)
						}()
						content = pr
					}

					stored, err := backend.Save(ctx, name, content)
					if err != nil {
						return fmt.Errorf("put %s: %w", path, err)
					}

					fmt.Fprintln(cmd.OutOrStdout(), stored)
					return nil
				})
			}

			return g.Wait()
		},
	}

	cmd.Flags().BoolVar(&compress, "zstd", false, "compress with zstd before upload")
	cmd.Flags().IntVar(&parallel, "parallel", 4, "maximum concurrent uploads")

	return cmd
}
