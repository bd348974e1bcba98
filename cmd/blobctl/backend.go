package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/viper"

	"github.com/parcelfs/blobstore"
	"github.com/parcelfs/blobstore/file"
	"github.com/parcelfs/blobstore/gcs"
	"github.com/parcelfs/blobstore/immutable"
	"github.com/parcelfs/blobstore/oci"
	"github.com/parcelfs/blobstore/s3"
)

// openBackend builds the configured storage backend.
func openBackend(ctx context.Context, v *viper.Viper) (blobstore.Backend, error) {
	logger := slog.Default()

	switch name := v.GetString("backend"); name {
	case "file":
		return file.New(file.Config{
			Root:    v.GetString("file.root"),
			BaseURL: v.GetString("file.base_url"),
		}, file.WithLogger(logger))

	case "gcs":
		return gcs.New(ctx, gcs.Config{
			Bucket:  v.GetString("gcs.bucket"),
			Prefix:  v.GetString("gcs.prefix"),
			BaseURL: v.GetString("gcs.base_url"),
		}, gcs.WithLogger(logger))

	case "s3":
		return s3.New(s3.Config{
			Endpoint:  v.GetString("s3.endpoint"),
			Bucket:    v.GetString("s3.bucket"),
			Region:    v.GetString("s3.region"),
			AccessKey: v.GetString("s3.access_key"),
			SecretKey: v.GetString("s3.secret_key"),
			UseSSL:    v.GetBool("s3.use_ssl"),
			PathStyle: v.GetBool("s3.path_style"),
		}, s3.WithLogger(logger))

	case "oci":
		opts := []oci.Option{oci.WithLogger(logger)}
		if v.GetBool("oci.plain_http") {
			opts = append(opts, oci.WithPlainHTTP())
		}
		if user := v.GetString("oci.username"); user != "" {
			opts = append(opts, oci.WithStaticCredentials(user, v.GetString("oci.password")))
		}
		resolver, err := oci.New(v.GetString("oci.repository"), opts...)
		if err != nil {
			return nil, err
		}
		return immutable.New(resolver, immutable.WithLogger(logger))

	case "":
		return nil, fmt.Errorf("no backend selected: set --backend or the backend config key")

	default:
		return nil, fmt.Errorf("unknown backend %q (want file, gcs, s3, or oci)", name)
	}
}
