package main

import (
	"errors"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newRootCmd() *cobra.Command {
	var (
		configFile string
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:           "blobctl",
		Short:         "Blobctl moves objects in and out of pluggable blob storage backends",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	v := viper.New()

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default blobctl.yaml in . or $HOME/.config/blobctl)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().String("backend", "", "storage backend (file, gcs, s3, oci)")

	cmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		// A local .env is optional; ignore its absence.
		_ = godotenv.Load()

		if err := loadConfig(v, configFile); err != nil {
			return err
		}
		if err := v.BindPFlag("backend", cmd.PersistentFlags().Lookup("backend")); err != nil {
			return err
		}
		return configureLogger(logLevel)
	}

	cmd.AddCommand(
		newPutCmd(v),
		newCatCmd(v),
		newStatCmd(v),
		newExistsCmd(v),
		newRmCmd(v),
		newURLCmd(v),
	)

	return cmd
}

// loadConfig wires the viper instance to the config file and environment.
// Settings resolve flag > env (BLOBCTL_*) > config file.
func loadConfig(v *viper.Viper, configFile string) error {
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("blobctl")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/blobctl")
	}

	v.SetEnvPrefix("BLOBCTL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// Running purely from flags and env is fine.
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) && configFile == "" {
			return nil
		}
		return err
	}
	return nil
}
