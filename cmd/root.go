package cmd

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/pixicode/aws-cloud-archiver/config"
	"github.com/pixicode/aws-cloud-archiver/internal/archiver"
	"github.com/pixicode/aws-cloud-archiver/internal/logger"
	"github.com/pixicode/aws-cloud-archiver/internal/s3client"
)

var (
	cfg       *config.Config
	appLogger = slog.Default()

	// newStore is swapped out in tests.
	newStore = func(c *config.Config) (archiver.ReconcileStore, error) {
		return s3client.New(c)
	}
)

var rootCmd = &cobra.Command{
	Use:   "cloud-archiver",
	Short: "Archive stale files locally and to S3",
	Long: `Cloud Archiver moves files that have not been accessed for a number of days
into a year/month partitioned archive directory, uploads them to an S3 bucket and
records every run in an append-only log.
Configuration is loaded from .env file or environment variables`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogger(cmd)
	},
}

func Execute(ctx context.Context, config *config.Config) error {
	cfg = config
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.AddCommand(archiveCmd)
	rootCmd.AddCommand(reconcileCmd)
	rootCmd.AddCommand(bucketInfoCmd)

	rootCmd.PersistentFlags().StringP("bucket", "b", "", "Override bucket name from config")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
}

func setupLogger(cmd *cobra.Command) error {
	level := cfg.LogLevel
	if isVerbose(cmd) {
		level = "debug"
	}

	l, err := logger.New(logger.Config{
		Level:  level,
		Format: cfg.LogFormat,
		Output: cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	appLogger = l
	slog.SetDefault(l)
	return nil
}

func getBucketName(cmd *cobra.Command) string {
	bucket, _ := cmd.Flags().GetString("bucket")
	if bucket != "" {
		return bucket
	}
	return cfg.BucketName
}

func isVerbose(cmd *cobra.Command) bool {
	verbose, _ := cmd.Flags().GetBool("verbose")
	return verbose
}

// runConfig returns a copy of the loaded config with the bucket override applied.
func runConfig(cmd *cobra.Command) *config.Config {
	c := *cfg
	c.BucketName = getBucketName(cmd)
	return &c
}
