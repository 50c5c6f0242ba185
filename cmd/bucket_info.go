package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/pixicode/aws-cloud-archiver/internal/s3client"
	"github.com/pixicode/aws-cloud-archiver/pkg/utils"
)

var bucketInfoCmd = &cobra.Command{
	Use:   "bucket-info",
	Short: "Get archive bucket information",
	Long: `Get object count and size of the archive bucket, optionally limited to the
objects of one archive run.
The bucket name is taken from the configuration file unless overridden with --bucket flag.`,
	Example: `  # Get info for configured bucket
  cloud-archiver bucket-info

  # Get info for one archive run
  cloud-archiver bucket-info --prefix archive-20240501-101500-1a2b3c4d

  # Get info for specific bucket
  cloud-archiver bucket-info --bucket my-other-bucket`,
	Args: cobra.NoArgs,
	RunE: runBucketInfo,
}

func runBucketInfo(cmd *cobra.Command, args []string) error {
	runCfg := runConfig(cmd)
	prefix, _ := cmd.Flags().GetString("prefix")
	output, _ := cmd.Flags().GetString("output")
	timeout, _ := cmd.Flags().GetInt("timeout")

	fail := func(err error) error {
		utils.PrintError(cmd.ErrOrStderr(), err, "bucket-info")
		return err
	}

	if err := validateOutputFormat(output); err != nil {
		return fail(err)
	}
	if err := runCfg.Validate(); err != nil {
		return fail(err)
	}

	client, err := s3client.New(runCfg)
	if err != nil {
		return fail(err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Duration(timeout)*time.Second)
	defer cancel()

	if isVerbose(cmd) {
		cmd.Printf("Getting bucket information for: %s\n", runCfg.BucketName)
	}

	info, err := client.GetBucketInfo(ctx, runCfg.BucketName, prefix)
	if err != nil {
		return fail(err)
	}

	if err := utils.PrintOutput(cmd.OutOrStdout(), info, output); err != nil {
		return fail(err)
	}

	if isVerbose(cmd) {
		cmd.Printf("Bucket info retrieved successfully\n")
	}
	return nil
}

func init() {
	bucketInfoCmd.Flags().String("prefix", "", "Only count objects under this key prefix (an archive name)")
	bucketInfoCmd.Flags().Int("timeout", 300, "Timeout in seconds for the operation")
	bucketInfoCmd.Flags().StringP("output", "o", "json", "Result format: json or yaml")
}
