package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pixicode/aws-cloud-archiver/internal/archiver"
	"github.com/pixicode/aws-cloud-archiver/pkg/utils"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Re-upload archived files missing from the bucket",
	Long: `Read the manifest the named run left in the archive root and make sure every
file it moved exists in the bucket under <name>/<path relative to the archive
root>. Files whose object is missing are uploaded again; files already present
are left alone. Files archived by other runs are never uploaded.

Use --prefix to limit the check to one month of the run, for example 2024/05.`,
	Example: `  # Retry the uploads of a run that failed part way
  cloud-archiver reconcile --archive-root /mnt/archive --name archive-20240501-101500-1a2b3c4d

  # Only look at one month
  cloud-archiver reconcile --archive-root /mnt/archive --name share-2024-05 --prefix 2024/05`,
	Args: cobra.NoArgs,
	RunE: runReconcile,
}

func runReconcile(cmd *cobra.Command, args []string) error {
	runCfg := runConfig(cmd)

	archiveRoot, _ := cmd.Flags().GetString("archive-root")
	if archiveRoot == "" {
		archiveRoot = runCfg.ArchiveRoot
	}
	archiveName, _ := cmd.Flags().GetString("name")
	prefix, _ := cmd.Flags().GetString("prefix")
	output, _ := cmd.Flags().GetString("output")
	timeout, _ := cmd.Flags().GetInt("timeout")

	fail := func(err error) error {
		utils.PrintError(cmd.ErrOrStderr(), err, "reconcile")
		return err
	}

	if err := validateOutputFormat(output); err != nil {
		return fail(err)
	}
	if archiveName == "" {
		return fail(fmt.Errorf("archive name is required (--name)"))
	}
	if archiveRoot == "" {
		return fail(fmt.Errorf("archive root is required (--archive-root or ARCHIVE_ROOT)"))
	}
	if err := archiver.ValidateArchiveName(archiveName); err != nil {
		return fail(err)
	}
	if err := utils.ValidateDirectory(archiveRoot); err != nil {
		return fail(err)
	}
	if err := runCfg.Validate(); err != nil {
		return fail(err)
	}

	store, err := newStore(runCfg)
	if err != nil {
		return fail(err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Duration(timeout)*time.Second)
	defer cancel()

	if isVerbose(cmd) {
		cmd.Printf("Reconciling %s against bucket %s\n", archiveRoot, runCfg.BucketName)
	}

	reconciler := archiver.NewReconciler(store, runCfg.BucketName, appLogger)
	result, runErr := reconciler.Reconcile(ctx, archiveName, archiveRoot, prefix)

	if err := utils.PrintOutput(cmd.OutOrStdout(), result, output); err != nil {
		return fail(err)
	}
	if runErr != nil {
		return fail(runErr)
	}

	if isVerbose(cmd) {
		cmd.Printf("Reconcile completed: %d uploaded\n", len(result.Uploaded))
	}
	return nil
}

func init() {
	reconcileCmd.Flags().String("archive-root", "", "Archive directory holding the run and its manifest (default: ARCHIVE_ROOT)")
	reconcileCmd.Flags().String("name", "", "Archive run name used as the bucket key prefix (required)")
	reconcileCmd.Flags().String("prefix", "", "Only check files of the run beneath this path, e.g. 2024/05")
	reconcileCmd.Flags().Int("timeout", 1800, "Timeout in seconds for the operation (default: 30 minutes)")
	reconcileCmd.Flags().StringP("output", "o", "json", "Result format: json or yaml")
}
