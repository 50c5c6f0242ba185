package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pixicode/aws-cloud-archiver/internal/archiver"
	"github.com/pixicode/aws-cloud-archiver/internal/metrics"
	"github.com/pixicode/aws-cloud-archiver/pkg/utils"
)

var archiveCmd = &cobra.Command{
	Use:   "archive <root>",
	Short: "Archive files that have not been accessed recently",
	Long: `Archive every top-level entry of <root> whose most recent access is older
than the threshold.

The command will:
- Compute the days since last access of each entry (directories use their
  most recently accessed file) and print the shortlist report
- Move every file of the stale entries to <archive-root>/<YYYY>/<MM>/<path>
- Upload the moved files to the bucket as <name>/<YYYY>/<MM>/<path>
- Append one line describing the run to the archive log

A failed move or upload does not stop the run; the command exits non-zero and
the failures are listed in the result. Use reconcile to retry uploads.`,
	Example: `  # Archive entries of ~/Downloads untouched for 30 days
  cloud-archiver archive ~/Downloads --archive-root /mnt/archive --threshold-days 30

  # Show what would be archived without touching anything
  cloud-archiver archive ~/Downloads --archive-root /mnt/archive --dry-run

  # Skip the prompt, name the run and write metrics for node_exporter
  cloud-archiver archive /srv/share --archive-root /srv/archive --name share-2024-05 \
    --confirm --metrics-file /var/lib/node_exporter/archiver.prom`,
	Args: cobra.ExactArgs(1),
	RunE: runArchive,
}

func runArchive(cmd *cobra.Command, args []string) error {
	rootPath := args[0]
	runCfg := runConfig(cmd)

	archiveRoot, _ := cmd.Flags().GetString("archive-root")
	if archiveRoot == "" {
		archiveRoot = runCfg.ArchiveRoot
	}
	archiveName, _ := cmd.Flags().GetString("name")
	if archiveName == "" {
		archiveName = utils.GenerateArchiveName(time.Now())
	}
	if cmd.Flags().Changed("threshold-days") {
		runCfg.AccessThresholdDays, _ = cmd.Flags().GetInt("threshold-days")
	}
	if cmd.Flags().Changed("log-file") {
		runCfg.LogFile, _ = cmd.Flags().GetString("log-file")
	}
	if cmd.Flags().Changed("concurrency") {
		runCfg.UploadConcurrency, _ = cmd.Flags().GetInt("concurrency")
	}
	if cmd.Flags().Changed("timeout") {
		seconds, _ := cmd.Flags().GetInt("timeout")
		runCfg.UploadTimeout = time.Duration(seconds) * time.Second
	}
	confirm, _ := cmd.Flags().GetBool("confirm")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	metricsFile, _ := cmd.Flags().GetString("metrics-file")
	output, _ := cmd.Flags().GetString("output")

	fail := func(err error) error {
		utils.PrintError(cmd.ErrOrStderr(), err, "archive")
		return err
	}

	if err := validateOutputFormat(output); err != nil {
		return fail(err)
	}
	if archiveRoot == "" {
		return fail(fmt.Errorf("archive root is required (--archive-root or ARCHIVE_ROOT)"))
	}
	if err := utils.ValidateDirectory(rootPath); err != nil {
		return fail(err)
	}
	if err := archiver.ValidateArchiveName(archiveName); err != nil {
		return fail(err)
	}

	validate := runCfg.Validate
	if dryRun {
		validate = runCfg.ValidateLocal
	}
	if err := validate(); err != nil {
		return fail(err)
	}

	if !confirm && !dryRun {
		prompt := fmt.Sprintf("WARNING: This will move files under '%s' not accessed for %d days into '%s' and upload them to bucket '%s'",
			rootPath, runCfg.AccessThresholdDays, archiveRoot, runCfg.BucketName)
		if !askConfirmation(cmd, prompt) {
			return nil
		}
	}

	var store archiver.BlobStore
	if !dryRun {
		s, err := newStore(runCfg)
		if err != nil {
			return fail(err)
		}
		store = s
	}

	if isVerbose(cmd) {
		cmd.Printf("Archiving %s into %s as %s\n", rootPath, archiveRoot, archiveName)
		if dryRun {
			cmd.Println("DRY RUN MODE: No files will actually be moved")
		}
	}

	m := metrics.New("cloud_archiver")
	a := archiver.New(store, &archiver.FileLogSink{Path: runCfg.LogFile}, archiver.Options{
		ThresholdDays:     runCfg.AccessThresholdDays,
		Bucket:            runCfg.BucketName,
		UploadConcurrency: runCfg.UploadConcurrency,
		UploadTimeout:     runCfg.UploadTimeout,
		DryRun:            dryRun,
		Report:            cmd.ErrOrStderr(),
	}, archiver.WithLogger(appLogger), archiver.WithMetrics(m))

	result, runErr := a.Archive(cmd.Context(), archiveName, rootPath, archiveRoot)

	if metricsFile != "" {
		if err := m.WriteTextfile(metricsFile); err != nil {
			appLogger.Error("failed to write metrics file", "path", metricsFile, "error", err)
		}
	}

	if result != nil {
		if err := utils.PrintOutput(cmd.OutOrStdout(), result, output); err != nil {
			return fail(err)
		}
	}
	if runErr != nil {
		return fail(runErr)
	}

	if isVerbose(cmd) {
		cmd.Println("Archive operation completed successfully")
	}
	return nil
}

func validateOutputFormat(format string) error {
	switch strings.ToLower(format) {
	case "json", "yaml", "yml":
		return nil
	}
	return fmt.Errorf("unsupported output format: %s (expected: json, yaml)", format)
}

func askConfirmation(cmd *cobra.Command, prompt string) bool {
	out := cmd.ErrOrStderr()
	fmt.Fprintln(out, prompt)
	fmt.Fprint(out, "Are you sure? (yes/no): ")

	var response string
	fmt.Fscanln(cmd.InOrStdin(), &response)
	if response != "yes" && response != "y" && response != "YES" {
		fmt.Fprintln(out, "Operation cancelled.")
		return false
	}
	return true
}

func init() {
	archiveCmd.Flags().String("archive-root", "", "Directory that receives archived files (default: ARCHIVE_ROOT)")
	archiveCmd.Flags().String("name", "", "Archive run name used as the bucket key prefix (default: generated)")
	archiveCmd.Flags().IntP("threshold-days", "d", archiver.DefaultThresholdDays, "Archive entries not accessed for at least this many days (default: ACCESS_THRESHOLD_DAYS)")
	archiveCmd.Flags().String("log-file", "", "Archive log file (default: ARCHIVE_LOG)")
	archiveCmd.Flags().Int("concurrency", 4, "Maximum parallel uploads (default: UPLOAD_CONCURRENCY)")
	archiveCmd.Flags().Int("timeout", 300, "Timeout in seconds for each upload (default: UPLOAD_TIMEOUT)")
	archiveCmd.Flags().Bool("confirm", false, "Skip confirmation prompt")
	archiveCmd.Flags().Bool("dry-run", false, "Print the shortlist without moving or uploading anything")
	archiveCmd.Flags().String("metrics-file", "", "Write run metrics in Prometheus textfile format to this path")
	archiveCmd.Flags().StringP("output", "o", "json", "Result format: json or yaml")
}
