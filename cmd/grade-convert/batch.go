// Copyright Jeffrey Alan Wang, 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jeffreyalanwang/grade-conversion-script/internal/job"
	"github.com/jeffreyalanwang/grade-conversion-script/internal/merge"
)

var batchCmd = &cobra.Command{
	Use:   "batch FILE",
	Short: "Run the conversions listed in a YAML batch file",
	Long: `Batch runs every job in FILE. Relative paths in a job are resolved against
the directory holding FILE. A failing job does not stop the others; the
command fails if any job failed.

Each job has the keys from, in_params, inputs, to, out_params, template,
output, and optionally mode and warn to override the merge settings. Jobs can
be appended with "grade-convert convert --save-job FILE".`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().Int("parallel", 1, "maximum number of jobs run at once")
	mustBind("batch.parallel", batchCmd.Flags().Lookup("parallel"))

	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	path := args[0]
	file, err := job.ReadFile(path)
	if err != nil {
		return err
	}

	parallel := viper.GetInt("batch.parallel")
	if file.Parallel > 0 && !cmd.Flags().Changed("parallel") {
		parallel = file.Parallel
	}
	policy, err := merge.FromConfig(cfg.Merge)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	jobs := make([]job.Job, len(file.Jobs))
	for i, j := range file.Jobs {
		jobs[i] = j.Resolve(dir)
	}

	logger.Debug("running batch", "path", path, "jobs", len(jobs), "parallel", parallel)
	result := job.RunBatch(cmd.Context(), jobs, policy, parallel)
	reportBatch(cmd.OutOrStdout(), cmd.ErrOrStderr(), result)

	if result.HasFailures() {
		return fmt.Errorf("%d of %d jobs failed", result.Failed, result.Total())
	}
	return nil
}

// reportBatch prints per-job status lines and warnings, then the totals.
func reportBatch(out, errOut io.Writer, result job.BatchResult) {
	for _, r := range result.Reports {
		label := r.Job.Label()
		switch {
		case r.Outcome != nil:
			res := r.Outcome.Result
			logger.Info("converted",
				"run_id", res.RunID,
				"job", label,
				"input", r.Job.From,
				"output", r.Job.To,
				"path", r.Outcome.Path,
				"students", res.Students(),
				"warnings", len(res.Warnings),
			)
			fmt.Fprintf(out, "%s %s -> %s\n", okStyle.Render("converted:"), label, r.Outcome.Path)
			printWarnings(errOut, res.Warnings)
		default:
			logger.Error("job failed", "job", label, "stage", errStage(r.Err), "error", r.Err)
			fmt.Fprintf(out, "%s %s (%v)\n", failStyle.Render("failed:   "), label, r.Err)
		}
	}
	fmt.Fprintf(out, "\nBatch summary: %d converted, %d skipped, %d failed (total: %d)\n",
		result.Converted, result.Skipped, result.Failed, result.Total())
}
