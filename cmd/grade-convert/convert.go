// Copyright Jeffrey Alan Wang, 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jeffreyalanwang/grade-conversion-script/internal/job"
	"github.com/jeffreyalanwang/grade-conversion-script/internal/merge"
	"github.com/jeffreyalanwang/grade-conversion-script/internal/params"
	"github.com/jeffreyalanwang/grade-conversion-script/internal/summary"
	"github.com/jeffreyalanwang/grade-conversion-script/pkg/types"
)

var convertCmd = &cobra.Command{
	Use:   "convert [flags] input...",
	Short: "Convert input spreadsheets into an output format",
	Long: `Convert reads one or more input files with the --from handler, renders the
combined scores with the --to handler and writes the result to --output.

With --template the scores are merged onto an existing document (a Canvas
gradebook export, a rubric export, an ACR table). Cells that already hold a
score are resolved by --mode: overwrite, preserve, increment or error.

If the output file already exists, "_1" is appended to its name.`,
	Example: `  grade-convert convert --from pollev --in-param points=2 \
    --to gradebook --out-param assignment="Attendance (123)" \
    --template gradebook.csv --mode preserve -o out.csv day1.csv day2.csv`,
	Args: cobra.MinimumNArgs(1),
	RunE: runConvert,
}

func init() {
	f := convertCmd.Flags()
	f.String("from", "", "input format (see: grade-convert formats)")
	f.StringArray("in-param", nil, "input parameter as key=value (repeatable)")
	f.String("to", "", "output format (see: grade-convert formats)")
	f.StringArray("out-param", nil, "output parameter as key=value (repeatable)")
	f.String("template", "", "existing document to merge onto")
	f.StringP("output", "o", "", "output file (.csv or .xlsx)")
	f.String("mode", "preserve", "conflict mode: "+modeList())
	f.Bool("warn", true, "warn when an existing score is replaced or kept")
	f.Bool("summary", false, "print per-assignment score statistics")
	f.String("save-job", "", "append this conversion to a batch file")
	_ = convertCmd.MarkFlagRequired("from")
	_ = convertCmd.MarkFlagRequired("to")
	_ = convertCmd.MarkFlagRequired("output")
	mustBind("merge.mode", f.Lookup("mode"))
	mustBind("merge.warn", f.Lookup("warn"))

	rootCmd.AddCommand(convertCmd)
}

func modeList() string {
	s := ""
	for i, m := range merge.Modes {
		if i > 0 {
			s += ", "
		}
		s += string(m)
	}
	return s
}

func runConvert(cmd *cobra.Command, args []string) error {
	j, err := jobFromFlags(cmd, args)
	if err != nil {
		return err
	}
	policy, err := merge.FromConfig(cfg.Merge)
	if err != nil {
		return err
	}

	out, err := job.Run(cmd.Context(), j, policy)
	if err != nil {
		logger.Error("conversion failed", "stage", errStage(err), "input", j.From, "output", j.To, "error", err)
		return err
	}
	res := out.Result
	logger.Info("converted",
		"run_id", res.RunID,
		"input", j.From,
		"output", j.To,
		"path", out.Path,
		"students", res.Students(),
		"warnings", len(res.Warnings),
	)
	printWarnings(cmd.ErrOrStderr(), res.Warnings)

	if show, _ := cmd.Flags().GetBool("summary"); show {
		stats, err := summary.Compute(res.Roster)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), summaryTable(stats))
	}

	if path, _ := cmd.Flags().GetString("save-job"); path != "" {
		if err := job.SaveJob(path, j); err != nil {
			return fmt.Errorf("saving job: %w", err)
		}
		logger.Debug("saved job", "path", path)
	}
	return nil
}

// errStage names the part of a conversion an error came from, for logs.
func errStage(err error) string {
	switch {
	case types.IsInputError(err):
		return "input"
	case types.IsOutputError(err):
		return "output"
	default:
		return "job"
	}
}

// jobFromFlags describes the conversion requested on the command line. Merge
// settings are left to the config so that flags, env and config file layer
// through viper.
func jobFromFlags(cmd *cobra.Command, inputs []string) (job.Job, error) {
	f := cmd.Flags()
	from, _ := f.GetString("from")
	to, _ := f.GetString("to")
	template, _ := f.GetString("template")
	output, _ := f.GetString("output")
	inPairs, _ := f.GetStringArray("in-param")
	outPairs, _ := f.GetStringArray("out-param")

	inParams, err := params.ParseAssignments(inPairs)
	if err != nil {
		return job.Job{}, fmt.Errorf("--in-param: %w", err)
	}
	outParams, err := params.ParseAssignments(outPairs)
	if err != nil {
		return job.Job{}, fmt.Errorf("--out-param: %w", err)
	}

	j := job.Job{
		From:      from,
		InParams:  inParams,
		Inputs:    inputs,
		To:        to,
		OutParams: outParams,
		Template:  template,
		Output:    output,
	}
	// Saved jobs carry the merge settings they ran with.
	if f.Changed("mode") {
		j.Mode = viper.GetString("merge.mode")
	}
	if f.Changed("warn") {
		warn := viper.GetBool("merge.warn")
		j.Warn = &warn
	}
	return j, nil
}
