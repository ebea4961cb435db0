package validate

import (
	"context"
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/bigearthnet-go/bencommon/cmd/cmdutil"
	"github.com/bigearthnet-go/bencommon/internal/archive"
	"github.com/bigearthnet-go/bencommon/internal/dataset"
	"github.com/bigearthnet-go/bencommon/internal/errors"
)

type options struct {
	recommended bool
	workers     int
	progress    bool
}

// Command creates a new cobra.Command for archive validation.
func Command(env *cmdutil.Env) *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "validate s1|s2 [directory]",
		Short: "Check that an extracted archive holds every patch",
		Long: "Check that every patch of the sensor has a directory below the given root and that each " +
			"directory holds all band and metadata files. File contents are not verified.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sensor, err := dataset.ParseSensor(args[0])
			if err != nil {
				return err
			}
			return run(cmd.Context(), cmd, env, sensor, args[1], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.recommended, "recommended", false, "Only expect the recommended patches")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 0, "Number of parallel checks (default: logical CPUs)")
	cmd.Flags().BoolVar(&opts.progress, "progress", true, "Show a progress bar")

	return cmd
}

func run(ctx context.Context, cmd *cobra.Command, env *cmdutil.Env, sensor dataset.Sensor, dir string, opts *options) error {
	cat, err := env.Catalog()
	if err != nil {
		return err
	}
	expected, err := cat.AllPatches(sensor)
	if opts.recommended {
		expected, err = cat.RecommendedPatches(sensor)
	}
	if err != nil {
		return err
	}

	validateOpts := []archive.ValidateOption{archive.WithWorkers(opts.workers)}
	var bar *progressbar.ProgressBar
	if opts.progress {
		bar = progressbar.Default(int64(len(expected)), "checking "+string(sensor)+" patches")
		validateOpts = append(validateOpts, archive.WithProgress(func() { _ = bar.Add(1) }))
	}
	report, err := archive.ValidateRoot(ctx, dir, sensor, expected, validateOpts...)
	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if report.Complete() {
		cmdutil.Println(out, cmdutil.Styles.Success.Render(
			fmt.Sprintf("%s holds all %d %s patches", dir, report.Expected, sensor)))
		return nil
	}

	rows := make([][]string, 0, len(report.Missing)+len(report.Incomplete))
	for _, name := range report.Missing {
		rows = append(rows, []string{name, "missing"})
	}
	for _, name := range report.Incomplete {
		rows = append(rows, []string{name, "incomplete"})
	}
	cmdutil.Println(out, cmdutil.Table([]string{"patch", "problem"}, rows))
	cmdutil.Println(out, cmdutil.Styles.Error.Render(
		fmt.Sprintf("%d missing and %d incomplete of %d expected patches",
			len(report.Missing), len(report.Incomplete), report.Expected)))

	return errors.Newf("archive %s is incomplete", dir).
		Component("archive").
		Category(errors.CategoryValidation).
		Context("missing", len(report.Missing)).
		Context("incomplete", len(report.Incomplete)).
		Build()
}
