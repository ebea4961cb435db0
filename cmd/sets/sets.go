package sets

import (
	"github.com/spf13/cobra"

	"github.com/bigearthnet-go/bencommon/cmd/cmdutil"
	"github.com/bigearthnet-go/bencommon/internal/dataset"
	"github.com/bigearthnet-go/bencommon/internal/sets"
)

type options struct {
	sensor    string
	seasons   []string
	countries []string
	all       bool
	noSplit   bool
}

// Command creates a new cobra.Command writing patch sets as CSV.
func Command(env *cmdutil.Env) *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "sets [output-prefix]",
		Short: "Write the patches of a subset as CSV files",
		Long: "Select patches by sensor, season and country and write them as headerless, naturally " +
			"sorted CSV files. By default one file per original split is written " +
			"(<prefix>_train.csv, <prefix>_validation.csv, <prefix>_test.csv).",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			setOpts, err := opts.toSetOptions()
			if err != nil {
				return err
			}
			cat, err := env.Catalog()
			if err != nil {
				return err
			}
			paths, err := sets.WriteCSVSets(cat, args[0], setOpts, !opts.noSplit)
			if err != nil {
				return err
			}
			for _, p := range paths {
				cmdutil.Println(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.sensor, "sensor", "s2", "Sensor: s1 or s2")
	cmd.Flags().StringSliceVar(&opts.seasons, "season", nil, "Seasons to keep (default: all)")
	cmd.Flags().StringSliceVar(&opts.countries, "country", nil, "Countries to keep (default: all)")
	cmd.Flags().BoolVar(&opts.all, "all", false, "Keep snowy, cloudy and no 19-class target patches")
	cmd.Flags().BoolVar(&opts.noSplit, "no-split", false, "Write a single <prefix>.csv instead of one file per split")

	return cmd
}

func (o *options) toSetOptions() (sets.Options, error) {
	sensor, err := dataset.ParseSensor(o.sensor)
	if err != nil {
		return sets.Options{}, err
	}
	opts := sets.DefaultOptions(sensor)
	opts.RemoveUnrecommended = !o.all

	if len(o.seasons) > 0 {
		opts.Seasons = nil
		for _, s := range o.seasons {
			season, err := dataset.ParseSeason(s)
			if err != nil {
				return sets.Options{}, err
			}
			opts.Seasons = append(opts.Seasons, season)
		}
	}
	if len(o.countries) > 0 {
		opts.Countries = nil
		for _, c := range o.countries {
			country, err := dataset.ParseCountry(c)
			if err != nil {
				return sets.Options{}, err
			}
			opts.Countries = append(opts.Countries, country)
		}
	}
	return opts, nil
}
