package constants

import (
	"fmt"
	"maps"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/bigearthnet-go/bencommon/cmd/cmdutil"
	"github.com/bigearthnet-go/bencommon/internal/bands"
	"github.com/bigearthnet-go/bencommon/internal/dataset"
	"github.com/bigearthnet-go/bencommon/internal/errors"
	"github.com/bigearthnet-go/bencommon/internal/taxonomy"
)

// Tables lists the printable tables in the order "all" prints them.
var Tables = []string{"labels", "clc", "bands", "countries", "sizes"}

// Command creates a new cobra.Command printing the static tables.
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "constants [labels|clc|bands|countries|sizes]",
		Short:     "Print the static BigEarthNet tables",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: Tables,
		RunE: func(cmd *cobra.Command, args []string) error {
			names := Tables
			if len(args) == 1 {
				names = args
			}
			for _, name := range names {
				out, err := Render(name)
				if err != nil {
					return err
				}
				cmdutil.Println(cmd.OutOrStdout(), out)
			}
			return nil
		},
	}
	return cmd
}

// Render formats one table.
func Render(name string) (string, error) {
	switch name {
	case "labels":
		return labels(), nil
	case "clc":
		return clc(), nil
	case "bands":
		return bandTable(), nil
	case "countries":
		return countries(), nil
	case "sizes":
		return sizes(), nil
	default:
		return "", errors.Newf("unknown table %q, use one of %v", name, Tables).
			Component("constants").
			Category(errors.CategoryValidation).
			Build()
	}
}

func labels() string {
	rows := make([][]string, 0, 43)
	for _, old := range taxonomy.OldLabels(false) {
		newLabel, kept, _ := taxonomy.OldToNewLabel(old)
		if !kept {
			newLabel = "(removed)"
		}
		rows = append(rows, []string{old, newLabel})
	}
	return cmdutil.Table([]string{"43-class label", "19-class label"}, rows)
}

func clc() string {
	toL2 := taxonomy.CLCLevel3ToLevel2()
	toL1 := taxonomy.CLCLevel3ToLevel1()
	labels := taxonomy.CLCLevel3Labels()
	rows := make([][]string, 0, len(labels))
	for _, l3 := range labels {
		code := ""
		if c, ok := taxonomy.CLCCode(l3); ok {
			code = strconv.Itoa(c)
		}
		rows = append(rows, []string{code, l3, toL2[l3], toL1[l3]})
	}
	return cmdutil.Table([]string{"code", "level 3", "level 2", "level 1"}, rows)
}

func bandTable() string {
	rows := make([][]string, 0, len(bands.Channels))
	for _, b := range bands.Channels {
		s, _ := bands.StatsOf(b)
		rows = append(rows, []string{b, fmt.Sprintf("%.4f", s.Mean), fmt.Sprintf("%.4f", s.Std)})
	}
	out := cmdutil.Table([]string{"band", "mean", "std"}, rows)

	dtypes := slices.Sorted(maps.Keys(bands.MaxValueByDtype))
	maxRows := make([][]string, 0, len(dtypes))
	for _, d := range dtypes {
		maxRows = append(maxRows, []string{d, strconv.FormatFloat(bands.MaxValueByDtype[d], 'g', -1, 64)})
	}
	return out + "\n" + cmdutil.Table([]string{"dtype", "max value"}, maxRows)
}

func countries() string {
	all := dataset.AllCountries()
	rows := make([][]string, 0, len(all))
	for _, c := range all {
		rows = append(rows, []string{string(c), c.ISOA2()})
	}
	return cmdutil.Table([]string{"country", "ISO A2"}, rows)
}

func sizes() string {
	return cmdutil.KeyValues("archive sizes", [][]string{
		{"complete", strconv.Itoa(dataset.CompleteSize)},
		{"snowy", strconv.Itoa(dataset.SnowyPatchesCount)},
		{"cloudy or shadowy", strconv.Itoa(dataset.CloudyOrShadowyCount)},
		{"no 19-class target", strconv.Itoa(dataset.No19ClassTargetCount)},
		{"recommended", strconv.Itoa(dataset.RecommendedSize)},
		{"patch size (m)", strconv.Itoa(dataset.PatchSizeMeters)},
	})
}
