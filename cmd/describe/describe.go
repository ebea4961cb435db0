package describe

import (
	"github.com/spf13/cobra"

	"github.com/bigearthnet-go/bencommon/cmd/cmdutil"
	"github.com/bigearthnet-go/bencommon/internal/catalog"
)

// Command creates a new cobra.Command printing the metadata of patches.
func Command(env *cmdutil.Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "describe [patch]...",
		Short: "Print the metadata of one or more patches",
		Long:  "Print the counterpart, split, country, season and quality flags of S1 or S2 patches.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := env.Catalog()
			if err != nil {
				return err
			}
			infos, err := cat.Describe(args...)
			if err != nil {
				return err
			}
			cmdutil.Println(cmd.OutOrStdout(), Render(infos))
			return nil
		},
	}
	return cmd
}

// Render formats infos as a table with one row per patch.
func Render(infos []catalog.PatchInfo) string {
	rows := make([][]string, 0, len(infos))
	for _, info := range infos {
		rows = append(rows, []string{
			info.S2Name,
			info.S1Name,
			info.Split.String(),
			string(info.Country),
			string(info.Season),
			cmdutil.YesNo(info.Snowy),
			cmdutil.YesNo(info.CloudyOrShadowy),
			cmdutil.YesNo(info.Has19ClassTarget),
		})
	}
	return cmdutil.Table([]string{
		"S2 name", "S1 name", "split", "country", "season", "snow", "cloud/shadow", "19-class target",
	}, rows)
}
