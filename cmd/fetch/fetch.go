package fetch

import (
	"context"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/bigearthnet-go/bencommon/cmd/cmdutil"
	"github.com/bigearthnet-go/bencommon/internal/conf"
	"github.com/bigearthnet-go/bencommon/internal/errors"
	"github.com/bigearthnet-go/bencommon/internal/logger"
	"github.com/bigearthnet-go/bencommon/internal/resource"
)

type options struct {
	force       bool
	skipBorders bool
}

// Command creates a new cobra.Command downloading lookup tables and country
// borders into the data directory.
func Command(env *cmdutil.Env) *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download lookup tables and country borders",
		Long: "Download the compressed lookup tables from fetch.base_url and the Natural Earth country " +
			"borders from fetch.countries_url into the data directory. Existing files are kept unless --force is given.\n\n" +
			"Without fetch.base_url only the snow and cloud/shadow tables are downloaded, uncompressed, from " +
			"bigearth.net. The correspondence, split and no-19-class-target tables have no upstream source and " +
			"require a mirror.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := env.Fetcher()
			if err != nil {
				return err
			}
			paths, err := run(cmd.Context(), f, env.Settings.Fetch, opts)
			if err != nil {
				return err
			}
			for _, p := range paths {
				cmdutil.Println(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&opts.force, "force", "f", false, "Download again even if the files exist")
	cmd.Flags().BoolVar(&opts.skipBorders, "skip-borders", false, "Do not download the country borders")

	return cmd
}

func run(ctx context.Context, f *resource.Fetcher, settings conf.FetchSettings, opts *options) ([]string, error) {
	log := logger.Global().Module("fetch")

	var paths []string
	var urls []string
	if settings.BaseURL == "" {
		log.Warn("fetch.base_url is not set, fetching only the tables published on bigearth.net")
		sources, err := fetchSources(ctx, f, opts.force)
		if err != nil {
			return nil, err
		}
		paths = append(paths, sources...)
	} else {
		tables, err := TableURLs(settings.BaseURL)
		if err != nil {
			return nil, err
		}
		urls = append(urls, tables...)
	}
	if !opts.skipBorders {
		urls = append(urls, settings.CountriesURL)
	}
	if len(urls) == 0 {
		return paths, nil
	}
	fetched, err := f.FetchAll(ctx, urls, opts.force)
	if err != nil {
		return nil, err
	}
	return append(paths, fetched...), nil
}

// fetchSources downloads the tables that have an upstream location, stored
// under their uncompressed names.
func fetchSources(ctx context.Context, f *resource.Fetcher, force bool) ([]string, error) {
	sources := resource.SourceURLs()
	var paths []string
	for _, res := range resource.All() {
		u, ok := sources[res]
		if !ok {
			continue
		}
		p, err := f.FetchAs(ctx, u, res.Plain(), force)
		if err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}

// TableURLs returns the download URL of every lookup table below base.
func TableURLs(base string) ([]string, error) {
	all := resource.All()
	urls := make([]string, 0, len(all))
	for _, res := range all {
		u, err := url.JoinPath(base, res.String())
		if err != nil {
			return nil, errors.New(err).
				Component("resource").
				Category(errors.CategoryConfiguration).
				Context("base_url", base).
				Build()
		}
		urls = append(urls, u)
	}
	return urls, nil
}
