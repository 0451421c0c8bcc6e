package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"daymark-engine/internal/config"
	"daymark-engine/internal/poll"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Run one aggregator pass and print what each source returned",
	RunE:  runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	dataDir, err := resolveDataDir()
	if err != nil {
		return err
	}
	fl, err := lockDataDir(dataDir)
	if err != nil {
		return fmt.Errorf("%w; use POST /jobs/fetch while the server runs", err)
	}
	defer func() { _ = fl.Unlock() }()

	cfg, _, err := loadConfig(dataDir)
	if err != nil {
		return err
	}
	db, cat, err := openStore(ctx, dataDir)
	if err != nil {
		return err
	}
	defer db.Close()

	runner := poll.NewRunner(db, cat, poll.BuildRegistry(cfg), nil, func() config.Config { return cfg })
	added, runErr := runner.RunOnce(ctx)
	st := runner.Status()

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SOURCE\tJOBS\tTOOK\tNOTE")
	for _, o := range st.Sources {
		note := o.Error
		if o.Skipped {
			note = "not configured"
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", o.Source, o.Jobs, o.Took.Round(time.Millisecond), note)
	}
	_ = tw.Flush()
	fmt.Fprintf(cmd.OutOrStdout(), "total=%d filtered=%d added=%d removed=%d pool=%d\n",
		st.LastFetched, st.LastFiltered, added, st.LastRemoved, cat.Len())
	return runErr
}
