package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/researchaccelerator-hub/youtube-lead-hunter/state"
	"github.com/spf13/cobra"
)

func newHistoryCmd(a *app) *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List previous hunts",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.cfg.History.Path
			if path == "" {
				return errors.New("hunt history is disabled (empty --history)")
			}

			history, err := state.OpenHuntHistory(path)
			if err != nil {
				return err
			}
			defer history.Close()

			runs, err := history.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if runs == nil {
					runs = []state.HuntRun{}
				}
				return enc.Encode(runs)
			}

			if len(runs) == 0 {
				fmt.Fprintln(out, "No hunts recorded.")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "RUN ID\tSTARTED\tPROVIDER\tSTATUS\tLEADS\tTERMS")
			for _, run := range runs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
					run.RunID,
					run.StartedAt.Local().Format(time.DateTime),
					run.Provider,
					run.Status,
					run.Collected,
					strings.Join(run.Terms, ", "),
				)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of runs to show, 0 for all")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print runs as JSON")
	return cmd
}
