package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/researchaccelerator-hub/youtube-lead-hunter/client"
	"github.com/researchaccelerator-hub/youtube-lead-hunter/common"
	"github.com/researchaccelerator-hub/youtube-lead-hunter/standalone"
	"github.com/researchaccelerator-hub/youtube-lead-hunter/state"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newHuntCmd(a *app) *cobra.Command {
	var termsFile, termsURL string

	cmd := &cobra.Command{
		Use:   "hunt [terms...]",
		Short: "Probe search terms and save qualifying channels as leads",
		Long: `Probe each search term in order, keep one qualifying video per channel and
stop once the lead goal is reached. Leads are appended to the output file; the
header row is written only when the file is created.

Terms can be given as arguments (comma separated or not), read from a file with
one term per line, or downloaded from a URL. Press Ctrl+C to stop early; leads
found so far are still saved.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			terms, err := common.CollectTerms(cmd.Context(), args, termsFile, termsURL)
			if err != nil {
				return err
			}
			if len(terms) == 0 {
				return fmt.Errorf("%w: pass terms as arguments or use --terms-file / --terms-url", standalone.ErrNoTerms)
			}

			if err := a.cfg.Validate(); err != nil {
				return err
			}
			hunt := common.HuntConfigFromSettings(a.cfg.Hunt)
			if err := hunt.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			provider, err := client.NewSearchProvider(ctx, a.cfg.Provider)
			if err != nil {
				return fmt.Errorf("failed to create search provider: %w", err)
			}
			defer client.CloseProvider(context.Background(), provider)

			var history standalone.HistoryRecorder
			if path := a.cfg.History.Path; path != "" {
				h, err := state.OpenHuntHistory(path)
				if err != nil {
					log.Warn().Err(err).Str("path", path).Msg("Hunt history unavailable, continuing without it")
				} else {
					defer h.Close()
					history = h
				}
			}

			out := cmd.OutOrStdout()
			summary, err := standalone.RunHunt(ctx, standalone.RunOptions{
				Hunt:               hunt,
				Terms:              terms,
				Provider:           provider,
				Store:              state.NewLeadStore(hunt.OutputFile),
				History:            history,
				Render:             func(msg string) { fmt.Fprintln(out, msg) },
				ProgressBufferSize: a.cfg.Runner.ProgressBuffer,
			})
			if err != nil {
				return err
			}

			if summary.Collected > 0 && summary.Saved == 0 {
				return errors.New("leads were found but could not be saved")
			}
			if summary.Saved > 0 {
				fmt.Fprintf(out, "Leads file: %s\n", summary.OutputFile)
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&termsFile, "terms-file", "", "file with one search term per line")
	flags.StringVar(&termsURL, "terms-url", "", "URL of a file with one search term per line")

	flags.Int("days-ago", 30, "only videos uploaded within this many days")
	flags.Int64("views-min", 1000, "minimum view count (inclusive)")
	flags.Int64("views-max", 70000, "maximum view count (inclusive)")
	flags.Float64("duration-min", 120, "minimum duration in seconds (inclusive)")
	flags.Float64("duration-max", 7200, "maximum duration in seconds (inclusive)")
	flags.Int("limit", 30, "results requested per search term")
	flags.Int("goal", 50, "stop after this many leads")
	flags.StringP("output", "o", "youtube_leads.csv", "CSV file leads are appended to")
	flags.String("provider", "ytdlp", "search provider: ytdlp or youtube")
	flags.String("ytdlp-path", "yt-dlp", "path to the yt-dlp binary")
	flags.Float64("rps", 5, "YouTube Data API requests per second")

	mustBind(a.v.BindPFlag("hunt.days_ago", flags.Lookup("days-ago")))
	mustBind(a.v.BindPFlag("hunt.views_min", flags.Lookup("views-min")))
	mustBind(a.v.BindPFlag("hunt.views_max", flags.Lookup("views-max")))
	mustBind(a.v.BindPFlag("hunt.duration_min", flags.Lookup("duration-min")))
	mustBind(a.v.BindPFlag("hunt.duration_max", flags.Lookup("duration-max")))
	mustBind(a.v.BindPFlag("hunt.search_limit_per_term", flags.Lookup("limit")))
	mustBind(a.v.BindPFlag("hunt.total_goal", flags.Lookup("goal")))
	mustBind(a.v.BindPFlag("hunt.output_file", flags.Lookup("output")))
	mustBind(a.v.BindPFlag("provider.name", flags.Lookup("provider")))
	mustBind(a.v.BindPFlag("provider.ytdlp_path", flags.Lookup("ytdlp-path")))
	mustBind(a.v.BindPFlag("provider.requests_per_second", flags.Lookup("rps")))

	return cmd
}
