package main

import (
	"fmt"
	"os"

	"github.com/researchaccelerator-hub/youtube-lead-hunter/common"
	"github.com/researchaccelerator-hub/youtube-lead-hunter/config"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// app carries the configuration shared by all commands
type app struct {
	v          *viper.Viper
	configFile string
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.NewViper()}

	root := &cobra.Command{
		Use:   "youtube-lead-hunter",
		Short: "Find YouTube channels worth reaching out to",
		Long: `youtube-lead-hunter probes YouTube search terms, keeps one recent video per
channel that matches the view and duration filters, and appends the channels
to a semicolon-delimited CSV file.

Examples:
  youtube-lead-hunter hunt "gameplay commentary" "speedrun tips" --goal 20
  youtube-lead-hunter hunt --terms-file niches.txt --provider youtube
  youtube-lead-hunter history --limit 5
  youtube-lead-hunter srt --transcript clip.json --out clip.srt`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (yaml, json or toml)")
	flags.String("log-level", "info", "log level (trace, debug, info, warn, error)")
	flags.Bool("log-pretty", true, "human readable console logs")
	flags.String("history", "hunt_history.db", "SQLite hunt history file, empty to disable")
	mustBind(a.v.BindPFlag("log.level", flags.Lookup("log-level")))
	mustBind(a.v.BindPFlag("log.pretty", flags.Lookup("log-pretty")))
	mustBind(a.v.BindPFlag("history.path", flags.Lookup("history")))

	root.AddCommand(
		newHuntCmd(a),
		newHistoryCmd(a),
		newSRTCmd(a),
		newExtractAudioCmd(a),
	)
	return root
}

// load merges config file, env and flags, then configures logging
func (a *app) load() error {
	cfg, err := config.Load(a.v, a.configFile)
	if err != nil {
		return err
	}
	a.cfg = cfg
	common.SetupLogging(cfg.Log.Level, cfg.Log.Pretty)
	log.Debug().Interface("config", cfg).Msg("Configuration loaded")
	return nil
}

// mustBind panics on flag binding errors, which only happen for misspelled flag names
func mustBind(err error) {
	if err != nil {
		panic(fmt.Sprintf("failed to bind flag: %v", err))
	}
}
