// Package config provides configuration structures for the lead hunter
package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. HUNTER_HUNT_DAYS_AGO.
const EnvPrefix = "HUNTER"

// Config holds every setting the CLI understands
type Config struct {
	Hunt     HuntSettings     `mapstructure:"hunt" yaml:"hunt" json:"hunt"`
	Provider ProviderConfig   `mapstructure:"provider" yaml:"provider" json:"provider"`
	History  HistoryConfig    `mapstructure:"history" yaml:"history" json:"history"`
	Log      LogConfig        `mapstructure:"log" yaml:"log" json:"log"`
	Runner   RunnerConfig     `mapstructure:"runner" yaml:"runner" json:"runner"`
	Subtitle SubtitleSettings `mapstructure:"subtitle" yaml:"subtitle" json:"subtitle"`
}

// HuntSettings are the filter and goal values for a hunt
type HuntSettings struct {
	DaysAgo            int     `mapstructure:"days_ago" yaml:"days_ago" json:"days_ago"`
	ViewsMin           int64   `mapstructure:"views_min" yaml:"views_min" json:"views_min"`
	ViewsMax           int64   `mapstructure:"views_max" yaml:"views_max" json:"views_max"`
	DurationMin        float64 `mapstructure:"duration_min" yaml:"duration_min" json:"duration_min"` // seconds
	DurationMax        float64 `mapstructure:"duration_max" yaml:"duration_max" json:"duration_max"` // seconds
	SearchLimitPerTerm int     `mapstructure:"search_limit_per_term" yaml:"search_limit_per_term" json:"search_limit_per_term"`
	TotalGoal          int     `mapstructure:"total_goal" yaml:"total_goal" json:"total_goal"`
	OutputFile         string  `mapstructure:"output_file" yaml:"output_file" json:"output_file"`
}

// ProviderConfig selects and configures the video search provider
type ProviderConfig struct {
	Name              string  `mapstructure:"name" yaml:"name" json:"name"` // "ytdlp" or "youtube"
	YtDlpPath         string  `mapstructure:"ytdlp_path" yaml:"ytdlp_path" json:"ytdlp_path"`
	APIKey            string  `mapstructure:"api_key" yaml:"api_key" json:"-"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second" yaml:"requests_per_second" json:"requests_per_second"`
	ChannelCacheSize  int     `mapstructure:"channel_cache_size" yaml:"channel_cache_size" json:"channel_cache_size"`
}

// HistoryConfig points at the SQLite hunt log. An empty path disables it.
type HistoryConfig struct {
	Path string `mapstructure:"path" yaml:"path" json:"path"`
}

// LogConfig controls zerolog output
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level" json:"level"`
	Pretty bool   `mapstructure:"pretty" yaml:"pretty" json:"pretty"`
}

// RunnerConfig tunes the background hunt worker
type RunnerConfig struct {
	ProgressBuffer int `mapstructure:"progress_buffer" yaml:"progress_buffer" json:"progress_buffer"`
}

// SubtitleSettings configures the subtitle helpers
type SubtitleSettings struct {
	FFmpegPath string `mapstructure:"ffmpeg_path" yaml:"ffmpeg_path" json:"ffmpeg_path"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Hunt: HuntSettings{
			DaysAgo:            30,
			ViewsMin:           1000,
			ViewsMax:           70000,
			DurationMin:        120,
			DurationMax:        7200,
			SearchLimitPerTerm: 30,
			TotalGoal:          50,
			OutputFile:         "youtube_leads.csv",
		},
		Provider: ProviderConfig{
			Name:              "ytdlp",
			YtDlpPath:         "yt-dlp",
			RequestsPerSecond: 5,
			ChannelCacheSize:  1000,
		},
		History: HistoryConfig{
			Path: "hunt_history.db",
		},
		Log: LogConfig{
			Level:  "info",
			Pretty: true,
		},
		Runner: RunnerConfig{
			ProgressBuffer: 256,
		},
		Subtitle: SubtitleSettings{
			FFmpegPath: "ffmpeg",
		},
	}
}

// SetDefaults registers DefaultConfig values with v so that env vars and
// bound flags can override every key.
func SetDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("hunt.days_ago", d.Hunt.DaysAgo)
	v.SetDefault("hunt.views_min", d.Hunt.ViewsMin)
	v.SetDefault("hunt.views_max", d.Hunt.ViewsMax)
	v.SetDefault("hunt.duration_min", d.Hunt.DurationMin)
	v.SetDefault("hunt.duration_max", d.Hunt.DurationMax)
	v.SetDefault("hunt.search_limit_per_term", d.Hunt.SearchLimitPerTerm)
	v.SetDefault("hunt.total_goal", d.Hunt.TotalGoal)
	v.SetDefault("hunt.output_file", d.Hunt.OutputFile)
	v.SetDefault("provider.name", d.Provider.Name)
	v.SetDefault("provider.ytdlp_path", d.Provider.YtDlpPath)
	v.SetDefault("provider.api_key", "")
	v.SetDefault("provider.requests_per_second", d.Provider.RequestsPerSecond)
	v.SetDefault("provider.channel_cache_size", d.Provider.ChannelCacheSize)
	v.SetDefault("history.path", d.History.Path)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.pretty", d.Log.Pretty)
	v.SetDefault("runner.progress_buffer", d.Runner.ProgressBuffer)
	v.SetDefault("subtitle.ffmpeg_path", d.Subtitle.FFmpegPath)
}

// NewViper returns a viper instance wired for HUNTER_ env overrides with defaults set.
// .env is loaded first; a missing file is not an error.
func NewViper() *viper.Viper {
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("No .env file loaded")
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)

	// The Data API key is commonly exported without the prefix
	_ = v.BindEnv("provider.api_key", EnvPrefix+"_PROVIDER_API_KEY", "YOUTUBE_API_KEY")
	return v
}

// Load reads an optional config file and unmarshals the merged settings.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
		log.Debug().Str("file", v.ConfigFileUsed()).Msg("Loaded config file")
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// Validate checks settings that do not belong to the hunt filter itself
func (c *Config) Validate() error {
	switch c.Provider.Name {
	case "ytdlp":
		if c.Provider.YtDlpPath == "" {
			return fmt.Errorf("provider.ytdlp_path is required for the ytdlp provider")
		}
	case "youtube":
		if c.Provider.APIKey == "" {
			return fmt.Errorf("provider.api_key (or YOUTUBE_API_KEY) is required for the youtube provider")
		}
	default:
		return fmt.Errorf("unknown provider %q, expected ytdlp or youtube", c.Provider.Name)
	}

	if c.Runner.ProgressBuffer < 1 {
		return fmt.Errorf("runner.progress_buffer must be positive, got %d", c.Runner.ProgressBuffer)
	}
	return nil
}
