package client

import (
	"context"
	"fmt"

	"github.com/researchaccelerator-hub/youtube-lead-hunter/config"
	"github.com/rs/zerolog/log"
)

// NewSearchProvider creates and connects the provider named in cfg
func NewSearchProvider(ctx context.Context, cfg config.ProviderConfig) (SearchProvider, error) {
	switch cfg.Name {
	case "ytdlp":
		provider := NewYtDlpClient(cfg.YtDlpPath)
		if err := provider.CheckInstalled(ctx); err != nil {
			return nil, err
		}
		log.Info().Str("provider", provider.Name()).Msg("Search provider ready")
		return provider, nil
	case "youtube":
		if cfg.APIKey == "" {
			return nil, ErrMissingAPIKey
		}
		provider, err := NewYouTubeDataClient(DataClientConfig{
			APIKey:            cfg.APIKey,
			RequestsPerSecond: cfg.RequestsPerSecond,
			ChannelCacheSize:  cfg.ChannelCacheSize,
		})
		if err != nil {
			return nil, err
		}
		if err := provider.Connect(ctx); err != nil {
			return nil, err
		}
		log.Info().Str("provider", provider.Name()).Msg("Search provider ready")
		return provider, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, cfg.Name)
	}
}

// CloseProvider disconnects providers that hold a session
func CloseProvider(ctx context.Context, provider SearchProvider) {
	if c, ok := provider.(Connector); ok {
		if err := c.Disconnect(ctx); err != nil {
			log.Error().Err(err).Str("provider", provider.Name()).Msg("Error disconnecting search provider")
		}
	}
}
