package client

import (
	"context"

	youtubemodel "github.com/researchaccelerator-hub/youtube-lead-hunter/model/youtube"
)

// SearchProvider answers "up to N videos for term T" queries.
type SearchProvider interface {
	// SearchVideos runs one query. The returned result may have nil Entries
	// when the provider produced no results collection.
	SearchVideos(ctx context.Context, term string, limit int) (*youtubemodel.SearchResult, error)

	// Name returns the provider name ("ytdlp", "youtube")
	Name() string
}

// Connector is implemented by providers that hold a remote session
type Connector interface {
	// Connect establishes a connection to the service
	Connect(ctx context.Context) error

	// Disconnect closes the connection to the service
	Disconnect(ctx context.Context) error
}
