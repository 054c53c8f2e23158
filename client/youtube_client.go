package client

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	youtubemodel "github.com/researchaccelerator-hub/youtube-lead-hunter/model/youtube"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"
	ytapi "google.golang.org/api/youtube/v3"
)

const (
	defaultChannelCacheSize = 1000
	defaultCallTimeout      = 30 * time.Second
	maxResultsPerPage       = 50
)

// PT#H#M#S, optionally prefixed with a day component (P1DT2H)
var isoDurationPattern = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+(?:\.\d+)?)S)?)?$`)

// DataClientConfig configures the YouTube Data API provider
type DataClientConfig struct {
	APIKey            string
	RequestsPerSecond float64 // <= 0 disables rate limiting
	ChannelCacheSize  int

	// Endpoint and HTTPClient override the API location, mainly for tests
	Endpoint   string
	HTTPClient *http.Client
}

// YouTubeDataClient implements SearchProvider using the YouTube Data API v3
type YouTubeDataClient struct {
	mu          sync.RWMutex
	service     *ytapi.Service
	apiKey      string
	endpoint    string
	httpClient  *http.Client
	callTimeout time.Duration

	limiter *rate.Limiter

	// channel ID -> custom URL handle ("@name")
	handleCache *lru.Cache[string, string]
}

// NewYouTubeDataClient creates a new YouTube data client
func NewYouTubeDataClient(cfg DataClientConfig) (*YouTubeDataClient, error) {
	if cfg.APIKey == "" && cfg.HTTPClient == nil {
		return nil, ErrMissingAPIKey
	}

	size := cfg.ChannelCacheSize
	if size <= 0 {
		size = defaultChannelCacheSize
	}
	handleCache, err := lru.New[string, string](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create channel cache: %w", err)
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	return &YouTubeDataClient{
		apiKey:      cfg.APIKey,
		endpoint:    cfg.Endpoint,
		httpClient:  cfg.HTTPClient,
		callTimeout: defaultCallTimeout,
		limiter:     rate.NewLimiter(limit, 1),
		handleCache: handleCache,
	}, nil
}

// Name returns "youtube"
func (c *YouTubeDataClient) Name() string {
	return "youtube"
}

// Connect establishes a connection to the YouTube API
func (c *YouTubeDataClient) Connect(ctx context.Context) error {
	log.Info().Msg("Connecting to YouTube API")

	var opts []option.ClientOption
	if c.httpClient != nil {
		opts = append(opts, option.WithHTTPClient(c.httpClient))
	} else {
		opts = append(opts, option.WithAPIKey(c.apiKey))
	}
	if c.endpoint != "" {
		opts = append(opts, option.WithEndpoint(c.endpoint))
	}

	service, err := ytapi.NewService(ctx, opts...)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create YouTube service")
		return fmt.Errorf("failed to create YouTube service: %w", err)
	}

	c.mu.Lock()
	c.service = service
	c.mu.Unlock()

	log.Info().Msg("Connected to YouTube API successfully")
	return nil
}

// Disconnect closes the connection to the YouTube API
func (c *YouTubeDataClient) Disconnect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.service = nil
	return nil
}

func (c *YouTubeDataClient) getService() (*ytapi.Service, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.service == nil {
		return nil, ErrNotConnected
	}
	return c.service, nil
}

// SearchVideos pages through search.list until limit video IDs were seen, then
// enriches each page with videos.list (statistics, duration) and channel handles.
func (c *YouTubeDataClient) SearchVideos(ctx context.Context, term string, limit int) (*youtubemodel.SearchResult, error) {
	service, err := c.getService()
	if err != nil {
		return nil, err
	}

	log.Debug().Str("term", term).Int("limit", limit).Msg("Searching YouTube Data API")

	result := &youtubemodel.SearchResult{
		Query:   term,
		Entries: make([]*youtubemodel.VideoCandidate, 0, limit),
	}

	var pageToken string
	for len(result.Entries) < limit {
		pageSize := min(maxResultsPerPage, limit-len(result.Entries))

		call := service.Search.List([]string{"id", "snippet"}).
			Q(term).
			Type("video").
			MaxResults(int64(pageSize))
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		var resp *ytapi.SearchListResponse
		err := c.do(ctx, func(callCtx context.Context) error {
			var doErr error
			resp, doErr = call.Context(callCtx).Do()
			return doErr
		})
		if err != nil {
			return nil, &ProviderError{Provider: c.Name(), Term: term, Err: fmt.Errorf("search.list failed: %w", err)}
		}

		videoIDs := make([]string, 0, len(resp.Items))
		for _, item := range resp.Items {
			if item.Id != nil && item.Id.VideoId != "" {
				videoIDs = append(videoIDs, item.Id.VideoId)
			}
		}
		if len(videoIDs) == 0 {
			break
		}

		candidates, err := c.fetchCandidates(ctx, service, videoIDs)
		if err != nil {
			return nil, &ProviderError{Provider: c.Name(), Term: term, Err: err}
		}
		for _, candidate := range candidates {
			if len(result.Entries) >= limit {
				break
			}
			result.Entries = append(result.Entries, candidate)
		}

		if resp.NextPageToken == "" {
			break
		}
		pageToken = resp.NextPageToken
	}

	log.Debug().Str("term", term).Int("video_count", len(result.Entries)).Msg("YouTube search completed")
	return result, nil
}

// fetchCandidates loads details for videoIDs and returns them in the same order
func (c *YouTubeDataClient) fetchCandidates(ctx context.Context, service *ytapi.Service, videoIDs []string) ([]*youtubemodel.VideoCandidate, error) {
	var resp *ytapi.VideoListResponse
	err := c.do(ctx, func(callCtx context.Context) error {
		var doErr error
		resp, doErr = service.Videos.List([]string{"snippet", "statistics", "contentDetails"}).
			Id(videoIDs...).
			Context(callCtx).
			Do()
		return doErr
	})
	if err != nil {
		return nil, fmt.Errorf("videos.list failed: %w", err)
	}

	byID := make(map[string]*ytapi.Video, len(resp.Items))
	channelIDs := make([]string, 0, len(resp.Items))
	for _, v := range resp.Items {
		byID[v.Id] = v
		if v.Snippet != nil && v.Snippet.ChannelId != "" {
			channelIDs = append(channelIDs, v.Snippet.ChannelId)
		}
	}

	handles := c.resolveHandles(ctx, service, channelIDs)

	candidates := make([]*youtubemodel.VideoCandidate, 0, len(videoIDs))
	for _, id := range videoIDs {
		v, ok := byID[id]
		if !ok {
			continue
		}
		candidates = append(candidates, toCandidate(v, handles))
	}
	return candidates, nil
}

// resolveHandles returns channel ID -> handle for every channel it could resolve.
// Lookup failures only cost the uploader URL, so they are logged and ignored.
func (c *YouTubeDataClient) resolveHandles(ctx context.Context, service *ytapi.Service, channelIDs []string) map[string]string {
	handles := make(map[string]string, len(channelIDs))
	var missing []string
	seen := make(map[string]bool, len(channelIDs))

	for _, id := range channelIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		if handle, ok := c.handleCache.Get(id); ok {
			handles[id] = handle
			continue
		}
		missing = append(missing, id)
	}

	if len(missing) == 0 {
		return handles
	}

	var resp *ytapi.ChannelListResponse
	err := c.do(ctx, func(callCtx context.Context) error {
		var doErr error
		resp, doErr = service.Channels.List([]string{"snippet"}).
			Id(missing...).
			MaxResults(maxResultsPerPage).
			Context(callCtx).
			Do()
		return doErr
	})
	if err != nil {
		log.Warn().Err(err).Strs("channel_ids", missing).Msg("Failed to resolve channel handles")
		return handles
	}

	for _, ch := range resp.Items {
		if ch.Snippet == nil || ch.Snippet.CustomUrl == "" {
			continue
		}
		c.handleCache.Add(ch.Id, ch.Snippet.CustomUrl)
		handles[ch.Id] = ch.Snippet.CustomUrl
	}
	return handles
}

// do waits for the rate limiter and runs fn with a per-call timeout
func (c *YouTubeDataClient) do(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()
	return fn(callCtx)
}

func toCandidate(v *ytapi.Video, handles map[string]string) *youtubemodel.VideoCandidate {
	candidate := &youtubemodel.VideoCandidate{ID: v.Id}

	if v.Snippet != nil {
		candidate.Title = v.Snippet.Title
		candidate.ChannelName = v.Snippet.ChannelTitle
		candidate.ChannelID = v.Snippet.ChannelId
		candidate.UploadDate = uploadDate(v.Snippet.PublishedAt)
		if candidate.ChannelID != "" {
			candidate.ChannelURL = "https://www.youtube.com/channel/" + candidate.ChannelID
		}
		if handle, ok := handles[candidate.ChannelID]; ok {
			candidate.UploaderURL = "https://www.youtube.com/" + handle
		}
	}

	if v.Statistics != nil {
		candidate.ViewCount = int64(v.Statistics.ViewCount)
	}

	if v.ContentDetails != nil {
		seconds, err := ParseISODuration(v.ContentDetails.Duration)
		if err != nil {
			log.Debug().Err(err).Str("video_id", v.Id).Msg("Unparseable video duration")
		}
		candidate.DurationSeconds = seconds
	}

	return candidate
}

// uploadDate converts an RFC3339 timestamp into the YYYYMMDD form used by the hunter
func uploadDate(publishedAt string) string {
	t, err := time.Parse(time.RFC3339, publishedAt)
	if err != nil {
		return ""
	}
	return t.UTC().Format("20060102")
}

// ParseISODuration converts an ISO-8601 video duration such as "PT1H2M3S" into seconds.
func ParseISODuration(s string) (float64, error) {
	m := isoDurationPattern.FindStringSubmatch(s)
	if m == nil || s == "P" || s == "PT" {
		return 0, fmt.Errorf("invalid ISO-8601 duration %q", s)
	}

	units := []float64{24 * 3600, 3600, 60, 1}
	var total float64
	for i, unit := range units {
		if m[i+1] == "" {
			continue
		}
		n, err := strconv.ParseFloat(m[i+1], 64)
		if err != nil {
			return 0, fmt.Errorf("invalid ISO-8601 duration %q: %w", s, err)
		}
		total += n * unit
	}
	return total, nil
}
