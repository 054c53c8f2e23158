package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	youtubemodel "github.com/researchaccelerator-hub/youtube-lead-hunter/model/youtube"
	"github.com/rs/zerolog/log"
)

// CommandRunner executes an external program and returns its stdout.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// YtDlpClient implements SearchProvider on top of the yt-dlp "ytsearchN:" extractor.
// It needs no API key and returns full metadata for every entry.
type YtDlpClient struct {
	binary string
	run    CommandRunner
}

// NewYtDlpClient creates a yt-dlp backed provider. An empty binary defaults to "yt-dlp".
func NewYtDlpClient(binary string) *YtDlpClient {
	if binary == "" {
		binary = "yt-dlp"
	}
	return &YtDlpClient{
		binary: binary,
		run:    execCommand,
	}
}

// WithRunner replaces the command runner, mainly for tests
func (c *YtDlpClient) WithRunner(run CommandRunner) *YtDlpClient {
	c.run = run
	return c
}

// Name returns "ytdlp"
func (c *YtDlpClient) Name() string {
	return "ytdlp"
}

// CheckInstalled verifies that the yt-dlp binary can be executed
func (c *YtDlpClient) CheckInstalled(ctx context.Context) error {
	out, err := c.run(ctx, c.binary, "--version")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrYtDlpNotInstalled, err)
	}
	log.Debug().Str("binary", c.binary).Str("version", strings.TrimSpace(string(out))).Msg("Found yt-dlp")
	return nil
}

// ytDlpPlaylist is the subset of the --dump-single-json output we read
type ytDlpPlaylist struct {
	Entries *[]*ytDlpEntry `json:"entries"`
}

type ytDlpEntry struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Uploader    string  `json:"uploader"`
	UploaderURL string  `json:"uploader_url"`
	ChannelURL  string  `json:"channel_url"`
	ChannelID   string  `json:"channel_id"`
	ViewCount   int64   `json:"view_count"`
	Duration    float64 `json:"duration"`
	UploadDate  string  `json:"upload_date"`
}

// SearchVideos runs "yt-dlp ytsearch{limit}:{term}" and converts every entry
func (c *YtDlpClient) SearchVideos(ctx context.Context, term string, limit int) (*youtubemodel.SearchResult, error) {
	query := fmt.Sprintf("ytsearch%d:%s", limit, term)

	out, runErr := c.run(ctx, c.binary,
		"--dump-single-json",
		"--skip-download",
		"--ignore-errors",
		"--no-warnings",
		"--quiet",
		query,
	)
	if runErr != nil && len(bytes.TrimSpace(out)) == 0 {
		return nil, &ProviderError{Provider: c.Name(), Term: term, Err: runErr}
	}

	result, err := decodeYtDlpResult(term, out)
	if err != nil {
		if runErr != nil {
			err = errors.Join(runErr, err)
		}
		return nil, &ProviderError{Provider: c.Name(), Term: term, Err: err}
	}

	if runErr != nil {
		// --ignore-errors still exits non-zero when single entries fail
		log.Warn().Err(runErr).Str("term", term).Int("entries", len(result.Entries)).Msg("yt-dlp reported errors, using partial results")
	}
	return result, nil
}

func decodeYtDlpResult(term string, out []byte) (*youtubemodel.SearchResult, error) {
	var playlist ytDlpPlaylist
	if err := json.Unmarshal(out, &playlist); err != nil {
		return nil, fmt.Errorf("failed to decode yt-dlp output: %w", err)
	}

	result := &youtubemodel.SearchResult{Query: term}
	if playlist.Entries == nil {
		return result, nil
	}

	result.Entries = make([]*youtubemodel.VideoCandidate, 0, len(*playlist.Entries))
	for _, e := range *playlist.Entries {
		if e == nil {
			continue
		}
		result.Entries = append(result.Entries, &youtubemodel.VideoCandidate{
			ID:              e.ID,
			ChannelName:     e.Uploader,
			ChannelID:       e.ChannelID,
			Title:           e.Title,
			ViewCount:       e.ViewCount,
			DurationSeconds: e.Duration,
			UploadDate:      e.UploadDate,
			UploaderURL:     e.UploaderURL,
			ChannelURL:      e.ChannelURL,
		})
	}
	return result, nil
}

func execCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return out, fmt.Errorf("%s failed: %w: %s", name, err, msg)
		}
		return out, fmt.Errorf("%s failed: %w", name, err)
	}
	return out, nil
}
