package common

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/researchaccelerator-hub/youtube-lead-hunter/config"
	"github.com/rs/zerolog/log"
)

// HuntConfig is the immutable filter configuration of a single hunt.
type HuntConfig struct {
	DaysAgo            int
	ViewsMin           int64
	ViewsMax           int64
	DurationMinSeconds float64
	DurationMaxSeconds float64
	SearchLimitPerTerm int
	TotalGoal          int
	OutputFile         string
}

// HuntConfigFromSettings converts the loaded hunt settings into a HuntConfig.
func HuntConfigFromSettings(s config.HuntSettings) HuntConfig {
	return HuntConfig{
		DaysAgo:            s.DaysAgo,
		ViewsMin:           s.ViewsMin,
		ViewsMax:           s.ViewsMax,
		DurationMinSeconds: s.DurationMin,
		DurationMaxSeconds: s.DurationMax,
		SearchLimitPerTerm: s.SearchLimitPerTerm,
		TotalGoal:          s.TotalGoal,
		OutputFile:         s.OutputFile,
	}
}

// Validate reports the first setting a caller should fix before starting a hunt.
func (c HuntConfig) Validate() error {
	if c.DaysAgo < 0 {
		return fmt.Errorf("days ago must be >= 0, got %d", c.DaysAgo)
	}
	if c.ViewsMin < 0 || c.ViewsMin > c.ViewsMax {
		return fmt.Errorf("invalid view bounds: min %d, max %d", c.ViewsMin, c.ViewsMax)
	}
	if !IsFinite(c.DurationMinSeconds) || !IsFinite(c.DurationMaxSeconds) {
		return fmt.Errorf("duration bounds must be finite numbers")
	}
	if c.DurationMinSeconds < 0 || c.DurationMinSeconds > c.DurationMaxSeconds {
		return fmt.Errorf("invalid duration bounds: min %g, max %g", c.DurationMinSeconds, c.DurationMaxSeconds)
	}
	if c.SearchLimitPerTerm < 1 {
		return fmt.Errorf("search limit per term must be positive, got %d", c.SearchLimitPerTerm)
	}
	if c.TotalGoal < 1 {
		return fmt.Errorf("total goal must be positive, got %d", c.TotalGoal)
	}
	if strings.TrimSpace(c.OutputFile) == "" {
		return fmt.Errorf("output file is required")
	}
	return nil
}

// IsFinite reports whether f is neither NaN nor infinite.
func IsFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// GenerateCrawlID generates a unique identifier based on the current timestamp.
// The identifier is formatted as a string in the "YYYYMMDDHHMMSS" format.
func GenerateCrawlID() string {
	return time.Now().Format("20060102150405")
}

// GenerateRunID returns a sortable, collision-free hunt run identifier:
// the crawl timestamp followed by the first block of a random UUID.
func GenerateRunID() string {
	id := uuid.New().String()
	return fmt.Sprintf("%s-%s", GenerateCrawlID(), id[:8])
}

const termsUserAgent = "youtube-lead-hunter/1.0"

var termsHTTPClient = &http.Client{Timeout: 30 * time.Second}

// DownloadTermsFile fetches a remote terms list into a temporary file and returns
// its path. The caller removes the file; on error nothing is left behind.
func DownloadTermsFile(ctx context.Context, url string) (path string, err error) {
	log.Info().Str("url", url).Msg("Downloading terms file")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", termsUserAgent)

	resp, err := termsHTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download terms: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status downloading terms: %s", resp.Status)
	}

	out, err := os.CreateTemp("", "search_terms_*.txt")
	if err != nil {
		return "", fmt.Errorf("failed to create terms file: %w", err)
	}
	defer func() {
		if err != nil {
			os.Remove(out.Name())
		}
	}()

	n, err := io.Copy(out, resp.Body)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return "", fmt.Errorf("failed to save terms file: %w", err)
	}

	log.Debug().Str("file", out.Name()).Int64("bytes", n).Msg("Terms file downloaded")
	return out.Name(), nil
}

// ReadTermsFromFile reads search terms from a file, one per line.
// It ignores empty lines and lines starting with a '#' character (comments).
func ReadTermsFromFile(filename string) ([]string, error) {
	log.Debug().Str("filename", filename).Msg("Reading terms from file")

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var terms []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "#") {
			terms = append(terms, line)
		}
	}

	log.Debug().Int("term_count", len(terms)).Msg("Terms read from file")
	return terms, nil
}

// CollectTerms merges terms given inline, from a local file and from a remote
// file, in that order. Inline terms may be comma separated.
func CollectTerms(ctx context.Context, inline []string, termsFile, termsURL string) ([]string, error) {
	var terms []string
	for _, arg := range inline {
		terms = append(terms, strings.Split(arg, ",")...)
	}

	if termsFile != "" {
		fileTerms, err := ReadTermsFromFile(termsFile)
		if err != nil {
			return nil, err
		}
		terms = append(terms, fileTerms...)
	}

	if termsURL != "" {
		downloaded, err := DownloadTermsFile(ctx, termsURL)
		if err != nil {
			return nil, err
		}
		defer os.Remove(downloaded)

		urlTerms, err := ReadTermsFromFile(downloaded)
		if err != nil {
			return nil, err
		}
		terms = append(terms, urlTerms...)
	}

	return terms, nil
}
