// Package subtitle turns transcription segments into SRT files and prepares
// audio tracks for transcription.
package subtitle

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// Segment is one timed piece of a transcription
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// transcript is the verbose JSON shape returned by Whisper-style transcription APIs
type transcript struct {
	Text     string    `json:"text"`
	Language string    `json:"language"`
	Segments []Segment `json:"segments"`
}

// FormatTimestamp renders seconds as an SRT timestamp (HH:MM:SS,mmm).
// Negative values clamp to zero and milliseconds are truncated.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	whole, frac := math.Modf(seconds)
	total := int64(whole)
	return fmt.Sprintf("%02d:%02d:%02d,%03d",
		total/3600,
		(total%3600)/60,
		total%60,
		int(frac*1000),
	)
}

// WriteSRT writes segments to w in SRT format, numbering cues from 1
func WriteSRT(w io.Writer, segments []Segment) error {
	bw := bufio.NewWriter(w)
	for i, seg := range segments {
		_, err := fmt.Fprintf(bw, "%d\n%s --> %s\n%s\n\n",
			i+1,
			FormatTimestamp(seg.Start),
			FormatTimestamp(seg.End),
			strings.TrimSpace(seg.Text),
		)
		if err != nil {
			return fmt.Errorf("error writing cue %d: %w", i+1, err)
		}
	}
	return bw.Flush()
}

// SaveSRT writes segments to the file at path, replacing it if it exists
func SaveSRT(path string, segments []Segment) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error saving SRT file: %w", err)
	}

	if err := WriteSRT(file, segments); err != nil {
		file.Close()
		return fmt.Errorf("error saving SRT file: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("error saving SRT file: %w", err)
	}

	log.Info().Str("path", path).Int("cues", len(segments)).Msg("Subtitle saved")
	return nil
}

// LoadSegments reads the segments of a verbose JSON transcription file
func LoadSegments(path string) ([]Segment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read transcript: %w", err)
	}

	var t transcript
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse transcript %s: %w", path, err)
	}
	if t.Segments == nil {
		return nil, fmt.Errorf("transcript %s has no segments", path)
	}
	return t.Segments, nil
}

// OutputPath returns the .srt path next to a video file
func OutputPath(videoPath string) string {
	return strings.TrimSuffix(videoPath, filepath.Ext(videoPath)) + ".srt"
}
