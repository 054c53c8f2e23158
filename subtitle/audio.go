package subtitle

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/rs/zerolog/log"
)

// ErrFFmpeg is returned when ffmpeg is missing or fails
var ErrFFmpeg = errors.New("error extracting audio, check that ffmpeg is installed and in PATH")

// Runner executes an external program
type Runner func(ctx context.Context, name string, args ...string) error

// AudioExtractor converts video files into mono 16 kHz mp3 audio for transcription
type AudioExtractor struct {
	ffmpegPath string
	run        Runner
}

// NewAudioExtractor creates an extractor. An empty path defaults to "ffmpeg".
func NewAudioExtractor(ffmpegPath string) *AudioExtractor {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &AudioExtractor{ffmpegPath: ffmpegPath, run: runCommand}
}

// WithRunner replaces the command runner, mainly for tests
func (a *AudioExtractor) WithRunner(run Runner) *AudioExtractor {
	a.run = run
	return a
}

// Args returns the ffmpeg arguments used to extract audio
func Args(videoPath, audioPath string) []string {
	return []string{"-y", "-i", videoPath, "-vn", "-ac", "1", "-ar", "16000", "-ab", "32k", "-f", "mp3", audioPath}
}

// Extract writes the audio track of videoPath to audioPath
func (a *AudioExtractor) Extract(ctx context.Context, videoPath, audioPath string) error {
	if _, err := os.Stat(videoPath); err != nil {
		return fmt.Errorf("video file not found: %w", err)
	}

	log.Info().Str("video", videoPath).Str("audio", audioPath).Msg("Extracting audio")
	if err := a.run(ctx, a.ffmpegPath, Args(videoPath, audioPath)...); err != nil {
		return fmt.Errorf("%w: %v", ErrFFmpeg, err)
	}
	return nil
}

// ExtractAudio runs ffmpeg at ffmpegPath to extract the audio of videoPath
func ExtractAudio(ctx context.Context, ffmpegPath, videoPath, audioPath string) error {
	return NewAudioExtractor(ffmpegPath).Extract(ctx, videoPath, audioPath)
}

func runCommand(ctx context.Context, name string, args ...string) error {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			lines := strings.Split(msg, "\n")
			return fmt.Errorf("%w: %s", err, lines[len(lines)-1])
		}
		return err
	}
	return nil
}
