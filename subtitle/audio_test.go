package subtitle

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAudioExtractor_Extract(t *testing.T) {
	video := filepath.Join(t.TempDir(), "clip.mp4")
	require.NoError(t, os.WriteFile(video, []byte("not really a video"), 0644))

	var gotName string
	var gotArgs []string
	extractor := NewAudioExtractor("/opt/ffmpeg").WithRunner(func(ctx context.Context, name string, args ...string) error {
		gotName = name
		gotArgs = args
		return nil
	})

	require.NoError(t, extractor.Extract(context.Background(), video, "out.mp3"))
	assert.Equal(t, "/opt/ffmpeg", gotName)
	assert.Equal(t, []string{"-y", "-i", video, "-vn", "-ac", "1", "-ar", "16000", "-ab", "32k", "-f", "mp3", "out.mp3"}, gotArgs)
}

func TestAudioExtractor_Errors(t *testing.T) {
	video := filepath.Join(t.TempDir(), "clip.mp4")
	require.NoError(t, os.WriteFile(video, []byte("x"), 0644))

	failing := NewAudioExtractor("").WithRunner(func(ctx context.Context, name string, args ...string) error {
		return errors.New("exit status 1")
	})
	err := failing.Extract(context.Background(), video, "out.mp3")
	assert.ErrorIs(t, err, ErrFFmpeg)

	err = failing.Extract(context.Background(), filepath.Join(t.TempDir(), "missing.mp4"), "out.mp3")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrFFmpeg)
}

func TestExtractAudio_MissingBinary(t *testing.T) {
	video := filepath.Join(t.TempDir(), "clip.mp4")
	require.NoError(t, os.WriteFile(video, []byte("x"), 0644))

	err := ExtractAudio(context.Background(), filepath.Join(t.TempDir(), "no-ffmpeg"), video, filepath.Join(t.TempDir(), "out.mp3"))
	assert.ErrorIs(t, err, ErrFFmpeg)
}
