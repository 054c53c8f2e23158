package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/researchaccelerator-hub/youtube-lead-hunter/standalone"
	"github.com/researchaccelerator-hub/youtube-lead-hunter/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--log-pretty=false", "--log-level=error"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCmd_Subcommands(t *testing.T) {
	cmd := newRootCmd()
	names := make([]string, 0, len(cmd.Commands()))
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"hunt", "history", "srt", "extract-audio"} {
		assert.Contains(t, names, want)
	}
}

func TestHuntCmd_RequiresTerms(t *testing.T) {
	_, err := execute(t, "hunt", "--history", "")
	assert.ErrorIs(t, err, standalone.ErrNoTerms)
}

func TestHuntCmd_RejectsBadSettings(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "unknown provider", args: []string{"hunt", "term", "--provider", "vimeo"}},
		{name: "inverted view bounds", args: []string{"hunt", "term", "--views-min", "5000", "--views-max", "10"}},
		{name: "zero goal", args: []string{"hunt", "term", "--goal", "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			args := append(tt.args, "--history", "", "--output", filepath.Join(dir, "leads.csv"))
			_, err := execute(t, args...)
			require.Error(t, err)
			assert.NoFileExists(t, filepath.Join(dir, "leads.csv"))
		})
	}
}

func TestHistoryCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hunt_history.db")

	out, err := execute(t, "history", "--history", path)
	require.NoError(t, err)
	assert.Contains(t, out, "No hunts recorded.")

	history, err := state.OpenHuntHistory(path)
	require.NoError(t, err)
	require.NoError(t, history.RecordStart(context.Background(), state.HuntRun{
		RunID:    "20261018093000-abcdef12",
		Provider: "ytdlp",
		Terms:    []string{"gameplay commentary"},
	}))
	require.NoError(t, history.RecordFinish(context.Background(), "20261018093000-abcdef12", 4, state.StatusCompleted))
	require.NoError(t, history.Close())

	out, err = execute(t, "history", "--history", path)
	require.NoError(t, err)
	assert.Contains(t, out, "20261018093000-abcdef12")
	assert.Contains(t, out, "completed")
	assert.Contains(t, out, "gameplay commentary")

	out, err = execute(t, "history", "--history", path, "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"run_id": "20261018093000-abcdef12"`)
	assert.Contains(t, out, `"collected": 4`)
}

func TestHistoryCmd_Disabled(t *testing.T) {
	_, err := execute(t, "history", "--history", "")
	assert.Error(t, err)
}

func TestSRTCmd(t *testing.T) {
	dir := t.TempDir()
	transcript := filepath.Join(dir, "clip.json")
	require.NoError(t, os.WriteFile(transcript, []byte(`{"segments":[{"start":0,"end":1.5,"text":" Hi."}]}`), 0644))

	out, err := execute(t, "srt", "--transcript", transcript)
	require.NoError(t, err)

	srtPath := filepath.Join(dir, "clip.srt")
	assert.Contains(t, out, "Subtitle saved: "+srtPath)
	data, err := os.ReadFile(srtPath)
	require.NoError(t, err)
	assert.Equal(t, "1\n00:00:00,000 --> 00:00:01,500\nHi.\n\n", string(data))
}

func TestSRTCmd_MissingTranscriptFlag(t *testing.T) {
	_, err := execute(t, "srt")
	assert.Error(t, err)
}

func TestExtractAudioCmd_MissingVideo(t *testing.T) {
	_, err := execute(t, "extract-audio", "--video", filepath.Join(t.TempDir(), "missing.mp4"))
	assert.Error(t, err)
}
