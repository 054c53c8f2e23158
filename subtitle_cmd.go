package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/researchaccelerator-hub/youtube-lead-hunter/subtitle"
	"github.com/spf13/cobra"
)

func newSRTCmd(a *app) *cobra.Command {
	var transcriptPath, outPath string

	cmd := &cobra.Command{
		Use:   "srt",
		Short: "Convert a verbose JSON transcription into an SRT subtitle file",
		RunE: func(cmd *cobra.Command, args []string) error {
			segments, err := subtitle.LoadSegments(transcriptPath)
			if err != nil {
				return err
			}
			if outPath == "" {
				outPath = subtitle.OutputPath(transcriptPath)
			}
			if err := subtitle.SaveSRT(outPath, segments); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Subtitle saved: %s\n", outPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&transcriptPath, "transcript", "t", "", "verbose JSON transcription with segments")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output .srt file (default: next to the transcript)")
	_ = cmd.MarkFlagRequired("transcript")
	return cmd
}

func newExtractAudioCmd(a *app) *cobra.Command {
	var videoPath, outPath string

	cmd := &cobra.Command{
		Use:   "extract-audio",
		Short: "Extract a mono 16 kHz mp3 track from a video for transcription",
		RunE: func(cmd *cobra.Command, args []string) error {
			if outPath == "" {
				outPath = strings.TrimSuffix(videoPath, filepath.Ext(videoPath)) + ".mp3"
			}
			if err := subtitle.ExtractAudio(cmd.Context(), a.cfg.Subtitle.FFmpegPath, videoPath, outPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Audio saved: %s\n", outPath)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&videoPath, "video", "i", "", "input video file")
	flags.StringVarP(&outPath, "out", "o", "", "output mp3 file (default: next to the video)")
	flags.String("ffmpeg", "ffmpeg", "path to the ffmpeg binary")
	_ = cmd.MarkFlagRequired("video")
	mustBind(a.v.BindPFlag("subtitle.ffmpeg_path", flags.Lookup("ffmpeg")))
	return cmd
}
