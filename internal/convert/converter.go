// Package convert invokes ffprobe and ffmpeg to inspect and normalize
// source-root video files: HEVC streams are re-encoded with an hvc1 tag for
// broad player compatibility, everything else is just faststart-remuxed.
package convert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"mediasync/internal/logging"
	"mediasync/internal/memory"
	"mediasync/internal/metrics"
)

// Converter drives ffprobe/ffmpeg subprocesses. The zero value uses
// "ffprobe" and "ffmpeg" from PATH; construct with New to point at
// configured binary paths.
type Converter struct {
	FFmpegPath  string
	FFprobePath string

	memory *memory.Monitor
}

// New constructs a Converter using the given ffmpeg/ffprobe binary paths.
// Empty strings fall back to looking the binaries up on PATH.
func New(ffmpegPath, ffprobePath string) *Converter {
	return &Converter{FFmpegPath: ffmpegPath, FFprobePath: ffprobePath}
}

// SetMemoryMonitor wires a memory.Monitor that Convert waits on before
// spawning an ffmpeg child process, so transcoding backs off under memory
// pressure instead of piling up more ffmpeg processes. A nil monitor (the
// default) means no backpressure is applied.
func (c *Converter) SetMemoryMonitor(m *memory.Monitor) {
	c.memory = m
}

func (c *Converter) ffmpeg() string {
	if c.FFmpegPath != "" {
		return c.FFmpegPath
	}
	return "ffmpeg"
}

func (c *Converter) ffprobe() string {
	if c.FFprobePath != "" {
		return c.FFprobePath
	}
	return "ffprobe"
}

type probeStream struct {
	CodecType string `json:"codec_type"`
	CodecName string `json:"codec_name"`
}

type probeOutput struct {
	Streams []probeStream `json:"streams"`
}

// probeVideoCodec runs ffprobe and returns the codec name of the first
// video stream. Returns ("", false, nil) if the file has no video stream.
func (c *Converter) probeVideoCodec(ctx context.Context, path string) (string, bool, error) {
	cmd := exec.CommandContext(ctx, c.ffprobe(),
		"-v", "quiet",
		"-print_format", "json",
		"-show_streams",
		path,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		metrics.ConvertProbeErrors.Inc()
		return "", false, fmt.Errorf("ffprobe %s: %w: %s", path, err, stderr.String())
	}

	var out probeOutput
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		metrics.ConvertProbeErrors.Inc()
		return "", false, fmt.Errorf("ffprobe %s: parse output: %w", path, err)
	}

	for _, s := range out.Streams {
		if s.CodecType == "video" {
			return s.CodecName, true, nil
		}
	}
	return "", false, nil
}

// Convert inspects in's video codec and writes a normalized copy to out.
// HEVC streams are re-encoded to hvc1-tagged HEVC; everything else is
// remuxed with copy codecs. Both paths apply faststart. Returns false
// without error if in has no video stream (nothing to convert).
func (c *Converter) Convert(ctx context.Context, in, out string) (bool, error) {
	if c.memory != nil && !c.memory.WaitIfPaused() {
		return false, fmt.Errorf("convert: aborted, memory monitor stopped")
	}

	codec, hasVideo, err := c.probeVideoCodec(ctx, in)
	if err != nil {
		return false, err
	}
	if !hasVideo {
		return false, nil
	}

	codecPath := "remux"
	if strings.EqualFold(codec, "hevc") {
		codecPath = "hevc_transcode"
	}

	start := time.Now()
	metrics.ConvertJobsInProgress.Inc()
	defer metrics.ConvertJobsInProgress.Dec()

	var args []string
	if codecPath == "hevc_transcode" {
		args = []string{
			"-i", in,
			"-c:v", "libx265",
			"-x265-params", "chroma-format=420",
			"-tag:v", "hvc1",
			"-c:a", "copy",
			"-movflags", "faststart",
			out,
		}
	} else {
		args = []string{
			"-i", in,
			"-c:v", "copy",
			"-c:a", "copy",
			"-movflags", "faststart",
			out,
		}
	}

	cmd := exec.CommandContext(ctx, c.ffmpeg(), args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	metrics.ConvertJobDuration.WithLabelValues(codecPath).Observe(time.Since(start).Seconds())

	if runErr != nil {
		metrics.ConvertJobsTotal.WithLabelValues(codecPath, "error").Inc()
		logging.Error("convert: ffmpeg failed for %s: %v: %s", in, runErr, stderr.String())
		return false, fmt.Errorf("ffmpeg %s: %w: %s", in, runErr, stderr.String())
	}

	metrics.ConvertJobsTotal.WithLabelValues(codecPath, "success").Inc()
	return true, nil
}

type probeFormat struct {
	Duration string `json:"duration"`
}

type probeFormatOutput struct {
	Format probeFormat `json:"format"`
}

// Duration runs ffprobe to determine the media duration, in seconds, of
// path.
func (c *Converter) Duration(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, c.ffprobe(),
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		path,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		metrics.ConvertProbeErrors.Inc()
		return 0, fmt.Errorf("ffprobe %s: %w: %s", path, err, stderr.String())
	}

	var out probeFormatOutput
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		metrics.ConvertProbeErrors.Inc()
		return 0, fmt.Errorf("ffprobe %s: parse output: %w", path, err)
	}

	duration, err := strconv.ParseFloat(out.Format.Duration, 64)
	if err != nil {
		metrics.ConvertProbeErrors.Inc()
		return 0, fmt.Errorf("ffprobe %s: parse duration %q: %w", path, out.Format.Duration, err)
	}

	return duration, nil
}
