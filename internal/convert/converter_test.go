package convert

import (
	"context"
	"encoding/json"
	"os/exec"
	"path/filepath"
	"testing"
)

func TestNewDefaultsToPath(t *testing.T) {
	c := New("", "")
	if c.ffmpeg() != "ffmpeg" {
		t.Errorf("ffmpeg() = %q, want ffmpeg", c.ffmpeg())
	}
	if c.ffprobe() != "ffprobe" {
		t.Errorf("ffprobe() = %q, want ffprobe", c.ffprobe())
	}
}

func TestNewUsesConfiguredPaths(t *testing.T) {
	c := New("/opt/ffmpeg/ffmpeg", "/opt/ffmpeg/ffprobe")
	if c.ffmpeg() != "/opt/ffmpeg/ffmpeg" {
		t.Errorf("ffmpeg() = %q", c.ffmpeg())
	}
	if c.ffprobe() != "/opt/ffmpeg/ffprobe" {
		t.Errorf("ffprobe() = %q", c.ffprobe())
	}
}

func TestProbeOutputParsing(t *testing.T) {
	raw := `{"streams":[{"codec_type":"audio","codec_name":"aac"},{"codec_type":"video","codec_name":"hevc"}]}`
	var out probeOutput
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		t.Fatal(err)
	}
	var found string
	for _, s := range out.Streams {
		if s.CodecType == "video" {
			found = s.CodecName
		}
	}
	if found != "hevc" {
		t.Errorf("expected hevc stream, got %q", found)
	}
}

func TestProbeFormatParsing(t *testing.T) {
	raw := `{"format":{"duration":"123.456000"}}`
	var out probeFormatOutput
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		t.Fatal(err)
	}
	if out.Format.Duration != "123.456000" {
		t.Errorf("Duration = %q", out.Format.Duration)
	}
}

// createTestVideo requires a working ffmpeg on PATH; skipped in short mode
// per the retrieval pack's convention for tests that shell out to it.
func createTestVideo(t *testing.T, dir, codec string) string {
	t.Helper()
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not available on PATH")
	}

	path := filepath.Join(dir, "source.mp4")
	args := []string{
		"-f", "lavfi",
		"-i", "testsrc=duration=1:size=160x120:rate=1",
		"-c:v", codec,
	}
	if codec == "libx265" {
		args = append(args, "-pix_fmt", "yuv420p")
	}
	args = append(args, "-f", "mp4", "-y", path)

	cmd := exec.CommandContext(context.Background(), "ffmpeg", args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("failed to create test video: %v\n%s", err, out)
	}
	return path
}

func TestConvertRemuxesH264(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping ffmpeg integration test in short mode")
	}
	dir := t.TempDir()
	in := createTestVideo(t, dir, "libx264")
	out := filepath.Join(dir, "out.mp4")

	c := New("", "")
	converted, err := c.Convert(context.Background(), in, out)
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if !converted {
		t.Error("expected Convert to report success")
	}
}

func TestConvertTranscodesHEVC(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping ffmpeg integration test in short mode")
	}
	dir := t.TempDir()
	in := createTestVideo(t, dir, "libx265")
	out := filepath.Join(dir, "out.mp4")

	c := New("", "")
	converted, err := c.Convert(context.Background(), in, out)
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if !converted {
		t.Error("expected Convert to report success")
	}
}

func TestDuration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping ffmpeg integration test in short mode")
	}
	dir := t.TempDir()
	in := createTestVideo(t, dir, "libx264")

	c := New("", "")
	duration, err := c.Duration(context.Background(), in)
	if err != nil {
		t.Fatalf("Duration failed: %v", err)
	}
	if duration <= 0 {
		t.Errorf("expected positive duration, got %f", duration)
	}
}
