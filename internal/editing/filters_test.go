package editing

import (
	"strings"
	"testing"

	"reelforge/internal/config"
)

func TestBuildFiltersAllEnabled(t *testing.T) {
	video, audio := BuildFilters(config.Editing{
		Enabled:           true,
		Speed:             1.05,
		RemoveSilence:     true,
		SilenceThreshold:  -35,
		NormalizeLoudness: true,
	})
	if video != "setpts=PTS/1.050" {
		t.Fatalf("unexpected video filter %q", video)
	}
	wantAudio := "atempo=1.050,silenceremove=stop_periods=-1:stop_duration=0.35:stop_threshold=-35dB,loudnorm=I=-16:TP=-1.5:LRA=11"
	if audio != wantAudio {
		t.Fatalf("unexpected audio filter %q", audio)
	}
}

func TestBuildFiltersUnitSpeedSkipsTempo(t *testing.T) {
	video, audio := BuildFilters(config.Editing{
		Enabled:           true,
		Speed:             1.0,
		NormalizeLoudness: true,
	})
	if video != "" {
		t.Fatalf("expected no video filter at unit speed, got %q", video)
	}
	if strings.Contains(audio, "atempo") {
		t.Fatalf("expected no atempo at unit speed, got %q", audio)
	}
}

func TestBuildFiltersNothingEnabled(t *testing.T) {
	video, audio := BuildFilters(config.Editing{Enabled: true, Speed: 1.0})
	if video != "" || audio != "" {
		t.Fatalf("expected empty filters, got %q / %q", video, audio)
	}
}

func TestZoomFilterUsesSourceDimensions(t *testing.T) {
	got := ZoomFilter(1920, 1080)
	want := "zoompan=z='min(zoom+0.0002,1.1)':d=1:s=1920x1080"
	if got != want {
		t.Fatalf("unexpected zoom filter %q", got)
	}
}

func TestSubtitleFilterEscapesPath(t *testing.T) {
	got := SubtitleFilter(`/videos/it's here/clip.srt`)
	if !strings.HasPrefix(got, `subtitles=/videos/it\'s here/clip.srt:force_style='`) {
		t.Fatalf("unexpected subtitle filter prefix %q", got)
	}
	if !strings.Contains(got, "FontName=Arial Bold") || !strings.Contains(got, "Alignment=2") {
		t.Fatalf("expected caption style in %q", got)
	}
}

func TestOverlayFilterCombinesWindows(t *testing.T) {
	got := OverlayFilter(3, 7)
	want := "overlay=W-w-10:H-h-10:enable='between(t,3.0,6.0)+between(t,7.0,10.0)'"
	if got != want {
		t.Fatalf("unexpected overlay filter %q", got)
	}
}
