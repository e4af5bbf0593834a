package editing

import (
	"fmt"
	"strings"

	"reelforge/internal/config"
)

// BuildFilters assembles the ffmpeg video and audio filter chains for the
// configured post-processing. Either string may be empty when nothing in
// that chain is enabled.
func BuildFilters(cfg config.Editing) (videoFilter, audioFilter string) {
	var video, audio []string

	if cfg.Speed > 0 && cfg.Speed != 1.0 {
		video = append(video, fmt.Sprintf("setpts=PTS/%.3f", cfg.Speed))
		audio = append(audio, fmt.Sprintf("atempo=%.3f", cfg.Speed))
	}
	if cfg.RemoveSilence {
		audio = append(audio, fmt.Sprintf(
			"silenceremove=stop_periods=-1:stop_duration=0.35:stop_threshold=%ddB",
			cfg.SilenceThreshold,
		))
	}
	if cfg.NormalizeLoudness {
		audio = append(audio, "loudnorm=I=-16:TP=-1.5:LRA=11")
	}

	return strings.Join(video, ","), strings.Join(audio, ",")
}

// subtitleStyle keeps burned-in captions readable over stock footage.
const subtitleStyle = "FontName=Arial Bold,FontSize=24,PrimaryColour=&H00FFFFFF," +
	"OutlineColour=&H00000000,BackColour=&H80000000,Bold=1,Outline=2,Shadow=1,Alignment=2"

// ZoomFilter returns a slow push-in zoom sized to the source dimensions.
// zoompan resets the frame size, so the probed width and height must be
// passed through to keep the output at the source resolution.
func ZoomFilter(width, height int) string {
	return fmt.Sprintf("zoompan=z='min(zoom+0.0002,1.1)':d=1:s=%dx%d", width, height)
}

// SubtitleFilter burns the given SRT file into the video stream.
func SubtitleFilter(path string) string {
	return fmt.Sprintf("subtitles=%s:force_style='%s'", escapeFilterPath(path), subtitleStyle)
}

// OverlayFilter positions an overlay input in the bottom-right corner,
// visible for three seconds from each of the given start times.
func OverlayFilter(starts ...float64) string {
	windows := make([]string, 0, len(starts))
	for _, start := range starts {
		windows = append(windows, fmt.Sprintf("between(t,%.1f,%.1f)", start, start+3))
	}
	return fmt.Sprintf("overlay=W-w-10:H-h-10:enable='%s'", strings.Join(windows, "+"))
}

// escapeFilterPath quotes characters that the ffmpeg filter parser treats
// as option separators.
func escapeFilterPath(path string) string {
	replacer := strings.NewReplacer(
		`\`, `\\`,
		`'`, `\'`,
		`:`, `\:`,
		`,`, `\,`,
	)
	return replacer.Replace(path)
}
