package stream

import (
	"strconv"
	"strings"
)

const (
	channels   = 2
	sampleRate = 48000
	frameSize  = 960 // 20ms at 48kHz
)

// FilterConfig is passed to ffmpeg as-is and never interpreted here.
type FilterConfig struct {
	InputOptions  []string
	OutputOptions []string
	AudioFilters  []string
}

// DefaultFilters keeps the reconnect and buffering flags plus the loudness,
// equalizer and compander chain the bot has always used.
func DefaultFilters() FilterConfig {
	return FilterConfig{
		InputOptions: []string{
			"-reconnect", "1",
			"-reconnect_streamed", "1",
			"-reconnect_delay_max", "5",
			"-probesize", "1M",
			"-analyzeduration", "2M",
			"-fflags", "+nobuffer",
			"-threads", "4",
			"-rw_timeout", "15000000",
		},
		OutputOptions: []string{"-vn"},
		AudioFilters: []string{
			"volume=2.0",
			"loudnorm=I=-14:TP=-1.5:LRA=11",
			"equalizer=f=60:width_type=o:width=2:g=5",
			"equalizer=f=120:width_type=o:width=2:g=4",
			"equalizer=f=300:width_type=o:width=2:g=3",
			"equalizer=f=600:width_type=o:width=2:g=2",
			"equalizer=f=1000:width_type=o:width=2:g=1.5",
			"equalizer=f=3000:width_type=o:width=2:g=1.5",
			"equalizer=f=5000:width_type=o:width=2:g=1.2",
			"equalizer=f=10000:width_type=o:width=2:g=1.8",
			"equalizer=f=16000:width_type=o:width=2:g=2",
			"compand=attacks=0.03:decays=0.25:points=-80/-80|-60/-20|-20/-10|0/-3:soft-knee=6",
			"dynaudnorm=g=10:p=0.9",
		},
	}
}

// Override replaces every non-empty part of f with the given values.
func (f FilterConfig) Override(input, output string, audioFilters []string) FilterConfig {
	if opts := strings.Fields(input); len(opts) > 0 {
		f.InputOptions = opts
	}
	if opts := strings.Fields(output); len(opts) > 0 {
		f.OutputOptions = opts
	}
	var af []string
	for _, a := range audioFilters {
		if a = strings.TrimSpace(a); a != "" {
			af = append(af, a)
		}
	}
	if len(af) > 0 {
		f.AudioFilters = af
	}
	return f
}

// Args builds the ffmpeg argument list that decodes url to raw PCM on stdout.
func (f FilterConfig) Args(url string) []string {
	args := make([]string, 0, len(f.InputOptions)+len(f.OutputOptions)+16)
	args = append(args, f.InputOptions...)
	args = append(args, "-i", url)
	args = append(args, f.OutputOptions...)
	if len(f.AudioFilters) > 0 {
		args = append(args, "-af", strings.Join(f.AudioFilters, ","))
	}
	args = append(args,
		"-f", "s16le",
		"-ar", strconv.Itoa(sampleRate),
		"-ac", strconv.Itoa(channels),
		"-loglevel", "warning",
		"pipe:1",
	)
	return args
}
