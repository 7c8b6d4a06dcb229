package ytdlp

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/keshon/domme-music/internal/logging"
	"github.com/keshon/domme-music/internal/music/parsers"
	"github.com/keshon/domme-music/internal/music/sources"

	"github.com/lrstanley/go-ytdlp"
	"github.com/rs/zerolog"
)

const printTemplate = "%(title)s\t%(url)s\t%(webpage_url)s"

// YTDLPExtractor shells out to yt-dlp in simulate mode: it prints the chosen
// audio format URL and never downloads the media.
type YTDLPExtractor struct {
	ageLimit int
	log      zerolog.Logger
}

func New(ageLimit int) *YTDLPExtractor {
	return &YTDLPExtractor{
		ageLimit: ageLimit,
		log:      logging.Component("ytdlp"),
	}
}

func (e *YTDLPExtractor) Name() string {
	return parsers.ExtractorYTDLP
}

func (e *YTDLPExtractor) Extract(ctx context.Context, pageURL string) (*sources.ResolvedAudio, error) {
	return e.run(ctx, pageURL)
}

// Search takes the first hit only.
func (e *YTDLPExtractor) Search(ctx context.Context, query string) (*sources.ResolvedAudio, error) {
	return e.run(ctx, "ytsearch1:"+query)
}

func (e *YTDLPExtractor) run(ctx context.Context, target string) (*sources.ResolvedAudio, error) {
	e.log.Debug().Str("target", target).Msg("running yt-dlp")

	res, err := ytdlp.New().
		Format("bestaudio/best").
		NoPlaylist().
		NoWarnings().
		IgnoreConfig().
		Print(printTemplate).
		Run(ctx, "--age-limit", strconv.Itoa(e.ageLimit), target)
	if err != nil {
		if res != nil && strings.TrimSpace(res.Stderr) != "" {
			return nil, fmt.Errorf("yt-dlp: %w: %s", err, strings.TrimSpace(res.Stderr))
		}
		return nil, fmt.Errorf("yt-dlp: %w", err)
	}

	return parsePrinted(res.Stdout)
}

// parsePrinted reads the first non-empty line produced by printTemplate.
func parsePrinted(stdout string) (*sources.ResolvedAudio, error) {
	for _, line := range strings.Split(stdout, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		parts := strings.Split(line, "\t")
		if len(parts) < 2 {
			return nil, fmt.Errorf("yt-dlp: unexpected output line %q", line)
		}

		link := strings.TrimSpace(parts[1])
		if link == "" || link == "NA" {
			return nil, parsers.ErrEmptyStream
		}

		audio := &sources.ResolvedAudio{
			Title:     strings.TrimSpace(parts[0]),
			StreamURL: link,
		}
		if len(parts) > 2 && parts[2] != "NA" {
			audio.PageURL = strings.TrimSpace(parts[2])
		}
		return audio, nil
	}
	return nil, parsers.ErrNoResults
}
