package source_resolver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/keshon/domme-music/internal/logging"
	"github.com/keshon/domme-music/internal/music/parsers"
	"github.com/keshon/domme-music/internal/music/parsers/kkdai"
	"github.com/keshon/domme-music/internal/music/parsers/ytdlp"
	"github.com/keshon/domme-music/internal/music/sources"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

// DefaultBackends is the extractor order used when none is configured.
var DefaultBackends = []string{parsers.ExtractorYTDLP, parsers.ExtractorKKDAI}

type Options struct {
	Backends    []string
	YTDLPAge    int
	KKDAIProxy  string
	KKDAISearch kkdai.Searcher
}

// SourceResolver tries each extractor in order until one yields a stream.
type SourceResolver struct {
	extractors []parsers.Extractor
	log        zerolog.Logger
}

// New builds the extractor chain from backend names.
func New(opts Options) (*SourceResolver, error) {
	names := opts.Backends
	if len(names) == 0 {
		names = DefaultBackends
	}
	names = lo.Uniq(lo.Map(names, func(n string, _ int) string {
		return strings.ToLower(strings.TrimSpace(n))
	}))

	extractors := make([]parsers.Extractor, 0, len(names))
	for _, name := range names {
		switch name {
		case parsers.ExtractorYTDLP:
			extractors = append(extractors, ytdlp.New(opts.YTDLPAge))
		case parsers.ExtractorKKDAI:
			searcher := opts.KKDAISearch
			if searcher == nil {
				searcher = kkdai.DefaultSearchChain()
			}
			extractors = append(extractors, kkdai.New(searcher, opts.KKDAIProxy))
		case "":
			continue
		default:
			return nil, errors.New("unknown resolver backend: " + name)
		}
	}
	return NewWithExtractors(extractors...)
}

func NewWithExtractors(extractors ...parsers.Extractor) (*SourceResolver, error) {
	if len(extractors) == 0 {
		return nil, errors.New("no resolver backends configured")
	}
	return &SourceResolver{
		extractors: extractors,
		log:        logging.Component("resolver"),
	}, nil
}

// Backends lists the extractor names in the order they are tried.
func (r *SourceResolver) Backends() []string {
	return lo.Map(r.extractors, func(e parsers.Extractor, _ int) string { return e.Name() })
}

func (r *SourceResolver) Resolve(ctx context.Context, queryOrURL string) (*sources.ResolvedAudio, error) {
	input := strings.TrimSpace(queryOrURL)
	if input == "" {
		return nil, fmt.Errorf("%w: empty query", sources.ErrResolutionFailed)
	}
	byURL := parsers.IsURL(input)

	var errs []error
	for _, ex := range r.extractors {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var (
			audio *sources.ResolvedAudio
			err   error
		)
		if byURL {
			audio, err = ex.Extract(ctx, input)
		} else {
			audio, err = ex.Search(ctx, input)
		}
		if err == nil && audio != nil && audio.StreamURL != "" {
			if audio.Title == "" {
				audio.Title = input
			}
			r.log.Debug().Str("backend", ex.Name()).Str("title", audio.Title).Msg("resolved")
			return audio, nil
		}
		if err == nil {
			err = parsers.ErrEmptyStream
		}

		r.log.Warn().Err(err).Str("backend", ex.Name()).Str("input", input).Msg("backend failed, trying next")
		errs = append(errs, fmt.Errorf("%s: %w", ex.Name(), err))
	}

	return nil, fmt.Errorf("%w: %w", sources.ErrResolutionFailed, errors.Join(errs...))
}
