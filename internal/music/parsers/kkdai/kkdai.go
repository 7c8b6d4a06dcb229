package kkdai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/keshon/domme-music/internal/logging"
	"github.com/keshon/domme-music/internal/music/parsers"
	"github.com/keshon/domme-music/internal/music/sources"

	_ "github.com/bdandy/go-socks4"
	youtube "github.com/kkdai/youtube/v2"
	"github.com/rs/zerolog"
	"golang.org/x/net/proxy"
)

// KKDAIExtractor talks to YouTube directly through kkdai/youtube. It cannot
// search on its own, so free text goes through a Searcher first.
type KKDAIExtractor struct {
	client   *youtube.Client
	searcher Searcher
	log      zerolog.Logger
}

func New(searcher Searcher, proxyStr string) *KKDAIExtractor {
	l := logging.Component("kkdai")
	return &KKDAIExtractor{
		client:   newClient(proxyStr, l),
		searcher: searcher,
		log:      l,
	}
}

func (e *KKDAIExtractor) Name() string {
	return parsers.ExtractorKKDAI
}

func (e *KKDAIExtractor) Extract(ctx context.Context, pageURL string) (*sources.ResolvedAudio, error) {
	videoID, err := extractYouTubeID(pageURL)
	if err != nil {
		return nil, err
	}

	video, err := e.client.GetVideoContext(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("[kkdai] youtube client error: %w", err)
	}

	format, err := bestAudioFormat(video.Formats)
	if err != nil {
		return nil, err
	}

	link, err := e.client.GetStreamURLContext(ctx, video, format)
	if err != nil {
		return nil, fmt.Errorf("[kkdai] get stream URL error: %w", err)
	}
	if link == "" {
		return nil, parsers.ErrEmptyStream
	}

	e.log.Debug().Str("video", videoID).Int("itag", format.ItagNo).Msg("stream url extracted")
	return &sources.ResolvedAudio{
		Title:     video.Title,
		StreamURL: link,
		PageURL:   watchURL(videoID),
	}, nil
}

func (e *KKDAIExtractor) Search(ctx context.Context, query string) (*sources.ResolvedAudio, error) {
	if e.searcher == nil {
		return nil, errors.New("[kkdai] no searcher configured")
	}
	pageURL, err := e.searcher.FirstVideoURL(ctx, query)
	if err != nil {
		return nil, err
	}
	return e.Extract(ctx, pageURL)
}

// bestAudioFormat prefers audio-only formats and picks the highest bitrate.
func bestAudioFormat(formats youtube.FormatList) (*youtube.Format, error) {
	candidates := formats.Type("audio")
	if len(candidates) == 0 {
		candidates = formats.WithAudioChannels()
	}
	if len(candidates) == 0 {
		return nil, errors.New("[kkdai] no audio formats found for video")
	}

	best := 0
	for i := range candidates {
		if candidates[i].Bitrate > candidates[best].Bitrate {
			best = i
		}
	}
	return &candidates[best], nil
}

func newClient(proxyStr string, l zerolog.Logger) *youtube.Client {
	plain := &youtube.Client{
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	}
	if proxyStr == "" {
		return plain
	}

	proxyURL, err := url.Parse(proxyStr)
	if err != nil {
		l.Warn().Err(err).Msg("invalid proxy format, going without proxy")
		return plain
	}

	var transport *http.Transport

	switch proxyURL.Scheme {
	case "http", "https":
		transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
	case "socks5", "socks4":
		// go-socks4 registers the socks4 scheme with x/net/proxy on import
		dialer, err := proxy.FromURL(proxyURL, &net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 10 * time.Second,
		})
		if err != nil {
			l.Warn().Err(err).Str("scheme", proxyURL.Scheme).Msg("proxy dialer error, going without proxy")
			return plain
		}
		transport = &http.Transport{
			DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
				return dialer.Dial(network, addr)
			},
		}
	default:
		l.Warn().Str("scheme", proxyURL.Scheme).Msg("unsupported proxy scheme, going without proxy")
		return plain
	}

	l.Info().Str("scheme", proxyURL.Scheme).Str("host", proxyURL.Host).Msg("using proxy for youtube client")
	return &youtube.Client{
		HTTPClient: &http.Client{
			Timeout:   15 * time.Second,
			Transport: transport,
		},
	}
}
