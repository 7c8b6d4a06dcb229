package kkdai

import (
	"context"
	"errors"
	"testing"

	"github.com/keshon/domme-music/internal/music/parsers"

	youtube "github.com/kkdai/youtube/v2"
)

func TestExtractYouTubeID(t *testing.T) {
	cases := map[string]string{
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ":             "dQw4w9WgXcQ",
		"https://youtube.com/watch?v=dQw4w9WgXcQ&list=RDdQw4w9Wg": "dQw4w9WgXcQ",
		"https://music.youtube.com/watch?v=dQw4w9WgXcQ":           "dQw4w9WgXcQ",
		"https://m.youtube.com/watch?v=dQw4w9WgXcQ":               "dQw4w9WgXcQ",
		"https://youtu.be/dQw4w9WgXcQ?t=10":                       "dQw4w9WgXcQ",
		"https://www.youtube.com/shorts/dQw4w9WgXcQ":              "dQw4w9WgXcQ",
		"https://www.youtube.com/embed/dQw4w9WgXcQ":               "dQw4w9WgXcQ",
	}
	for in, want := range cases {
		got, err := extractYouTubeID(in)
		if err != nil {
			t.Errorf("extractYouTubeID(%q) error: %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("extractYouTubeID(%q) = %q, want %q", in, got, want)
		}
	}

	bad := []string{
		"https://example.com/watch?v=dQw4w9WgXcQ",
		"https://www.youtube.com/watch",
		"https://www.youtube.com/watch?v=short",
		"https://www.youtube.com/playlist?list=PL123",
		"not a url",
	}
	for _, in := range bad {
		if _, err := extractYouTubeID(in); err == nil {
			t.Errorf("extractYouTubeID(%q) expected error", in)
		}
	}
}

func TestBestAudioFormat(t *testing.T) {
	formats := youtube.FormatList{
		{ItagNo: 18, MimeType: `video/mp4; codecs="avc1.42001E, mp4a.40.2"`, Bitrate: 500000, AudioChannels: 2},
		{ItagNo: 140, MimeType: `audio/mp4; codecs="mp4a.40.2"`, Bitrate: 130000, AudioChannels: 2},
		{ItagNo: 251, MimeType: `audio/webm; codecs="opus"`, Bitrate: 160000, AudioChannels: 2},
	}

	f, err := bestAudioFormat(formats)
	if err != nil {
		t.Fatalf("bestAudioFormat: %v", err)
	}
	if f.ItagNo != 251 {
		t.Errorf("picked itag %d, want 251", f.ItagNo)
	}
}

func TestBestAudioFormatFallsBackToMuxed(t *testing.T) {
	formats := youtube.FormatList{
		{ItagNo: 137, MimeType: `video/mp4; codecs="avc1.640028"`, Bitrate: 4000000},
		{ItagNo: 18, MimeType: `video/mp4; codecs="avc1.42001E, mp4a.40.2"`, Bitrate: 500000, AudioChannels: 2},
	}

	f, err := bestAudioFormat(formats)
	if err != nil {
		t.Fatalf("bestAudioFormat: %v", err)
	}
	if f.ItagNo != 18 {
		t.Errorf("picked itag %d, want 18", f.ItagNo)
	}

	if _, err := bestAudioFormat(youtube.FormatList{{ItagNo: 137, MimeType: "video/mp4"}}); err == nil {
		t.Error("expected error when no format carries audio")
	}
}

type stubSearcher struct {
	url   string
	err   error
	calls int
}

func (s *stubSearcher) FirstVideoURL(ctx context.Context, query string) (string, error) {
	s.calls++
	return s.url, s.err
}

func TestSearchChain(t *testing.T) {
	failing := &stubSearcher{err: errors.New("boom")}
	ok := &stubSearcher{url: "https://www.youtube.com/watch?v=dQw4w9WgXcQ"}
	never := &stubSearcher{url: "unused"}

	got, err := SearchChain{failing, ok, never}.FirstVideoURL(context.Background(), "q")
	if err != nil {
		t.Fatalf("FirstVideoURL: %v", err)
	}
	if got != ok.url {
		t.Errorf("got %q, want %q", got, ok.url)
	}
	if never.calls != 0 {
		t.Error("chain should stop at the first hit")
	}

	if _, err := (SearchChain{}).FirstVideoURL(context.Background(), "q"); !errors.Is(err, parsers.ErrNoResults) {
		t.Errorf("empty chain: got %v, want ErrNoResults", err)
	}

	_, err = SearchChain{failing, failing}.FirstVideoURL(context.Background(), "q")
	if err == nil || err.Error() == "" {
		t.Error("expected joined error when all searchers fail")
	}
}

func TestSearchWithoutSearcher(t *testing.T) {
	e := &KKDAIExtractor{client: &youtube.Client{}}
	if _, err := e.Search(context.Background(), "anything"); err == nil {
		t.Error("expected error without searcher")
	}
}
