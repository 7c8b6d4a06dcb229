package source_resolver

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/keshon/domme-music/internal/music/parsers"
	"github.com/keshon/domme-music/internal/music/sources"
)

type fakeExtractor struct {
	name     string
	audio    *sources.ResolvedAudio
	err      error
	extracts []string
	searches []string
}

func (f *fakeExtractor) Name() string { return f.name }

func (f *fakeExtractor) Extract(ctx context.Context, pageURL string) (*sources.ResolvedAudio, error) {
	f.extracts = append(f.extracts, pageURL)
	return f.audio, f.err
}

func (f *fakeExtractor) Search(ctx context.Context, query string) (*sources.ResolvedAudio, error) {
	f.searches = append(f.searches, query)
	return f.audio, f.err
}

func TestResolveURLUsesExtract(t *testing.T) {
	ex := &fakeExtractor{name: "a", audio: &sources.ResolvedAudio{Title: "Song", StreamURL: "https://cdn/1"}}
	r, err := NewWithExtractors(ex)
	if err != nil {
		t.Fatal(err)
	}

	audio, err := r.Resolve(context.Background(), "https://youtu.be/dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if audio.StreamURL != "https://cdn/1" {
		t.Errorf("StreamURL = %q", audio.StreamURL)
	}
	if len(ex.extracts) != 1 || len(ex.searches) != 0 {
		t.Errorf("extracts=%v searches=%v", ex.extracts, ex.searches)
	}
}

func TestResolveTextUsesSearch(t *testing.T) {
	ex := &fakeExtractor{name: "a", audio: &sources.ResolvedAudio{StreamURL: "https://cdn/1"}}
	r, _ := NewWithExtractors(ex)

	audio, err := r.Resolve(context.Background(), "  Song A Artist X ")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(ex.searches) != 1 || ex.searches[0] != "Song A Artist X" {
		t.Errorf("searches = %v", ex.searches)
	}
	if audio.Title != "Song A Artist X" {
		t.Errorf("untitled result should fall back to the query, got %q", audio.Title)
	}
}

func TestResolveFallsBackInOrder(t *testing.T) {
	first := &fakeExtractor{name: "first", err: errors.New("blocked")}
	empty := &fakeExtractor{name: "empty", audio: &sources.ResolvedAudio{Title: "x"}}
	last := &fakeExtractor{name: "last", audio: &sources.ResolvedAudio{Title: "ok", StreamURL: "https://cdn/2"}}
	r, _ := NewWithExtractors(first, empty, last)

	audio, err := r.Resolve(context.Background(), "query")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if audio.Title != "ok" {
		t.Errorf("Title = %q", audio.Title)
	}
	if len(first.searches) != 1 || len(empty.searches) != 1 {
		t.Error("every earlier backend should have been tried once")
	}
}

func TestResolveAllFail(t *testing.T) {
	boom := errors.New("boom")
	r, _ := NewWithExtractors(
		&fakeExtractor{name: "a", err: boom},
		&fakeExtractor{name: "b", err: parsers.ErrNoResults},
	)

	_, err := r.Resolve(context.Background(), "query")
	if !errors.Is(err, sources.ErrResolutionFailed) {
		t.Fatalf("got %v, want ErrResolutionFailed", err)
	}
	if !errors.Is(err, boom) || !errors.Is(err, parsers.ErrNoResults) {
		t.Errorf("backend errors should be joined: %v", err)
	}
	if !strings.Contains(err.Error(), "a: boom") {
		t.Errorf("error should name the backend: %v", err)
	}
}

func TestResolveEmptyAndCancelled(t *testing.T) {
	ex := &fakeExtractor{name: "a", audio: &sources.ResolvedAudio{StreamURL: "x"}}
	r, _ := NewWithExtractors(ex)

	if _, err := r.Resolve(context.Background(), "   "); !errors.Is(err, sources.ErrResolutionFailed) {
		t.Errorf("empty input: got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Resolve(ctx, "query"); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled: got %v", err)
	}
	if len(ex.searches) != 0 {
		t.Error("no backend should run after cancellation")
	}
}

func TestNewBackends(t *testing.T) {
	r, err := New(Options{Backends: []string{" KKDAI ", "ytdlp", "kkdai"}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got := strings.Join(r.Backends(), ",")
	if got != "kkdai,ytdlp" {
		t.Errorf("Backends = %q", got)
	}

	r, err = New(Options{})
	if err != nil {
		t.Fatalf("New default: %v", err)
	}
	if got := strings.Join(r.Backends(), ","); got != "ytdlp,kkdai" {
		t.Errorf("default Backends = %q", got)
	}

	if _, err := New(Options{Backends: []string{"soundcloud"}}); err == nil {
		t.Error("expected error for unknown backend")
	}
	if _, err := NewWithExtractors(); err == nil {
		t.Error("expected error for empty chain")
	}
}
