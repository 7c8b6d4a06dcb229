package player

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/keshon/domme-music/internal/logging"
	"github.com/keshon/domme-music/internal/music/reference"
	"github.com/keshon/domme-music/internal/music/sources"
	"github.com/keshon/domme-music/internal/music/stream"

	"github.com/rs/zerolog"
)

const DefaultPollInterval = time.Second

var errStopRequested = errors.New("stop requested")

// Sink is a voice output that plays one stream at a time.
type Sink interface {
	Play(url string, filters stream.FilterConfig) error
	Stop() error
	Disconnect() error
	IsPlaying() bool
	IsPaused() bool
}

// completionNotifier is implemented by sinks that can signal the end of a
// stream instead of being polled.
type completionNotifier interface {
	Done() <-chan struct{}
}

type Options struct {
	Resolver     sources.Resolver
	Catalog      sources.Catalog
	Filters      stream.FilterConfig
	PollInterval time.Duration
	Metrics      Metrics
}

// Session is the playback state of one guild. Stop may be called from any
// goroutine while Play runs.
type Session struct {
	guildID string

	resolver sources.Resolver
	catalog  sources.Catalog
	filters  stream.FilterConfig
	poll     time.Duration
	metrics  Metrics
	log      zerolog.Logger

	stop atomic.Bool

	// playMu serializes attaching a stream with Stop tearing the sink down
	playMu sync.Mutex

	mu   sync.Mutex
	sink Sink
}

func New(guildID string, opts Options) *Session {
	poll := opts.PollInterval
	if poll <= 0 {
		poll = DefaultPollInterval
	}
	m := opts.Metrics
	if m == nil {
		m = nopMetrics{}
	}
	return &Session{
		guildID:  guildID,
		resolver: opts.Resolver,
		catalog:  opts.Catalog,
		filters:  opts.Filters,
		poll:     poll,
		metrics:  m,
		log:      logging.Component("player").With().Str("guild", guildID).Logger(),
	}
}

func (s *Session) GuildID() string {
	return s.guildID
}

// Attach sets the sink used for playback, replacing any previous one.
func (s *Session) Attach(sink Sink) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sink = sink
}

func (s *Session) Connected() bool {
	return s.currentSink() != nil
}

func (s *Session) currentSink() Sink {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sink
}

// StopRequested reports whether Stop was called since the last Play.
func (s *Session) StopRequested() bool {
	return s.stop.Load()
}

// Play classifies input and plays it. Single tracks return as soon as audio
// starts; playlists block until the last track ends, Stop is called or ctx
// is done.
func (s *Session) Play(ctx context.Context, input string, ch Interaction) error {
	ref := reference.Classify(input)
	if ref.Kind == reference.Invalid {
		return fmt.Errorf("%w: %q", sources.ErrInvalidReference, input)
	}
	if !s.Connected() {
		return sources.ErrNotConnected
	}

	s.stop.Store(false)
	s.log.Info().Str("kind", ref.Kind.String()).Str("value", ref.Value).Msg("play requested")

	switch ref.Kind {
	case reference.DirectPlayable:
		return s.playSingle(ctx, ref.Value, ref.Kind, ch)

	case reference.CatalogTrack:
		track, err := s.catalog.FetchTrack(ctx, ref.Value)
		if err != nil {
			s.metrics.TrackFailed(StageCatalog)
			return err
		}
		if !track.Playable() {
			s.metrics.TrackFailed(StageCatalog)
			return fmt.Errorf("%w: track %s has no title or artist", sources.ErrCatalogFetchFailed, ref.Value)
		}
		return s.playSingle(ctx, track.SearchQuery(), ref.Kind, ch)

	default:
		return s.playPlaylist(ctx, ref.Value, ch)
	}
}

func (s *Session) playSingle(ctx context.Context, query string, kind reference.Kind, ch Interaction) error {
	audio, err := s.resolver.Resolve(ctx, query)
	if err != nil {
		s.metrics.TrackFailed(StageResolve)
		return err
	}

	if err := s.start(audio); err != nil {
		if errors.Is(err, errStopRequested) {
			return nil
		}
		s.metrics.TrackFailed(StageSink)
		return err
	}
	s.metrics.TrackPlayed(kind.String())

	s.send(ctx, ch, "Now playing: "+audio.Title)
	return nil
}

func (s *Session) playPlaylist(ctx context.Context, playlistID string, ch Interaction) error {
	snap, err := s.catalog.FetchPlaylist(ctx, playlistID)
	if err != nil {
		s.metrics.PlaylistFinished(OutcomeFailed)
		return err
	}
	if len(snap.Tracks) == 0 {
		s.metrics.PlaylistFinished(OutcomeFailed)
		return fmt.Errorf("%w: playlist %s has no playable tracks", sources.ErrCatalogFetchFailed, playlistID)
	}

	// answers the deferred interaction; progress lives in the channel
	if snap.CoverImage != "" {
		if _, err := ch.SendEmbed(ctx, Embed{
			Title:       snap.Title,
			Description: "Now playing Spotify playlist",
			ImageURL:    snap.CoverImage,
		}); err != nil {
			s.log.Warn().Err(err).Msg("failed to send playlist embed")
		}
	} else if snap.Title != "" {
		s.send(ctx, ch, "Now playing Spotify playlist: "+snap.Title)
	} else {
		s.send(ctx, ch, "Now playing Spotify playlist.")
	}

	progress := s.post(ctx, ch, "Now playing track 0/0...")
	total := max(snap.Total, len(snap.Tracks))

	for i, track := range snap.Tracks {
		if s.stop.Load() {
			s.log.Info().Msg("playback stopped, leaving playlist loop")
			s.metrics.PlaylistFinished(OutcomeStopped)
			return nil
		}
		if err := ctx.Err(); err != nil {
			s.metrics.PlaylistFinished(OutcomeCancelled)
			return err
		}
		if !track.Playable() {
			continue
		}

		pos := track.Position
		if pos <= 0 {
			pos = i + 1
		}
		l := s.log.With().Int("position", pos).Int("total", total).Str("title", track.Title).Logger()

		audio, err := s.resolver.Resolve(ctx, track.SearchQuery())
		if err != nil {
			l.Warn().Err(err).Msg("could not resolve track, skipping")
			s.metrics.TrackFailed(StageResolve)
			continue
		}

		progress = s.edit(ctx, ch, progress, fmt.Sprintf("Now playing track %d/%d: %s by %s",
			pos, total, track.Title, track.ArtistLine()))

		if err := s.start(audio); err != nil {
			if errors.Is(err, errStopRequested) {
				break
			}
			l.Warn().Err(err).Msg("could not attach track to sink, skipping")
			s.metrics.TrackFailed(StageSink)
			continue
		}
		s.metrics.TrackPlayed(reference.CatalogPlaylist.String())
		l.Debug().Msg("track started")

		if err := s.waitTrack(ctx); err != nil {
			s.metrics.PlaylistFinished(OutcomeCancelled)
			return err
		}
	}

	if s.stop.Load() {
		s.metrics.PlaylistFinished(OutcomeStopped)
		return nil
	}

	s.post(ctx, ch, "Finished playing Spotify playlist.")
	s.metrics.PlaylistFinished(OutcomeCompleted)
	s.log.Info().Str("playlist", playlistID).Msg("playlist finished")
	return nil
}

// start hands audio to the sink, ending whatever it is currently playing.
// It holds playMu so a concurrent Stop either runs first and wins, or waits
// and tears the new stream down.
func (s *Session) start(audio *sources.ResolvedAudio) error {
	s.playMu.Lock()
	defer s.playMu.Unlock()

	if s.stop.Load() {
		return errStopRequested
	}
	sink := s.currentSink()
	if sink == nil {
		return sources.ErrNotConnected
	}
	if sink.IsPlaying() || sink.IsPaused() {
		if err := sink.Stop(); err != nil {
			s.log.Warn().Err(err).Msg("failed to stop previous stream")
		}
	}
	if err := sink.Play(audio.StreamURL, s.filters); err != nil {
		return fmt.Errorf("%w: %w", sources.ErrSinkAttachFailed, err)
	}
	return nil
}

// waitTrack blocks until the sink stops playing or Stop is called. It only
// returns an error when ctx is done.
func (s *Session) waitTrack(ctx context.Context) error {
	ticker := time.NewTicker(s.poll)
	defer ticker.Stop()

	for {
		if s.stop.Load() {
			return nil
		}
		sink := s.currentSink()
		if sink == nil || !sink.IsPlaying() {
			return nil
		}

		var done <-chan struct{}
		if n, ok := sink.(completionNotifier); ok {
			done = n.Done()
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-done:
		case <-ticker.C:
		}
	}
}

// Stop requests the playlist loop to end, stops the sink and leaves the
// voice channel. Calling it with nothing playing is a no-op.
func (s *Session) Stop() error {
	s.stop.Store(true)

	s.playMu.Lock()
	defer s.playMu.Unlock()

	s.mu.Lock()
	sink := s.sink
	s.sink = nil
	s.mu.Unlock()

	if sink == nil {
		return nil
	}

	if sink.IsPlaying() || sink.IsPaused() {
		if err := sink.Stop(); err != nil {
			s.log.Warn().Err(err).Msg("failed to stop sink")
		}
	}
	if err := sink.Disconnect(); err != nil {
		return fmt.Errorf("disconnect: %w", err)
	}
	s.log.Info().Msg("playback stopped and voice connection closed")
	return nil
}

func (s *Session) send(ctx context.Context, ch Interaction, content string) *MessageRef {
	ref, err := ch.Send(ctx, content)
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to send message")
		return nil
	}
	return ref
}

func (s *Session) post(ctx context.Context, ch Interaction, content string) *MessageRef {
	ref, err := ch.Post(ctx, content)
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to post message")
		return nil
	}
	return ref
}

// edit updates msg in place, or posts a new message when there is none.
func (s *Session) edit(ctx context.Context, ch Interaction, msg *MessageRef, content string) *MessageRef {
	if msg == nil {
		return s.post(ctx, ch, content)
	}
	if err := ch.Edit(ctx, msg, content); err != nil {
		s.log.Warn().Err(err).Msg("failed to edit progress message")
	}
	return msg
}
