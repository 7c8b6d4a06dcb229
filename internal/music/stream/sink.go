package stream

import (
	"errors"
	"io"
	"sync"

	"github.com/keshon/domme-music/internal/logging"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

var (
	ErrAlreadyPlaying = errors.New("sink is already playing")
	ErrSinkClosed     = errors.New("sink is disconnected")
)

type opener func(url string, filters FilterConfig) (io.ReadCloser, func(), error)

// DiscordSink plays one stream at a time into a voice connection.
type DiscordSink struct {
	send       chan<- []byte
	speaking   func(bool) error
	disconnect func() error
	open       opener
	newEncoder func() (frameEncoder, error)
	log        zerolog.Logger

	mu      sync.Mutex
	closed  bool
	playing bool
	stop    chan struct{}
	done    chan struct{}
	cleanup func()
}

func NewDiscordSink(vc *discordgo.VoiceConnection) *DiscordSink {
	return newSink(vc.OpusSend, vc.Speaking, vc.Disconnect, openPCM, newOpusEncoder)
}

func newSink(send chan<- []byte, speaking func(bool) error, disconnect func() error, open opener, enc func() (frameEncoder, error)) *DiscordSink {
	idle := make(chan struct{})
	close(idle)
	return &DiscordSink{
		send:       send,
		speaking:   speaking,
		disconnect: disconnect,
		open:       open,
		newEncoder: enc,
		log:        logging.Component("sink"),
		done:       idle,
	}
}

// Play starts streaming url in the background and returns once ffmpeg runs.
func (s *DiscordSink) Play(url string, filters FilterConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSinkClosed
	}
	if s.playing {
		return ErrAlreadyPlaying
	}

	encoder, err := s.newEncoder()
	if err != nil {
		return err
	}

	pcm, cleanup, err := s.open(url, filters)
	if err != nil {
		return err
	}

	if err := s.speaking(true); err != nil {
		s.log.Warn().Err(err).Msg("failed to set speaking state")
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	s.playing = true
	s.stop = stop
	s.done = done
	s.cleanup = cleanup

	go func() {
		err := StreamToDiscord(pcm, stop, s.send, encoder)
		if err != nil {
			s.log.Error().Err(err).Msg("stream ended with error")
		} else {
			s.log.Debug().Msg("stream ended")
		}

		cleanup()
		_ = pcm.Close()
		if err := s.speaking(false); err != nil {
			s.log.Warn().Err(err).Msg("failed to clear speaking state")
		}

		s.mu.Lock()
		if s.done == done {
			s.playing = false
		}
		s.mu.Unlock()
		close(done)
	}()

	return nil
}

// Stop ends the current stream and waits for the streaming goroutine.
func (s *DiscordSink) Stop() error {
	s.mu.Lock()
	if !s.playing {
		s.mu.Unlock()
		return nil
	}
	stop, done, cleanup := s.stop, s.done, s.cleanup
	s.stop = nil
	s.mu.Unlock()

	if stop != nil {
		close(stop)
	}
	// killing ffmpeg unblocks a pending read
	if cleanup != nil {
		cleanup()
	}
	<-done
	return nil
}

// Disconnect ends the current stream and leaves the voice channel. The sink
// refuses Play afterwards; only the first call disconnects.
func (s *DiscordSink) Disconnect() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	if err := s.Stop(); err != nil {
		return err
	}
	return s.disconnect()
}

func (s *DiscordSink) IsPlaying() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

// IsPaused is always false: the sink has no pause state.
func (s *DiscordSink) IsPaused() bool {
	return false
}

// Done is closed when the current stream finishes. When idle it returns an
// already closed channel.
func (s *DiscordSink) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}
